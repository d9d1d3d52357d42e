package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Slug  string `validate:"required,slug"`
	Title string `validate:"required,max=5"`
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(sample{Slug: "intro-1_a", Title: "ok"}))

	errs := Validate(sample{Slug: "has space", Title: "too long"})
	assert.Equal(t, map[string]string{"Slug": "slug", "Title": "max"}, errs)

	errs = Validate(sample{})
	assert.Equal(t, "required", errs["Slug"])
	assert.Equal(t, "required", errs["Title"])
}
