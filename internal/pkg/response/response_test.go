package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courseplatform/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", domain.NewNotFound("segment", 1), http.StatusNotFound, "NOT_FOUND"},
		{"wrapped not found", fmt.Errorf("load: %w", domain.NewNotFound("segment", 1)), http.StatusNotFound, "NOT_FOUND"},
		{"validation", &domain.ValidationError{Field: "slug", Message: "required"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"conflict", &domain.ConflictError{Resource: "segment", Field: "slug", Value: "a"}, http.StatusConflict, "CONFLICT"},
		{"storage", &domain.StorageError{Op: "delete", Key: "k", Err: errors.New("boom")}, http.StatusBadGateway, "STORAGE_ERROR"},
		{"storage wrapping not found", &domain.StorageError{Op: "combine", Key: "k", Err: domain.NewNotFound("object", "p")}, http.StatusBadGateway, "STORAGE_ERROR"},
		{"plain", errors.New("db down"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := Classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestFromError_HidesInternalMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	FromError(c, errors.New("pq: connection refused"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "INTERNAL", body.Error.Code)
	assert.Equal(t, "Internal error", body.Error.Message)
}
