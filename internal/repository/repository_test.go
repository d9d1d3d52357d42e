package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"courseplatform/internal/database"
	"courseplatform/internal/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	log, _ := test.NewNullLogger()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", name), log)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedSegment(t *testing.T, repo SegmentRepository, slug, module string, order int) *domain.Segment {
	t.Helper()
	s := &domain.Segment{
		Slug:     slug,
		Title:    "Title " + slug,
		Content:  "Content of " + slug,
		Order:    order,
		ModuleID: module,
	}
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}

func strPtr(s string) *string { return &s }
