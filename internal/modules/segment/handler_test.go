package segment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courseplatform/internal/database"
	"courseplatform/internal/domain"
	"courseplatform/internal/repository"
	"courseplatform/internal/storage"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type testEnv struct {
	router      *gin.Engine
	store       *storage.MemoryStorage
	segments    repository.SegmentRepository
	attachments repository.AttachmentRepository
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, _ := test.NewNullLogger()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := database.Connect(fmt.Sprintf("file:segment_%s?mode=memory&cache=shared", name), log)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	env := &testEnv{
		store:       storage.NewMemoryStorage(),
		segments:    repository.NewSegmentRepository(db),
		attachments: repository.NewAttachmentRepository(db),
	}
	svc := NewService(env.segments, env.attachments, env.store, log, 4)

	env.router = gin.New()
	api := env.router.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api, api.Group("/admin"))
	return env
}

func doJSONRequest(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (e *testEnv) putObject(t *testing.T, key string) {
	t.Helper()
	require.NoError(t, e.store.Upload(context.Background(), key, strings.NewReader("data:"+key), -1))
}

func TestHandler_CreateAndFetch(t *testing.T) {
	env := setupTestRouter(t)

	w, resp := doJSONRequest(t, env.router, http.MethodPost, "/api/v1/admin/segments", map[string]any{
		"slug":      "intro",
		"title":     "Intro",
		"content":   "# Hello",
		"module_id": "Basics",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created domain.Segment
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, 0, created.Order)

	w, resp = doJSONRequest(t, env.router, http.MethodGet, "/api/v1/learn/intro", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched domain.Segment
	require.NoError(t, json.Unmarshal(resp.Data, &fetched))
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "# Hello", fetched.Content)

	w, resp = doJSONRequest(t, env.router, http.MethodGet, "/api/v1/modules", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["Basics"]`, string(resp.Data))
}

func TestHandler_CreateValidationAndConflict(t *testing.T) {
	env := setupTestRouter(t)

	w, resp := doJSONRequest(t, env.router, http.MethodPost, "/api/v1/admin/segments", map[string]any{
		"slug":  "has spaces",
		"title": "Intro",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

	body := map[string]any{"slug": "intro", "title": "Intro", "module_id": "M"}
	w, _ = doJSONRequest(t, env.router, http.MethodPost, "/api/v1/admin/segments", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp = doJSONRequest(t, env.router, http.MethodPost, "/api/v1/admin/segments", body)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", resp.Error.Code)
}

func TestHandler_MissingSegment(t *testing.T) {
	env := setupTestRouter(t)

	w, resp := doJSONRequest(t, env.router, http.MethodGet, "/api/v1/learn/nonexistent", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)

	w, resp = doJSONRequest(t, env.router, http.MethodGet, "/api/v1/segments/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", resp.Error.Code)
}

func TestHandler_UpdateReplacesVideo(t *testing.T) {
	env := setupTestRouter(t)
	seg := &domain.Segment{Slug: "intro", Title: "Intro", ModuleID: "M", VideoKey: strPtr("v1")}
	require.NoError(t, env.segments.Create(context.Background(), seg))
	env.putObject(t, "v1")
	env.putObject(t, "v2")

	w, resp := doJSONRequest(t, env.router, http.MethodPut, fmt.Sprintf("/api/v1/admin/segments/%d", seg.ID), map[string]any{
		"video_key": "v2",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated domain.Segment
	require.NoError(t, json.Unmarshal(resp.Data, &updated))
	require.NotNil(t, updated.VideoKey)
	assert.Equal(t, "v2", *updated.VideoKey)
	assert.False(t, env.store.Has("v1"))
	assert.True(t, env.store.Has("v2"))
}

func TestHandler_DeleteSegmentRemovesEverything(t *testing.T) {
	env := setupTestRouter(t)
	ctx := context.Background()
	seg := &domain.Segment{Slug: "intro", Title: "Intro", ModuleID: "M", VideoKey: strPtr("v1")}
	require.NoError(t, env.segments.Create(ctx, seg))
	require.NoError(t, env.attachments.Create(ctx, &domain.Attachment{SegmentID: seg.ID, FileName: "f10.pdf", FileKey: "f10"}))
	env.putObject(t, "v1")
	env.putObject(t, "f10")
	env.putObject(t, "unrelated")

	w, resp := doJSONRequest(t, env.router, http.MethodDelete, fmt.Sprintf("/api/v1/admin/segments/%d", seg.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report CleanupReport
	require.NoError(t, json.Unmarshal(resp.Data, &report))
	assert.True(t, report.SegmentDeleted)
	assert.True(t, report.VideoDeleted)

	assert.Equal(t, []string{"unrelated"}, env.store.Keys())
	got, err := env.segments.GetByID(ctx, seg.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	left, err := env.attachments.ListBySegment(ctx, seg.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestHandler_RemoveSegmentKeepsObjects(t *testing.T) {
	env := setupTestRouter(t)
	seg := &domain.Segment{Slug: "intro", Title: "Intro", ModuleID: "M", VideoKey: strPtr("v1")}
	require.NoError(t, env.segments.Create(context.Background(), seg))
	env.putObject(t, "v1")

	w, _ := doJSONRequest(t, env.router, http.MethodDelete, fmt.Sprintf("/api/v1/admin/segments/%d/record", seg.ID), nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, env.store.Has("v1"))

	w, _ = doJSONRequest(t, env.router, http.MethodDelete, fmt.Sprintf("/api/v1/admin/segments/%d/record", seg.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Attachments(t *testing.T) {
	env := setupTestRouter(t)
	seg := &domain.Segment{Slug: "intro", Title: "Intro", ModuleID: "M"}
	require.NoError(t, env.segments.Create(context.Background(), seg))
	env.putObject(t, "files/a.pdf")

	w, resp := doJSONRequest(t, env.router, http.MethodPost, fmt.Sprintf("/api/v1/admin/segments/%d/attachments", seg.ID), map[string]any{
		"file_name": "a.pdf",
		"file_key":  "files/a.pdf",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var a domain.Attachment
	require.NoError(t, json.Unmarshal(resp.Data, &a))

	w, resp = doJSONRequest(t, env.router, http.MethodGet, fmt.Sprintf("/api/v1/segments/%d/attachments", seg.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []domain.Attachment
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list, 1)

	w, _ = doJSONRequest(t, env.router, http.MethodDelete, fmt.Sprintf("/api/v1/admin/attachments/%d", a.ID), nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, env.store.Has("files/a.pdf"))

	w, _ = doJSONRequest(t, env.router, http.MethodDelete, fmt.Sprintf("/api/v1/admin/attachments/%d", a.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
