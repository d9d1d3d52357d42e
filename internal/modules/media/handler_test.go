package media

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courseplatform/internal/storage"
)

func setupTestRouter(t *testing.T, store storage.Storage) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	api := router.Group("/api/v1")
	NewHandler(newTestService(t, store, 1<<20)).RegisterRoutes(api, api)
	if local, ok := store.(*storage.LocalStorage); ok {
		NewFileHandler(local).RegisterRoutes(router)
	}
	return router
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_UploadMultipart(t *testing.T) {
	store := storage.NewMemoryStorage()
	router := setupTestRouter(t, store)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "cover.png")
	require.NoError(t, err)
	_, _ = fw.Write(pngHeader)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/media", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := serve(router, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data UploadResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, store.Has(resp.Data.Key))
	assert.Equal(t, "image/png", resp.Data.MimeType)
}

func TestHandler_UploadWithoutFile(t *testing.T) {
	router := setupTestRouter(t, storage.NewMemoryStorage())

	w := serve(router, httptest.NewRequest(http.MethodPost, "/api/v1/media", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "NO_FILE")
}

func TestHandler_ChunkedFlow(t *testing.T) {
	store := storage.NewMemoryStorage()
	router := setupTestRouter(t, store)

	w := serve(router, httptest.NewRequest(http.MethodPost, "/api/v1/media/uploads", nil))
	require.Equal(t, http.StatusCreated, w.Code)
	var start struct {
		Data StartUploadResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &start))
	id := start.Data.UploadID

	for i, chunk := range []string{"abc", "def"} {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/media/uploads/"+id+"/parts/"+string(rune('0'+i)), strings.NewReader(chunk))
		require.Equal(t, http.StatusNoContent, serve(router, req).Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/media/uploads/"+id+"/complete", strings.NewReader(`{"parts":2,"ext":".mp4","file_name":"lesson.mp4"}`))
	req.Header.Set("Content-Type", "application/json")
	w = serve(router, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var done struct {
		Data UploadResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &done))
	assert.Equal(t, "lesson.mp4", done.Data.Name)
	assert.Equal(t, []string{done.Data.Key}, store.Keys())
}

func TestHandler_CompleteMissingPartIsBadGateway(t *testing.T) {
	router := setupTestRouter(t, storage.NewMemoryStorage())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/media/uploads/6f1c1f43-8a4f-4c69-9d53-52c1f2a4f0b1/complete", strings.NewReader(`{"parts":1,"ext":".mp4"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(router, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "STORAGE_ERROR")
}

func TestHandler_CompleteRejectsHTMLContent(t *testing.T) {
	store := storage.NewMemoryStorage()
	router := setupTestRouter(t, store)
	id := "6f1c1f43-8a4f-4c69-9d53-52c1f2a4f0b1"

	req := httptest.NewRequest(http.MethodPut, "/api/v1/media/uploads/"+id+"/parts/0", strings.NewReader("<html><script>x</script></html>"))
	require.Equal(t, http.StatusNoContent, serve(router, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/media/uploads/"+id+"/complete", strings.NewReader(`{"parts":1,"ext":".txt"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(router, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_MIME_TYPE")
	assert.Empty(t, store.Keys())
}

func TestHandler_Stream(t *testing.T) {
	store := storage.NewMemoryStorage()
	require.NoError(t, store.Upload(context.Background(), "videos/intro.mp4", strings.NewReader("0123456789"), 10))
	router := setupTestRouter(t, store)

	tests := []struct {
		name         string
		rangeHeader  string
		status       int
		body         string
		contentRange string
	}{
		{"full", "", http.StatusOK, "0123456789", ""},
		{"range", "bytes=2-5", http.StatusPartialContent, "2345", "bytes 2-5/10"},
		{"suffix", "bytes=-3", http.StatusPartialContent, "789", "bytes 7-9/10"},
		{"malformed ignored", "bytes=oops", http.StatusOK, "0123456789", ""},
		{"unsatisfiable", "bytes=50-", http.StatusRequestedRangeNotSatisfiable, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/media/stream/videos/intro.mp4", nil)
			if tt.rangeHeader != "" {
				req.Header.Set("Range", tt.rangeHeader)
			}
			w := serve(router, req)

			require.Equal(t, tt.status, w.Code)
			assert.Equal(t, "bytes", w.Header().Get("Accept-Ranges"))
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
				assert.Equal(t, "video/mp4", w.Header().Get("Content-Type"))
			}
			assert.Equal(t, tt.contentRange, w.Header().Get("Content-Range"))
		})
	}
}

func TestHandler_StreamMissing(t *testing.T) {
	router := setupTestRouter(t, storage.NewMemoryStorage())

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/media/stream/nope.mp4", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_PresignedLocalURLServesFile(t *testing.T) {
	local, err := storage.NewLocalStorage(t.TempDir(), "/files", "secret", time.Hour)
	require.NoError(t, err)
	require.NoError(t, local.Upload(context.Background(), "docs/guide.pdf", strings.NewReader("%PDF-1.4 guide"), -1))
	router := setupTestRouter(t, local)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/media/url/docs/guide.pdf", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Data PresignedURLResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	u, err := url.Parse(resp.Data.URL)
	require.NoError(t, err)
	assert.Equal(t, "/files/docs/guide.pdf", u.Path)

	w = serve(router, httptest.NewRequest(http.MethodGet, resp.Data.URL, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.4 guide", w.Body.String())

	w = serve(router, httptest.NewRequest(http.MethodGet, "/files/docs/guide.pdf?token=forged", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A token for one key does not open another.
	other := "/files/docs/other.pdf?" + u.RawQuery
	w = serve(router, httptest.NewRequest(http.MethodGet, other, nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
