package media

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"courseplatform/internal/pkg/response"
	"courseplatform/internal/storage"
)

// FileHandler serves objects of the local backend to holders of a URL
// issued by LocalStorage.PresignedURL.
type FileHandler struct {
	local *storage.LocalStorage
}

func NewFileHandler(local *storage.LocalStorage) *FileHandler {
	return &FileHandler{local: local}
}

// RegisterRoutes mounts GET and HEAD /files/*key on r.
func (h *FileHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/files/*key", h.Serve)
	r.HEAD("/files/*key", h.Serve)
}

func (h *FileHandler) Serve(c *gin.Context) {
	key := objectKey(c)
	if key == "" {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", ErrInvalidKey.Error())
		return
	}
	if err := h.local.VerifyToken(key, c.Query("token")); err != nil {
		response.Error(c, http.StatusForbidden, "INVALID_TOKEN", err.Error())
		return
	}

	resp, err := h.local.GetStream(c.Request.Context(), key, c.GetHeader("Range"))
	if err != nil {
		handleError(c, err)
		return
	}
	serveStream(c, resp)
}
