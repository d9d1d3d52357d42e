package media

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"courseplatform/internal/pkg/response"
	"courseplatform/internal/pkg/validator"
	"courseplatform/internal/storage"
)

// Handler handles HTTP requests for course media.
type Handler struct {
	svc     *Service
	maxSize int64
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, maxSize: svc.maxSize}
}

// RegisterRoutes registers uploads under admin and reads under protected.
func (h *Handler) RegisterRoutes(admin, protected *gin.RouterGroup) {
	if admin != nil {
		media := admin.Group("/media")
		{
			media.POST("", h.Upload)
			media.POST("/uploads", h.StartUpload)
			media.PUT("/uploads/:uploadId/parts/:index", h.UploadPart)
			media.POST("/uploads/:uploadId/complete", h.CompleteUpload)
		}
	}
	if protected != nil {
		protected.GET("/media/url/*key", h.PresignedURL)
		protected.GET("/media/stream/*key", h.Stream)
	}
}

// Upload godoc
// @Summary Upload a media file
// @Description Upload a video, image, PDF or archive. Returns the storage key to reference from segments.
// @Tags Media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File to upload"
// @Success 201 {object} map[string]interface{}
// @Failure 400,401,413,502 {object} map[string]interface{}
// @Router /media [post]
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "NO_FILE", "no file provided")
		return
	}

	result, err := h.svc.Upload(c.Request.Context(), fileHeader)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// StartUpload godoc
// @Summary Start a chunked upload
// @Tags Media
// @Security BearerAuth
// @Success 201 {object} StartUploadResponse
// @Router /media/uploads [post]
func (h *Handler) StartUpload(c *gin.Context) {
	response.Success(c, http.StatusCreated, StartUploadResponse{UploadID: h.svc.StartUpload()})
}

// UploadPart godoc
// @Summary Upload one chunk
// @Description The raw request body is the chunk. Indexes start at 0.
// @Tags Media
// @Accept application/octet-stream
// @Security BearerAuth
// @Param uploadId path string true "Upload ID"
// @Param index path int true "Chunk index"
// @Success 204
// @Failure 400,413,502 {object} map[string]interface{}
// @Router /media/uploads/{uploadId}/parts/{index} [put]
func (h *Handler) UploadPart(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		handleError(c, ErrInvalidPartIndex)
		return
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, h.maxSize)
	err = h.svc.UploadPart(c.Request.Context(), c.Param("uploadId"), index, body, c.Request.ContentLength)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = ErrFileTooLarge
		}
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CompleteUpload godoc
// @Summary Combine uploaded chunks
// @Tags Media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uploadId path string true "Upload ID"
// @Param request body CompleteUploadRequest true "Number of parts and file extension"
// @Success 201 {object} map[string]interface{}
// @Failure 400,502 {object} map[string]interface{}
// @Router /media/uploads/{uploadId}/complete [post]
func (h *Handler) CompleteUpload(c *gin.Context) {
	var req CompleteUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", errs)
		return
	}

	result, err := h.svc.CompleteUpload(c.Request.Context(), c.Param("uploadId"), req.Parts, req.Ext)
	if err != nil {
		handleError(c, err)
		return
	}
	result.Name = req.FileName
	response.Success(c, http.StatusCreated, result)
}

// PresignedURL godoc
// @Summary Get a time-limited download URL
// @Tags Media
// @Produce json
// @Security BearerAuth
// @Param key path string true "Object key"
// @Success 200 {object} PresignedURLResponse
// @Failure 404 {object} map[string]interface{}
// @Router /media/url/{key} [get]
func (h *Handler) PresignedURL(c *gin.Context) {
	u, err := h.svc.PresignedURL(c.Request.Context(), objectKey(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, PresignedURLResponse{URL: u})
}

// Stream godoc
// @Summary Stream an object
// @Description Honors a single "Range: bytes=" header and answers 206 with Content-Range.
// @Tags Media
// @Security BearerAuth
// @Param key path string true "Object key"
// @Param Range header string false "Byte range"
// @Success 200
// @Success 206
// @Failure 404,416 {object} map[string]interface{}
// @Router /media/stream/{key} [get]
func (h *Handler) Stream(c *gin.Context) {
	resp, err := h.svc.Stream(c.Request.Context(), objectKey(c), c.GetHeader("Range"))
	if err != nil {
		handleError(c, err)
		return
	}
	serveStream(c, resp)
}

func objectKey(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("key"), "/")
}

func serveStream(c *gin.Context, resp *storage.StreamResponse) {
	defer resp.Body.Close()

	c.Header("Accept-Ranges", "bytes")
	status := http.StatusOK
	if resp.Partial() {
		status = http.StatusPartialContent
		c.Header("Content-Range", resp.ContentRange)
	}
	if c.Request.Method == http.MethodHead {
		c.Header("Content-Type", resp.ContentType)
		c.Header("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
		c.Status(status)
		return
	}
	c.DataFromReader(status, resp.ContentLength, resp.ContentType, resp.Body, nil)
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEmptyFile),
		errors.Is(err, ErrInvalidKey),
		errors.Is(err, ErrInvalidUploadID),
		errors.Is(err, ErrInvalidPartIndex),
		errors.Is(err, ErrInvalidExtension):
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, ErrInvalidMimeType):
		response.Error(c, http.StatusUnsupportedMediaType, "INVALID_MIME_TYPE", err.Error())
	case errors.Is(err, ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error())
	case errors.Is(err, storage.ErrRangeNotSatisfiable):
		c.Header("Accept-Ranges", "bytes")
		response.Error(c, http.StatusRequestedRangeNotSatisfiable, "RANGE_NOT_SATISFIABLE", err.Error())
	default:
		response.FromError(c, err)
	}
}
