package segment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"courseplatform/internal/pkg/response"
	"courseplatform/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(public, admin *gin.RouterGroup) {
	// Public routes (no auth required)
	if public != nil {
		public.GET("/segments", h.List)
		public.GET("/segments/:id", h.GetByID)
		public.GET("/segments/:id/attachments", h.ListAttachments)
		public.GET("/learn/:slug", h.GetBySlug)
		public.GET("/modules", h.Modules)
	}

	// Admin routes
	if admin != nil {
		admin.POST("/segments", h.Create)
		admin.PATCH("/segments/:id", h.Edit)
		admin.PUT("/segments/:id", h.Update)
		admin.DELETE("/segments/:id", h.Delete)
		admin.DELETE("/segments/:id/record", h.Remove)
		admin.POST("/segments/:id/attachments", h.AddAttachment)
		admin.DELETE("/attachments/:id", h.DeleteAttachment)
	}
}

// List возвращает все сегменты курса.
// @Summary		Список сегментов
// @Tags		Segments
// @Success		200	{object}	map[string]interface{}
// @Router		/segments [GET]
func (h *Handler) List(c *gin.Context) {
	items, err := h.svc.ListSegments(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// @Summary		Получить сегмент по ID
// @Tags		Segments
// @Param		id	path	int	true	"ID сегмента"
// @Success		200	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/segments/:id [GET]
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	seg, err := h.svc.GetSegmentByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, seg)
}

// GetBySlug отдаёт сегмент для страницы обучения.
// @Summary		Сегмент по slug
// @Tags		Segments
// @Param		slug	path	string	true	"Slug сегмента"
// @Success		200	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/learn/:slug [GET]
func (h *Handler) GetBySlug(c *gin.Context) {
	seg, err := h.svc.GetSegmentBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, seg)
}

func (h *Handler) Modules(c *gin.Context) {
	names, err := h.svc.ModuleNames(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	response.Success(c, http.StatusOK, names)
}

func (h *Handler) ListAttachments(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	items, err := h.svc.ListAttachments(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Create добавляет сегмент.
// @Summary		Создать сегмент
// @Tags		Segments
// @Security	BearerAuth
// @Param		request	body	CreateSegmentInput	true	"Данные сегмента"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Failure		409	{object}	map[string]interface{} "Slug уже занят"
// @Router		/segments [POST]
func (h *Handler) Create(c *gin.Context) {
	var req CreateSegmentInput
	if !bindAndValidate(c, &req) {
		return
	}
	seg, err := h.svc.AddSegment(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, seg)
}

// Edit меняет поля сегмента без удаления файлов.
// @Summary		Редактировать сегмент
// @Tags		Segments
// @Security	BearerAuth
// @Param		id		path	int				true	"ID сегмента"
// @Param		request	body	SegmentPatch	true	"Изменяемые поля"
// @Success		200	{object}	map[string]interface{}
// @Router		/segments/:id [PATCH]
func (h *Handler) Edit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req SegmentPatch
	if !bindAndValidate(c, &req) {
		return
	}
	seg, err := h.svc.EditSegment(c.Request.Context(), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, seg)
}

// Update обновляет сегмент; новое видео заменяет и удаляет старое.
// @Summary		Обновить сегмент
// @Tags		Segments
// @Security	BearerAuth
// @Param		id		path	int					true	"ID сегмента"
// @Param		request	body	UpdateSegmentInput	true	"Поля и новый ключ видео"
// @Success		200	{object}	map[string]interface{}
// @Failure		502	{object}	map[string]interface{} "Ошибка хранилища"
// @Router		/segments/:id [PUT]
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateSegmentInput
	if !bindAndValidate(c, &req) {
		return
	}
	seg, err := h.svc.UpdateSegment(c.Request.Context(), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, seg)
}

// Delete удаляет сегмент вместе с видео и вложениями.
// @Summary		Удалить сегмент полностью
// @Tags		Segments
// @Security	BearerAuth
// @Param		id	path	int	true	"ID сегмента"
// @Success		200	{object}	CleanupReport
// @Failure		502	{object}	map[string]interface{} "Частичная ошибка; details содержит отчёт"
// @Router		/segments/:id [DELETE]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	report, err := h.svc.DeleteSegment(c.Request.Context(), id)
	if err != nil {
		if report == nil {
			response.FromError(c, err)
			return
		}
		status, code := response.Classify(err)
		_ = c.Error(err)
		response.ErrorWithDetails(c, status, code, "Segment cleanup incomplete", report)
		return
	}
	response.Success(c, http.StatusOK, report)
}

// Remove удаляет только запись сегмента; файлы в хранилище остаются.
// @Summary		Удалить запись сегмента
// @Tags		Segments
// @Security	BearerAuth
// @Param		id	path	int	true	"ID сегмента"
// @Success		204
// @Router		/segments/:id/record [DELETE]
func (h *Handler) Remove(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.RemoveSegment(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AddAttachment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req CreateAttachmentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	a, err := h.svc.AddAttachment(c.Request.Context(), id, req.FileName, req.FileKey)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, a)
}

func (h *Handler) DeleteAttachment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteAttachment(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(ErrInvalidID)
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID")
		return 0, false
	}
	return id, true
}

func bindAndValidate(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		_ = c.Error(errors.Join(ErrInvalidRequest, err))
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", errs)
		return false
	}
	return true
}
