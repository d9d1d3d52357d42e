package progress

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"courseplatform/internal/middleware"
	"courseplatform/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/progress", h.List)
	protected.POST("/segments/:id/complete", h.MarkComplete)
}

// List возвращает сегменты с отметкой о прохождении текущим пользователем.
// @Summary		Прогресс пользователя
// @Tags		Progress
// @Security	BearerAuth
// @Success		200	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}
// @Router		/progress [GET]
func (h *Handler) List(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserID)
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	items, err := h.svc.ListWithProgress(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// MarkComplete отмечает сегмент пройденным.
// @Summary		Отметить сегмент пройденным
// @Tags		Progress
// @Security	BearerAuth
// @Param		id	path	int	true	"ID сегмента"
// @Success		204
// @Failure		404	{object}	map[string]interface{}
// @Router		/segments/:id/complete [POST]
func (h *Handler) MarkComplete(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserID)
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	segmentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || segmentID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid segment ID")
		return
	}

	if err := h.svc.MarkComplete(c.Request.Context(), userID, segmentID); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
