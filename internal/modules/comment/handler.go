package comment

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"courseplatform/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(public *gin.RouterGroup) {
	public.GET("/segments/:id/comments", h.List)
}

// List возвращает комментарии сегмента, новые первыми.
// @Summary		Комментарии сегмента
// @Tags		Comments
// @Param		id	path	int	true	"ID сегмента"
// @Success		200	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{} "Неверный ID"
// @Router		/segments/:id/comments [GET]
func (h *Handler) List(c *gin.Context) {
	segmentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || segmentID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid segment ID")
		return
	}

	items, err := h.svc.GetComments(c.Request.Context(), segmentID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}
