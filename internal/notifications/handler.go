package notifications

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/carmarket/pkg/common"
	"github.com/richxcame/carmarket/pkg/middleware"
	"github.com/richxcame/carmarket/pkg/pagination"
)

// Handler handles notification HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates a new notification handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List returns the caller's notifications
// GET /api/v1/notifications?unread=true
func (h *Handler) List(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	params := pagination.ParseParams(c)
	unreadOnly := c.Query("unread") == "true"

	items, total, unread, err := h.service.List(c.Request.Context(), userID, unreadOnly, params.Limit, params.Offset)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to get notifications")
		return
	}

	meta := pagination.BuildMeta(params.Limit, params.Offset, total)
	common.SuccessResponseWithMeta(c, gin.H{
		"notifications": items,
		"unread_count":  unread,
	}, meta)
}

// MarkRead marks a notification as read
// POST /api/v1/notifications/:id/read
func (h *Handler) MarkRead(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), userID, id); err != nil {
		common.HandleServiceError(c, err, "failed to mark notification as read")
		return
	}

	common.SuccessResponse(c, gin.H{"message": "Notification marked as read"})
}

// MarkAllRead marks all notifications as read
// POST /api/v1/notifications/read-all
func (h *Handler) MarkAllRead(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	updated, err := h.service.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to mark notifications as read")
		return
	}

	common.SuccessResponse(c, gin.H{"updated": updated})
}
