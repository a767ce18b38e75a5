package notification

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rehaber/rehaber-backend/internal/auth"
	httpHandler "github.com/rehaber/rehaber-backend/internal/http"
)

// Handler handles HTTP requests for notification endpoints
type Handler struct {
	service  Service
	response httpHandler.ResponseHandler
}

// NewHandler creates a new notification handler instance
func NewHandler(service Service, response httpHandler.ResponseHandler) *Handler {
	return &Handler{
		service:  service,
		response: response,
	}
}

// RegisterRoutes registers all notification routes. Every route requires a user.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, requireUser gin.HandlerFunc) {
	notifications := api.Group("/notifications")
	notifications.Use(requireUser)
	{
		notifications.GET("", h.handleGetNotifications)
		notifications.GET("/unread-count", h.handleGetUnreadCount)
		notifications.POST("/read-all", h.handleMarkAllAsRead)
		notifications.POST("/:id/read", h.handleMarkAsRead)
	}
}

// @Summary Get user notifications
// @Description Newest first. Paginated with limit (default 20, max 100) and offset.
// @Router /api/v1/notifications [get]
func (h *Handler) handleGetNotifications(c *gin.Context) {
	limit, err := queryInt(c, "limit", DefaultPageSize)
	if err != nil {
		h.response.ValidationErrorResponse(c, "limit", "limit must be a positive integer")
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		h.response.ValidationErrorResponse(c, "offset", "offset must be a non-negative integer")
		return
	}

	notifications, err := h.service.List(c.Request.Context(), auth.UserID(c), limit, offset)
	if err != nil {
		h.response.ServiceErrorResponse(c, err)
		return
	}
	h.response.SuccessResponse(c, gin.H{
		"notifications": notifications,
		"page":          httpHandler.Page{Limit: limit, Offset: offset, Count: len(notifications)},
	}, "")
}

// @Summary Get unread notification count
// @Router /api/v1/notifications/unread-count [get]
func (h *Handler) handleGetUnreadCount(c *gin.Context) {
	count, err := h.service.UnreadCount(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.response.ServiceErrorResponse(c, err)
		return
	}
	h.response.SuccessResponse(c, UnreadCount{Count: count}, "")
}

// @Summary Mark a notification as read
// @Router /api/v1/notifications/{id}/read [post]
func (h *Handler) handleMarkAsRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.response.ValidationErrorResponse(c, "id", "Invalid notification ID format")
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), auth.UserID(c), id); err != nil {
		h.response.ServiceErrorResponse(c, err)
		return
	}
	h.response.SuccessResponse(c, nil, "Notification marked as read")
}

// @Summary Mark all notifications as read
// @Router /api/v1/notifications/read-all [post]
func (h *Handler) handleMarkAllAsRead(c *gin.Context) {
	updated, err := h.service.MarkAllRead(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.response.ServiceErrorResponse(c, err)
		return
	}
	h.response.SuccessResponse(c, gin.H{"updated": updated}, "All notifications marked as read")
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, strconv.ErrRange
	}
	return v, nil
}
