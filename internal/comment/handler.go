package comment

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rehaber/rehaber-backend/internal/auth"
	"github.com/rehaber/rehaber-backend/internal/content"
	httpHandler "github.com/rehaber/rehaber-backend/internal/http"
)

// Handler defines the HTTP handler for comment operations
type Handler struct {
	service  Service
	response httpHandler.ResponseHandler
}

// NewHandler creates a new comment handler
func NewHandler(service Service, response httpHandler.ResponseHandler) *Handler {
	return &Handler{
		service:  service,
		response: response,
	}
}

// RegisterRoutes registers the comment API routes
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, requireUser, optionalUser gin.HandlerFunc) {
	// Unprotected routes
	api.GET("/content/:type/:id/comments", optionalUser, h.ListComments)

	// Protected routes
	protected := api.Group("")
	protected.Use(requireUser)
	{
		protected.POST("/content/:type/:id/comments", h.CreateComment)
		protected.DELETE("/comments/:id", h.DeleteComment)
		protected.POST("/comments/:id/like", h.ToggleLike)
	}
}

// @Summary Get the comment threads of a content item
// @Tags comment
// @Param type path string true "video, news or event"
// @Param id path string true "Content ID (UUID)"
// @Router /api/v1/content/{type}/{id}/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	ref, err := content.ParseRef(c.Param("type"), c.Param("id"))
	if err != nil {
		h.response.ServiceErrorResponse(c, err)
		return
	}

	comments, err := h.service.List(c.Request.Context(), ref, auth.UserID(c))
	if err != nil {
		h.response.ServiceErrorResponse(c, err)
		return
	}
	h.response.SuccessResponse(c, comments, "")
}

// @Summary Create a comment or reply
// @Tags comment
// @Param comment body CreateRequest true "Comment data"
// @Router /api/v1/content/{type}/{id}/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	ref, err := content.ParseRef(c.Param("type"), c.Param("id"))
	if err != nil {
		h.response.ServiceErrorResponse(c, err)
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.response.ValidationErrorResponse(c, "body", "Invalid request body")
		return
	}

	comment, err := h.service.Add(c.Request.Context(), auth.UserID(c), ref, req.Body, req.ParentID)
	if err != nil {
		h.response.ServiceErrorResponse(c, err)
		return
	}
	h.response.CreatedResponse(c, comment, "Comment created successfully")
}

// @Summary Delete a comment
// @Description Only the author may delete. Replies survive unless cascade deletion is configured.
// @Tags comment
// @Router /api/v1/comments/{id} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	commentID, ok := h.commentID(c)
	if !ok {
		return
	}

	deleted, err := h.service.Delete(c.Request.Context(), auth.UserID(c), commentID)
	if err != nil {
		h.response.ServiceErrorResponse(c, err)
		return
	}
	h.response.SuccessResponse(c, gin.H{"deleted": deleted}, "Comment deleted successfully")
}

// @Summary Like or unlike a comment
// @Tags comment
// @Router /api/v1/comments/{id}/like [post]
func (h *Handler) ToggleLike(c *gin.Context) {
	commentID, ok := h.commentID(c)
	if !ok {
		return
	}

	liked, err := h.service.ToggleLike(c.Request.Context(), auth.UserID(c), commentID)
	if err != nil {
		h.response.ServiceErrorResponse(c, err)
		return
	}
	h.response.SuccessResponse(c, gin.H{"commentId": commentID, "liked": liked}, "")
}

func (h *Handler) commentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.response.ValidationErrorResponse(c, "id", "Invalid comment ID format")
		return uuid.Nil, false
	}
	return id, true
}
