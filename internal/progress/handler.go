package progress

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rehaber/rehaber-backend/internal/auth"
	httpHandler "github.com/rehaber/rehaber-backend/internal/http"
)

// Handler defines the HTTP handler for watch progress
type Handler struct {
	tracker  Tracker
	response httpHandler.ResponseHandler
}

// NewHandler creates a new progress handler
func NewHandler(tracker Tracker, response httpHandler.ResponseHandler) *Handler {
	return &Handler{
		tracker:  tracker,
		response: response,
	}
}

// RegisterRoutes registers the progress API routes. Every route requires a user.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, requireUser gin.HandlerFunc) {
	protected := api.Group("")
	protected.Use(requireUser)
	{
		protected.PUT("/videos/:id/progress", h.Checkpoint)
		protected.GET("/videos/:id/progress", h.Resume)
		protected.GET("/me/continue-watching", h.ContinueWatching)
	}
}

// @Summary Record a playback checkpoint
// @Param checkpoint body CheckpointRequest true "Current position and duration in seconds"
// @Router /api/v1/videos/{id}/progress [put]
func (h *Handler) Checkpoint(c *gin.Context) {
	videoID, ok := h.videoID(c)
	if !ok {
		return
	}

	var req CheckpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.response.ValidationErrorResponse(c, "body", "Invalid request body")
		return
	}

	if err := h.tracker.Checkpoint(c.Request.Context(), auth.UserID(c), videoID, req.PositionSeconds, req.DurationSeconds); err != nil {
		h.response.ServiceErrorResponse(c, err)
		return
	}
	h.response.SuccessResponse(c, nil, "")
}

// @Summary Get the position to resume a video from
// @Router /api/v1/videos/{id}/progress [get]
func (h *Handler) Resume(c *gin.Context) {
	videoID, ok := h.videoID(c)
	if !ok {
		return
	}

	position, resume, err := h.tracker.Resume(c.Request.Context(), auth.UserID(c), videoID)
	if err != nil {
		h.response.ServiceErrorResponse(c, err)
		return
	}
	h.response.SuccessResponse(c, ResumePoint{
		VideoID:                   videoID,
		PositionSeconds:           position,
		Resume:                    resume,
		CheckpointIntervalSeconds: h.tracker.CheckpointInterval().Seconds(),
	}, "")
}

// @Summary List unfinished videos, most recently watched first
// @Param limit query int false "Maximum number of videos (default: 10, max: 50)"
// @Router /api/v1/me/continue-watching [get]
func (h *Handler) ContinueWatching(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			h.response.ValidationErrorResponse(c, "limit", "limit must be a positive integer")
			return
		}
		limit = v
	}

	videos, err := h.tracker.ContinueWatching(c.Request.Context(), auth.UserID(c), limit)
	if err != nil {
		h.response.ServiceErrorResponse(c, err)
		return
	}
	h.response.SuccessResponse(c, videos, "")
}

func (h *Handler) videoID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.response.ValidationErrorResponse(c, "id", "Invalid video ID format")
		return uuid.Nil, false
	}
	return id, true
}
