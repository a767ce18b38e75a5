package registration

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rehaber/rehaber-backend/internal/auth"
	httpHandler "github.com/rehaber/rehaber-backend/internal/http"
)

// Handler defines the HTTP handler for event registrations
type Handler struct {
	service  Service
	response httpHandler.ResponseHandler
}

// NewHandler creates a new registration handler
func NewHandler(service Service, response httpHandler.ResponseHandler) *Handler {
	return &Handler{
		service:  service,
		response: response,
	}
}

// RegisterRoutes registers the registration API routes
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, requireUser, optionalUser gin.HandlerFunc) {
	api.GET("/events/:id/registration", optionalUser, h.GetStatus)

	protected := api.Group("")
	protected.Use(requireUser)
	{
		protected.POST("/events/:id/registration", h.Toggle)
		protected.GET("/me/registrations", h.ListMine)
	}
}

// RegisterSchedulerRoutes registers the routes called by the event scheduler. The
// group is expected to authenticate the scheduler.
func (h *Handler) RegisterSchedulerRoutes(internal *gin.RouterGroup) {
	internal.POST("/events/:id/reminders/:window", h.RemindEvent)
}

// @Summary Send the 24h or 1h reminder to every registrant of an event
// @Router /internal/events/{id}/reminders/{window} [post]
func (h *Handler) RemindEvent(c *gin.Context) {
	eventID, ok := h.eventID(c)
	if !ok {
		return
	}
	flag, err := ParseReminder(c.Param("window"))
	if err != nil {
		h.response.ServiceErrorResponse(c, err)
		return
	}

	sent, err := h.service.RemindEvent(c.Request.Context(), eventID, flag)
	if err != nil {
		h.response.ServiceErrorResponse(c, err)
		return
	}
	h.response.SuccessResponse(c, gin.H{"eventId": eventID, "reminder": flag.String(), "sent": sent}, "")
}

// @Summary Register for or cancel an event
// @Router /api/v1/events/{id}/registration [post]
func (h *Handler) Toggle(c *gin.Context) {
	eventID, ok := h.eventID(c)
	if !ok {
		return
	}

	registered, err := h.service.Toggle(c.Request.Context(), auth.UserID(c), eventID)
	if err != nil {
		h.response.ServiceErrorResponse(c, err)
		return
	}
	h.response.SuccessResponse(c, gin.H{"eventId": eventID, "registered": registered}, "")
}

// @Summary Get the caller's registration state and the attendee count
// @Router /api/v1/events/{id}/registration [get]
func (h *Handler) GetStatus(c *gin.Context) {
	eventID, ok := h.eventID(c)
	if !ok {
		return
	}

	status, err := h.service.Status(c.Request.Context(), auth.UserID(c), eventID)
	if err != nil {
		h.response.ServiceErrorResponse(c, err)
		return
	}
	h.response.SuccessResponse(c, status, "")
}

// @Summary List the caller's registrations, newest first
// @Router /api/v1/me/registrations [get]
func (h *Handler) ListMine(c *gin.Context) {
	registrations, err := h.service.ListMine(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.response.ServiceErrorResponse(c, err)
		return
	}
	h.response.SuccessResponse(c, registrations, "")
}

func (h *Handler) eventID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.response.ValidationErrorResponse(c, "id", "Invalid event ID format")
		return uuid.Nil, false
	}
	return id, true
}
