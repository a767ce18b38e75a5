package engagement

import (
	"github.com/gin-gonic/gin"
	"github.com/rehaber/rehaber-backend/internal/auth"
	"github.com/rehaber/rehaber-backend/internal/content"
	apperrors "github.com/rehaber/rehaber-backend/internal/errors"
	httpHandler "github.com/rehaber/rehaber-backend/internal/http"
)

// Handler defines the HTTP handler for likes and favorites
type Handler struct {
	service  Service
	toggler  *OptimisticToggler
	response httpHandler.ResponseHandler
}

// NewHandler creates a new engagement handler
func NewHandler(service Service, toggler *OptimisticToggler, response httpHandler.ResponseHandler) *Handler {
	return &Handler{
		service:  service,
		toggler:  toggler,
		response: response,
	}
}

// RegisterRoutes registers the engagement API routes
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, requireUser, optionalUser gin.HandlerFunc) {
	api.GET("/content/:type/:id/engagement", optionalUser, h.GetSummary)

	protected := api.Group("")
	protected.Use(requireUser)
	{
		protected.POST("/content/:type/:id/like", h.toggle(KindLike))
		protected.POST("/content/:type/:id/favorite", h.toggle(KindFavorite))
		protected.GET("/me/favorites", h.ListFavorites)
	}
}

// ToggleResponse is returned by the like and favorite endpoints
type ToggleResponse struct {
	content.Ref
	Kind    Kind `json:"kind"`
	Engaged bool `json:"engaged"`
	// Pending is set when another toggle on the same key is still in flight
	Pending bool `json:"pending"`
}

func (h *Handler) toggle(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref, err := content.ParseRef(c.Param("type"), c.Param("id"))
		if err != nil {
			h.response.ServiceErrorResponse(c, err)
			return
		}
		if !ref.Type.Capabilities().Direct {
			h.response.ServiceErrorResponse(c, apperrors.NewValidationError("contentType",
				"comment likes go through /comments/{id}/like"))
			return
		}

		state, err := h.toggler.Toggle(c.Request.Context(), auth.UserID(c), ref, kind)
		if err != nil {
			h.response.ServiceErrorResponse(c, err)
			return
		}

		h.response.SuccessResponse(c, ToggleResponse{Ref: ref, Kind: kind, Engaged: state.Confirmed, Pending: state.Pending}, "")
	}
}

// GetSummary returns counts and the viewer's own like and favorite state
func (h *Handler) GetSummary(c *gin.Context) {
	ref, err := content.ParseRef(c.Param("type"), c.Param("id"))
	if err != nil {
		h.response.ServiceErrorResponse(c, err)
		return
	}

	summary, err := h.toggler.Summary(c.Request.Context(), auth.UserID(c), ref)
	if err != nil {
		h.response.ServiceErrorResponse(c, err)
		return
	}
	h.response.SuccessResponse(c, summary, "")
}

// ListFavorites returns the caller's favorites, optionally filtered by ?type=
func (h *Handler) ListFavorites(c *gin.Context) {
	var filter content.Type
	if raw := c.Query("type"); raw != "" {
		t, err := content.ParseType(raw)
		if err != nil {
			h.response.ServiceErrorResponse(c, err)
			return
		}
		filter = t
	}

	favorites, err := h.service.ListFavorites(c.Request.Context(), auth.UserID(c), filter)
	if err != nil {
		h.response.ServiceErrorResponse(c, err)
		return
	}
	h.response.SuccessResponse(c, favorites, "")
}
