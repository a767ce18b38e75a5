package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/rehaber/rehaber-backend/internal/errors"
)

// retryAfterSeconds is the Retry-After hint sent with retryable errors
const retryAfterSeconds = "2"

// responseHandler implements the ResponseHandler interface
type responseHandler struct {
	logger Logger
}

// NewResponseHandler creates a new instance of ResponseHandler
func NewResponseHandler(logger Logger) ResponseHandler {
	return &responseHandler{
		logger: logger,
	}
}

// SuccessResponse sends a success response with optional data and message
func (h *responseHandler) SuccessResponse(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreatedResponse sends a 201 response for newly created resources
func (h *responseHandler) CreatedResponse(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse sends an error response with status code, error code, and message
func (h *responseHandler) ErrorResponse(c *gin.Context, status int, code, message string, err error) {
	if err != nil {
		h.logger.LogError(err, message)
	}

	c.JSON(status, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	})
}

// ValidationErrorResponse sends a validation error response
func (h *responseHandler) ValidationErrorResponse(c *gin.Context, field, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error: &Error{
			Code:    "VALIDATION_ERROR",
			Message: message,
			Field:   field,
		},
	})
}

// NotFoundResponse sends a not found error response
func (h *responseHandler) NotFoundResponse(c *gin.Context, message string) {
	h.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", message, nil)
}

// UnauthorizedResponse sends an unauthorized error response
func (h *responseHandler) UnauthorizedResponse(c *gin.Context, message string) {
	h.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

// ForbiddenResponse sends a forbidden error response
func (h *responseHandler) ForbiddenResponse(c *gin.Context, message string) {
	h.ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", message, nil)
}

// InternalErrorResponse sends an internal server error response
func (h *responseHandler) InternalErrorResponse(c *gin.Context, message string, err error) {
	h.ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", message, err)
}

// ServiceErrorResponse maps a domain error to its HTTP status and envelope
func (h *responseHandler) ServiceErrorResponse(c *gin.Context, err error) {
	var validationErr *apperrors.ValidationError

	switch {
	case apperrors.Is(err, apperrors.ErrUnauthenticated):
		h.UnauthorizedResponse(c, "Authentication required")
	case apperrors.Is(err, apperrors.ErrForbidden):
		h.ForbiddenResponse(c, err.Error())
	case apperrors.Is(err, apperrors.ErrNotFound):
		h.NotFoundResponse(c, err.Error())
	case apperrors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error: &Error{
				Code:    validationCode(validationErr),
				Message: validationErr.Message,
				Field:   validationErr.Field,
			},
		})
	case apperrors.Is(err, apperrors.ErrEmptyBody):
		h.ErrorResponse(c, http.StatusBadRequest, "EMPTY_BODY", err.Error(), nil)
	case apperrors.Is(err, apperrors.ErrInvalidParent):
		h.ErrorResponse(c, http.StatusBadRequest, "INVALID_PARENT", err.Error(), nil)
	case apperrors.IsRetryable(err):
		c.Header("Retry-After", retryAfterSeconds)
		h.ErrorResponse(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Storage is temporarily unavailable", err)
	default:
		h.InternalErrorResponse(c, "An unexpected error occurred", err)
	}
}

func validationCode(err *apperrors.ValidationError) string {
	switch err.Kind {
	case apperrors.ErrEmptyBody:
		return "EMPTY_BODY"
	case apperrors.ErrInvalidParent:
		return "INVALID_PARENT"
	default:
		return "VALIDATION_ERROR"
	}
}
