package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TokenService resolves bearer tokens to the acting user
type TokenService interface {
	GenerateAccessToken(userID uuid.UUID) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	// ResolveUser returns the user id carried by a valid token
	ResolveUser(token string) (uuid.UUID, error)
}

// ResponseHandler handles HTTP responses
type ResponseHandler interface {
	UnauthorizedResponse(c *gin.Context, message string)
}
