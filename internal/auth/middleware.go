package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const userIDKey = "userID"

// RequireUser rejects requests without a valid bearer token
func RequireUser(tokens TokenService, responseHandler ResponseHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			responseHandler.UnauthorizedResponse(c, "Authorization header is required")
			c.Abort()
			return
		}

		userID, err := tokens.ResolveUser(token)
		if err != nil {
			responseHandler.UnauthorizedResponse(c, "Invalid token")
			c.Abort()
			return
		}

		SetUserID(c, userID)
		c.Next()
	}
}

// OptionalUser resolves the user when a valid token is present and continues anonymously otherwise
func OptionalUser(tokens TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if userID, err := tokens.ResolveUser(token); err == nil {
				SetUserID(c, userID)
			}
		}
		c.Next()
	}
}

// RequireServiceToken admits callers presenting the shared bearer token. An empty
// token admits nobody.
func RequireServiceToken(token string, responseHandler ResponseHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented, ok := bearerToken(c)
		if !ok || token == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			responseHandler.UnauthorizedResponse(c, "Invalid service token")
			c.Abort()
			return
		}
		c.Next()
	}
}

// SetUserID records the acting user on the request context
func SetUserID(c *gin.Context, userID uuid.UUID) {
	c.Set(userIDKey, userID)
}

// UserID returns the acting user, or uuid.Nil for anonymous requests
func UserID(c *gin.Context) uuid.UUID {
	if value, exists := c.Get(userIDKey); exists {
		if userID, ok := value.(uuid.UUID); ok {
			return userID
		}
	}
	return uuid.Nil
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
