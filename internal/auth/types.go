package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rehaber/rehaber-backend/internal/config"
)

// Config represents authentication configuration
type Config struct {
	JWT struct {
		Secret         string
		Issuer         string
		AccessTokenTTL time.Duration
	}
}

// NewConfigFromAuthConfig creates an auth.Config from config.AuthConfig
func NewConfigFromAuthConfig(cfg *config.AuthConfig) *Config {
	authConfig := &Config{}
	authConfig.JWT.Secret = cfg.JWT.Secret
	authConfig.JWT.Issuer = cfg.JWT.Issuer
	authConfig.JWT.AccessTokenTTL = cfg.JWT.AccessTokenTTL
	return authConfig
}

// TokenClaims represents the JWT claims
type TokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}
