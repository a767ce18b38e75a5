package cache

import "github.com/rehaber/rehaber-backend/internal/config"

// Config represents Redis configuration settings
type Config struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// NewConfigFromRedisConfig converts the application config section
func NewConfigFromRedisConfig(cfg *config.RedisConfig) *Config {
	return &Config{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}
