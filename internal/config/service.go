package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ConfigService implements the Service interface
type ConfigService struct {
	logger Logger
}

// NewConfigService creates a new configuration service
func NewConfigService(logger Logger) *ConfigService {
	return &ConfigService{
		logger: logger,
	}
}

// Load loads the configuration from the specified path
func (s *ConfigService) Load(path string) (*Config, error) {
	// A missing .env is fine; real environments export variables directly
	if err := godotenv.Load(filepath.Join(path, ".env")); err == nil {
		s.logger.LogInfo("Loaded environment file", map[string]interface{}{"path": path})
	}

	v := viper.New()
	v.AddConfigPath(path)
	// Use test configuration file if ENV is set to test
	if os.Getenv("ENV") == "test" {
		v.SetConfigName("config_test")
	} else {
		v.SetConfigName("config")
	}
	v.SetConfigType("yaml")

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	s.setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}

	if err := s.validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v", err)
	}

	if err := s.resolvePaths(&config, path); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %v", err)
	}

	s.logger.LogInfo("Configuration loaded successfully", map[string]interface{}{
		"environment": config.Environment,
		"driver":      config.Database.Driver,
	})
	return &config, nil
}

// setDefaults sets default values for configuration
func (s *ConfigService) setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdownTimeout", "10s")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.pool.maxOpen", 100)
	v.SetDefault("database.pool.maxIdle", 10)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("logging.backend", "zap")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("auth.jwt.issuer", "rehaber")
	v.SetDefault("auth.jwt.accessTokenTTL", "24h")
	v.SetDefault("auth.schedulerToken", "")
	v.SetDefault("scylladb.port", 9042)
	v.SetDefault("scylladb.keyspace", "rehaber")
	v.SetDefault("scylladb.consistency", "quorum")
	v.SetDefault("scylladb.replication.class", "SimpleStrategy")
	v.SetDefault("scylladb.replication.replicationFactor", 1)
	v.SetDefault("scylladb.timeout", "5s")
	v.SetDefault("scylladb.connectTimeout", "10s")
	v.SetDefault("pulsar.operation_timeout", "30s")
	v.SetDefault("pulsar.connection_timeout", "30s")
	v.SetDefault("notification.backend", "sql")
	v.SetDefault("notification.unreadCacheTTL", "5m")
	v.SetDefault("notification.publish.topic", "persistent://public/default/notifications")
	v.SetDefault("comments.cascadeDelete", false)
	v.SetDefault("comments.hideOrphans", false)
	v.SetDefault("comments.maxBodyLength", 2000)
	v.SetDefault("comments.notifyOnReply", true)
	v.SetDefault("comments.notifyOnLike", true)
	v.SetDefault("progress.completionRatio", 0.9)
	v.SetDefault("progress.checkpointInterval", "5s")
}

// validate performs validation on the configuration
func (s *ConfigService) validate(config *Config) error {
	if config.Server.Port <= 0 {
		return fmt.Errorf("invalid server port")
	}

	switch config.Database.Driver {
	case "postgres":
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if config.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if config.Database.Dbname == "" {
			return fmt.Errorf("database name is required")
		}
		if config.Database.Port <= 0 {
			return fmt.Errorf("invalid database port")
		}
	case "sqlite":
		if config.Database.Path == "" {
			return fmt.Errorf("database path is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", config.Database.Driver)
	}

	if config.Auth.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}

	switch config.Notification.Backend {
	case "sql":
	case "scylladb":
		if len(config.ScyllaDB.Hosts) == 0 {
			return fmt.Errorf("scylladb hosts are required for the scylladb notification backend")
		}
	default:
		return fmt.Errorf("unsupported notification backend: %s", config.Notification.Backend)
	}

	if config.Notification.Publish.Enabled && config.Pulsar.URL == "" {
		return fmt.Errorf("pulsar url is required when notification publishing is enabled")
	}

	if config.Progress.CompletionRatio <= 0 || config.Progress.CompletionRatio > 1 {
		return fmt.Errorf("progress completion ratio must be in (0,1]")
	}

	if config.Comments.MaxBodyLength <= 0 {
		return fmt.Errorf("comments max body length must be positive")
	}

	return nil
}

// resolvePaths converts a relative sqlite path to an absolute one
func (s *ConfigService) resolvePaths(config *Config, basePath string) error {
	dbPath := config.Database.Path
	if config.Database.Driver != "sqlite" || dbPath == "" || dbPath == ":memory:" ||
		strings.HasPrefix(dbPath, "file:") || filepath.IsAbs(dbPath) {
		return nil
	}

	absPath, err := filepath.Abs(filepath.Join(basePath, dbPath))
	if err != nil {
		return fmt.Errorf("failed to resolve database path: %v", err)
	}
	config.Database.Path = absPath
	return nil
}
