package config

import (
	"time"
)

// Config represents the application configuration
type Config struct {
	Environment  string             `mapstructure:"environment" yaml:"environment"`
	Server       ServerConfig       `mapstructure:"server" yaml:"server"`
	Database     DatabaseConfig     `mapstructure:"database" yaml:"database"`
	Redis        RedisConfig        `mapstructure:"redis" yaml:"redis"`
	Logging      LoggingConfig      `mapstructure:"logging" yaml:"logging"`
	Auth         AuthConfig         `mapstructure:"auth" yaml:"auth"`
	ScyllaDB     ScyllaDBConfig     `mapstructure:"scylladb" yaml:"scylladb"`
	Pulsar       PulsarConfig       `mapstructure:"pulsar" yaml:"pulsar"`
	Notification NotificationConfig `mapstructure:"notification" yaml:"notification"`
	Comments     CommentsConfig     `mapstructure:"comments" yaml:"comments"`
	Progress     ProgressConfig     `mapstructure:"progress" yaml:"progress"`
}

// AuthConfig represents authentication configuration settings
type AuthConfig struct {
	JWT struct {
		Secret         string        `mapstructure:"secret"`
		Issuer         string        `mapstructure:"issuer"`
		AccessTokenTTL time.Duration `mapstructure:"accessTokenTTL"`
	} `mapstructure:"jwt"`
	// SchedulerToken authenticates the event scheduler on /internal routes; empty disables them
	SchedulerToken string `mapstructure:"schedulerToken"`
}

// ServerConfig represents server configuration settings
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
	// CORSOrigins lists allowed browser origins; empty allows any origin
	CORSOrigins []string `mapstructure:"corsOrigins"`
}

// DatabaseConfig represents database configuration settings
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Dbname   string `mapstructure:"dbname"`
	Port     int    `mapstructure:"port"`
	Sslmode  string `mapstructure:"sslmode"`
	Timezone string `mapstructure:"timezone"`
	// Path is the sqlite file (or ":memory:") used when Driver is sqlite
	Path string `mapstructure:"path"`
	Pool struct {
		MaxOpen int `mapstructure:"maxOpen"`
		MaxIdle int `mapstructure:"maxIdle"`
	} `mapstructure:"pool"`
}

// RedisConfig represents Redis configuration settings
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Backend     string `mapstructure:"backend" yaml:"backend"`
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	Output      string `mapstructure:"output" yaml:"output"`
	Development bool   `mapstructure:"development" yaml:"development"`

	File struct {
		Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
		Path    string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"file" yaml:"file"`
}

// ScyllaDBConfig represents ScyllaDB configuration settings
type ScyllaDBConfig struct {
	Hosts       []string `mapstructure:"hosts" yaml:"hosts"`
	Port        int      `mapstructure:"port" yaml:"port"`
	Keyspace    string   `mapstructure:"keyspace" yaml:"keyspace"`
	Username    string   `mapstructure:"username" yaml:"username"`
	Password    string   `mapstructure:"password" yaml:"password"`
	Consistency string   `mapstructure:"consistency" yaml:"consistency"`
	Replication struct {
		Class             string `mapstructure:"class" yaml:"class"`
		ReplicationFactor int    `mapstructure:"replicationFactor" yaml:"replicationFactor"`
	} `mapstructure:"replication" yaml:"replication"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	ConnectTimeout time.Duration `mapstructure:"connectTimeout" yaml:"connectTimeout"`
}

// PulsarConfig represents Apache Pulsar configuration settings
type PulsarConfig struct {
	URL               string        `mapstructure:"url" yaml:"url"`
	TLSEnabled        bool          `mapstructure:"tls_enabled" yaml:"tls_enabled"`
	TLSCertPath       string        `mapstructure:"tls_cert_path" yaml:"tls_cert_path"`
	OperationTimeout  time.Duration `mapstructure:"operation_timeout" yaml:"operation_timeout"`
	ConnectionTimeout time.Duration `mapstructure:"connection_timeout" yaml:"connection_timeout"`
	AuthToken         string        `mapstructure:"auth_token" yaml:"auth_token"` // sourced from env var
}

// NotificationConfig represents notification center settings
type NotificationConfig struct {
	// Backend is the notification store: sql or scylladb
	Backend        string        `mapstructure:"backend" yaml:"backend"`
	UnreadCacheTTL time.Duration `mapstructure:"unreadCacheTTL" yaml:"unreadCacheTTL"`
	Publish        struct {
		Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
		Topic   string `mapstructure:"topic" yaml:"topic"`
	} `mapstructure:"publish" yaml:"publish"`
}

// CommentsConfig holds comment thread settings
type CommentsConfig struct {
	CascadeDelete bool `mapstructure:"cascadeDelete" yaml:"cascadeDelete"`
	HideOrphans   bool `mapstructure:"hideOrphans" yaml:"hideOrphans"`
	MaxBodyLength int  `mapstructure:"maxBodyLength" yaml:"maxBodyLength"`
	NotifyOnReply bool `mapstructure:"notifyOnReply" yaml:"notifyOnReply"`
	NotifyOnLike  bool `mapstructure:"notifyOnLike" yaml:"notifyOnLike"`
}

// ProgressConfig holds watch-progress settings
type ProgressConfig struct {
	CompletionRatio    float64       `mapstructure:"completionRatio" yaml:"completionRatio"`
	CheckpointInterval time.Duration `mapstructure:"checkpointInterval" yaml:"checkpointInterval"`
}
