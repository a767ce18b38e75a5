package scylladb

import (
	"time"

	"github.com/rehaber/rehaber-backend/internal/config"
)

// Config holds the configuration for ScyllaDB
type Config struct {
	Hosts          []string
	Port           int
	Keyspace       string
	Username       string
	Password       string
	Consistency    string
	Replication    Replication
	Timeout        time.Duration
	ConnectTimeout time.Duration
}

// Replication config for ScyllaDB
type Replication struct {
	Class             string
	ReplicationFactor int
}

// NewConfigFromScyllaDBConfig converts the application config section
func NewConfigFromScyllaDBConfig(cfg *config.ScyllaDBConfig) Config {
	return Config{
		Hosts:       cfg.Hosts,
		Port:        cfg.Port,
		Keyspace:    cfg.Keyspace,
		Username:    cfg.Username,
		Password:    cfg.Password,
		Consistency: cfg.Consistency,
		Replication: Replication{
			Class:             cfg.Replication.Class,
			ReplicationFactor: cfg.Replication.ReplicationFactor,
		},
		Timeout:        cfg.Timeout,
		ConnectTimeout: cfg.ConnectTimeout,
	}
}
