package scylladb

import (
	"fmt"

	"github.com/gocql/gocql"
	"github.com/rehaber/rehaber-backend/internal/logger"
)

// SchemaManager handles ScyllaDB schema creation
type SchemaManager struct {
	session *gocql.Session
	config  Config
	logger  logger.Logger
}

// NewSchemaManager creates a new schema manager
func NewSchemaManager(session *gocql.Session, config Config, log logger.Logger) *SchemaManager {
	return &SchemaManager{
		session: session,
		config:  config,
		logger:  log,
	}
}

// CreateKeyspaceIfNotExists creates the keyspace if it doesn't exist
func (m *SchemaManager) CreateKeyspaceIfNotExists() error {
	query := fmt.Sprintf(`
		CREATE KEYSPACE IF NOT EXISTS %s
		WITH REPLICATION = {
			'class': '%s',
			'replication_factor': %d
		}`, m.config.Keyspace, m.config.Replication.Class, m.config.Replication.ReplicationFactor)

	return m.session.Query(query).Exec()
}

// notifications is looked up by id; notifications_by_user serves the newest-first inbox
var notificationTables = []struct {
	name string
	cql  string
}{
	{"notifications", `
		CREATE TABLE IF NOT EXISTS notifications (
			id uuid PRIMARY KEY,
			user_id uuid,
			title text,
			message text,
			type text,
			related_id uuid,
			read boolean,
			created_at timestamp
		)`},
	{"notifications_by_user", `
		CREATE TABLE IF NOT EXISTS notifications_by_user (
			user_id uuid,
			created_at timestamp,
			id uuid,
			title text,
			message text,
			type text,
			related_id uuid,
			read boolean,
			PRIMARY KEY ((user_id), created_at, id)
		) WITH CLUSTERING ORDER BY (created_at DESC, id ASC)`},
}

// InitializeSchema creates the notification tables
func (m *SchemaManager) InitializeSchema() error {
	for _, table := range notificationTables {
		if err := m.session.Query(table.cql).Exec(); err != nil {
			return m.logger.LogErrorf(err, "Failed to create %s table", table.name)
		}
		m.logger.LogInfo("ScyllaDB table ready", map[string]interface{}{"table": table.name})
	}
	return nil
}

// DropSchema drops the notification tables
func (m *SchemaManager) DropSchema() error {
	for i := len(notificationTables) - 1; i >= 0; i-- {
		name := notificationTables[i].name
		if err := m.session.Query("DROP TABLE IF EXISTS " + name).Exec(); err != nil {
			return m.logger.LogErrorf(err, "Failed to drop %s table", name)
		}
	}
	return nil
}
