package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rehaber/rehaber-backend/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// DatabaseService implements the Service interface
type DatabaseService struct {
	config *config.DatabaseConfig
	logger Logger
	db     *gorm.DB
}

// NewDatabaseService creates a new database service instance
func NewDatabaseService(config *config.DatabaseConfig, logger Logger) *DatabaseService {
	return &DatabaseService{
		config: config,
		logger: logger,
	}
}

// Connect opens the configured database and applies the pool settings
func (s *DatabaseService) Connect() (*gorm.DB, error) {
	dialector, err := s.dialector()
	if err != nil {
		return nil, err
	}

	gormConfig := &gorm.Config{
		PrepareStmt: s.config.Driver == "postgres",
		Logger:      NewGormLogger(s.logger, slowQueryThreshold).LogMode(gormlogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %v", err)
	}

	if s.config.Driver == "sqlite" {
		// sqlite serializes writers; a single connection avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(s.config.Pool.MaxOpen)
		sqlDB.SetMaxIdleConns(s.config.Pool.MaxIdle)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	s.logger.LogInfo("Connected to database", map[string]interface{}{
		"driver": s.config.Driver,
		"dbname": s.config.Dbname,
	})

	s.db = db
	return db, nil
}

func (s *DatabaseService) dialector() (gorm.Dialector, error) {
	switch s.config.Driver {
	case "", "postgres":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
			s.config.Host,
			s.config.User,
			s.config.Password,
			s.config.Dbname,
			s.config.Port,
			s.config.Sslmode,
			s.config.Timezone,
		)
		s.logger.LogInfo(fmt.Sprintf("Using database connection string (without credentials): host=%s dbname=%s port=%d",
			s.config.Host, s.config.Dbname, s.config.Port), nil)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(s.config.Path), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", s.config.Driver)
	}
}

// Ping checks the connection opened by Connect
func (s *DatabaseService) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database is not connected")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %v", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *DatabaseService) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return fmt.Errorf("failed to get database instance: %v", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %v", err)
		}
	}
	return nil
}
