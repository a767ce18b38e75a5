package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rehaber/rehaber-backend/internal/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger implements GORM's logger.Interface and routes SQL traces through our Logger
type GormLogger struct {
	logger    Logger
	slowQuery time.Duration
	level     gormlogger.LogLevel
}

// NewGormLogger creates a new GORM logger instance
func NewGormLogger(logger Logger, slowQuery time.Duration) gormlogger.Interface {
	return &GormLogger{
		logger:    logger,
		slowQuery: slowQuery,
		level:     gormlogger.Info,
	}
}

// LogMode implements GORM's logger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info implements GORM's logger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level < gormlogger.Info {
		return
	}
	l.logger.LogInfo(fmt.Sprintf(msg, data...), l.fields(ctx))
}

// Warn implements GORM's logger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level < gormlogger.Warn {
		return
	}
	l.logger.LogWarn(fmt.Sprintf(msg, data...), l.fields(ctx))
}

// Error implements GORM's logger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level < gormlogger.Error {
		return
	}
	l.logger.WithFields(l.fields(ctx)).LogError(fmt.Errorf(msg, data...), "GORM error")
}

// Trace implements GORM's logger.Interface
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	fields := l.fields(ctx)
	fields["duration"] = elapsed.String()
	fields["rows_affected"] = rows
	fields["sql"] = sql

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		fields["error"] = err.Error()
		l.logger.WithFields(fields).LogError(err, "SQL error")
	case l.slowQuery > 0 && elapsed > l.slowQuery:
		l.logger.LogWarn("SLOW SQL >= "+l.slowQuery.String(), fields)
	case l.level >= gormlogger.Info:
		l.logger.LogDebug("SQL query", fields)
	}
}

func (l *GormLogger) fields(ctx context.Context) map[string]interface{} {
	fields := map[string]interface{}{"source": "gorm"}
	if requestID, ok := logger.RequestIDFromContext(ctx); ok {
		fields["request_id"] = requestID
	}
	return fields
}
