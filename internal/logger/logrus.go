package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// logrusLogger wraps logrus.Logger behind the Logger interface
type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger creates a logrus-backed Logger
func NewLogrusLogger(config *Config) (Logger, error) {
	base := logrus.New()

	if config.Format == "json" {
		base.SetFormatter(&logrus.JSONFormatter{})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	level := config.Level
	if level == "" {
		level = InfoLevel
	}
	parsed, err := logrus.ParseLevel(string(level))
	if err != nil {
		return nil, err
	}
	base.SetLevel(parsed)

	if config.File.Enabled {
		f, err := os.OpenFile(config.File.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		base.SetOutput(f)
	}

	return &logrusLogger{entry: logrus.NewEntry(base)}, nil
}

// LogError logs an error with context and returns it so callers can propagate it
func (l *logrusLogger) LogError(err error, context string) error {
	if err != nil {
		l.entry.WithError(err).Error(context)
	}
	return err
}

// LogErrorf logs a formatted error message and returns the error
func (l *logrusLogger) LogErrorf(err error, format string, args ...interface{}) error {
	if err != nil {
		l.entry.WithError(err).Errorf(format, args...)
	}
	return err
}

// LogFatal logs a fatal error and exits the application
func (l *logrusLogger) LogFatal(err error, context string) {
	l.entry.WithError(err).Fatal(context)
}

// LogInfo logs an informational message with optional fields
func (l *logrusLogger) LogInfo(message string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Info(message)
}

// LogDebug logs a debug message with optional fields
func (l *logrusLogger) LogDebug(message string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Debug(message)
}

// LogWarn logs a warning message with optional fields
func (l *logrusLogger) LogWarn(message string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Warn(message)
}

func (l *logrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &logrusLogger{entry: l.entry.WithFields(fields)}
}
