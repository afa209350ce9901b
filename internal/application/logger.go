package application

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// StructuredLogger provides structured logging with context.
// Entries are JSON objects carrying timestamp, level and message plus the
// context fields. Output goes to stderr so stdout stays free for the stdio transport.
type StructuredLogger struct {
	logger *logrus.Logger
}

// NewStructuredLogger creates a logger writing to stderr at the given level.
// Unknown levels fall back to info.
func NewStructuredLogger(level string) *StructuredLogger {
	return NewStructuredLoggerWithWriter(os.Stderr, level)
}

// NewStructuredLoggerWithWriter creates a logger writing to w.
func NewStructuredLoggerWithWriter(w io.Writer, level string) *StructuredLogger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	return &StructuredLogger{logger: logger}
}

// LogDebug logs a debug message with context.
func (l *StructuredLogger) LogDebug(message string, context map[string]interface{}) {
	l.logger.WithFields(context).Debug(message)
}

// LogInfo logs an informational message with context.
func (l *StructuredLogger) LogInfo(message string, context map[string]interface{}) {
	l.logger.WithFields(context).Info(message)
}

// LogWarn logs a warning with context.
func (l *StructuredLogger) LogWarn(message string, context map[string]interface{}) {
	l.logger.WithFields(context).Warn(message)
}

// LogError logs an error message with context.
func (l *StructuredLogger) LogError(message string, err error, context map[string]interface{}) {
	entry := l.logger.WithFields(context)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(message)
}
