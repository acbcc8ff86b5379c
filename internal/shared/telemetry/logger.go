package telemetry

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var std = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "ts",
		},
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Logger returns the process logger.
func Logger() *logrus.Logger {
	return std
}

// SetLevel parses a level name such as "debug" or "warn"; unknown names keep the current level.
func SetLevel(level string) {
	level = strings.TrimSpace(level)
	if level == "" {
		return
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		std.WithField("level_name", level).Warn("unknown log level")
		return
	}
	std.SetLevel(lvl)
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	std.WithFields(logrus.Fields(fields)).Info(msg)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	std.WithFields(logrus.Fields(fields)).Warn(msg)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	std.WithFields(logrus.Fields(fields)).Error(msg)
}
