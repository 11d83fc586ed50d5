// Package logging configures the structured logger shared by services.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/louisbranch/taskboard/internal/platform/requestctx"
)

var current atomic.Pointer[logrus.Entry]

func init() {
	current.Store(logrus.NewEntry(logrus.StandardLogger()))
}

// Config controls logger output.
type Config struct {
	Level  string `env:"TODO_LOG_LEVEL" envDefault:"info"`
	Format string `env:"TODO_LOG_FORMAT" envDefault:"json"`
}

// New builds a logger that tags every entry with the service name.
func New(service string, cfg Config, out io.Writer) *logrus.Entry {
	if out == nil {
		out = os.Stdout
	}
	logger := logrus.New()
	logger.SetOutput(out)
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "text") {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "ts",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}
	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger.WithField("service", service)
}

// Init builds a logger and installs it as the process default.
func Init(service string, cfg Config) *logrus.Entry {
	entry := New(service, cfg, os.Stdout)
	SetLogger(entry)
	return entry
}

// SetLogger replaces the process default logger. Nil is ignored.
func SetLogger(entry *logrus.Entry) {
	if entry == nil {
		return
	}
	current.Store(entry)
}

// Logger returns the process default logger.
func Logger() *logrus.Entry {
	return current.Load()
}

// FromContext returns the default logger annotated with request metadata.
func FromContext(ctx context.Context) *logrus.Entry {
	entry := Logger()
	if requestID := requestctx.RequestIDFromContext(ctx); requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}
	if userID := requestctx.UserIDFromContext(ctx); userID != "" {
		entry = entry.WithField("user_id", userID)
	}
	return entry
}
