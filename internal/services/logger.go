package services

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger defines common logging interface for all services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// ProductionLogger adapts a *slog.Logger to the Logger interface and tags
// every record with the service name.
type ProductionLogger struct {
	logger *slog.Logger
}

// NewProductionLogger writes to w as JSON when structured is true, text otherwise.
func NewProductionLogger(service string, w io.Writer, level slog.Level, structured bool) *ProductionLogger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if structured {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &ProductionLogger{logger: slog.New(handler).With("service", service)}
}

// Slog exposes the underlying logger, e.g. for slog.SetDefault.
func (p *ProductionLogger) Slog() *slog.Logger {
	return p.logger
}

func (p *ProductionLogger) Info(msg string, keysAndValues ...interface{}) {
	p.logger.Info(msg, keysAndValues...)
}

func (p *ProductionLogger) Error(msg string, keysAndValues ...interface{}) {
	p.logger.Error(msg, keysAndValues...)
}

func (p *ProductionLogger) Debug(msg string, keysAndValues ...interface{}) {
	p.logger.Debug(msg, keysAndValues...)
}

func (p *ProductionLogger) Warn(msg string, keysAndValues ...interface{}) {
	p.logger.Warn(msg, keysAndValues...)
}

// NoOpLogger is a logger that does nothing (for testing)
type NoOpLogger struct{}

func (n *NoOpLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n *NoOpLogger) Error(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Warn(msg string, keysAndValues ...interface{})  {}

// ParseLevel maps DEBUG/INFO/WARN/ERROR to a slog level, defaulting to INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger is the environment-based logger factory. GO_ENV=test silences
// output; production logs JSON, everything else human-readable text. The
// result also becomes the slog default so the standard log package is routed
// through the same handler.
func NewLogger(service, level string) Logger {
	if os.Getenv("GO_ENV") == "test" {
		return &NoOpLogger{}
	}

	structured := strings.ToLower(os.Getenv("ENV")) == "production"
	logger := NewProductionLogger(service, os.Stdout, ParseLevel(level), structured)
	slog.SetDefault(logger.Slog())
	return logger
}
