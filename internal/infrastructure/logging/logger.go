package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/http2sql/internal/infrastructure/config"
)

// serviceName is attached to every log entry.
const serviceName = "http2sql"

// Logger is the structured logger handed to every http2sql component.
// It is safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New builds a Logger from cfg writing to stdout, or stderr when
// cfg.Output is "stderr".
func New(cfg config.LoggingConfig, version string) *Logger {
	var w io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		w = os.Stderr
	}
	return NewWithWriter(cfg, version, w)
}

// NewWithWriter builds a Logger writing to w; cfg.Output is ignored.
// Format "text" selects the text handler, anything else JSON.
func NewWithWriter(cfg config.LoggingConfig, version string, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler = slog.NewJSONHandler(w, opts)
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(handler.WithAttrs([]slog.Attr{
			slog.String("service", serviceName),
			slog.String("version", version),
		})),
	}
}

// parseLevel maps debug, info, warn (or warning) and error to slog levels,
// case-insensitively. Anything else is info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a child Logger carrying args on every entry.
//
//	poolLog := logger.With("component", "pool")
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Default is the JSON info-level stdout logger used until configuration
// has been loaded.
func Default() *Logger {
	return New(config.LoggingConfig{Level: "info", Format: "json"}, "dev")
}

// Discard returns a logger that drops every entry. Used by tests and by
// constructors given a nil logger.
func Discard() *Logger {
	return NewWithWriter(config.LoggingConfig{Level: "error"}, "test", io.Discard)
}
