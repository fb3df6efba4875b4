package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	defaultLogger *slog.Logger
	once          sync.Once
)

type ctxKey struct{}

// Options controls how the global logger is built.
type Options struct {
	Debug  bool
	Format string // "text" (default) or "json"
	Output io.Writer
}

// Init initializes the global logger based on environment variables.
// DEBUG=true enables debug level logging, LOG_FORMAT=json selects JSON output.
func Init() {
	once.Do(func() {
		defaultLogger = New(Options{
			Debug:  os.Getenv("DEBUG") == "true",
			Format: os.Getenv("LOG_FORMAT"),
		})
		slog.SetDefault(defaultLogger)
	})
}

// InitWithOptions initializes the global logger once. Later calls are no-ops.
func InitWithOptions(o Options) {
	once.Do(func() {
		defaultLogger = New(o)
		slog.SetDefault(defaultLogger)
	})
}

// current returns the global logger, initializing it from the environment
// on first use.
func current() *slog.Logger {
	Init()
	return defaultLogger
}

// New builds a logger without touching the global one.
func New(o Options) *slog.Logger {
	level := slog.LevelInfo
	if o.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		// Add source file information if in debug mode
		AddSource: o.Debug,
	}

	out := o.Output
	if out == nil {
		out = os.Stdout
	}

	var handler slog.Handler
	if strings.EqualFold(o.Format, "json") {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}

// Debug logs at Debug level.
func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}

// Info logs at Info level.
func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

// Warn logs at Warn level.
func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

// Error logs at Error level.
func Error(msg string, args ...any) {
	current().Error(msg, args...)
}

// Fatal logs at Error level and then exits.
func Fatal(msg string, args ...any) {
	current().Error(msg, args...)
	os.Exit(1)
}

// With returns a new logger with the given attributes.
func With(args ...any) *slog.Logger {
	return current().With(args...)
}

// NewContext returns a copy of ctx carrying l.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored by NewContext, or the global logger.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return current()
}
