package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with the field names used across the trees.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// A nil handler falls back to text output on stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger discards everything.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything else
// is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// New builds a logger writing to w in the given format ("json" or "text").
func New(w io.Writer, level, format string) *Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "json") {
		return NewLogger(slog.NewJSONHandler(w, opts))
	}
	return NewLogger(slog.NewTextHandler(w, opts))
}

func (l *Logger) WithTree(name string) *Logger {
	return &Logger{Logger: l.Logger.With("tree", name)}
}

func (l *Logger) WithDimensions(dims int) *Logger {
	return &Logger{Logger: l.Logger.With("dims", dims)}
}

func (l *Logger) LogInsert(ctx context.Context, key string, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed",
			"key", key,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "insert completed",
		"key", key,
		"size", size,
	)
}

func (l *Logger) LogRemove(ctx context.Context, op string, removed, size int) {
	l.DebugContext(ctx, "remove completed",
		"op", op,
		"removed", removed,
		"size", size,
	)
}

func (l *Logger) LogSplit(ctx context.Context, key string, splits int) {
	l.DebugContext(ctx, "node split",
		"key", key,
		"splits", splits,
	)
}

func (l *Logger) LogBuild(ctx context.Context, entries, maxNodeSize int, zorder bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"entries", entries,
			"max_node_size", maxNodeSize,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "build completed",
		"entries", entries,
		"max_node_size", maxNodeSize,
		"zorder", zorder,
	)
}

func (l *Logger) LogClear(ctx context.Context, dropped int) {
	l.InfoContext(ctx, "tree cleared",
		"dropped", dropped,
	)
}

func (l *Logger) LogConflict(ctx context.Context, err error) {
	l.WarnContext(ctx, "traversal aborted",
		"error", err,
	)
}
