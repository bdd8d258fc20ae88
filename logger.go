package ngramfeat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/hupe1980/ngramfeat/features"
)

// Logger wraps slog.Logger with ngramfeat-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a colored text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return newJSONLogger(os.Stderr, level)
}

func newJSONLogger(w io.Writer, level slog.Level) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})),
	}
}

// NewTextLogger creates a Logger that outputs human-readable, colored logs.
func NewTextLogger(level slog.Level) *Logger {
	return newTextLogger(os.Stderr, level, false)
}

func newTextLogger(w io.Writer, level slog.Level, noColor bool) *Logger {
	return &Logger{
		Logger: slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
			NoColor:    noColor,
		})),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithModel adds the model name to the logger.
func (l *Logger) WithModel(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("model", name),
	}
}

// LogModelLoad logs a model load.
func (l *Logger) LogModelLoad(ctx context.Context, name string, hash uint64, numWeights int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "model load failed",
			"model", name,
			tint.Err(err),
		)
		return
	}
	l.InfoContext(ctx, "model loaded",
		"model", name,
		"hash", fmt.Sprintf("%016x", hash),
		"weights", numWeights,
		"elapsed", elapsed,
	)
}

// LogResolution logs which implementation serves each capability.
func (l *Logger) LogResolution(ctx context.Context, h *features.Holder) {
	attrs := make([]any, 0, 2*features.NumCapabilities)
	for _, c := range features.AllCapabilities {
		attrs = append(attrs, c.String(), h.Selection(c).String())
	}
	l.InfoContext(ctx, "features resolved", attrs...)
}

// LogRun logs one analysis run.
func (l *Logger) LogRun(ctx context.Context, boundaries, pathLen int, elapsed time.Duration, err error) {
	if err != nil {
		l.WarnContext(ctx, "analysis failed",
			"boundaries", boundaries,
			tint.Err(err),
		)
		return
	}
	l.DebugContext(ctx, "analysis completed",
		"boundaries", boundaries,
		"path", pathLen,
		"elapsed", elapsed,
	)
}

// LogBatch logs a batch analysis.
func (l *Logger) LogBatch(ctx context.Context, count int, elapsed time.Duration, err error) {
	if err != nil {
		l.WarnContext(ctx, "batch analysis failed",
			"count", count,
			tint.Err(err),
		)
		return
	}
	l.InfoContext(ctx, "batch analysis completed",
		"count", count,
		"elapsed", elapsed,
	)
}
