// Package ctxlog carries the pass logger on context.Context so pipeline
// stages log with the attributes of the pass that runs them.
package ctxlog

import (
	"context"
	"io"
	"log/slog"
)

type loggerCtxKey struct{}

// WithLogger attaches logger to ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext returns the logger attached to ctx, or slog.Default for a
// nil context or one without a logger.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if logger, ok := ctx.Value(loggerCtxKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// Discard drops every record. Tests use it to keep pass output quiet.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
