// ABOUTME: Request-scoped business context for structured logs
// ABOUTME: User, world, job and generation stage travel in context.Context and are added to every record
package logger

import (
	"context"
	"log/slog"
)

type ContextKey string

const (
	// Business context keys, following OpenTelemetry attribute naming with a 'wc.' prefix
	UserIDKey          ContextKey = "wc.user.id"
	WorldIDKey         ContextKey = "wc.world.id"
	JobIDKey           ContextKey = "wc.job.id"
	GenerationStageKey ContextKey = "wc.generation.stage"
)

var contextKeys = []ContextKey{UserIDKey, WorldIDKey, JobIDKey, GenerationStageKey}

// WithUserID adds the acting user to context for observability
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// WithWorldID adds the isolated world to context for observability
func WithWorldID(ctx context.Context, worldID string) context.Context {
	return context.WithValue(ctx, WorldIDKey, worldID)
}

// WithJobID adds job ID to context for observability
func WithJobID(ctx context.Context, jobID string) context.Context {
	return context.WithValue(ctx, JobIDKey, jobID)
}

// WithGenerationStage adds the site generation stage to context
func WithGenerationStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, GenerationStageKey, stage)
}

// ContextHandler copies business context values onto each record.
type ContextHandler struct {
	inner slog.Handler
}

// NewContextHandler wraps inner.
func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, key := range contextKeys {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			r.AddAttrs(slog.String(string(key), v))
		}
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name)}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug", "DEBUG":
		return slog.LevelDebug
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn
	case "error", "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
