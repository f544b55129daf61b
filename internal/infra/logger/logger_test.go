package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestContextHandler_AddsBusinessContext(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newStdoutHandler(&buf, slog.LevelInfo))

	ctx := WithUserID(context.Background(), "user-1")
	ctx = WithWorldID(ctx, "DEMO_WORLD")
	ctx = WithGenerationStage(ctx, "select")
	log.InfoContext(ctx, "site_selection_completed")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "user-1", entry["wc.user.id"])
	assert.Equal(t, "DEMO_WORLD", entry["wc.world.id"])
	assert.Equal(t, "select", entry["wc.generation.stage"])
	assert.NotContains(t, entry, "wc.job.id")
}

func TestTraceContextHandler_AddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newStdoutHandler(&buf, slog.LevelInfo))

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	log.InfoContext(ctx, "with_span")

	entry := decodeLine(t, &buf)
	assert.Equal(t, span.SpanContext().TraceID().String(), entry["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), entry["span_id"])
}

func TestTraceContextHandler_NoSpan(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newStdoutHandler(&buf, slog.LevelInfo))

	log.Info("without_span")

	entry := decodeLine(t, &buf)
	assert.NotContains(t, entry, "trace_id")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, parseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}
