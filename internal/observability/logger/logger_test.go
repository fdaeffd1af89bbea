package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanoutHandler(t *testing.T) {
	var a, b bytes.Buffer
	h := fanout(
		slog.NewJSONHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)

	log := slog.New(h)
	log.Info("tenant resolved", slog.String("slug", "quisqueya"))

	assert.Contains(t, a.String(), "quisqueya")
	assert.Empty(t, b.String(), "info is below the second handler's level")

	log.Error("tenant lookup failed")
	assert.Contains(t, b.String(), "tenant lookup failed")
}

func TestFanoutHandler_Enabled(t *testing.T) {
	h := fanout(
		slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}),
		slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))
}

func TestTraceHandler_NoSpanNoAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &traceHandler{Handler: slog.NewJSONHandler(&buf, nil)}

	require.NoError(t, h.Handle(context.Background(),
		slog.NewRecord(time.Now(), slog.LevelInfo, "no trace", 0)))
	assert.NotContains(t, buf.String(), "trace_id")
}
