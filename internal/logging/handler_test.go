// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func parseLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func jsonLogger(t *testing.T, opts Options) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	opts.Writer = &buf
	return New(opts), &buf
}

func TestNew_StampsServiceIdentity(t *testing.T) {
	logger, buf := jsonLogger(t, Options{Service: "defiancecore", Version: "1.2.3"})

	logger.Info("hello")

	entry := parseLine(t, buf)
	assert.Equal(t, "defiancecore", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Equal(t, "hello", entry["msg"])
}

func TestNew_StampsHostServer(t *testing.T) {
	logger, buf := jsonLogger(t, Options{Service: "defiancecore", Version: "dev", Server: "lobby-1"})

	logger.Info("hello")

	assert.Equal(t, "lobby-1", parseLine(t, buf)["server"])
}

func TestNew_NoServerAttrWhenUnset(t *testing.T) {
	logger, buf := jsonLogger(t, Options{Service: "defiancecore", Version: "dev"})

	logger.Info("hello")

	_, hasServer := parseLine(t, buf)["server"]
	assert.False(t, hasServer)
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Service: "defiancecore", Version: "dev", Format: "text", Writer: &buf})

	logger.Info("hello")
	assert.Contains(t, buf.String(), "service=defiancecore")
}

func TestNew_LevelFiltersRecords(t *testing.T) {
	logger, buf := jsonLogger(t, Options{Service: "defiancecore", Version: "dev", Level: slog.LevelInfo})

	logger.Debug("dropped")
	assert.Zero(t, buf.Len())
}

func TestHandler_AddsTraceContext(t *testing.T) {
	logger, buf := jsonLogger(t, Options{Service: "defiancecore", Version: "dev"})

	traceID := trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}
	spanID := trace.SpanID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	logger.InfoContext(ctx, "traced")

	entry := parseLine(t, buf)
	assert.Equal(t, traceID.String(), entry["trace_id"])
	assert.Equal(t, spanID.String(), entry["span_id"])
}

func TestHandler_NoTraceContextNoFields(t *testing.T) {
	logger, buf := jsonLogger(t, Options{Service: "defiancecore", Version: "dev"})

	logger.InfoContext(context.Background(), "untraced")

	_, hasTrace := parseLine(t, buf)["trace_id"]
	assert.False(t, hasTrace)
}

func TestHandler_WithAttrsPreservesStamps(t *testing.T) {
	logger, buf := jsonLogger(t, Options{Service: "defiancecore", Version: "dev", Server: "lobby-1"})

	logger.With("component", "executor").Info("hello")

	entry := parseLine(t, buf)
	assert.Equal(t, "executor", entry["component"])
	assert.Equal(t, "defiancecore", entry["service"])
	assert.Equal(t, "lobby-1", entry["server"])
}
