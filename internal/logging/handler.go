// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

// Package logging builds the slog logger the core and its host share.
// Every record carries the core's identity and, when the module runs
// embedded, the host server instance it runs inside, so one log
// pipeline can tell apart the emissions of several game servers.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// Options configures the logger.
type Options struct {
	// Service is the emitting component, e.g. "defiancecore".
	Service string

	// Version is the build version stamp.
	Version string

	// Server names the host game-server instance the core is embedded
	// in. Empty for standalone tools; no attribute is emitted then.
	Server string

	// Format selects "json" (default) or "text" output.
	Format string

	// Level is the minimum level. Defaults to debug.
	Level slog.Leveler

	// Writer is the output destination. Defaults to os.Stderr.
	Writer io.Writer
}

// stampHandler decorates records with a fixed identity attribute set
// and, when the context carries an active span, trace correlation ids.
type stampHandler struct {
	inner slog.Handler
	stamp []slog.Attr
}

func (h *stampHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(h.stamp...)

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	//nolint:wrapcheck // Handler interface requires unwrapped error passthrough
	return h.inner.Handle(ctx, r)
}

func (h *stampHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *stampHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &stampHandler{inner: h.inner.WithAttrs(attrs), stamp: h.stamp}
}

func (h *stampHandler) WithGroup(name string) slog.Handler {
	return &stampHandler{inner: h.inner.WithGroup(name), stamp: h.stamp}
}

// New creates a configured slog.Logger.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level := opts.Level
	if level == nil {
		level = slog.LevelDebug
	}

	var inner slog.Handler
	hopts := &slog.HandlerOptions{Level: level}
	if opts.Format == "text" {
		inner = slog.NewTextHandler(w, hopts)
	} else {
		inner = slog.NewJSONHandler(w, hopts)
	}

	stamp := []slog.Attr{
		slog.String("service", opts.Service),
		slog.String("version", opts.Version),
	}
	if opts.Server != "" {
		stamp = append(stamp, slog.String("server", opts.Server))
	}

	return slog.New(&stampHandler{inner: inner, stamp: stamp})
}

// SetDefault installs a logger built from opts as the process default.
func SetDefault(opts Options) {
	slog.SetDefault(New(opts))
}
