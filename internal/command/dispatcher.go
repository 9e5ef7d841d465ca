// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

package command

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("defiancecore/command")

// Dispatcher resolves inbound invocations against the command table,
// enforces authorization, and invokes the bound handler.
type Dispatcher struct {
	table  *Table
	logger *slog.Logger
}

// DispatcherOption configures a Dispatcher during construction.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger. Default is slog.Default.
func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

// NewDispatcher creates a dispatcher over the given table.
func NewDispatcher(table *Table, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		table:  table,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch routes one invocation. The returned handled flag tells the
// command source whether to suppress its default/fallback handling:
// true whenever a handler for the caller's context was resolved, even
// when authorization then denied the call. Handler errors pass through
// untouched alongside handled=true.
func (d *Dispatcher) Dispatch(ctx context.Context, label string, args []string, caller Caller) (handled bool, err error) {
	v, ok := d.table.Get(label)
	if !ok {
		return false, nil
	}

	ctx, span := tracer.Start(ctx, "command.dispatch",
		trace.WithAttributes(
			attribute.String("command.label", label),
			attribute.String("command.context", caller.Context().String()),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	// Sub-command resolution consumes args[0] when it names one.
	if len(args) > 0 {
		if sub := v.sub(args[0]); sub != nil {
			span.SetAttributes(attribute.String("command.sub", sub.name))
			return d.invoke(ctx, label, sub.name, sub.handlers, sub.permission, args[1:], caller)
		}
	}

	return d.invoke(ctx, label, "", v.handlers, v.permission, args, caller)
}

// invoke runs the authorization gate and handler for one resolved
// target. The gate is independent per level: a sub-command's token is
// checked instead of, not in addition to, its parent's.
func (d *Dispatcher) invoke(ctx context.Context, label, sub string, handlers [numCallerContexts]Handler, permission string, args []string, caller Caller) (bool, error) {
	h := handlers[caller.Context()]
	if h == nil {
		recordDispatch(label, caller.Context(), StatusUnhandled)
		return false, nil
	}

	if !authorized(caller, permission) {
		// Expected outcome: friendly message, suppress fallback, no
		// business logic, not logged as an error.
		caller.Reply(NoPermissionMessage)
		recordDispatch(label, caller.Context(), StatusDenied)
		return true, nil
	}

	err := h(ctx, caller, args)
	if err != nil {
		recordDispatch(label, caller.Context(), StatusError)
		d.logger.WarnContext(ctx, "command handler failed",
			"label", label,
			"sub", sub,
			"context", caller.Context().String(),
			"caller", caller.Name(),
			"error", err,
		)
		return true, err
	}

	recordDispatch(label, caller.Context(), StatusSuccess)
	return true, nil
}
