// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

// Package errutil provides helpers for logging structured errors.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs an error at error level with structured context.
// For oops errors, the code and attached context are logged alongside
// the message so operators get full diagnostic detail without the
// error ever reaching a player.
func LogError(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, attrs(err)...)
}

// LogWarn logs an error at warn level with structured context.
// Used for expected-and-recovered conditions such as transient store
// failures between retries.
func LogWarn(logger *slog.Logger, msg string, err error) {
	logger.Warn(msg, attrs(err)...)
}

func attrs(err error) []any {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return []any{"error", err}
	}
	out := []any{"error", oopsErr.Error()}
	if code := oopsErr.Code(); code != "" {
		out = append(out, "code", code)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		out = append(out, "context", ctx)
	}
	return out
}
