// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

package store

import (
	"context"
	"errors"
	"net"

	"github.com/samber/oops"
)

// ErrNotFound is returned when no record matches a lookup. It is an
// expected outcome that callers branch on, not a failure.
var ErrNotFound = errors.New("user record not found")

// Error codes for store failures.
const (
	CodeTransient = "STORE_TRANSIENT"
	CodeQuery     = "STORE_QUERY_FAILED"
)

// transientError marks an error as connectivity-class: expected to
// resolve itself if the operation is retried.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return "transient store failure: " + e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// MarkTransient wraps err so IsTransient reports true for it.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err is a connectivity/timeout-class
// failure that the executor should retry. Unmarked network timeouts and
// context deadline expiry also classify as transient, since those are
// how driver-level connection trouble usually surfaces.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var te *transientError
	if errors.As(err, &te) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// QueryError wraps a non-transient store failure with operation context.
func QueryError(operation string, err error) error {
	return oops.Code(CodeQuery).
		With("operation", operation).
		Wrap(err)
}
