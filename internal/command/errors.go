// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

package command

import (
	"github.com/samber/oops"

	"github.com/defiancecraft/defiancecore/internal/chat"
)

// Error codes for command table failures. All are raised synchronously
// at registration time and never retried.
const (
	CodeRegistrationConflict = "REGISTRATION_CONFLICT"
	CodeParentNotRegistered  = "PARENT_NOT_REGISTERED"
	CodeNilHandler           = "NIL_HANDLER"
	CodeFallbackBind         = "FALLBACK_BIND_FAILED"
)

// NoPermissionMessage is sent to callers denied by an authorization
// token. Denials are expected and never logged as errors.
var NoPermissionMessage = chat.Translate("&cYou do not have permission to use this command!")

// InternalErrorMessage is the generic user-facing text for fatal
// failures; raw error detail is only ever logged.
var InternalErrorMessage = chat.Translate("&cAn internal server error occurred.")

// ErrRegistrationConflict reports a handler already bound for a label
// in the requested caller context.
func ErrRegistrationConflict(label string, cc CallerContext) error {
	return oops.Code(CodeRegistrationConflict).
		With("label", label).
		With("context", cc.String()).
		Errorf("a command is already registered under label %q for %s callers", label, cc)
}

// ErrSubConflict reports a sub-command name already taken under a parent.
func ErrSubConflict(parent, name string) error {
	return oops.Code(CodeRegistrationConflict).
		With("label", parent).
		With("sub", name).
		Errorf("a sub-command named %q is already registered under %q", name, parent)
}

// ErrParentNotRegistered reports sub-command registration against a
// label that has no VirtualCommand yet. Parents must exist first.
func ErrParentNotRegistered(parent, name string) error {
	return oops.Code(CodeParentNotRegistered).
		With("label", parent).
		With("sub", name).
		Errorf("no command registered under label %q", parent)
}

// ErrNilHandler reports registration with a nil handler, which would
// create a meaningless entry.
func ErrNilHandler(label string) error {
	return oops.Code(CodeNilHandler).
		With("label", label).
		Errorf("handler for %q must not be nil", label)
}
