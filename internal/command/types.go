// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

// Package command provides the shared command table and dispatch system
// that feature modules register their commands into.
package command

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// CallerContext identifies which kind of caller invoked a command.
type CallerContext int

const (
	// CallerSession is an interactive in-game session.
	CallerSession CallerContext = iota
	// CallerOperator is the privileged operator console.
	CallerOperator

	numCallerContexts
)

// String returns the context name for logs and metrics.
func (c CallerContext) String() string {
	switch c {
	case CallerSession:
		return "session"
	case CallerOperator:
		return "operator"
	default:
		return "unknown"
	}
}

// Caller is the invoking side of a dispatch: who is calling, from which
// context, with which permission-check capability, and how to talk back
// to them.
type Caller interface {
	// Context reports whether this is a session or operator caller.
	Context() CallerContext

	// ID returns the caller's identity. Operator callers return the
	// zero UUID.
	ID() uuid.UUID

	// Name returns the caller's display name.
	Name() string

	// HasPermission checks one permission token against the caller.
	HasPermission(token string) bool

	// Reply sends a message back to the caller.
	Reply(msg string)
}

// Handler is the business-logic callback bound to a command or
// sub-command for one caller context. Errors raised by a handler pass
// through dispatch untouched; they are the handler's responsibility.
type Handler func(ctx context.Context, caller Caller, args []string) error

// SubCommand is a named secondary dispatch target nested under a
// VirtualCommand. It is only constructible through registration, which
// always binds at least one handler.
type SubCommand struct {
	name       string
	permission string
	handlers   [numCallerContexts]Handler
}

// Name returns the sub-command's registered name.
func (s *SubCommand) Name() string { return s.name }

// VirtualCommand is one registered top-level command label with its
// per-context handlers and nested sub-commands. The Table is the sole
// owner of both parents and children.
type VirtualCommand struct {
	label      string
	permission string
	handlers   [numCallerContexts]Handler
	subs       map[string]*SubCommand // keyed by lowercased name
}

// Label returns the command's registered label.
func (v *VirtualCommand) Label() string { return v.label }

// HasHandler reports whether a handler is bound for the given context.
func (v *VirtualCommand) HasHandler(cc CallerContext) bool {
	return v.handlers[cc] != nil
}

// sub returns the sub-command matching name case-insensitively, or nil.
func (v *VirtualCommand) sub(name string) *SubCommand {
	return v.subs[strings.ToLower(name)]
}

// SubCommands returns the registered sub-command names.
func (v *VirtualCommand) SubCommands() []string {
	out := make([]string, 0, len(v.subs))
	for _, s := range v.subs {
		out = append(out, s.name)
	}
	return out
}

// authorized applies the shared authorization rule: an absent or empty
// token means no restriction; both forms must stay equivalent to match
// existing permission-configuration files.
func authorized(caller Caller, token string) bool {
	if token == "" {
		return true
	}
	return caller.HasPermission(token)
}
