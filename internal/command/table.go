// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

package command

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/samber/oops"
)

// FallbackBinder is the host collaborator that hands a label's default
// command handling over to the table and back. Bind is called when a
// label is first claimed; Restore when it is unregistered, so any
// built-in command of the same name keeps working afterwards.
type FallbackBinder interface {
	Bind(label string) error
	Restore(label string)
}

// TableOption configures a Table during construction.
type TableOption func(*Table)

// WithFallbackBinder sets the host fallback collaborator. Without one,
// bind/restore are no-ops and unhandled labels simply fall through.
func WithFallbackBinder(b FallbackBinder) TableOption {
	return func(t *Table) { t.binder = b }
}

// WithTableLogger sets the logger. Default is slog.Default.
func WithTableLogger(l *slog.Logger) TableOption {
	return func(t *Table) { t.logger = l }
}

// Table owns every registered command and sub-command, keyed by label.
//
// Table is NOT safe for concurrent use: registration happens at module
// load and dispatch on the host's control thread. This single-writer
// invariant is deliberate; see the concurrency notes in DESIGN.md.
type Table struct {
	commands map[string]*VirtualCommand
	binder   FallbackBinder
	logger   *slog.Logger
}

// NewTable creates an empty command table.
func NewTable(opts ...TableOption) *Table {
	t := &Table{
		commands: make(map[string]*VirtualCommand),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Register binds a handler for one caller context under a label,
// creating the VirtualCommand on first reference. The authorization
// token is fixed when the label is first created. Registering a context
// that is already bound is a conflict error, never an overwrite.
func (t *Table) Register(label string, cc CallerContext, permission string, h Handler) error {
	if h == nil {
		return ErrNilHandler(label)
	}

	v, err := t.ensure(label, permission)
	if err != nil {
		return err
	}
	if v.handlers[cc] != nil {
		return ErrRegistrationConflict(label, cc)
	}
	v.handlers[cc] = h

	t.logger.Debug("command registered",
		"label", label,
		"context", cc.String(),
	)
	return nil
}

// RegisterUniversal binds the same handler for both caller contexts.
// The registration is atomic: it fails without side effects when either
// context is already bound.
func (t *Table) RegisterUniversal(label, permission string, h Handler) error {
	if h == nil {
		return ErrNilHandler(label)
	}

	if v, exists := t.commands[label]; exists {
		if v.handlers[CallerSession] != nil {
			return ErrRegistrationConflict(label, CallerSession)
		}
		if v.handlers[CallerOperator] != nil {
			return ErrRegistrationConflict(label, CallerOperator)
		}
	}

	v, err := t.ensure(label, permission)
	if err != nil {
		return err
	}
	v.handlers[CallerSession] = h
	v.handlers[CallerOperator] = h

	t.logger.Debug("command registered", "label", label, "context", "universal")
	return nil
}

// RegisterSub binds a sub-command handler for one caller context under
// an existing parent label. The parent must already be registered;
// sub-command names are unique per parent, compared case-insensitively.
func (t *Table) RegisterSub(parent, name string, cc CallerContext, permission string, h Handler) error {
	sub, err := t.ensureSub(parent, name, permission, h)
	if err != nil {
		return err
	}
	sub.handlers[cc] = h
	return nil
}

// RegisterUniversalSub binds a sub-command handler for both contexts.
func (t *Table) RegisterUniversalSub(parent, name, permission string, h Handler) error {
	sub, err := t.ensureSub(parent, name, permission, h)
	if err != nil {
		return err
	}
	sub.handlers[CallerSession] = h
	sub.handlers[CallerOperator] = h
	return nil
}

func (t *Table) ensure(label, permission string) (*VirtualCommand, error) {
	if v, exists := t.commands[label]; exists {
		return v, nil
	}

	if t.binder != nil {
		if err := t.binder.Bind(label); err != nil {
			return nil, oops.Code(CodeFallbackBind).
				With("label", label).
				Wrap(err)
		}
	}

	v := &VirtualCommand{
		label:      label,
		permission: permission,
		subs:       make(map[string]*SubCommand),
	}
	t.commands[label] = v
	return v, nil
}

func (t *Table) ensureSub(parent, name, permission string, h Handler) (*SubCommand, error) {
	if h == nil {
		return nil, ErrNilHandler(parent + " " + name)
	}
	v, exists := t.commands[parent]
	if !exists {
		return nil, ErrParentNotRegistered(parent, name)
	}

	key := strings.ToLower(name)
	if _, taken := v.subs[key]; taken {
		return nil, ErrSubConflict(parent, name)
	}

	sub := &SubCommand{name: name, permission: permission}
	v.subs[key] = sub
	return sub, nil
}

// Unregister purges a label from the table and restores whatever
// fallback behavior the host had for it. Sub-commands go with their
// parent; they are not individually unregisterable.
func (t *Table) Unregister(label string) {
	if _, exists := t.commands[label]; !exists {
		return
	}
	delete(t.commands, label)
	if t.binder != nil {
		t.binder.Restore(label)
	}
	t.logger.Debug("command unregistered", "label", label)
}

// Get retrieves a command by label (case-sensitive).
func (t *Table) Get(label string) (*VirtualCommand, bool) {
	v, ok := t.commands[label]
	return v, ok
}

// Labels returns all registered labels, sorted.
func (t *Table) Labels() []string {
	out := make([]string, 0, len(t.commands))
	for label := range t.commands {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}
