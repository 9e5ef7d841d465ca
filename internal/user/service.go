// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

// Package user presents a high-level view over the remote user store:
// lookup-or-create by identity or name, and targeted partial updates.
//
// Not-found is always the explicit store.ErrNotFound outcome; callers
// branch on it rather than treating it as an internal error.
package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/defiancecraft/defiancecore/internal/executor"
	"github.com/defiancecraft/defiancecore/internal/profile"
	"github.com/defiancecraft/defiancecore/internal/store"
	"github.com/defiancecraft/defiancecore/pkg/errutil"
)

// Option configures a Service during construction.
type Option func(*Service)

// WithDefaultGroups supplies the group list stamped onto first-time
// records. Evaluated per creation so configuration reloads take effect.
func WithDefaultGroups(fn func() []string) Option {
	return func(s *Service) { s.defaultGroups = fn }
}

// WithLogger sets the logger. Default is slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service combines the remote store, the name resolver, and the
// executor into the user-facing account operations.
type Service struct {
	users         store.Users
	resolver      profile.Resolver
	exec          *executor.Executor
	defaultGroups func() []string
	logger        *slog.Logger
}

// NewService creates a user service.
func NewService(users store.Users, resolver profile.Resolver, exec *executor.Executor, opts ...Option) *Service {
	s := &Service{
		users:         users,
		resolver:      resolver,
		exec:          exec,
		defaultGroups: func() []string { return nil },
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ByIDOrCreate returns the record for an identity, creating one with
// the default groups on first-ever resolution. The insert is scheduled
// on the executor and the fresh local record returned immediately; the
// store-side upsert makes a concurrent double-create harmless.
func (s *Service) ByIDOrCreate(ctx context.Context, id uuid.UUID, name string) (*store.Record, error) {
	rec, err := s.users.FindByID(ctx, id)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	rec = &store.Record{
		ID:     id,
		Name:   name,
		Groups: s.defaultGroups(),
	}
	s.scheduleInsert(rec)
	return rec, nil
}

// ByName finds a record by display name: store name lookup first, then
// the remote account service for the identity, then a store identity
// lookup. Returns store.ErrNotFound when every path comes up empty.
func (s *Service) ByName(ctx context.Context, name string) (*store.Record, error) {
	rec, _, err := s.findByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, store.ErrNotFound
	}
	return rec, nil
}

// ByNameOrCreate behaves like ByName but creates the record when the
// account service knows the name and the store does not.
func (s *Service) ByNameOrCreate(ctx context.Context, name string) (*store.Record, error) {
	rec, prof, err := s.findByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return rec, nil
	}
	if prof == nil {
		return nil, store.ErrNotFound
	}

	rec = &store.Record{
		ID:     prof.ID,
		Name:   prof.Name,
		Groups: s.defaultGroups(),
	}
	s.scheduleInsert(rec)
	return rec, nil
}

// findByName runs the two-stage lookup. Exactly one of rec/prof may be
// non-nil on success: rec when found, prof when only the account
// service knows the name, neither when the name resolves nowhere.
func (s *Service) findByName(ctx context.Context, name string) (*store.Record, *profile.Profile, error) {
	rec, err := s.users.FindByName(ctx, name)
	if err == nil {
		return rec, nil, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, nil, err
	}

	prof, err := s.resolver.Lookup(ctx, name)
	if errors.Is(err, profile.ErrUnknownName) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	rec, err = s.users.FindByID(ctx, prof.ID)
	if err == nil {
		return rec, nil, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, nil, err
	}
	return nil, prof, nil
}

func (s *Service) scheduleInsert(rec *store.Record) {
	insert := *rec
	fut, err := s.exec.Run("user.create", func(ctx context.Context) error {
		return s.users.Insert(ctx, &insert)
	})
	if err != nil {
		errutil.LogError(s.logger, "could not schedule user creation", err)
		return
	}
	// Creation is fire-and-forget; surface fatal insert failures in the
	// log without blocking the caller.
	go func() {
		if _, err := fut.Wait(context.Background()); err != nil && !errors.Is(err, context.Canceled) {
			errutil.LogError(s.logger, "user creation failed", err)
		}
	}()
}

// Users exposes the underlying store for collaborators needing
// targeted updates not covered by the service surface.
func (s *Service) Users() store.Users {
	return s.users
}

// AddGroup adds a group to the identity's membership set.
func (s *Service) AddGroup(ctx context.Context, id uuid.UUID, group string) (bool, error) {
	return s.users.AddGroup(ctx, id, group)
}

// RemoveGroup removes a group from the identity's membership set.
func (s *Service) RemoveGroup(ctx context.Context, id uuid.UUID, group string) (bool, error) {
	return s.users.RemoveGroup(ctx, id, group)
}

// SetPrefix sets or clears (empty string) the custom prefix override.
func (s *Service) SetPrefix(ctx context.Context, id uuid.UUID, prefix string) (bool, error) {
	return s.users.SetPrefix(ctx, id, prefix)
}

// SetSuffix sets or clears (empty string) the custom suffix override.
func (s *Service) SetSuffix(ctx context.Context, id uuid.UUID, suffix string) (bool, error) {
	return s.users.SetSuffix(ctx, id, suffix)
}
