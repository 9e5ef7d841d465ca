// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

// Package store defines the remote user-record store contract.
//
// The store is authoritative for per-user state (identity, group
// membership, display overrides, balance). All mutations are targeted
// partial updates rather than whole-document overwrites so that
// concurrent writers for the same identity cannot lose each other's
// fields; serialization beyond that is explicitly not provided.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record is the authoritative per-user document.
// ID is immutable once created; Groups carries no duplicates.
type Record struct {
	ID           uuid.UUID
	Name         string
	Groups       []string
	CustomPrefix string
	CustomSuffix string
	Balance      float64
	CreatedAt    time.Time
}

// HasGroup reports whether the record carries the named group.
func (r *Record) HasGroup(group string) bool {
	for _, g := range r.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// Users is the remote store collaborator. Implementations surface
// connectivity-class failures so IsTransient reports true for them;
// every other failure is treated as fatal by callers.
//
// Mutators return whether any record matched the identity, mirroring
// the affected-count contract of the underlying update primitives.
type Users interface {
	// FindByID returns the record for an identity, or ErrNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*Record, error)

	// FindByName returns the record for a display name, or ErrNotFound.
	FindByName(ctx context.Context, name string) (*Record, error)

	// Insert stores a new record. Inserting an identity that already
	// exists is a no-op, making first-time creation races harmless.
	Insert(ctx context.Context, rec *Record) error

	// AddGroup adds a group with set semantics (no duplicates).
	AddGroup(ctx context.Context, id uuid.UUID, group string) (bool, error)

	// RemoveGroup removes a group from the membership list.
	RemoveGroup(ctx context.Context, id uuid.UUID, group string) (bool, error)

	// SetPrefix sets the custom prefix override; empty clears it.
	SetPrefix(ctx context.Context, id uuid.UUID, prefix string) (bool, error)

	// SetSuffix sets the custom suffix override; empty clears it.
	SetSuffix(ctx context.Context, id uuid.UUID, suffix string) (bool, error)

	// SetBalance overwrites the balance.
	SetBalance(ctx context.Context, id uuid.UUID, amount float64) (bool, error)

	// AddBalance adjusts the balance by delta (negative withdraws).
	AddBalance(ctx context.Context, id uuid.UUID, delta float64) (bool, error)

	// SetName records the current display name for an identity.
	SetName(ctx context.Context, id uuid.UUID, name string) (bool, error)
}
