// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

package economy

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/defiancecraft/defiancecore/internal/executor"
	"github.com/defiancecraft/defiancecore/internal/profile"
	"github.com/defiancecraft/defiancecore/internal/store"
	"github.com/defiancecraft/defiancecore/internal/user"
)

// seededUser wires a name and starting balance into the test store.
type seededUser struct {
	name    string
	balance float64
}

func seedUser(name string, balance float64) seededUser {
	return seededUser{name: name, balance: balance}
}

// memUsers is a minimal in-memory store.Users for economy tests.
// unmatchedBalanceOps makes the next N balance updates report no
// matching row, imitating the window where a freshly created account's
// insert is still queued.
type memUsers struct {
	mu                  sync.Mutex
	byID                map[uuid.UUID]*store.Record
	unmatchedBalanceOps int
}

func (m *memUsers) FindByID(_ context.Context, id uuid.UUID) (*store.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.byID[id]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (m *memUsers) FindByName(_ context.Context, name string) (*store.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.byID {
		if rec.Name == name {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memUsers) Insert(_ context.Context, rec *store.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byID[rec.ID]; exists {
		return nil
	}
	cp := *rec
	m.byID[rec.ID] = &cp
	return nil
}

func (m *memUsers) mutate(id uuid.UUID, fn func(*store.Record)) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byID[id]
	if !ok {
		return false, nil
	}
	fn(rec)
	return true, nil
}

func (m *memUsers) AddGroup(_ context.Context, id uuid.UUID, group string) (bool, error) {
	return m.mutate(id, func(r *store.Record) { r.Groups = append(r.Groups, group) })
}

func (m *memUsers) RemoveGroup(_ context.Context, id uuid.UUID, _ string) (bool, error) {
	return m.mutate(id, func(*store.Record) {})
}

func (m *memUsers) SetPrefix(_ context.Context, id uuid.UUID, prefix string) (bool, error) {
	return m.mutate(id, func(r *store.Record) { r.CustomPrefix = prefix })
}

func (m *memUsers) SetSuffix(_ context.Context, id uuid.UUID, suffix string) (bool, error) {
	return m.mutate(id, func(r *store.Record) { r.CustomSuffix = suffix })
}

func (m *memUsers) balanceRowMissing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unmatchedBalanceOps > 0 {
		m.unmatchedBalanceOps--
		return true
	}
	return false
}

func (m *memUsers) SetBalance(_ context.Context, id uuid.UUID, amount float64) (bool, error) {
	if m.balanceRowMissing() {
		return false, nil
	}
	return m.mutate(id, func(r *store.Record) { r.Balance = amount })
}

func (m *memUsers) AddBalance(_ context.Context, id uuid.UUID, delta float64) (bool, error) {
	if m.balanceRowMissing() {
		return false, nil
	}
	return m.mutate(id, func(r *store.Record) { r.Balance += delta })
}

func (m *memUsers) SetName(_ context.Context, id uuid.UUID, name string) (bool, error) {
	return m.mutate(id, func(r *store.Record) { r.Name = name })
}

// noResolver knows no names; every seeded user must already exist in
// the store.
type noResolver struct{}

func (noResolver) Lookup(context.Context, string) (*profile.Profile, error) {
	return nil, profile.ErrUnknownName
}

func newEconomyService(t *testing.T, seeds ...seededUser) *Service {
	t.Helper()
	svc, _ := newEconomyServiceWithStore(t, seeds...)
	return svc
}

func newEconomyServiceWithStore(t *testing.T, seeds ...seededUser) (*Service, *memUsers) {
	t.Helper()

	users := &memUsers{byID: make(map[uuid.UUID]*store.Record)}
	for _, s := range seeds {
		id := uuid.New()
		users.byID[id] = &store.Record{ID: id, Name: s.name, Balance: s.balance}
	}

	exec := executor.New(1, executor.WithBackoff(time.Millisecond))
	t.Cleanup(func() { exec.Shutdown(5 * time.Second) })

	return NewService(DefaultConfig(), user.NewService(users, noResolver{}, exec)), users
}
