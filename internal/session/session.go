// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

// Package session tracks live, connected sessions and defines the
// collaborator interfaces the host runtime implements for them.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Attachment is the live permission-grant handle bound to one connected
// session. Grants applied through it take effect after the host's
// recalculation hook runs. The zero state carries no grants.
type Attachment interface {
	// Set grants (allow=true) or denies (allow=false) a permission token.
	// Setting an already-set token is last-write-wins.
	Set(token string, allow bool)

	// Unset removes a token grant entirely.
	Unset(token string)

	// Tokens returns a snapshot of the currently applied grants. Callers
	// may mutate the attachment while iterating the returned map.
	Tokens() map[string]bool

	// Remove detaches the handle from its session, releasing all grants.
	Remove()
}

// Session is a connected identity as seen by the host runtime.
// All methods must be called from the host's control thread.
type Session interface {
	// ID returns the stable identity key.
	ID() uuid.UUID

	// Name returns the current display name.
	Name() string

	// NewAttachment creates a fresh permission attachment for this session.
	NewAttachment() Attachment

	// SendMessage delivers a chat line to this session.
	SendMessage(msg string)

	// RecalculatePermissions asks the host to re-evaluate effective
	// permissions after attachment changes.
	RecalculatePermissions()
}

// Scheduler marshals a function onto the host's single control thread.
// Executor workers must use it before touching any session-bound state.
type Scheduler interface {
	Run(fn func())
}

// Manager is the registry of currently connected sessions, keyed by
// identity. Reads may come from executor callbacks, so access is
// guarded even though writes only happen on the control thread.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]Session
	joined   map[uuid.UUID]time.Time
}

// NewManager creates an empty session registry.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]Session),
		joined:   make(map[uuid.UUID]time.Time),
	}
}

// Add registers a connected session, replacing any stale entry for the
// same identity.
func (m *Manager) Add(s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[s.ID()]; exists {
		slog.Debug("replacing stale session entry", "identity", s.ID().String())
	}
	m.sessions[s.ID()] = s
	m.joined[s.ID()] = time.Now()
}

// Remove forgets a session. Removing an unknown identity is a no-op.
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	delete(m.joined, id)
}

// Get returns the session for an identity, if connected.
func (m *Manager) Get(id uuid.UUID) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// All returns the currently connected sessions.
func (m *Manager) All() []Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Len returns the number of connected sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
