// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

// Package perm resolves effective permission sets and display metadata
// from the group-inheritance configuration and keeps resolved state
// synchronized with live sessions.
package perm

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/defiancecraft/defiancecore/internal/chat"
	"github.com/defiancecraft/defiancecore/internal/session"
	"github.com/defiancecraft/defiancecore/internal/store"
	"github.com/defiancecraft/defiancecore/pkg/errutil"
)

// Metadata is the resolved prefix/suffix pair for a connected identity,
// cached so chat formatting does not recompute it per message.
type Metadata struct {
	Prefix string
	Suffix string
}

// UserSource fetches or lazily creates the authoritative user record.
// Implemented by the user service; failures during connect-time
// resolution propagate so the caller can reject the session.
type UserSource interface {
	ByIDOrCreate(ctx context.Context, id uuid.UUID, name string) (*store.Record, error)
}

// EngineOption configures an Engine during construction.
type EngineOption func(*Engine)

// WithLogger sets the engine logger. Default is slog.Default.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// Engine is the permission resolution engine.
//
// Engine state (config, attachments, metadata) is owned by the host's
// control thread; executor callbacks must go through a
// session.Scheduler before calling into it. See DESIGN.md.
type Engine struct {
	logger   *slog.Logger
	cfgPath  string
	cfg      *Config
	users    UserSource
	sessions *session.Manager

	attachments map[uuid.UUID]session.Attachment
	metadata    map[uuid.UUID]Metadata
}

// NewEngine creates an engine, loading the permission configuration
// from cfgPath.
func NewEngine(cfgPath string, users UserSource, sessions *session.Manager, opts ...EngineOption) (*Engine, error) {
	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		logger:      slog.Default(),
		cfgPath:     cfgPath,
		cfg:         cfg,
		users:       users,
		sessions:    sessions,
		attachments: make(map[uuid.UUID]session.Attachment),
		metadata:    make(map[uuid.UUID]Metadata),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the live configuration document. Administrative edits
// mutate it in place and then call SaveConfig.
func (e *Engine) Config() *Config {
	return e.cfg
}

// ReloadConfig re-reads the configuration document from disk.
// Connected sessions keep their previous resolution until Reload or an
// individual UpdatePlayer runs.
func (e *Engine) ReloadConfig() error {
	cfg, err := LoadConfig(e.cfgPath)
	if err != nil {
		return err
	}
	e.cfg = cfg
	return nil
}

// SaveConfig persists the configuration document wholesale. A failed
// save reports the error but leaves the in-memory edits in place; this
// soft-consistency tradeoff is deliberate.
func (e *Engine) SaveConfig() error {
	return e.cfg.Save(e.cfgPath)
}

// PrefixAndSuffix resolves display metadata for a user record. Groups
// are visited in ascending priority and non-empty values overwrite, so
// the highest-priority group defining a value wins; per-user custom
// overrides win over all group-derived values.
func (e *Engine) PrefixAndSuffix(rec *store.Record) Metadata {
	var meta Metadata
	for _, g := range e.cfg.GroupsByPriority(true) {
		if !rec.HasGroup(g.Name) {
			continue
		}
		if g.Prefix != "" {
			meta.Prefix = g.Prefix
		}
		if g.Suffix != "" {
			meta.Suffix = g.Suffix
		}
	}

	if rec.CustomPrefix != "" {
		meta.Prefix = rec.CustomPrefix
	}
	if rec.CustomSuffix != "" {
		meta.Suffix = rec.CustomSuffix
	}
	return meta
}

// attachment returns the session's permission attachment, creating it
// lazily on first use. At most one attachment exists per session.
func (e *Engine) attachment(s session.Session) session.Attachment {
	if att, ok := e.attachments[s.ID()]; ok {
		return att
	}
	att := s.NewAttachment()
	e.attachments[s.ID()] = att
	return att
}

// UpdatePermissions clears and fully re-applies the session's grants
// from the record's group memberships. Full replace rather than diff:
// no stale grant can survive a group removal. Finishes by triggering
// the host's recalculation hook.
func (e *Engine) UpdatePermissions(s session.Session, rec *store.Record) {
	att := e.attachment(s)

	for token := range att.Tokens() {
		att.Unset(token)
	}

	for _, g := range e.cfg.GroupsByPriority(true) {
		if !rec.HasGroup(g.Name) {
			continue
		}
		for _, token := range e.cfg.Permissions(g) {
			name, allow := ParseToken(token)
			att.Set(name, allow)
		}
	}

	s.RecalculatePermissions()
}

// UpdateMetadata resolves and caches display metadata for the session.
func (e *Engine) UpdateMetadata(s session.Session, rec *store.Record) {
	e.metadata[s.ID()] = e.PrefixAndSuffix(rec)
}

// Metadata returns the cached display metadata for a connected identity.
func (e *Engine) Metadata(id uuid.UUID) (Metadata, bool) {
	meta, ok := e.metadata[id]
	return meta, ok
}

// ApplyRecord applies an already-fetched record to a connected session:
// the permission-attachment sync plus the metadata cache. Callers that
// fetched the record on an executor worker marshal this through the
// host's Scheduler; the fetch itself never has to run on the control
// thread.
func (e *Engine) ApplyRecord(s session.Session, rec *store.Record) {
	e.UpdatePermissions(s, rec)
	e.UpdateMetadata(s, rec)
}

// UpdatePlayer fetches the user record once and applies it, avoiding
// the double remote round-trip of resolving permissions and metadata
// independently.
func (e *Engine) UpdatePlayer(ctx context.Context, s session.Session) error {
	rec, err := e.users.ByIDOrCreate(ctx, s.ID(), s.Name())
	if err != nil {
		return oops.Code(CodeResolveFailed).
			With("identity", s.ID().String()).
			With("name", s.Name()).
			Wrap(err)
	}

	e.ApplyRecord(s, rec)
	return nil
}

// OnConnect registers the session and resolves its state. A failure is
// fatal for this resolution attempt and is returned so the host can
// reject the connecting session rather than admit it with undefined
// permissions; the session is not left registered.
func (e *Engine) OnConnect(ctx context.Context, s session.Session) error {
	e.sessions.Add(s)
	if err := e.UpdatePlayer(ctx, s); err != nil {
		e.sessions.Remove(s.ID())
		return err
	}
	return nil
}

// OnDisconnect tears down the session's attachment and cached state.
func (e *Engine) OnDisconnect(s session.Session) {
	if att, ok := e.attachments[s.ID()]; ok {
		att.Remove()
		delete(e.attachments, s.ID())
	}
	delete(e.metadata, s.ID())
	e.sessions.Remove(s.ID())
}

// Reload re-applies UpdatePlayer to every connected session so
// configuration edits take effect immediately for online users.
// Individual failures are logged and skipped; one bad resolution must
// not strand the rest of the server on stale permissions.
func (e *Engine) Reload(ctx context.Context) {
	for _, s := range e.sessions.All() {
		if err := e.UpdatePlayer(ctx, s); err != nil {
			errutil.LogError(e.logger, "failed to refresh session during reload", err)
		}
	}
}

// FormatChat renders a chat line for the session using the configured
// chat format. Metadata is served from cache; on a miss it is resolved
// first, and a store failure there propagates because an unformatted
// line must not leak through.
func (e *Engine) FormatChat(ctx context.Context, s session.Session, message string) (string, error) {
	meta, ok := e.Metadata(s.ID())
	if !ok {
		rec, err := e.users.ByIDOrCreate(ctx, s.ID(), s.Name())
		if err != nil {
			return "", oops.Code(CodeResolveFailed).
				With("identity", s.ID().String()).
				Wrap(err)
		}
		e.UpdateMetadata(s, rec)
		meta = e.metadata[s.ID()]
	}

	return chat.Render(e.cfg.ChatFormat, meta.Prefix, meta.Suffix, s.Name(), message), nil
}
