// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

// Package handlers contains the built-in permission and economy
// command modules that register into the shared command table.
package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/defiancecraft/defiancecore/internal/chat"
	"github.com/defiancecraft/defiancecore/internal/command"
	"github.com/defiancecraft/defiancecore/internal/economy"
	"github.com/defiancecraft/defiancecore/internal/executor"
	"github.com/defiancecraft/defiancecore/internal/perm"
	"github.com/defiancecraft/defiancecore/internal/session"
	"github.com/defiancecraft/defiancecore/internal/store"
	"github.com/defiancecraft/defiancecore/internal/user"
	"github.com/defiancecraft/defiancecore/pkg/errutil"
)

// Services provides access to core services for command handlers.
// Handlers must not store references beyond execution.
type Services struct {
	Users    *user.Service
	Engine   *perm.Engine
	Sessions *session.Manager
	Exec     *executor.Executor
	Sched    session.Scheduler
	Economy  *economy.Service
	Logger   *slog.Logger
}

// logger returns the configured logger or the default one.
func (s *Services) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// reply marshals a caller reply onto the host's control thread, with
// color codes translated. Replies produced inside executor tasks must
// go through here; talking to a session from a worker goroutine is not
// allowed.
func (s *Services) reply(caller command.Caller, msg string) {
	translated := chat.Translate(msg)
	s.Sched.Run(func() {
		caller.Reply(translated)
	})
}

// replyInternalError sends the generic failure message and logs the
// real error; raw detail never reaches the caller.
func (s *Services) replyInternalError(caller command.Caller, msg string, err error) {
	errutil.LogError(s.logger(), msg, err)
	s.reply(caller, command.InternalErrorMessage)
}

// storeFailure handles a failed store call inside an executor task.
// Transient failures pass through untouched so the executor's retry
// policy absorbs them; the caller only ever hears about fatal ones.
func (s *Services) storeFailure(caller command.Caller, msg string, err error) error {
	if !store.IsTransient(err) {
		s.replyInternalError(caller, msg, err)
	}
	return err
}

// refreshOnline re-resolves a possibly-online identity after a
// permission-affecting mutation. The record fetch stays on the worker
// goroutine; only the session-state application is marshalled onto the
// control thread, so a slow store never stalls a game tick. A transient
// fetch failure propagates for the executor to retry.
func (s *Services) refreshOnline(ctx context.Context, id uuid.UUID) error {
	sess, ok := s.Sessions.Get(id)
	if !ok {
		return nil
	}

	rec, err := s.Users.Users().FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		if store.IsTransient(err) {
			return err
		}
		errutil.LogError(s.logger(), "failed to refresh online player", err)
		return nil
	}

	s.Sched.Run(func() {
		s.Engine.ApplyRecord(sess, rec)
	})
	return nil
}
