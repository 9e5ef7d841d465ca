// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

package command

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCaller is a test caller with a canned permission set.
type fakeCaller struct {
	cc      CallerContext
	id      uuid.UUID
	name    string
	perms   map[string]bool
	replies []string
}

func (c *fakeCaller) Context() CallerContext { return c.cc }
func (c *fakeCaller) ID() uuid.UUID          { return c.id }
func (c *fakeCaller) Name() string           { return c.name }
func (c *fakeCaller) Reply(msg string)       { c.replies = append(c.replies, msg) }

func (c *fakeCaller) HasPermission(token string) bool {
	return c.perms[token]
}

func sessionCaller(perms ...string) *fakeCaller {
	m := make(map[string]bool, len(perms))
	for _, p := range perms {
		m[p] = true
	}
	return &fakeCaller{cc: CallerSession, id: uuid.New(), name: "steve", perms: m}
}

func TestDispatcher_UnknownLabelFallsThrough(t *testing.T) {
	d := NewDispatcher(NewTable())

	handled, err := d.Dispatch(context.Background(), "nope", nil, sessionCaller())
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestDispatcher_LabelIsCaseSensitive(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.RegisterUniversal("perm", "", noopHandler))
	d := NewDispatcher(tbl)

	handled, err := d.Dispatch(context.Background(), "Perm", nil, sessionCaller())
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestDispatcher_InvokesContextHandler(t *testing.T) {
	tbl := NewTable()
	var gotArgs []string
	require.NoError(t, tbl.Register("warp", CallerSession, "", func(_ context.Context, _ Caller, args []string) error {
		gotArgs = args
		return nil
	}))
	d := NewDispatcher(tbl)

	handled, err := d.Dispatch(context.Background(), "warp", []string{"spawn"}, sessionCaller())
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []string{"spawn"}, gotArgs)
}

func TestDispatcher_MissingContextHandlerFallsThrough(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Register("warp", CallerOperator, "", noopHandler))
	d := NewDispatcher(tbl)

	handled, err := d.Dispatch(context.Background(), "warp", nil, sessionCaller())
	require.NoError(t, err)
	assert.False(t, handled, "a session caller must not consume an operator-only command")
}

func TestDispatcher_DeniedCallerGetsMessage(t *testing.T) {
	tbl := NewTable()
	invoked := false
	require.NoError(t, tbl.Register("warp", CallerSession, "defiancecraft.warp", func(_ context.Context, _ Caller, _ []string) error {
		invoked = true
		return nil
	}))
	d := NewDispatcher(tbl)

	caller := sessionCaller() // no grants
	handled, err := d.Dispatch(context.Background(), "warp", nil, caller)
	require.NoError(t, err, "denial is an expected outcome, not an error")
	assert.True(t, handled, "denial still suppresses fallback handling")
	assert.False(t, invoked)
	require.Len(t, caller.replies, 1)
	assert.Equal(t, NoPermissionMessage, caller.replies[0])
}

func TestDispatcher_EmptyTokenMeansUnrestricted(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Register("spawn", CallerSession, "", noopHandler))
	d := NewDispatcher(tbl)

	handled, err := d.Dispatch(context.Background(), "spawn", nil, sessionCaller())
	require.NoError(t, err)
	assert.True(t, handled)
}

func TestDispatcher_SubCommandConsumesFirstArg(t *testing.T) {
	tbl := NewTable()
	parentCalled := false
	var subArgs []string
	require.NoError(t, tbl.RegisterUniversal("perm", "", func(_ context.Context, _ Caller, _ []string) error {
		parentCalled = true
		return nil
	}))
	require.NoError(t, tbl.RegisterUniversalSub("perm", "addgroup", "", func(_ context.Context, _ Caller, args []string) error {
		subArgs = args
		return nil
	}))
	d := NewDispatcher(tbl)

	handled, err := d.Dispatch(context.Background(), "perm", []string{"AddGroup", "steve", "vip"}, sessionCaller())
	require.NoError(t, err)
	assert.True(t, handled)
	assert.False(t, parentCalled)
	assert.Equal(t, []string{"steve", "vip"}, subArgs)
}

func TestDispatcher_UnknownSubFallsToParent(t *testing.T) {
	tbl := NewTable()
	var parentArgs []string
	require.NoError(t, tbl.RegisterUniversal("perm", "", func(_ context.Context, _ Caller, args []string) error {
		parentArgs = args
		return nil
	}))
	require.NoError(t, tbl.RegisterUniversalSub("perm", "addgroup", "", noopHandler))
	d := NewDispatcher(tbl)

	handled, err := d.Dispatch(context.Background(), "perm", []string{"bogus", "x"}, sessionCaller())
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []string{"bogus", "x"}, parentArgs, "unmatched first arg stays with the parent")
}

func TestDispatcher_SubAuthorizationIndependentOfParent(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.RegisterUniversal("perm", "defiancecraft.perm.help", noopHandler))
	require.NoError(t, tbl.RegisterUniversalSub("perm", "addgroup", "defiancecraft.perm.addgroup", noopHandler))
	d := NewDispatcher(tbl)

	// Grants only the sub token: the parent's token must not be
	// consulted for a sub-command invocation.
	caller := sessionCaller("defiancecraft.perm.addgroup")
	handled, err := d.Dispatch(context.Background(), "perm", []string{"addgroup", "steve", "vip"}, caller)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Empty(t, caller.replies)

	// And the parent token alone does not open the sub-command.
	caller = sessionCaller("defiancecraft.perm.help")
	handled, err = d.Dispatch(context.Background(), "perm", []string{"addgroup"}, caller)
	require.NoError(t, err)
	assert.True(t, handled)
	require.Len(t, caller.replies, 1)
	assert.Equal(t, NoPermissionMessage, caller.replies[0])
}

func TestDispatcher_HandlerErrorPassesThrough(t *testing.T) {
	tbl := NewTable()
	boom := errors.New("boom")
	require.NoError(t, tbl.Register("warp", CallerSession, "", func(_ context.Context, _ Caller, _ []string) error {
		return boom
	}))
	d := NewDispatcher(tbl)

	handled, err := d.Dispatch(context.Background(), "warp", nil, sessionCaller())
	assert.True(t, handled)
	assert.ErrorIs(t, err, boom)
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		label string
		args  []string
		ok    bool
	}{
		{"plain", "perm addgroup steve vip", "perm", []string{"addgroup", "steve", "vip"}, true},
		{"leading slash", "/perm reload", "perm", []string{"reload"}, true},
		{"extra whitespace", "  eco   bal   steve ", "eco", []string{"bal", "steve"}, true},
		{"no args", "eco", "eco", []string{}, true},
		{"blank", "   ", "", nil, false},
		{"bare slash", "/", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, args, ok := ParseLine(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.label, label)
			if tt.ok {
				assert.Equal(t, tt.args, args)
			}
		})
	}
}
