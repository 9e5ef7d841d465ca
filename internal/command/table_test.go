// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

package command

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noopHandler is a test helper that does nothing.
func noopHandler(_ context.Context, _ Caller, _ []string) error {
	return nil
}

// recordingBinder records Bind/Restore calls and can fail Bind.
type recordingBinder struct {
	bound    []string
	restored []string
	bindErr  error
}

func (b *recordingBinder) Bind(label string) error {
	if b.bindErr != nil {
		return b.bindErr
	}
	b.bound = append(b.bound, label)
	return nil
}

func (b *recordingBinder) Restore(label string) {
	b.restored = append(b.restored, label)
}

func oopsCode(err error) string {
	var o oops.OopsError
	if errors.As(err, &o) {
		if code, ok := o.Code().(string); ok {
			return code
		}
	}
	return ""
}

func TestTable_RegisterAndGet(t *testing.T) {
	tbl := NewTable()

	err := tbl.Register("gamemode", CallerSession, "defiancecraft.gamemode", noopHandler)
	require.NoError(t, err)

	v, ok := tbl.Get("gamemode")
	require.True(t, ok)
	assert.Equal(t, "gamemode", v.Label())
	assert.True(t, v.HasHandler(CallerSession))
	assert.False(t, v.HasHandler(CallerOperator))
}

func TestTable_RegisterConflictSameContext(t *testing.T) {
	tbl := NewTable()

	require.NoError(t, tbl.Register("warp", CallerSession, "", noopHandler))

	err := tbl.Register("warp", CallerSession, "", noopHandler)
	require.Error(t, err)
	assert.Equal(t, CodeRegistrationConflict, oopsCode(err))
}

func TestTable_RegisterOtherContextSucceeds(t *testing.T) {
	tbl := NewTable()

	require.NoError(t, tbl.Register("warp", CallerSession, "", noopHandler))
	require.NoError(t, tbl.Register("warp", CallerOperator, "", noopHandler))

	v, _ := tbl.Get("warp")
	assert.True(t, v.HasHandler(CallerSession))
	assert.True(t, v.HasHandler(CallerOperator))
}

func TestTable_RegisterNilHandler(t *testing.T) {
	tbl := NewTable()

	err := tbl.Register("warp", CallerSession, "", nil)
	require.Error(t, err)
	assert.Equal(t, CodeNilHandler, oopsCode(err))

	_, ok := tbl.Get("warp")
	assert.False(t, ok, "nil handler must not create an entry")
}

func TestTable_RegisterUniversal(t *testing.T) {
	tbl := NewTable()

	require.NoError(t, tbl.RegisterUniversal("perm", "defiancecraft.perm", noopHandler))

	v, ok := tbl.Get("perm")
	require.True(t, ok)
	assert.True(t, v.HasHandler(CallerSession))
	assert.True(t, v.HasHandler(CallerOperator))
}

func TestTable_RegisterUniversalAtomicOnConflict(t *testing.T) {
	tbl := NewTable()

	// Session slot taken; a universal registration must fail without
	// touching the free operator slot.
	require.NoError(t, tbl.Register("perm", CallerSession, "", noopHandler))

	err := tbl.RegisterUniversal("perm", "", noopHandler)
	require.Error(t, err)
	assert.Equal(t, CodeRegistrationConflict, oopsCode(err))

	v, _ := tbl.Get("perm")
	assert.False(t, v.HasHandler(CallerOperator), "failed universal registration must not bind any context")
}

func TestTable_RegisterSubParentMissing(t *testing.T) {
	tbl := NewTable()

	err := tbl.RegisterSub("perm", "addgroup", CallerSession, "", noopHandler)
	require.Error(t, err)
	assert.Equal(t, CodeParentNotRegistered, oopsCode(err))
}

func TestTable_RegisterSubCaseInsensitiveConflict(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.RegisterUniversal("perm", "", noopHandler))
	require.NoError(t, tbl.RegisterUniversalSub("perm", "addgroup", "", noopHandler))

	err := tbl.RegisterUniversalSub("perm", "AddGroup", "", noopHandler)
	require.Error(t, err)
	assert.Equal(t, CodeRegistrationConflict, oopsCode(err))
}

func TestTable_SubResolutionCaseInsensitive(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.RegisterUniversal("perm", "", noopHandler))
	require.NoError(t, tbl.RegisterUniversalSub("perm", "addgroup", "", noopHandler))

	v, _ := tbl.Get("perm")
	sub := v.sub("ADDGROUP")
	require.NotNil(t, sub)
	assert.Equal(t, "addgroup", sub.Name())
}

func TestTable_FallbackBindOnFirstClaim(t *testing.T) {
	binder := &recordingBinder{}
	tbl := NewTable(WithFallbackBinder(binder))

	require.NoError(t, tbl.Register("tp", CallerSession, "", noopHandler))
	require.NoError(t, tbl.Register("tp", CallerOperator, "", noopHandler))

	assert.Equal(t, []string{"tp"}, binder.bound, "bind fires once per label, not per context")
}

func TestTable_FallbackBindFailure(t *testing.T) {
	binder := &recordingBinder{bindErr: errors.New("label owned by host")}
	tbl := NewTable(WithFallbackBinder(binder))

	err := tbl.Register("tp", CallerSession, "", noopHandler)
	require.Error(t, err)
	assert.Equal(t, CodeFallbackBind, oopsCode(err))

	_, ok := tbl.Get("tp")
	assert.False(t, ok)
}

func TestTable_UnregisterRestoresFallback(t *testing.T) {
	binder := &recordingBinder{}
	tbl := NewTable(WithFallbackBinder(binder))

	require.NoError(t, tbl.RegisterUniversal("tp", "", noopHandler))
	require.NoError(t, tbl.RegisterUniversalSub("tp", "here", "", noopHandler))

	tbl.Unregister("tp")

	_, ok := tbl.Get("tp")
	assert.False(t, ok)
	assert.Equal(t, []string{"tp"}, binder.restored)
}

func TestTable_UnregisterUnknownIsNoop(t *testing.T) {
	binder := &recordingBinder{}
	tbl := NewTable(WithFallbackBinder(binder))

	tbl.Unregister("ghost")
	assert.Empty(t, binder.restored)
}

func TestTable_Labels(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.RegisterUniversal("perm", "", noopHandler))
	require.NoError(t, tbl.RegisterUniversal("eco", "", noopHandler))

	assert.Equal(t, []string{"eco", "perm"}, tbl.Labels())
}
