// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticChecker_ExactMatch(t *testing.T) {
	c, err := NewStaticChecker([]string{"defiancecraft.perm.addgroup"})
	require.NoError(t, err)

	assert.True(t, c.HasPermission("defiancecraft.perm.addgroup"))
	assert.False(t, c.HasPermission("defiancecraft.perm.remgroup"))
}

func TestStaticChecker_Wildcard(t *testing.T) {
	c, err := NewStaticChecker([]string{"defiancecraft.perm.*"})
	require.NoError(t, err)

	assert.True(t, c.HasPermission("defiancecraft.perm.addgroup"))
	assert.True(t, c.HasPermission("defiancecraft.perm.reload"))
	assert.False(t, c.HasPermission("defiancecraft.eco.give"),
		"wildcard is scoped to its namespace")
}

func TestStaticChecker_SeparatorBoundsWildcard(t *testing.T) {
	c, err := NewStaticChecker([]string{"defiancecraft.*"})
	require.NoError(t, err)

	assert.True(t, c.HasPermission("defiancecraft.perm"))
	assert.False(t, c.HasPermission("defiancecraft.perm.addgroup"),
		"single wildcard does not cross the '.' separator")
}

func TestStaticChecker_InvalidPattern(t *testing.T) {
	_, err := NewStaticChecker([]string{"defiancecraft.[perm"})
	assert.Error(t, err)
}

func TestStaticChecker_Empty(t *testing.T) {
	c, err := NewStaticChecker(nil)
	require.NoError(t, err)
	assert.False(t, c.HasPermission("anything"))
}

func TestAllowAll(t *testing.T) {
	assert.True(t, AllowAll{}.HasPermission("anything.at.all"))
}
