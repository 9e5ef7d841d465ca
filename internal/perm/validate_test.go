// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

package perm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate_Clean(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Empty(t, cfg.Validate())
}

func TestConfigValidate_DuplicateGroupNames(t *testing.T) {
	cfg := &Config{ChatFormat: DefaultChatFormat, Groups: []Group{
		{Name: "vip"},
		{Name: "VIP"},
	}}

	problems := cfg.Validate()
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "duplicate group name")
}

func TestConfigValidate_UnknownInherit(t *testing.T) {
	cfg := &Config{ChatFormat: DefaultChatFormat, Groups: []Group{
		{Name: "vip", Inherit: []string{"ghost"}},
	}}

	problems := cfg.Validate()
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], `inherits unknown group "ghost"`)
}

func TestConfigValidate_InheritanceCycle(t *testing.T) {
	cfg := &Config{ChatFormat: DefaultChatFormat, Groups: []Group{
		{Name: "a", Inherit: []string{"b"}},
		{Name: "b", Inherit: []string{"a"}},
	}}

	problems := cfg.Validate()
	require.Len(t, problems, 2, "each cycle member reports once")
	assert.Contains(t, problems[0], "inheritance cycle")
}

func TestConfigValidate_SelfInheritance(t *testing.T) {
	cfg := &Config{ChatFormat: DefaultChatFormat, Groups: []Group{
		{Name: "a", Inherit: []string{"a"}},
	}}

	problems := cfg.Validate()
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "inheritance cycle")
}

func TestConfigValidate_MissingDefaultGroup(t *testing.T) {
	cfg := &Config{
		ChatFormat:    DefaultChatFormat,
		DefaultGroups: []string{"ghost"},
	}

	problems := cfg.Validate()
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], `default group "ghost"`)
}

func TestConfigValidate_ChatFormat(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   string
	}{
		{"unknown placeholder", "{player}: {message}", "unknown placeholder {player}"},
		{"unterminated placeholder", "{prefix: {message}", "unknown placeholder"},
		{"missing message", "{prefix}{name}", "does not include {message}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{ChatFormat: tt.format}
			problems := cfg.Validate()
			require.NotEmpty(t, problems)
			found := false
			for _, p := range problems {
				if strings.Contains(p, tt.want) {
					found = true
				}
			}
			assert.True(t, found, "problems: %v", problems)
		})
	}
}
