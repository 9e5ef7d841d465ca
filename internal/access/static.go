// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

// Package access provides permission checkers for callers that do not
// answer checks from a live session attachment, such as operator
// consoles and tests.
package access

import (
	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// compiledGrant holds a permission pattern and its compiled glob.
type compiledGrant struct {
	pattern string
	glob    glob.Glob
}

// StaticChecker answers permission checks from a fixed grant list.
// Patterns use glob syntax with '.' as the separator, so
// "defiancecraft.perm.*" grants every token under that namespace.
//
// StaticChecker is immutable after construction and safe for
// concurrent use.
type StaticChecker struct {
	grants []compiledGrant
}

// NewStaticChecker compiles a grant list. Returns an error for any
// pattern with invalid glob syntax.
func NewStaticChecker(patterns []string) (*StaticChecker, error) {
	grants := make([]compiledGrant, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '.')
		if err != nil {
			return nil, oops.Code("INVALID_PERMISSION_PATTERN").
				With("pattern", p).
				Wrap(err)
		}
		grants = append(grants, compiledGrant{pattern: p, glob: g})
	}
	return &StaticChecker{grants: grants}, nil
}

// HasPermission reports whether any grant pattern matches the token.
func (c *StaticChecker) HasPermission(token string) bool {
	for _, g := range c.grants {
		if g.glob.Match(token) {
			return true
		}
	}
	return false
}

// AllowAll is a checker that grants every token. Operator consoles
// typically run unrestricted.
type AllowAll struct{}

// HasPermission always reports true.
func (AllowAll) HasPermission(string) bool { return true }
