// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

package perm

import (
	"fmt"
	"strings"
)

// chatPlaceholders are the substitution tokens the chat renderer knows.
var chatPlaceholders = []string{"{prefix}", "{suffix}", "{name}", "{message}"}

// Validate reports semantic problems in the configuration: duplicate
// group names, inherit references to unknown groups, inheritance
// cycles, default groups that do not exist, and unknown chatFormat
// placeholders. The runtime tolerates all of these (unknown inherits
// are skipped, cycles are truncated), so validation is advisory and
// returns every finding rather than stopping at the first.
func (c *Config) Validate() []string {
	var problems []string

	seen := make(map[string]struct{}, len(c.Groups))
	for _, g := range c.Groups {
		key := strings.ToLower(g.Name)
		if g.Name == "" {
			problems = append(problems, "group with empty name")
			continue
		}
		if _, dup := seen[key]; dup {
			problems = append(problems, fmt.Sprintf("duplicate group name %q", g.Name))
		}
		seen[key] = struct{}{}
	}

	for _, g := range c.Groups {
		for _, parent := range g.Inherit {
			if c.Group(parent) == nil {
				problems = append(problems, fmt.Sprintf("group %q inherits unknown group %q", g.Name, parent))
			}
		}
	}

	for i := range c.Groups {
		if cycle := c.findCycle(&c.Groups[i]); cycle != "" {
			problems = append(problems, fmt.Sprintf("inheritance cycle: %s", cycle))
		}
	}

	for _, name := range c.DefaultGroups {
		if c.Group(name) == nil {
			problems = append(problems, fmt.Sprintf("default group %q is not configured", name))
		}
	}

	problems = append(problems, c.validateChatFormat()...)
	return problems
}

// findCycle walks the inheritance graph from g and returns a rendered
// cycle path if g can reach itself, or "" otherwise.
func (c *Config) findCycle(g *Group) string {
	root := strings.ToLower(g.Name)
	var walk func(cur *Group, path []string) string
	walk = func(cur *Group, path []string) string {
		name := strings.ToLower(cur.Name)
		for _, p := range path {
			if p != name {
				continue
			}
			// Report only cycles through the walk root so each cycle
			// surfaces once per member, not once per upstream group.
			if name == root {
				return strings.Join(append(path, name), " -> ")
			}
			return ""
		}
		path = append(path, name)
		for _, parent := range cur.Inherit {
			pg := c.Group(parent)
			if pg == nil {
				continue
			}
			if cycle := walk(pg, path); cycle != "" {
				return cycle
			}
		}
		return ""
	}
	return walk(g, nil)
}

// validateChatFormat flags placeholder-looking tokens the renderer
// will not substitute, and formats that drop the message entirely.
func (c *Config) validateChatFormat() []string {
	var problems []string

	format := c.ChatFormat
	for {
		open := strings.Index(format, "{")
		if open < 0 {
			break
		}
		end := strings.Index(format[open:], "}")
		if end < 0 {
			problems = append(problems, fmt.Sprintf("chatFormat has unterminated placeholder at %q", format[open:]))
			break
		}
		token := format[open : open+end+1]
		known := false
		for _, p := range chatPlaceholders {
			if token == p {
				known = true
				break
			}
		}
		if !known {
			problems = append(problems, fmt.Sprintf("chatFormat has unknown placeholder %s", token))
		}
		format = format[open+end+1:]
	}

	if !strings.Contains(c.ChatFormat, "{message}") {
		problems = append(problems, "chatFormat does not include {message}")
	}
	return problems
}
