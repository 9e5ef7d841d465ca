// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

package perm

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultChatFormat is used when the configuration omits chatFormat.
const DefaultChatFormat = "{prefix}{suffix} {name}> {message}"

// NegationMarker prefixes a permission token to turn the grant into a
// deny when applied to an attachment.
const NegationMarker = "^"

// Group is a named permission bundle. Inherited group names may
// reference groups that do not exist yet; they resolve lazily at
// flattening time and unknown names are skipped.
type Group struct {
	Name        string   `koanf:"name" yaml:"name"`
	Prefix      string   `koanf:"prefix" yaml:"prefix"`
	Suffix      string   `koanf:"suffix" yaml:"suffix"`
	Permissions []string `koanf:"permissions" yaml:"permissions"`
	Inherit     []string `koanf:"inherit" yaml:"inherit"`
	Priority    int      `koanf:"priority" yaml:"priority"`
}

// Config is the whole group-permission configuration document.
//
// Config is NOT safe for concurrent use. All writes and reads must
// happen on the host's control thread; administrative edits arriving
// from command handlers already run there. This single-writer invariant
// replaces locking on purpose: see the concurrency notes in DESIGN.md.
type Config struct {
	ChatFormat    string   `koanf:"chatFormat" yaml:"chatFormat"`
	Groups        []Group  `koanf:"groups" yaml:"groups"`
	DefaultGroups []string `koanf:"defaultGroups" yaml:"defaultGroups"`
}

// LoadConfig reads the permission configuration document from a YAML file.
// A missing chatFormat falls back to DefaultChatFormat.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, oops.Code("PERM_CONFIG_LOAD_FAILED").
			With("path", path).
			Wrap(err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("PERM_CONFIG_PARSE_FAILED").
			With("path", path).
			Wrap(err)
	}

	if cfg.ChatFormat == "" {
		cfg.ChatFormat = DefaultChatFormat
	}
	return &cfg, nil
}

// Save writes the configuration wholesale to a YAML file, atomically
// replacing the previous document.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return oops.Code("PERM_CONFIG_SAVE_FAILED").With("path", path).Wrap(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".permissions-*.yaml")
	if err != nil {
		return oops.Code("PERM_CONFIG_SAVE_FAILED").With("path", path).Wrap(err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()        //nolint:errcheck // write error takes precedence
		_ = os.Remove(tmp.Name()) //nolint:errcheck // best-effort cleanup
		return oops.Code("PERM_CONFIG_SAVE_FAILED").With("path", path).Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name()) //nolint:errcheck // best-effort cleanup
		return oops.Code("PERM_CONFIG_SAVE_FAILED").With("path", path).Wrap(err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name()) //nolint:errcheck // best-effort cleanup
		return oops.Code("PERM_CONFIG_SAVE_FAILED").With("path", path).Wrap(err)
	}
	return nil
}

// Group returns the group with the given name (case-insensitive),
// or nil if it is not configured.
func (c *Config) Group(name string) *Group {
	for i := range c.Groups {
		if strings.EqualFold(c.Groups[i].Name, name) {
			return &c.Groups[i]
		}
	}
	return nil
}

// GroupsByPriority returns the groups sorted by priority. The sort is
// stable, so groups with equal priority keep registration order.
func (c *Config) GroupsByPriority(ascending bool) []*Group {
	out := make([]*Group, len(c.Groups))
	for i := range c.Groups {
		out[i] = &c.Groups[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Priority > out[j].Priority
	})
	return out
}

// Permissions flattens a group's permission tokens: inherited groups
// depth-first and ancestors first, the group's own tokens last, so
// directly-assigned tokens win under the last-write-wins grant
// primitive. No deduplication is performed. A visited set truncates
// inheritance cycles instead of recursing forever.
func (c *Config) Permissions(g *Group) []string {
	visited := make(map[string]struct{})
	return c.flatten(g, visited)
}

func (c *Config) flatten(g *Group, visited map[string]struct{}) []string {
	visited[strings.ToLower(g.Name)] = struct{}{}

	var perms []string
	for _, name := range g.Inherit {
		if _, seen := visited[strings.ToLower(name)]; seen {
			continue
		}
		anc := c.Group(name)
		if anc == nil {
			// Unknown inherited group names resolve lazily and may
			// simply not exist yet.
			continue
		}
		perms = append(perms, c.flatten(anc, visited)...)
	}
	return append(perms, g.Permissions...)
}

// CreateGroup adds an empty group. Returns false if a group with that
// name (case-insensitive) already exists.
func (c *Config) CreateGroup(name string) bool {
	if c.Group(name) != nil {
		return false
	}
	c.Groups = append(c.Groups, Group{Name: name})
	return true
}

// AddPermission appends a permission token to a group.
// Returns false if the group was not found.
func (c *Config) AddPermission(groupName, token string) bool {
	g := c.Group(groupName)
	if g == nil {
		return false
	}
	g.Permissions = append(g.Permissions, token)
	return true
}

// RemovePermission removes every occurrence of a permission token from
// a group. Returns false if the group was not found.
func (c *Config) RemovePermission(groupName, token string) bool {
	g := c.Group(groupName)
	if g == nil {
		return false
	}
	kept := g.Permissions[:0]
	for _, p := range g.Permissions {
		if p != token {
			kept = append(kept, p)
		}
	}
	g.Permissions = kept
	return true
}

// SetGroupPrefix sets a group's prefix. Returns false if not found.
func (c *Config) SetGroupPrefix(groupName, prefix string) bool {
	g := c.Group(groupName)
	if g == nil {
		return false
	}
	g.Prefix = prefix
	return true
}

// SetGroupSuffix sets a group's suffix. Returns false if not found.
func (c *Config) SetGroupSuffix(groupName, suffix string) bool {
	g := c.Group(groupName)
	if g == nil {
		return false
	}
	g.Suffix = suffix
	return true
}

// SetGroupPriority sets a group's priority. Returns false if not found.
func (c *Config) SetGroupPriority(groupName string, priority int) bool {
	g := c.Group(groupName)
	if g == nil {
		return false
	}
	g.Priority = priority
	return true
}

// ParseToken splits a permission token into its bare name and grant
// direction: a leading NegationMarker means deny.
func ParseToken(token string) (name string, allow bool) {
	if strings.HasPrefix(token, NegationMarker) {
		return strings.TrimPrefix(token, NegationMarker), false
	}
	return token, true
}
