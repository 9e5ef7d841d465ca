// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

package main

import (
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// toolConfig holds the settings the maintenance commands need. Layered
// lowest to highest: config file, environment, command-line flags.
type toolConfig struct {
	DatabaseURL     string `koanf:"database-url"`
	PermissionsPath string `koanf:"permissions-path"`
}

// loadToolConfig assembles the tool configuration for a command
// invocation. The config file is optional; flags always win.
func loadToolConfig(cmd *cobra.Command) (*toolConfig, error) {
	k := koanf.New(".")

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_INVALID").With("path", path).Wrap(err)
		}
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		if err := k.Set("database-url", url); err != nil {
			return nil, oops.Code("CONFIG_INVALID").Wrap(err)
		}
	}

	if err := k.Load(posflag.Provider(cmd.Flags(), ".", k), nil); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	var cfg toolConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	return &cfg, nil
}
