// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

package main

import (
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/defiancecraft/defiancecore/internal/perm"
)

// NewValidateConfigCmd creates the validate-config subcommand.
func NewValidateConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate-config",
		Short: "Validate the permission configuration without a server",
		Long: `Loads the group-permission configuration and reports semantic problems:
duplicate group names, unknown inherit targets, inheritance cycles,
missing default groups, and bad chatFormat placeholders.
Exits with code 0 on success, non-zero on failure.

Useful in CI pipelines:
  defiancecore validate-config --permissions-path config/permissions.yaml`,
		RunE: runValidateConfig,
	}
	cmd.Flags().String("permissions-path", "", "permission config file path (YAML)")
	return cmd
}

func runValidateConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadToolConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.PermissionsPath == "" {
		return oops.Code("CONFIG_INVALID").Errorf("permission config path is required (--permissions-path or config file)")
	}

	permCfg, err := perm.LoadConfig(cfg.PermissionsPath)
	if err != nil {
		return err
	}

	problems := permCfg.Validate()
	if len(problems) > 0 {
		for _, p := range problems {
			slog.Error("config validation failed", "detail", p)
		}
		return oops.Code("CONFIG_INVALID").
			With("path", cfg.PermissionsPath).
			Errorf("validation failed: %d problem(s) found", len(problems))
	}

	slog.Info("configuration valid",
		"path", cfg.PermissionsPath,
		"groups", len(permCfg.Groups))
	return nil
}
