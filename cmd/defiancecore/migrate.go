// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/defiancecraft/defiancecore/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long:  `Apply, roll back, or inspect the schema migrations of the user store.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE:  runMigrateUp,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE:  runMigrateDown,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current schema version",
		RunE:  runMigrateStatus,
	})

	return cmd
}

func openMigrator(cmd *cobra.Command) (*store.Migrator, error) {
	cfg, err := loadToolConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, oops.Code("CONFIG_INVALID").Errorf("database URL is required (flag, config file, or DATABASE_URL)")
	}
	return store.NewMigrator(cfg.DatabaseURL)
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	m, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer m.Close()

	cmd.Println("Applying migrations...")
	if err := m.Up(); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "up").Wrap(err)
	}
	cmd.Println("Migrations applied successfully")
	return nil
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	m, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer m.Close()

	cmd.Println("Rolling back migrations...")
	if err := m.Down(); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "down").Wrap(err)
	}
	cmd.Println("Rollback completed")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	m, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "status").Wrap(err)
	}
	if version == 0 {
		cmd.Println("No migrations applied")
		return nil
	}
	if dirty {
		cmd.Printf("Schema version: %d (dirty)\n", version)
		return nil
	}
	cmd.Printf("Schema version: %d\n", version)
	return nil
}
