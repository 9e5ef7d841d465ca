// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/defiancecraft/defiancecore/internal/logging"
)

// NewRootCmd creates the root command for the DefianceCore CLI.
// The core itself is a library embedded by the game server; the CLI
// only carries the operator-side maintenance commands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "defiancecore",
		Short: "DefianceCore - server extension layer maintenance tools",
		Long: `DefianceCore is the command, permission, and economy extension layer
for the DefianceCraft game server. This CLI runs database migrations
and validates the on-disk configuration; the layer itself is embedded
in the server process.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			format, _ := cmd.Flags().GetString("log-format")
			logging.SetDefault(logging.Options{
				Service: "defiancecore",
				Version: version,
				Format:  format,
			})
		},
	}

	cmd.PersistentFlags().String("config", "", "tool config file path (YAML)")
	cmd.PersistentFlags().String("database-url", "", "PostgreSQL connection URL (overrides config and DATABASE_URL)")
	cmd.PersistentFlags().String("log-format", "json", "log output format: json or text")

	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewValidateConfigCmd())

	return cmd
}
