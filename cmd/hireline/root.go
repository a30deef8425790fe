// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hireline Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// serviceName identifies this binary in logs.
const serviceName = "hireline"

// NewRootCmd creates the root command for the Hireline CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hireline",
		Short: "Hireline - job portal account service",
		Long: `Hireline registers job seekers and recruiters, verifies their
credentials and issues the session cookies the web app uses.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewHashPasswordCmd())

	return cmd
}
