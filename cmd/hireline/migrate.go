// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hireline Contributors

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/hireline/hireline/internal/config"
	"github.com/hireline/hireline/internal/store"
)

// migratorFactory is replaced in tests.
var migratorFactory = func(url string) (Migrator, error) {
	return store.NewMigrator(url)
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long:  `Apply, roll back and inspect the account schema migrations.`,
	}

	var all bool
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(m Migrator) error {
				if all {
					cmd.Println("Rolling back all migrations...")
					if err := m.Down(); err != nil {
						return err
					}
				} else {
					cmd.Println("Rolling back one migration...")
					if err := m.Steps(-1); err != nil {
						return err
					}
				}
				return printVersion(cmd, m)
			})
		},
	}
	down.Flags().BoolVar(&all, "all", false, "roll back every migration (drops all account data)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(func(m Migrator) error {
					cmd.Println("Running migrations...")
					if err := m.Up(); err != nil {
						return err
					}
					cmd.Println("Migrations completed successfully")
					return printVersion(cmd, m)
				})
			},
		},
		down,
		&cobra.Command{
			Use:   "status",
			Short: "Show applied and pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(func(m Migrator) error {
					return printStatus(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Mark VERSION as applied without running it",
			Long: `Mark VERSION as applied without running it. Use this only to
recover a dirty database after repairing the schema by hand.`,
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := parseForceVersion(args[0])
				if err != nil {
					return err
				}
				return withMigrator(func(m Migrator) error {
					if err := m.Force(v); err != nil {
						return err
					}
					return printVersion(cmd, m)
				})
			},
		},
	)

	return cmd
}

func withMigrator(fn func(Migrator) error) error {
	databaseURL := os.Getenv(config.EnvDatabaseURL)
	if databaseURL == "" {
		return oops.Code("CONFIG_INVALID").
			With("key", config.EnvDatabaseURL).
			Errorf("%s environment variable is required", config.EnvDatabaseURL)
	}

	m, err := migratorFactory(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close() //nolint:errcheck // close error is secondary to fn's

	return fn(m)
}

func printVersion(cmd *cobra.Command, m Migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if dirty {
		cmd.Printf("Schema version: %d (dirty)\n", v)
		return nil
	}
	cmd.Printf("Schema version: %d\n", v)
	return nil
}

func printStatus(cmd *cobra.Command, m Migrator) error {
	if err := printVersion(cmd, m); err != nil {
		return err
	}

	applied, err := m.AppliedMigrations()
	if err != nil {
		return err
	}
	pending, err := m.PendingMigrations()
	if err != nil {
		return err
	}

	for _, group := range []struct {
		label    string
		versions []uint
	}{
		{"Applied", applied},
		{"Pending", pending},
	} {
		cmd.Printf("%s (%d):\n", group.label, len(group.versions))
		for _, v := range group.versions {
			name, err := store.MigrationName(v)
			if err != nil {
				return err
			}
			if name == "" {
				name = fmt.Sprintf("%06d", v)
			}
			cmd.Printf("  %s\n", name)
		}
	}
	return nil
}

// parseForceVersion parses a non-negative migration version.
func parseForceVersion(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Errorf("version must be an integer")
	}
	if v < 0 {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Errorf("version must be non-negative")
	}
	return v, nil
}
