// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hireline Contributors

package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/hireline/hireline/internal/auth"
)

// NewHashPasswordCmd creates the hash-password subcommand.
func NewHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Hash a password read from stdin",
		Long: `Read one password line from stdin and print its argon2id hash,
for seeding accounts directly in the database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return oops.Code("INPUT_READ_FAILED").With("operation", "read password").Wrap(err)
			}
			password := strings.TrimRight(line, "\r\n")

			hash, err := auth.NewArgon2idHasher().Hash(password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}
