// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"github.com/spf13/cobra"

	"github.com/taibuivan/authgate/internal/platform/constants"
)

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	envFile string
}

// NewRootCmd creates the root command for the authgate CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:     constants.AppName,
		Short:   "authgate - credential-based authentication gateway",
		Version: constants.AppVersion,
		Long: `authgate registers users, verifies email/password logins, and keeps
browsers authenticated with a server-side session cookie.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newMigrateCmd(opts))

	return cmd
}
