// Package cli implements the frontdesk command line: serve, migrate, seed
// and activate. cmd/frontdesk/main.go only executes the root command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkordes/frontdesk/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
}

// NewRootCommand creates the root command for the frontdesk CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "frontdesk",
		Short: "Hotel front desk service",
		Long: `Room inventory, reservations, and guest history for a small hotel.

Configuration comes from environment variables; a .env file is loaded first
when present and never overrides variables that are already set.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(opts.EnvFile); err != nil {
				return fmt.Errorf("load %s: %w", opts.EnvFile, err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "path to a .env file")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewActivateCommand(opts))

	return cmd
}
