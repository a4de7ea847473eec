package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/pkordes/frontdesk/internal/config"
	"github.com/pkordes/frontdesk/migrations"
)

// migrateActions are the accepted arguments of the migrate command.
var migrateActions = []string{"up", "down", "status", "reset"}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down|status|reset]",
		Short: "Apply or inspect database migrations",
		Long: `Run the embedded goose migrations against DATABASE_URL.

  up      apply every pending migration (default)
  down    roll back the most recent migration
  status  list migrations and whether they are applied
  reset   roll back every migration`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: migrateActions,
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}
			return migrate(cmd.Context(), action, cmd.OutOrStdout())
		},
	}
}

func migrate(ctx context.Context, action string, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel, os.Stderr)

	db, err := openSQLDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}

	switch action {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		log.Info("migrations applied", "count", len(results))
		printResults(out, results)
	case "down":
		result, err := provider.Down(ctx)
		if err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
		printResults(out, []*goose.MigrationResult{result})
	case "reset":
		results, err := provider.DownTo(ctx, 0)
		if err != nil {
			return fmt.Errorf("migrate reset: %w", err)
		}
		log.Info("migrations rolled back", "count", len(results))
		printResults(out, results)
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("migrate status: %w", err)
		}
		for _, s := range statuses {
			applied := ""
			if s.State == goose.StateApplied {
				applied = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(out, "%-8s %-40s %s\n", s.State, s.Source.Path, applied)
		}
	default:
		return fmt.Errorf("unknown migrate action %q", action)
	}
	return nil
}

func printResults(out io.Writer, results []*goose.MigrationResult) {
	for _, r := range results {
		if r == nil {
			continue
		}
		fmt.Fprintf(out, "%-5s %-40s %s\n", r.Direction, r.Source.Path, r.Duration)
	}
}
