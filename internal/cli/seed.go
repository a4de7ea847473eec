package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkordes/frontdesk/internal/config"
	"github.com/pkordes/frontdesk/internal/domain"
	"github.com/pkordes/frontdesk/internal/repo"
	"github.com/pkordes/frontdesk/internal/seed"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Catalog string
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the room catalog into an empty room store",
		Long: `Insert the room catalog when the room store has no rooms.

Without --catalog the built-in 49-room catalog is used. A store that already
has rooms is left untouched.

Example:
  frontdesk seed
  frontdesk seed --catalog ./rooms.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rooms, err := loadCatalog(opts.Catalog)
			if err != nil {
				return err
			}
			return runSeed(cmd.Context(), rooms, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "path to a YAML room catalog")

	return cmd
}

// loadCatalog reads the catalog at path, or the built-in one when path is empty.
func loadCatalog(path string) ([]domain.Room, error) {
	if path == "" {
		return seed.DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return seed.Parse(data)
}

func runSeed(ctx context.Context, rooms []domain.Room, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel, os.Stderr)

	pool, err := openPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	n, err := seed.Seed(ctx, repo.NewRoomStore(pool), rooms, log)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "inserted %d rooms\n", n)
	return nil
}
