package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkordes/frontdesk/internal/config"
	"github.com/pkordes/frontdesk/internal/engine"
	"github.com/pkordes/frontdesk/internal/repo"
)

// NewActivateCommand creates the activate command.
func NewActivateCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "activate",
		Short: "Promote due future reservations to active stays",
		Long: `Run reservation activation once, outside the server's daily schedule.

Every future reservation whose check-in is today or earlier occupies its room,
provided the room has no active stay. Running it twice is harmless.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return activate(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func activate(ctx context.Context, out io.Writer) error {
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

	local, closeCache, err := openCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = closeCache() }()

	eng := engine.New(repo.NewRoomStore(pool), local, engine.WithLogger(log))
	// Load restores the guest history from the cache so promoted stays are
	// recorded there, and already activates what is due.
	if err := eng.Load(ctx); err != nil {
		return err
	}
	if err := eng.ActivateDue(ctx); err != nil {
		return err
	}
	st := eng.Statistics()
	fmt.Fprintf(out, "%d rooms occupied, %d future reservations pending\n", st.OccupiedRooms, st.ReservedRooms)
	return nil
}
