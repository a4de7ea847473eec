package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/pkordes/frontdesk/api"
	"github.com/pkordes/frontdesk/internal/config"
	"github.com/pkordes/frontdesk/internal/engine"
	"github.com/pkordes/frontdesk/internal/handler"
	"github.com/pkordes/frontdesk/internal/middleware"
	"github.com/pkordes/frontdesk/internal/repo"
	"github.com/pkordes/frontdesk/internal/scheduler"
)

var (
	_ handler.FrontDesk   = (*engine.Engine)(nil)
	_ handler.SyncTrigger = (*scheduler.Scheduler)(nil)
	_ scheduler.Syncer    = (*engine.Engine)(nil)
)

// shutdownTimeout bounds how long in-flight requests may run after a signal.
const shutdownTimeout = 15 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with background sync",
		Long: `Start the HTTP API.

The engine loads its state from the room store (falling back to the local
cache when the store is unreachable), then a scheduler keeps it in sync and
activates due reservations every day.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel, os.Stdout)
	slog.SetDefault(log)

	pool, err := openPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info("database connection established")

	local, closeCache, err := openCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeCache(); err != nil {
			log.Warn("close cache", "error", err)
		}
	}()

	eng := engine.New(repo.NewRoomStore(pool), local, engine.WithLogger(log))
	sched, err := scheduler.New(eng, scheduler.Config{
		Interval:           cfg.SyncInterval,
		RetryInterval:      cfg.SyncRetryInterval,
		ActivationSchedule: cfg.ActivationSchedule,
		Location:           time.Local,
	}, log)
	if err != nil {
		return err
	}

	// Middleware is applied in order: RequestID, RealIP, Logger, Recoverer,
	// then CORS and the body limit so rejected requests are still logged.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Mount("/", handler.NewServer(eng, sched, api.OpenAPI, log).Routes())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sched.Start(ctx)
	defer sched.Stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
