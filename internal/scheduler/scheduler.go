// Package scheduler drives reconciliation between the engine and the room
// store: a fixed-interval sync ticker, event triggers for focus and
// visibility changes, and a daily cron job that promotes due reservations.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pkordes/frontdesk/internal/engine"
)

// Syncer is the part of the engine the scheduler drives.
type Syncer interface {
	Load(ctx context.Context) error
	Sync(ctx context.Context) error
	ActivateDue(ctx context.Context) error
	Status() engine.Status
}

// Config controls the scheduler's timing.
type Config struct {
	// Interval is the sync period while the engine is healthy.
	Interval time.Duration
	// RetryInterval replaces Interval while the engine has an unrecovered
	// error. Zero disables it, leaving recovery to event triggers and commands.
	RetryInterval time.Duration
	// ActivationSchedule is a cron spec with a seconds field.
	ActivationSchedule string
	// Location is the time zone of ActivationSchedule. Defaults to UTC.
	Location *time.Location
}

// DefaultConfig returns the production timing.
func DefaultConfig() Config {
	return Config{
		Interval:           10 * time.Second,
		RetryInterval:      time.Minute,
		ActivationSchedule: "0 5 0 * * *",
		Location:           time.UTC,
	}
}

// Scheduler owns the sync loop goroutine and the cron runner.
type Scheduler struct {
	eng Syncer
	cfg Config
	log *slog.Logger

	cron    *cron.Cron
	trigger chan struct{}
	hidden  atomic.Bool

	ctx      context.Context
	cancel   context.CancelFunc
	started  atomic.Bool
	done     chan struct{}
	stopOnce sync.Once
}

// New builds a Scheduler and registers the activation job.
// Returns an error for an invalid ActivationSchedule.
func New(eng Syncer, cfg Config, log *slog.Logger) (*Scheduler, error) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	s := &Scheduler{
		eng:     eng,
		cfg:     cfg,
		log:     log,
		cron:    cron.New(cron.WithLocation(cfg.Location), cron.WithSeconds()),
		trigger: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	if _, err := s.cron.AddFunc(cfg.ActivationSchedule, s.activateDue); err != nil {
		return nil, fmt.Errorf("scheduler.New: activation schedule %q: %w", cfg.ActivationSchedule, err)
	}
	return s, nil
}

// Start performs the initial load and then starts the sync loop and the
// cron runner. A failed initial load is logged; the engine serves its cached
// snapshot until a later sync succeeds.
func (s *Scheduler) Start(ctx context.Context) {
	if err := s.eng.Load(ctx); err != nil {
		s.log.Warn("initial load failed; running degraded", "error", err)
	} else {
		s.log.Info("initial load complete")
	}

	s.cron.Start()
	s.started.Store(true)
	go s.loop()
}

// Stop ends the sync loop, waits for it and for any running cron job, and
// returns. Nothing fires after Stop returns. Stop on a scheduler that was
// never started returns immediately.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		if s.started.Load() {
			<-s.done
		}
		<-s.cron.Stop().Done()
		s.log.Info("scheduler stopped")
	})
}

// Focus reports that the user returned to the application.
func (s *Scheduler) Focus() {
	s.kick()
}

// SetVisible reports a visibility change. Only a hidden to visible
// transition triggers a sync.
func (s *Scheduler) SetVisible(visible bool) {
	wasHidden := s.hidden.Swap(!visible)
	if visible && wasHidden {
		s.kick()
	}
}

// kick requests a sync. Requests made while one is already queued coalesce.
func (s *Scheduler) kick() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

func (s *Scheduler) loop() {
	defer close(s.done)

	var (
		ticker *time.Ticker
		tick   <-chan time.Time
		armed  time.Duration
	)
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		if want := s.interval(); want != armed {
			if ticker != nil {
				ticker.Stop()
				ticker, tick = nil, nil
			}
			if want > 0 {
				ticker = time.NewTicker(want)
				tick = ticker.C
			}
			s.log.Debug("sync ticker re-armed", "interval", want)
			armed = want
		}

		select {
		case <-s.ctx.Done():
			return
		case <-tick:
			// The engine may have failed since the ticker was armed.
			if s.interval() != armed {
				continue
			}
			s.sync("tick")
		case <-s.trigger:
			s.sync("trigger")
		}
	}
}

// interval is the ticker period the engine's health calls for.
func (s *Scheduler) interval() time.Duration {
	if !s.eng.Status().Healthy() {
		return s.cfg.RetryInterval
	}
	return s.cfg.Interval
}

func (s *Scheduler) sync(reason string) {
	s.runWithRecovery("sync", func() {
		if err := s.eng.Sync(s.ctx); err != nil {
			s.log.Warn("sync failed", "reason", reason, "error", err)
		}
	})
}

func (s *Scheduler) activateDue() {
	s.runWithRecovery("activate_due", func() {
		if err := s.eng.ActivateDue(s.ctx); err != nil {
			s.log.Error("activation job failed", "error", err)
			return
		}
		s.log.Info("activation job complete")
	})
}

// runWithRecovery runs fn, logging its duration and turning a panic into an
// error log so one bad run cannot take the process down.
func (s *Scheduler) runWithRecovery(name string, fn func()) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("job panicked", "job", name, "panic", r, "duration", time.Since(start))
		}
	}()
	fn()
	s.log.Debug("job finished", "job", name, "duration", time.Since(start))
}
