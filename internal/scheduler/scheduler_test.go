package scheduler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/frontdesk/internal/engine"
	"github.com/pkordes/frontdesk/internal/scheduler"
)

// mockSyncer is a hand-written test double for scheduler.Syncer.
type mockSyncer struct {
	loads       atomic.Int32
	syncs       atomic.Int32
	activations atomic.Int32
	unhealthy   atomic.Bool

	// syncGate, when non-nil, blocks each Sync until it can receive.
	syncGate chan struct{}
	// activate overrides ActivateDue when set.
	activate func() error
}

var _ scheduler.Syncer = (*mockSyncer)(nil)

func (m *mockSyncer) Load(context.Context) error {
	m.loads.Add(1)
	return nil
}

func (m *mockSyncer) Sync(ctx context.Context) error {
	if m.syncGate != nil {
		select {
		case <-m.syncGate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.syncs.Add(1)
	return nil
}

func (m *mockSyncer) ActivateDue(context.Context) error {
	m.activations.Add(1)
	if m.activate != nil {
		return m.activate()
	}
	return nil
}

func (m *mockSyncer) Status() engine.Status {
	if m.unhealthy.Load() {
		return engine.Status{Err: errors.New("down")}
	}
	return engine.Status{Online: true}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// quiet returns a config whose timers never fire during a test.
func quiet() scheduler.Config {
	return scheduler.Config{
		Interval:           time.Hour,
		ActivationSchedule: "0 0 0 1 1 *",
	}
}

func start(t *testing.T, m *mockSyncer, cfg scheduler.Config) *scheduler.Scheduler {
	t.Helper()
	s, err := scheduler.New(m, cfg, discard())
	require.NoError(t, err)
	s.Start(context.Background())
	t.Cleanup(s.Stop)
	return s
}

func TestNew_InvalidSchedule(t *testing.T) {
	cfg := quiet()
	cfg.ActivationSchedule = "every day at noon"
	_, err := scheduler.New(&mockSyncer{}, cfg, discard())
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := scheduler.DefaultConfig()
	assert.Equal(t, 10*time.Second, cfg.Interval)
	_, err := scheduler.New(&mockSyncer{}, cfg, discard())
	assert.NoError(t, err, "default activation schedule parses")
}

func TestStart_LoadsOnce(t *testing.T) {
	m := &mockSyncer{}
	start(t, m, quiet())
	assert.Equal(t, int32(1), m.loads.Load())
}

func TestTicker_SyncsWhileHealthy(t *testing.T) {
	m := &mockSyncer{}
	cfg := quiet()
	cfg.Interval = 10 * time.Millisecond
	start(t, m, cfg)

	assert.Eventually(t, func() bool { return m.syncs.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestTicker_DisarmedWhileUnhealthy(t *testing.T) {
	m := &mockSyncer{}
	m.unhealthy.Store(true)
	cfg := quiet()
	cfg.Interval = 10 * time.Millisecond
	s := start(t, m, cfg)

	assert.Never(t, func() bool { return m.syncs.Load() > 0 }, 100*time.Millisecond, 10*time.Millisecond)

	// Recovery through an event trigger re-arms the ticker.
	m.unhealthy.Store(false)
	s.Focus()
	assert.Eventually(t, func() bool { return m.syncs.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestTicker_SkipsTickAfterFailureBetweenTicks(t *testing.T) {
	m := &mockSyncer{}
	cfg := quiet()
	cfg.Interval = 50 * time.Millisecond
	start(t, m, cfg)
	require.Eventually(t, func() bool { return m.syncs.Load() == 1 }, time.Second, time.Millisecond)

	// A command fails while the loop waits on the armed ticker.
	time.Sleep(5 * time.Millisecond)
	m.unhealthy.Store(true)
	after := m.syncs.Load()

	assert.Never(t, func() bool { return m.syncs.Load() != after }, 150*time.Millisecond, 5*time.Millisecond)
}

func TestTicker_RetryIntervalWhileUnhealthy(t *testing.T) {
	m := &mockSyncer{}
	m.unhealthy.Store(true)
	cfg := quiet()
	cfg.RetryInterval = 10 * time.Millisecond
	start(t, m, cfg)

	assert.Eventually(t, func() bool { return m.syncs.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestFocus_TriggersSync(t *testing.T) {
	m := &mockSyncer{}
	s := start(t, m, quiet())

	s.Focus()

	assert.Eventually(t, func() bool { return m.syncs.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestSetVisible_OnlyHiddenToVisible(t *testing.T) {
	m := &mockSyncer{}
	s := start(t, m, quiet())

	s.SetVisible(true) // already visible
	assert.Never(t, func() bool { return m.syncs.Load() > 0 }, 50*time.Millisecond, 5*time.Millisecond)

	s.SetVisible(false)
	s.SetVisible(true)
	assert.Eventually(t, func() bool { return m.syncs.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestTriggers_Coalesce(t *testing.T) {
	m := &mockSyncer{syncGate: make(chan struct{})}
	s := start(t, m, quiet())

	s.Focus() // picked up by the loop, blocks in Sync
	time.Sleep(20 * time.Millisecond)
	for i := 0; i < 5; i++ {
		s.Focus()
	}
	close(m.syncGate)

	assert.Eventually(t, func() bool { return m.syncs.Load() == 2 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return m.syncs.Load() > 2 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestStop_NothingFiresAfterwards(t *testing.T) {
	m := &mockSyncer{}
	cfg := quiet()
	cfg.Interval = 5 * time.Millisecond
	s, err := scheduler.New(m, cfg, discard())
	require.NoError(t, err)
	s.Start(context.Background())
	require.Eventually(t, func() bool { return m.syncs.Load() >= 1 }, time.Second, 5*time.Millisecond)

	s.Stop()
	after := m.syncs.Load()
	s.Focus()

	assert.Never(t, func() bool { return m.syncs.Load() != after }, 50*time.Millisecond, 5*time.Millisecond)
	s.Stop() // idempotent
}

func TestStop_WithoutStart(t *testing.T) {
	m := &mockSyncer{}
	s, err := scheduler.New(m, quiet(), discard())
	require.NoError(t, err)

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a scheduler that never started")
	}
	assert.Zero(t, m.syncs.Load())
	assert.Zero(t, m.loads.Load())
}

func TestActivationJob_RunsAndRecoversFromPanic(t *testing.T) {
	m := &mockSyncer{activate: func() error { panic("boom") }}
	cfg := quiet()
	cfg.ActivationSchedule = "* * * * * *"
	start(t, m, cfg)

	assert.Eventually(t, func() bool { return m.activations.Load() >= 2 }, 3*time.Second, 20*time.Millisecond,
		"job keeps firing after a panic")
}
