package outbox

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiring-workers/internal/common/clock"
	"hiring-workers/internal/common/config"
	apperrors "hiring-workers/internal/common/errors"
	"hiring-workers/internal/common/logger"
	"hiring-workers/internal/common/retry"
	"hiring-workers/internal/models"
	"hiring-workers/internal/store/memory"
)

var t0 = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		BatchSize:   10,
		Concurrency: 4,
		MaxAttempts: 3,
		Lease:       time.Minute,
		Backoff:     retry.Policy{InitialDelay: time.Second, MaxDelay: time.Minute},
	}
}

func entry(id string, kind models.OutboxKind) models.OutboxEntry {
	e, _ := models.NewOutboxEntry(kind, "app-1", nil)
	e.ID = id
	e.AvailableAt = t0
	e.CreatedAt = t0
	return e
}

func newRelay(t *testing.T, s *memory.Store) (*Relay, *clock.Manual) {
	clk := clock.NewManual(t0)
	return NewRelay(s, testConfig(), logger.NewTestLogger(t), WithClock(clk)), clk
}

func TestProcessOnce_CompletesEntries(t *testing.T) {
	s := memory.New()
	for i := 0; i < 10; i++ {
		s.Enqueue(entry(fmt.Sprintf("e-%d", i), models.OutboxIndexApplication))
	}
	r, _ := newRelay(t, s)

	var calls int32
	r.Handle(models.OutboxIndexApplication, func(ctx context.Context, e models.OutboxEntry) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	n, err := r.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, int32(10), atomic.LoadInt32(&calls))
	for _, e := range s.Outbox() {
		assert.Equal(t, models.OutboxDone, e.Status, e.ID)
	}

	n, err = r.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProcessOnce_BacksOffThenFails(t *testing.T) {
	s := memory.New()
	s.Enqueue(entry("e-1", models.OutboxNotifySubmission))
	r, clk := newRelay(t, s)
	r.Handle(models.OutboxNotifySubmission, func(ctx context.Context, e models.OutboxEntry) error {
		return errors.New("smtp timeout")
	})
	ctx := context.Background()

	_, err := r.ProcessOnce(ctx)
	require.NoError(t, err)
	got := s.Outbox()[0]
	assert.Equal(t, models.OutboxPending, got.Status)
	assert.Equal(t, t0.Add(time.Second), got.AvailableAt)
	assert.Equal(t, "smtp timeout", got.LastError)

	n, err := r.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "entry is not due yet")

	clk.Advance(time.Second)
	_, err = r.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, clk.Now().Add(2*time.Second), s.Outbox()[0].AvailableAt)

	clk.Advance(2 * time.Second)
	_, err = r.ProcessOnce(ctx)
	require.NoError(t, err)

	got = s.Outbox()[0]
	assert.Equal(t, models.OutboxFailed, got.Status)
	assert.Equal(t, 3, got.Attempts)
}

func TestProcessOnce_RecoversOnRetry(t *testing.T) {
	s := memory.New()
	s.Enqueue(entry("e-1", models.OutboxEvaluateBadges))
	r, clk := newRelay(t, s)

	var calls int32
	r.Handle(models.OutboxEvaluateBadges, func(ctx context.Context, e models.OutboxEntry) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return apperrors.NewDependencyUnavailableError("postgres", errors.New("reset"))
		}
		return nil
	})

	_, err := r.ProcessOnce(context.Background())
	require.NoError(t, err)
	clk.Advance(time.Second)
	_, err = r.ProcessOnce(context.Background())
	require.NoError(t, err)

	got := s.Outbox()[0]
	assert.Equal(t, models.OutboxDone, got.Status)
	assert.Equal(t, 2, got.Attempts)
	assert.Empty(t, got.LastError)
}

func TestProcessOnce_TerminalErrorsFailImmediately(t *testing.T) {
	s := memory.New()
	s.Enqueue(entry("e-1", models.OutboxNotifyTransition), entry("e-2", models.OutboxKind("archive")))
	r, _ := newRelay(t, s)
	r.Handle(models.OutboxNotifyTransition, func(ctx context.Context, e models.OutboxEntry) error {
		return apperrors.NewNotFoundError("application", e.ApplicationID)
	})

	_, err := r.ProcessOnce(context.Background())
	require.NoError(t, err)

	for _, e := range s.Outbox() {
		assert.Equal(t, models.OutboxFailed, e.Status, e.ID)
		assert.Equal(t, 1, e.Attempts, e.ID)
	}
}

func TestProcessOnce_ClaimFailure(t *testing.T) {
	s := memory.New()
	s.Fail = errors.New("connection refused")
	r, _ := newRelay(t, s)

	_, err := r.ProcessOnce(context.Background())
	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := memory.New()
	s.Enqueue(entry("e-1", models.OutboxIndexApplication))
	cfg := testConfig()
	cfg.PollInterval = 10 * time.Millisecond
	r := NewRelay(s, cfg, logger.NewTestLogger(t), WithClock(clock.NewManual(t0)))

	done := make(chan struct{})
	r.Handle(models.OutboxIndexApplication, func(ctx context.Context, e models.OutboxEntry) error {
		close(done)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("entry was not processed")
	}
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.OutboxConfig{PollInterval: 500, BatchSize: 20, Concurrency: 2, MaxAttempts: 5, Lease: 15000, RetryBackoff: 1000})
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 15*time.Second, cfg.Lease)
	assert.Equal(t, time.Second, cfg.Backoff.InitialDelay)
	assert.Equal(t, 5, cfg.MaxAttempts)
}
