// Package outbox runs the side effects recorded next to application writes:
// notifications, badge evaluation and search indexing.
package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"hiring-workers/internal/common/clock"
	"hiring-workers/internal/common/config"
	apperrors "hiring-workers/internal/common/errors"
	"hiring-workers/internal/common/logger"
	"hiring-workers/internal/common/metrics"
	"hiring-workers/internal/common/observability"
	"hiring-workers/internal/common/retry"
	"hiring-workers/internal/models"
	"hiring-workers/internal/store"
)

// Handler performs the work of one entry. It must be safe to run more than once for
// the same entry.
type Handler func(ctx context.Context, entry models.OutboxEntry) error

type Config struct {
	PollInterval time.Duration
	BatchSize    int
	Concurrency  int
	MaxAttempts  int
	Lease        time.Duration
	Backoff      retry.Policy
}

// ConfigFrom converts the outbox section of the service configuration.
func ConfigFrom(cfg config.OutboxConfig) Config {
	return Config{
		PollInterval: config.GetDuration(cfg.PollInterval),
		BatchSize:    cfg.BatchSize,
		Concurrency:  cfg.Concurrency,
		MaxAttempts:  cfg.MaxAttempts,
		Lease:        config.GetDuration(cfg.Lease),
		Backoff: retry.Policy{
			InitialDelay: config.GetDuration(cfg.RetryBackoff),
			MaxDelay:     10 * time.Minute,
		},
	}
}

func (c *Config) applyDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 8
	}
	if c.Lease <= 0 {
		c.Lease = 30 * time.Second
	}
	if c.Backoff.InitialDelay <= 0 {
		c.Backoff.InitialDelay = 2 * time.Second
	}
}

type Relay struct {
	store    store.OutboxStore
	handlers map[models.OutboxKind]Handler
	cfg      Config
	clock    clock.Clock
	obs      *observability.Observability
	logger   logger.Logger
}

type Option func(*Relay)

func WithClock(c clock.Clock) Option {
	return func(r *Relay) { r.clock = c }
}

func WithObservability(o *observability.Observability) Option {
	return func(r *Relay) { r.obs = o }
}

func NewRelay(st store.OutboxStore, cfg Config, log logger.Logger, opts ...Option) *Relay {
	cfg.applyDefaults()
	r := &Relay{
		store:    st,
		handlers: make(map[models.OutboxKind]Handler),
		cfg:      cfg,
		clock:    clock.System(),
		logger:   log.WithFields(map[string]interface{}{"component": "outbox-relay"}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle registers h for kind. Not safe to call once Run has started.
func (r *Relay) Handle(kind models.OutboxKind, h Handler) {
	r.handlers[kind] = h
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("outbox relay started", map[string]interface{}{
		"pollInterval": r.cfg.PollInterval.String(),
		"batchSize":    r.cfg.BatchSize,
		"concurrency":  r.cfg.Concurrency,
	})

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := r.ProcessOnce(ctx); err != nil && ctx.Err() == nil {
			r.logger.Warn("outbox poll failed", map[string]interface{}{"error": err})
		}
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped", nil)
			return nil
		case <-ticker.C:
		}
	}
}

// ProcessOnce claims one batch of due entries and processes it. It returns the
// number of entries claimed.
func (r *Relay) ProcessOnce(ctx context.Context) (int, error) {
	entries, err := r.store.ClaimOutbox(ctx, r.clock.Now(), r.cfg.BatchSize, r.cfg.Lease)
	if err != nil {
		return 0, fmt.Errorf("claim outbox: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	p := pool.New().WithMaxGoroutines(r.cfg.Concurrency)
	for _, e := range entries {
		e := e
		p.Go(func() { r.process(ctx, e) })
	}
	p.Wait()
	return len(entries), nil
}

func (r *Relay) process(ctx context.Context, e models.OutboxEntry) {
	start := time.Now()
	fields := map[string]interface{}{
		"entryId":       e.ID,
		"kind":          string(e.Kind),
		"applicationId": e.ApplicationID,
		"attempt":       e.Attempts,
	}

	h, ok := r.handlers[e.Kind]
	var err error
	if !ok {
		err = apperrors.NewValidationError("kind", "no handler for outbox kind "+string(e.Kind))
	} else {
		err = h(ctx, e)
	}

	result := r.settle(ctx, e, err, fields)
	metrics.OutboxProcessed.WithLabelValues(string(e.Kind), result).Inc()
	r.obs.RecordJobProcessed(ctx, string(e.Kind), result)
	r.obs.RecordJobDuration(ctx, string(e.Kind), time.Since(start), result)
}

// settle records the outcome of one attempt and returns done, retry or failed.
func (r *Relay) settle(ctx context.Context, e models.OutboxEntry, err error, fields map[string]interface{}) string {
	if err == nil {
		if serr := r.store.CompleteOutbox(ctx, e.ID); serr != nil {
			r.logger.Error("failed to complete outbox entry", withError(fields, serr))
		}
		r.logger.Debug("outbox entry done", fields)
		return "done"
	}

	if !retryable(err) || e.Attempts >= r.cfg.MaxAttempts {
		if serr := r.store.FailOutbox(ctx, e.ID, err.Error()); serr != nil {
			r.logger.Error("failed to mark outbox entry failed", withError(fields, serr))
		}
		r.logger.Error("outbox entry failed", withError(fields, err))
		return "failed"
	}

	next := r.clock.Now().Add(r.cfg.Backoff.Backoff(e.Attempts))
	if serr := r.store.RetryOutbox(ctx, e.ID, next, err.Error()); serr != nil {
		r.logger.Error("failed to reschedule outbox entry", withError(fields, serr))
	}
	fields = withError(fields, err)
	fields["nextAttemptAt"] = next
	r.logger.Warn("outbox entry rescheduled", fields)
	return "retry"
}

// retryable treats unclassified errors as transient; classified ones follow their
// code.
func retryable(err error) bool {
	var se *apperrors.StandardError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return true
}

func withError(fields map[string]interface{}, err error) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["error"] = err.Error()
	return out
}
