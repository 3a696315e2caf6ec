// Package janitor purges cached income records that were never used. Records
// marked used or manually edited are never deleted, regardless of age.
package janitor

import (
	"context"
	"log/slog"
	"time"

	"inntektlager/internal/income/metrics"
	"inntektlager/pkg/requestcontext"
)

// Sweeper is the slice of the income store the janitor needs.
type Sweeper interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// Janitor runs the retention sweep on a fixed interval.
type Janitor struct {
	store     Sweeper
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// New constructs a janitor. retention is the record time-to-live; interval is
// how often a sweep runs.
func New(store Sweeper, retention, interval time.Duration, logger *slog.Logger, m *metrics.Metrics) *Janitor {
	return &Janitor{
		store:     store,
		retention: retention,
		interval:  interval,
		logger:    logger,
		metrics:   m,
	}
}

// Sweep deletes every record older than the retention threshold that is
// neither used nor manually edited, returning the number removed. Age and
// flags are evaluated per record; a newer record for the same key never
// shields an old one.
func (j *Janitor) Sweep(ctx context.Context) (int64, error) {
	cutoff := requestcontext.Now(ctx).Add(-j.retention)
	deleted, err := j.store.DeleteExpired(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	j.metrics.AddRecordsSwept(deleted)
	if deleted > 0 {
		j.logger.InfoContext(ctx, "retention sweep removed records", "deleted", deleted)
	}
	return deleted, nil
}

// Run sweeps on the configured interval until the context is cancelled.
// Sweeps never overlap: ticks that arrive while a sweep is running are
// dropped, not queued. A failed sweep is not retried mid-cycle; the next
// tick runs it again.
func (j *Janitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := j.Sweep(ctx); err != nil {
				j.logger.ErrorContext(ctx, "retention sweep failed", "error", err)
			}
			// Drop any tick that fired while the sweep ran.
			select {
			case <-ticker.C:
			default:
			}
		}
	}
}
