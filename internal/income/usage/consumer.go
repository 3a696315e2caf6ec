// Package usage consumes the usage-event stream and marks cached income
// records as used so retention keeps them. Consumption is at-least-once with
// manual offset commits: a batch is only acknowledged after every usage mark
// it contains has succeeded.
package usage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"inntektlager/internal/income/metrics"
	"inntektlager/pkg/domain"
	dErrors "inntektlager/pkg/domain-errors"
	"inntektlager/pkg/platform/sentinel"
)

// RecordMarker is the slice of the income store the consumer needs.
type RecordMarker interface {
	MarkUsed(ctx context.Context, id domain.RecordID) (bool, error)
}

// Config holds the consumer's broker settings.
type Config struct {
	Brokers []string
	Topic   string
	Group   string
	Grace   time.Duration
}

// Consumer is the usage-tracking consumer. On a store failure it stops
// consuming and enters the grace window instead of crashing the process;
// liveness then degrades only after the window elapses.
type Consumer struct {
	client  *kgo.Client
	store   RecordMarker
	health  *Health
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New connects the consumer group. Offsets are committed manually, after a
// poll batch has been fully processed.
func New(cfg Config, store RecordMarker, logger *slog.Logger, m *metrics.Metrics) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "connect usage consumer")
	}
	return &Consumer{
		client:  client,
		store:   store,
		health:  NewHealth(cfg.Grace),
		logger:  logger,
		metrics: m,
	}, nil
}

// Health exposes the grace-period state machine for liveness checks.
func (c *Consumer) Health() *Health { return c.health }

// Run polls until the context is cancelled or a store failure stops
// consumption. A store failure returns after starting the grace timer; the
// caller decides whether to restart, while liveness stays up for the window.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.health.MarkStopped()

	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			for _, fetchErr := range errs {
				c.logger.ErrorContext(ctx, "usage stream fetch failed",
					"topic", fetchErr.Topic,
					"partition", fetchErr.Partition,
					"error", fetchErr.Err,
				)
			}
			continue
		}

		var values [][]byte
		fetches.EachRecord(func(record *kgo.Record) {
			values = append(values, record.Value)
		})
		if len(values) == 0 {
			continue
		}

		if err := c.processBatch(ctx, values); err != nil {
			c.health.MarkDegraded(time.Now())
			c.logger.ErrorContext(ctx, "usage marking failed, entering grace period", "error", err)
			return err
		}

		if err := c.commit(ctx); err != nil {
			c.health.MarkDegraded(time.Now())
			c.logger.ErrorContext(ctx, "usage offset commit failed, entering grace period", "error", err)
			return err
		}
	}
}

// processBatch extracts usage marks from a poll batch and applies them.
// Non-matching and malformed messages are skipped. A record id that no
// longer exists (already swept) is logged and skipped; only a store failure
// aborts the batch, leaving it unacknowledged for redelivery.
func (c *Consumer) processBatch(ctx context.Context, values [][]byte) error {
	for _, value := range values {
		recordID, ok := parseEvent(value)
		if !ok {
			c.metrics.RecordUsageEvent("skipped")
			continue
		}
		updated, err := c.store.MarkUsed(ctx, recordID)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			c.metrics.RecordUsageEvent("missing")
			c.logger.WarnContext(ctx, "usage event for unknown income record", "record_id", recordID.String())
		case err != nil:
			return dErrors.Wrap(err, dErrors.CodeStore, "mark income record used")
		case updated:
			c.metrics.RecordUsageEvent("marked")
		default:
			// Already used; marking again is a no-op.
			c.metrics.RecordUsageEvent("marked")
		}
	}
	return nil
}

// commit acknowledges the polled offsets, retrying once when the commit
// protocol signals a transient failure.
func (c *Consumer) commit(ctx context.Context) error {
	err := c.client.CommitUncommittedOffsets(ctx)
	if err == nil {
		return nil
	}
	var kafkaErr *kerr.Error
	if errors.As(err, &kafkaErr) && kerr.IsRetriable(kafkaErr) {
		err = c.client.CommitUncommittedOffsets(ctx)
	}
	return err
}

// Close tears down the broker connection. Run returns once the in-flight
// poll finishes; nothing half-acknowledged is left behind because commits
// only happen after a fully processed batch.
func (c *Consumer) Close() {
	c.client.Close()
}
