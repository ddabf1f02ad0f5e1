package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	natsgo "github.com/nats-io/nats.go"

	"github.com/agencydesk/agencydesk/internal/metrics"
	"github.com/agencydesk/agencydesk/internal/nats"
)

const (
	durableName  = "usage-audit-persister"
	fetchBatch   = 64
	fetchTimeout = 5 * time.Second
)

// Consumer drains usage events off JetStream and persists them as audit
// logs. It runs as a background goroutine for the lifetime of the process.
type Consumer struct {
	client *nats.Client
	repo   *Repository
	logger *slog.Logger
}

func NewConsumer(client *nats.Client, repo *Repository, logger *slog.Logger) *Consumer {
	return &Consumer{client: client, repo: repo, logger: logger}
}

// Run blocks until ctx is cancelled. It uses a durable pull consumer so
// events survive restarts and slow periods.
func (c *Consumer) Run(ctx context.Context) error {
	sub, err := c.client.JetStream().PullSubscribe(
		nats.SubjectUsageDecisions,
		durableName,
		natsgo.AckExplicit(),
		natsgo.BindStream(nats.StreamName),
	)
	if err != nil {
		return fmt.Errorf("subscribing to usage events: %w", err)
	}
	defer sub.Unsubscribe()

	c.logger.Info("audit consumer started", "durable", durableName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msgs, err := sub.Fetch(fetchBatch, natsgo.MaxWait(fetchTimeout))
		if err != nil {
			if errors.Is(err, natsgo.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("fetching usage events", "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, msg := range msgs {
			c.handle(ctx, msg)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg *natsgo.Msg) {
	var ev nats.UsageEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		// Malformed events are terminal: redelivery cannot fix them.
		c.logger.Error("unmarshaling usage event", "error", err)
		metrics.AuditEventsPersistedTotal.WithLabelValues("malformed").Inc()
		msg.Term()
		return
	}

	log := &Log{
		ID:           ev.ID,
		UserID:       ev.UserID,
		Day:          ev.Day,
		Page:         ev.Page,
		Outcome:      ev.Outcome,
		Reason:       ev.Reason,
		ChargedCount: ev.ChargedCount,
		DailyLimit:   ev.DailyLimit,
		OccurredAt:   ev.OccurredAt,
	}
	if err := c.repo.Insert(ctx, log); err != nil {
		c.logger.Error("persisting audit log", "error", err, "event_id", ev.ID)
		metrics.AuditEventsPersistedTotal.WithLabelValues("error").Inc()
		msg.Nak()
		return
	}

	metrics.AuditEventsPersistedTotal.WithLabelValues("ok").Inc()
	msg.Ack()
}
