package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	natsgo "github.com/nats-io/nats.go"
)

// Publisher emits usage events onto the JetStream event trail. A Publisher
// built from a nil client drops events silently, so callers never branch on
// whether the trail is configured.
type Publisher struct {
	client *Client
	logger *slog.Logger
}

func NewPublisher(client *Client, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

func (p *Publisher) PublishUsage(ctx context.Context, ev UsageEvent) error {
	if p == nil || p.client == nil {
		return nil
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshaling usage event: %w", err)
	}

	// Event ID doubles as the JetStream dedup ID so reconnect retries
	// cannot double-record a decision.
	_, err = p.client.js.Publish(SubjectUsageDecisions, data,
		natsgo.MsgId(ev.ID.String()), natsgo.Context(ctx))
	if err != nil {
		return fmt.Errorf("publishing usage event: %w", err)
	}
	return nil
}
