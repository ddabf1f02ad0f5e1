package nats

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	natsgo "github.com/nats-io/nats.go"
)

const (
	StreamName = "AGENCYDESK_EVENTS"

	// SubjectUsageDecisions carries one event per ledger decision.
	SubjectUsageDecisions = "agencydesk.events.usage.decisions"
	subjectWildcard       = "agencydesk.events.>"
)

// Client wraps a NATS connection with JetStream enabled. The event trail is
// optional infrastructure: a nil *Client is a valid, disabled client.
type Client struct {
	conn   *natsgo.Conn
	js     natsgo.JetStreamContext
	logger *slog.Logger
}

func NewClient(url string, logger *slog.Logger) (*Client, error) {
	conn, err := natsgo.Connect(url,
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2*time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling jetstream: %w", err)
	}

	c := &Client{conn: conn, js: js, logger: logger}
	if err := c.ensureStream(); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) ensureStream() error {
	_, err := c.js.StreamInfo(StreamName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, natsgo.ErrStreamNotFound) {
		return fmt.Errorf("checking stream: %w", err)
	}

	_, err = c.js.AddStream(&natsgo.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{subjectWildcard},
		Retention: natsgo.LimitsPolicy,
		MaxAge:    30 * 24 * time.Hour,
		Storage:   natsgo.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("creating stream: %w", err)
	}
	return nil
}

func (c *Client) JetStream() natsgo.JetStreamContext {
	return c.js
}

// Healthy reports whether the connection is usable. Safe on a nil client.
func (c *Client) Healthy() bool {
	return c != nil && c.conn != nil && c.conn.IsConnected()
}

func (c *Client) Close() {
	if c == nil || c.conn == nil {
		return
	}
	if err := c.conn.Drain(); err != nil {
		c.logger.Warn("draining nats connection", "error", err)
	}
}
