package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher writes raw login events onto the stream. Used by the seed
// command and by tests; the ETL run itself only consumes.
type Publisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewPublisher connects to NATS and ensures the stream exists.
func NewPublisher(ctx context.Context, cfg Config) (*Publisher, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if _, err := js.CreateOrUpdateStream(ctx, streamConfig(cfg)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create/update stream %s: %w", cfg.Stream, err)
	}

	return &Publisher{conn: conn, js: js, subject: cfg.Subject}, nil
}

// Publish sends one message and waits for the stream acknowledgment.
func (p *Publisher) Publish(ctx context.Context, data []byte) error {
	if _, err := p.js.Publish(ctx, p.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", p.subject, err)
	}
	return nil
}

// PublishJSON marshals data to JSON and publishes it.
func (p *Publisher) PublishJSON(ctx context.Context, data any) error {
	bytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return p.Publish(ctx, bytes)
}

// Close drains the connection.
func (p *Publisher) Close() error {
	return p.conn.Drain()
}
