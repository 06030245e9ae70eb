package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Source is a durable pull consumer over the login-events stream.
type Source struct {
	conn     *nats.Conn
	js       jetstream.JetStream
	consumer jetstream.Consumer
	timeout  time.Duration
}

// NewSource connects to NATS, ensures the stream and durable consumer
// exist, and returns a Source ready to fetch.
func NewSource(ctx context.Context, cfg Config) (*Source, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, streamConfig(cfg))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create/update stream %s: %w", cfg.Stream, err)
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, consumerConfig(cfg))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create/update consumer %s: %w", cfg.Consumer, err)
	}

	return &Source{
		conn:     conn,
		js:       js,
		consumer: consumer,
		timeout:  cfg.FetchTimeout,
	}, nil
}

func connect(cfg Config) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.Timeout(5 * time.Second),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}

// Fetch pulls up to max messages, waiting at most the configured fetch
// timeout. An empty slice with a nil error means the queue is drained.
func (s *Source) Fetch(ctx context.Context, max int) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch, err := s.consumer.Fetch(max, jetstream.FetchMaxWait(s.timeout))
	if err != nil {
		return nil, fmt.Errorf("fetch from consumer: %w", err)
	}

	var msgs []Message
	for msg := range batch.Messages() {
		msgs = append(msgs, &jsMessage{msg: msg})
	}

	if err := batch.Error(); err != nil && !errors.Is(err, nats.ErrTimeout) {
		return nil, fmt.Errorf("fetch batch: %w", err)
	}

	return msgs, nil
}

// Close drains the connection, letting in-flight acks complete.
func (s *Source) Close() error {
	return s.conn.Drain()
}

// jsMessage adapts a jetstream.Msg to the Message interface.
type jsMessage struct {
	msg jetstream.Msg
}

func (m *jsMessage) Data() []byte { return m.msg.Data() }
func (m *jsMessage) Ack() error   { return m.msg.Ack() }
func (m *jsMessage) Term() error  { return m.msg.Term() }

// Nak delays redelivery so a transient failure is not retried in a tight
// loop by the next run.
func (m *jsMessage) Nak() error {
	return m.msg.NakWithDelay(5 * time.Second)
}
