// Package queue provides the JetStream-backed message source the run loop
// drains, plus the publisher the seeder uses to fill it. The pipeline never
// acknowledges messages itself: it reports an outcome per record and the
// run loop owns the ack/term/nak policy.
package queue

import (
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// Message is one in-flight queue message. Ack deletes it durably, Nak asks
// for redelivery, Term drops it without redelivery (malformed payloads).
type Message interface {
	Data() []byte
	Ack() error
	Nak() error
	Term() error
}

// Config holds NATS connection and stream settings.
type Config struct {
	// URL is the NATS server URL (e.g., "nats://localhost:4222").
	URL string

	// Name is the client name for connection identification.
	Name string

	// Stream is the JetStream stream holding login events.
	Stream string

	// Subject is the subject the stream captures.
	Subject string

	// Consumer is the durable pull consumer name.
	Consumer string

	// FetchTimeout bounds how long one Fetch waits for messages.
	FetchTimeout time.Duration

	// AckWait is the time to wait for acknowledgment before redelivery.
	AckWait time.Duration

	// MaxDeliver is the maximum delivery attempts before giving up.
	MaxDeliver int
}

// DefaultConfig returns sensible defaults for the login-events stream.
func DefaultConfig() Config {
	return Config{
		URL:          "nats://localhost:4222",
		Name:         "login-etl",
		Stream:       "LOGIN_EVENTS",
		Subject:      "logins.raw",
		Consumer:     "login-etl",
		FetchTimeout: 2 * time.Second,
		AckWait:      30 * time.Second,
		MaxDeliver:   3,
	}
}

// streamConfig builds the WorkQueue-retention stream: each message is
// delivered to exactly one run and removed once acknowledged.
func streamConfig(cfg Config) jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:      cfg.Stream,
		Subjects:  []string{cfg.Subject},
		MaxAge:    24 * time.Hour,
		Retention: jetstream.WorkQueuePolicy,
		Storage:   jetstream.FileStorage,
	}
}

func consumerConfig(cfg Config) jetstream.ConsumerConfig {
	return jetstream.ConsumerConfig{
		Name:          cfg.Consumer,
		Durable:       cfg.Consumer,
		FilterSubject: cfg.Subject,
		AckWait:       cfg.AckWait,
		MaxDeliver:    cfg.MaxDeliver,
		AckPolicy:     jetstream.AckExplicitPolicy,
	}
}
