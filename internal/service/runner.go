// Package service drives one ETL run: drain the queue, push every message
// through the transform pipeline, and apply the acknowledgement policy per
// outcome.
package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/loginflow-systems/login-etl/internal/logging"
	"github.com/loginflow-systems/login-etl/internal/metrics"
	"github.com/loginflow-systems/login-etl/internal/pipeline"
	"github.com/loginflow-systems/login-etl/internal/queue"
)

// Fetcher is the queue collaborator the runner drains.
type Fetcher interface {
	Fetch(ctx context.Context, max int) ([]queue.Message, error)
}

// Stats is a snapshot of one run.
type Stats struct {
	Stored     uint64 `json:"stored"`
	Duplicates uint64 `json:"duplicates"`
	Invalid    uint64 `json:"invalid"`
	Failed     uint64 `json:"failed"`
	Elapsed    time.Duration
}

// Total returns the number of messages handled.
func (s Stats) Total() uint64 {
	return s.Stored + s.Duplicates + s.Invalid + s.Failed
}

// Runner processes queued login events strictly in dequeue order, one at a
// time. There are no concurrent workers: the seen-id set and the sink are
// owned by this single loop.
type Runner struct {
	source    Fetcher
	pipe      *pipeline.Pipeline
	log       *logging.Logger
	batchSize int

	stored     atomic.Uint64
	duplicates atomic.Uint64
	invalid    atomic.Uint64
	failed     atomic.Uint64
}

// NewRunner creates a Runner for one run.
func NewRunner(source Fetcher, pipe *pipeline.Pipeline, log *logging.Logger, batchSize int) *Runner {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Runner{
		source:    source,
		pipe:      pipe,
		log:       log,
		batchSize: batchSize,
	}
}

// Run drains the queue until a fetch returns no messages, then reports run
// statistics. Decode and validation failures terminate the message (no
// redelivery) and continue; duplicates acknowledge and continue; a hard
// persistence failure NAKs the in-flight message for redelivery and aborts
// the run, since partial un-auditable writes are worse than a clean stop.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	start := time.Now()
	defer func() {
		metrics.RunDuration.Observe(time.Since(start).Seconds())
	}()

	for {
		if err := ctx.Err(); err != nil {
			return r.stats(start), err
		}

		msgs, err := r.source.Fetch(ctx, r.batchSize)
		if err != nil {
			return r.stats(start), err
		}
		if len(msgs) == 0 {
			r.log.InfoContext(ctx, "queue drained, run complete",
				"stored", r.stored.Load(),
				"duplicates", r.duplicates.Load(),
				"invalid", r.invalid.Load(),
			)
			return r.stats(start), nil
		}
		metrics.BatchesFetched.Inc()

		for _, msg := range msgs {
			if err := r.handle(ctx, msg); err != nil {
				return r.stats(start), err
			}
		}
	}
}

func (r *Runner) handle(ctx context.Context, msg queue.Message) error {
	metrics.MessageBytesTotal.Add(float64(len(msg.Data())))

	processStart := time.Now()
	outcome, err := r.pipe.Process(ctx, msg.Data())
	metrics.ProcessDuration.Observe(time.Since(processStart).Seconds())
	metrics.RecordsTotal.WithLabelValues(outcome.String()).Inc()

	switch outcome {
	case pipeline.Stored:
		r.stored.Add(1)
		if ackErr := msg.Ack(); ackErr != nil {
			r.log.WarnContext(ctx, "ack failed", "error", ackErr)
		}
		return nil

	case pipeline.SkippedDuplicate:
		r.duplicates.Add(1)
		r.log.InfoContext(ctx, "duplicate record skipped")
		if ackErr := msg.Ack(); ackErr != nil {
			r.log.WarnContext(ctx, "ack failed", "error", ackErr)
		}
		return nil

	case pipeline.SkippedInvalid:
		r.invalid.Add(1)
		r.log.WarnContext(ctx, "record skipped", "error", err)
		// Malformed payloads never become valid on redelivery.
		if termErr := msg.Term(); termErr != nil {
			r.log.WarnContext(ctx, "term failed", "error", termErr)
		}
		return nil

	default: // pipeline.Failed
		r.failed.Add(1)
		r.log.ErrorContext(ctx, "hard failure, aborting run", "error", err)
		if nakErr := msg.Nak(); nakErr != nil {
			r.log.WarnContext(ctx, "nak failed", "error", nakErr)
		}
		return err
	}
}

func (r *Runner) stats(start time.Time) Stats {
	return Stats{
		Stored:     r.stored.Load(),
		Duplicates: r.duplicates.Load(),
		Invalid:    r.invalid.Load(),
		Failed:     r.failed.Load(),
		Elapsed:    time.Since(start),
	}
}
