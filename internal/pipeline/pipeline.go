// Package pipeline wires the transform stages applied to each raw message
// between dequeue and persist: decode, normalize, mask, dedup, sink.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/loginflow-systems/login-etl/internal/decoder"
	"github.com/loginflow-systems/login-etl/internal/dedup"
	"github.com/loginflow-systems/login-etl/internal/masker"
	"github.com/loginflow-systems/login-etl/internal/models"
	"github.com/loginflow-systems/login-etl/internal/normalizer"
	"github.com/loginflow-systems/login-etl/internal/repository"
)

// Sink hands fully transformed records to the persistence collaborator.
type Sink interface {
	Insert(ctx context.Context, rec *models.CleanRecord) error
}

// Outcome classifies what happened to one message so the caller can decide
// the acknowledgement policy.
type Outcome int

const (
	// Stored: the record was transformed and persisted.
	Stored Outcome = iota
	// SkippedDuplicate: record_id already admitted this run or already
	// durably stored. Soft skip, not a failure.
	SkippedDuplicate
	// SkippedInvalid: the payload failed decoding or validation. The
	// message is not redeliverable; skip it and continue the run.
	SkippedInvalid
	// Failed: a hard persistence or dedup-store failure. The run aborts.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Stored:
		return "stored"
	case SkippedDuplicate:
		return "duplicate"
	case SkippedInvalid:
		return "invalid"
	default:
		return "failed"
	}
}

// Pipeline applies the transform stages in order. The seen-id set is owned
// by the pipeline for the duration of one run; construct a fresh Pipeline
// per run so state never leaks between runs.
type Pipeline struct {
	masker *masker.Masker
	seen   dedup.Set
	sink   Sink
}

// New creates a pipeline instance.
func New(m *masker.Masker, seen dedup.Set, sink Sink) *Pipeline {
	return &Pipeline{masker: m, seen: seen, sink: sink}
}

// Process runs one raw message body through decode -> normalize -> mask ->
// dedup -> sink. The returned error is non-nil for SkippedInvalid (to be
// logged) and for Failed (to be escalated); duplicates return a nil error.
func (p *Pipeline) Process(ctx context.Context, body []byte) (Outcome, error) {
	raw, err := decoder.Decode(body)
	if err != nil {
		return SkippedInvalid, err
	}

	rec, err := normalizer.Normalize(raw)
	if err != nil {
		return SkippedInvalid, err
	}

	if err := p.masker.Apply(rec); err != nil {
		return SkippedInvalid, err
	}

	admitted, err := p.seen.Admit(ctx, rec.RecordID)
	if err != nil {
		return Failed, fmt.Errorf("dedup admit: %w", err)
	}
	if !admitted {
		return SkippedDuplicate, nil
	}

	if err := p.sink.Insert(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrDuplicateRecord) {
			return SkippedDuplicate, nil
		}
		return Failed, fmt.Errorf("sink insert: %w", err)
	}

	return Stored, nil
}
