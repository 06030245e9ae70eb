package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loginflow-systems/login-etl/internal/dedup"
	"github.com/loginflow-systems/login-etl/internal/masker"
	"github.com/loginflow-systems/login-etl/internal/models"
	"github.com/loginflow-systems/login-etl/internal/pipeline"
	"github.com/loginflow-systems/login-etl/internal/repository"
)

// mockSink records inserts and can simulate persistence failures.
type mockSink struct {
	records   []*models.CleanRecord
	failWith  error
	failAfter int
}

func (s *mockSink) Insert(_ context.Context, rec *models.CleanRecord) error {
	if s.failWith != nil && len(s.records) >= s.failAfter {
		return s.failWith
	}
	copied := *rec
	s.records = append(s.records, &copied)
	return nil
}

func newPipeline(sink pipeline.Sink) *pipeline.Pipeline {
	return pipeline.New(masker.New(masker.DefaultFields()), dedup.NewMemorySet(), sink)
}

func body(recordID, userID string) []byte {
	return []byte(fmt.Sprintf(
		`{"record_id":%q,"user_id":%q,"device_id":"device99","app_version":"10.2.5","created_at":"2026-01-02 15:04:05"}`,
		recordID, userID,
	))
}

func TestProcessStoresTransformedRecord(t *testing.T) {
	sink := &mockSink{}
	pipe := newPipeline(sink)

	outcome, err := pipe.Process(context.Background(), body("A", "fetch123"))
	require.NoError(t, err)
	assert.Equal(t, pipeline.Stored, outcome)

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.Equal(t, "A", rec.RecordID)
	assert.Equal(t, "h123fetc", rec.UserID, "user_id masked by half rotation")
	assert.Equal(t, "ce99devi", rec.DeviceID)
	assert.Equal(t, "1025", rec.AppVersion, "separators stripped")
}

func TestProcessDuplicateWithinRun(t *testing.T) {
	sink := &mockSink{}
	pipe := newPipeline(sink)
	ctx := context.Background()

	outcome, err := pipe.Process(ctx, body("A", "fetch123"))
	require.NoError(t, err)
	assert.Equal(t, pipeline.Stored, outcome)

	outcome, err = pipe.Process(ctx, body("A", "fetch123"))
	require.NoError(t, err)
	assert.Equal(t, pipeline.SkippedDuplicate, outcome)

	assert.Len(t, sink.records, 1, "exactly one record reaches the sink for A")
}

func TestProcessOrderPreserved(t *testing.T) {
	sink := &mockSink{}
	pipe := newPipeline(sink)
	ctx := context.Background()

	for _, id := range []string{"r1", "r2", "r3"} {
		outcome, err := pipe.Process(ctx, body(id, "fetch123"))
		require.NoError(t, err)
		require.Equal(t, pipeline.Stored, outcome)
	}

	require.Len(t, sink.records, 3)
	for i, id := range []string{"r1", "r2", "r3"} {
		assert.Equal(t, id, sink.records[i].RecordID)
	}
}

func TestProcessMalformedBody(t *testing.T) {
	sink := &mockSink{}
	pipe := newPipeline(sink)
	ctx := context.Background()

	outcome, err := pipe.Process(ctx, []byte(`not json`))
	assert.Equal(t, pipeline.SkippedInvalid, outcome)
	assert.Error(t, err)

	// The run continues: the next message processes normally.
	outcome, err = pipe.Process(ctx, body("B", "fetch123"))
	require.NoError(t, err)
	assert.Equal(t, pipeline.Stored, outcome)
	assert.Len(t, sink.records, 1)
}

func TestProcessValidationFailure(t *testing.T) {
	sink := &mockSink{}
	pipe := newPipeline(sink)

	missingVersion := []byte(`{"record_id":"A","user_id":"u","device_id":"d","created_at":"2026-01-02"}`)
	outcome, err := pipe.Process(context.Background(), missingVersion)

	assert.Equal(t, pipeline.SkippedInvalid, outcome)
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "app_version", verr.Field)
	assert.Empty(t, sink.records)
}

func TestProcessSoftDuplicateFromSink(t *testing.T) {
	sink := &mockSink{failWith: repository.ErrDuplicateRecord, failAfter: 0}
	pipe := newPipeline(sink)

	outcome, err := pipe.Process(context.Background(), body("A", "fetch123"))
	require.NoError(t, err, "a stored duplicate is soft, not an error")
	assert.Equal(t, pipeline.SkippedDuplicate, outcome)
}

func TestProcessHardPersistenceFailure(t *testing.T) {
	sink := &mockSink{failWith: errors.New("connection refused"), failAfter: 0}
	pipe := newPipeline(sink)

	outcome, err := pipe.Process(context.Background(), body("A", "fetch123"))
	assert.Equal(t, pipeline.Failed, outcome)
	assert.Error(t, err)
}
