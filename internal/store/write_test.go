package store

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/outbreak/internal/testutil"
	"github.com/roach88/outbreak/internal/trace"
)

func TestCreateRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.CreateRun(ctx, math.MaxUint64, []byte(`{"a":1}`), "data-1")
	require.NoError(t, err)
	second, err := s.CreateRun(ctx, 7, []byte(`{"a":2}`), "")
	require.NoError(t, err)

	id, err := uuid.Parse(first.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	assert.Equal(t, int64(1), first.CreatedSeq)
	assert.Equal(t, int64(2), second.CreatedSeq)
	assert.Equal(t, StatusRunning, first.Status)
	assert.Equal(t, trace.ConfigHash([]byte(`{"a":1}`)), first.ConfigHash)
	assert.Equal(t, "data-1", first.DataHash)

	// Seeds above the int64 range survive the round trip.
	got, err := s.ReadRun(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got)
	assert.Equal(t, uint64(math.MaxUint64), got.Seed)
}

func TestFinishRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	run := createTestRun(t, s, 1)

	require.NoError(t, s.FinishRun(ctx, run.ID, Completion{
		Status:     StatusInterrupted,
		Iterations: 42,
		Draws:      1234,
		DrawsHash:  "abc",
	}))

	got, err := s.ReadRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInterrupted, got.Status)
	assert.Equal(t, 42, got.Iterations)
	assert.Equal(t, int64(1234), got.Draws)
	assert.Equal(t, "abc", got.DrawsHash)

	err = s.FinishRun(ctx, "no-such-run", Completion{Status: StatusFinished, Iterations: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown run")
}

func TestWriteSample_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	run := createTestRun(t, s, 1)

	sample := createTestSample(3, 0.0123456789)
	require.NoError(t, s.WriteSample(ctx, run.ID, sample))

	got, err := s.ReadSamples(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, sample, got[0])
	assert.Equal(t, sample.StateHash, testutil.MustStateHash(got[0].State))
}

func TestWriteSample_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	run := createTestRun(t, s, 1)

	first := createTestSample(1, 0.1)
	require.NoError(t, s.WriteSample(ctx, run.ID, first))

	// Same iteration, different content: the first write wins.
	require.NoError(t, s.WriteSample(ctx, run.ID, createTestSample(1, 0.2)))

	got, err := s.ReadSamples(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0.1, got[0].State.Mu)
}

func TestWriteSample_ForeignKeyViolation(t *testing.T) {
	s := createTestStore(t)

	err := s.WriteSample(context.Background(), "missing-run", createTestSample(0, 0.1))
	assert.Error(t, err)
}

func TestWriteSample_NonFiniteLogLikelihood(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	run := createTestRun(t, s, 1)

	neg := createTestSample(0, 0.1)
	neg.LogLikelihood = math.Inf(-1)
	nan := createTestSample(1, 0.1)
	nan.LogLikelihood = math.NaN()
	require.NoError(t, s.WriteSample(ctx, run.ID, neg))
	require.NoError(t, s.WriteSample(ctx, run.ID, nan))

	got, err := s.ReadSamples(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, math.IsInf(got[0].LogLikelihood, -1))
	assert.True(t, math.IsNaN(got[1].LogLikelihood))
}

func TestSink(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	run := createTestRun(t, s, 1)

	sink := s.Sink(run.ID)
	for i := 0; i < 3; i++ {
		require.NoError(t, sink.WriteSample(ctx, createTestSample(i, 0.1)))
	}

	got, err := s.ReadSamples(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
