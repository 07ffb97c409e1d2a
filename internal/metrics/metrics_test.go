package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/outbreak/internal/moves"
)

func TestCollector_ObserveMove(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	c.ObserveMove(moves.Outcome{Move: moves.MoveAlpha, Proposed: 4, Accepted: 1, Skipped: 2})
	c.ObserveMove(moves.Outcome{Move: moves.MoveAlpha, Proposed: 1, Accepted: 1})
	c.ObserveMove(moves.Outcome{Move: moves.MoveMu, Proposed: 1})

	assert.Equal(t, 5.0, testutil.ToFloat64(c.proposals.WithLabelValues("alpha")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.accepted.WithLabelValues("alpha")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.skipped.WithLabelValues("alpha")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.proposals.WithLabelValues("mu")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.accepted.WithLabelValues("mu")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.proposals.WithLabelValues("t_inf")))
}

func TestCollector_ObserveSweep(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	c.ObserveSweep(-12.5, 0.01, 3*time.Millisecond)
	c.ObserveSweep(-10, 0.02, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.sweeps))
	assert.Equal(t, -10.0, testutil.ToFloat64(c.logLikelihood))
	assert.Equal(t, 0.02, testutil.ToFloat64(c.mu))
}

func TestCollector_AllMovesPreRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "outbreak_proposals_total")
	require.NoError(t, err)
	assert.Equal(t, len(moves.AllMoves), count)
}

func TestCollector_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveMove(moves.Outcome{Move: moves.MoveMu, Proposed: 1})
		c.ObserveSweep(0, 0, time.Second)
	})
}
