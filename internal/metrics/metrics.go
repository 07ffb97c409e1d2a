// Package metrics exposes chain progress as Prometheus metrics.
//
// Metrics are registered on an explicit Registerer rather than the global
// default, so tests and multiple chains in one process do not collide.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/outbreak/internal/moves"
)

const namespace = "outbreak"

// Collector holds the chain metrics.
type Collector struct {
	proposals     *prometheus.CounterVec
	accepted      *prometheus.CounterVec
	skipped       *prometheus.CounterVec
	sweeps        prometheus.Counter
	logLikelihood prometheus.Gauge
	mu            prometheus.Gauge
	sweepDuration prometheus.Histogram
}

// New creates a Collector and registers it on reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		proposals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proposals_total",
			Help:      "Metropolis proposals by move",
		}, []string{"move"}),
		accepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accepted_total",
			Help:      "Accepted proposals by move",
		}, []string{"move"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_total",
			Help:      "Cases skipped by move (roots, empty candidate sets)",
		}, []string{"move"}),
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "Completed sampler iterations",
		}),
		logLikelihood: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "log_likelihood",
			Help:      "Joint log-likelihood of the current state",
		}),
		mu: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mutation_rate",
			Help:      "Current mutation rate",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Wall time of one sampler iteration",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
		}),
	}

	for _, col := range []prometheus.Collector{
		c.proposals, c.accepted, c.skipped, c.sweeps, c.logLikelihood, c.mu, c.sweepDuration,
	} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	// Pre-create label values so every move shows up at zero.
	for _, m := range moves.AllMoves {
		c.proposals.WithLabelValues(string(m))
		c.accepted.WithLabelValues(string(m))
		c.skipped.WithLabelValues(string(m))
	}
	return c, nil
}

// ObserveMove records one kernel outcome. Safe on a nil Collector.
func (c *Collector) ObserveMove(out moves.Outcome) {
	if c == nil {
		return
	}
	m := string(out.Move)
	c.proposals.WithLabelValues(m).Add(float64(out.Proposed))
	c.accepted.WithLabelValues(m).Add(float64(out.Accepted))
	c.skipped.WithLabelValues(m).Add(float64(out.Skipped))
}

// ObserveSweep records the end of one iteration. Safe on a nil Collector.
func (c *Collector) ObserveSweep(logLikelihood, mu float64, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.sweeps.Inc()
	c.logLikelihood.Set(logLikelihood)
	c.mu.Set(mu)
	c.sweepDuration.Observe(elapsed.Seconds())
}
