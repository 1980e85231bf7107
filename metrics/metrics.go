// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counting and roll-cleaning metrics
type Metrics struct {
	// LPV counts
	CountsRun      *prometheus.CounterVec
	CountRounds    prometheus.Histogram
	BallotsCounted prometheus.Counter
	BallotsCast    prometheus.Counter

	// Dedup runs
	DedupRuns        prometheus.Counter
	DedupComparisons prometheus.Counter
	DedupCandidates  prometheus.Counter
	DedupDuration    prometheus.Histogram
}

// New creates the metrics and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CountsRun: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "countroll_lpv_counts_total",
			Help: "LPV counts run, by source",
		}, []string{"source"}), // source: "election", "adhoc"

		CountRounds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "countroll_lpv_rounds",
			Help:    "Elimination rounds per LPV count",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		}),

		BallotsCounted: factory.NewCounter(prometheus.CounterOpts{
			Name: "countroll_lpv_ballots_counted_total",
			Help: "Ballots fed into LPV counts",
		}),

		BallotsCast: factory.NewCounter(prometheus.CounterOpts{
			Name: "countroll_ballots_cast_total",
			Help: "Ballots accepted for open elections",
		}),

		DedupRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "countroll_dedup_runs_total",
			Help: "Duplicate searches run",
		}),

		DedupComparisons: factory.NewCounter(prometheus.CounterOpts{
			Name: "countroll_dedup_comparisons_total",
			Help: "Record pairs scored by duplicate searches",
		}),

		DedupCandidates: factory.NewCounter(prometheus.CounterOpts{
			Name: "countroll_dedup_candidates_total",
			Help: "Candidate duplicate pairs reported",
		}),

		DedupDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "countroll_dedup_duration_seconds",
			Help:    "Duration of duplicate searches",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}),
	}
}

// ObserveCount records one LPV count
func (m *Metrics) ObserveCount(source string, rounds, ballots int) {
	if m == nil {
		return
	}
	m.CountsRun.WithLabelValues(source).Inc()
	m.CountRounds.Observe(float64(rounds))
	m.BallotsCounted.Add(float64(ballots))
}

// IncrementBallotsCast records one accepted ballot
func (m *Metrics) IncrementBallotsCast() {
	if m != nil {
		m.BallotsCast.Inc()
	}
}

// ObserveDedup records one duplicate search
func (m *Metrics) ObserveDedup(comparisons, candidates int, d time.Duration) {
	if m == nil {
		return
	}
	m.DedupRuns.Inc()
	m.DedupComparisons.Add(float64(comparisons))
	m.DedupCandidates.Add(float64(candidates))
	m.DedupDuration.Observe(d.Seconds())
}
