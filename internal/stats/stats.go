// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package stats records metrics of synchronization resolution.
package stats

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the resolver metrics registered on one registry.  A
// nil *Collector records nothing.
type Collector struct {
	resolved *prometheus.CounterVec
	failures *prometheus.CounterVec
	pairs    *prometheus.CounterVec
	rounds   prometheus.Histogram
	gates    prometheus.Histogram
	merged   prometheus.Counter
	duration prometheus.Histogram
}

// New registers the resolver metrics on reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		resolved: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hsync",
			Name:      "sccs_resolved_total",
			Help:      "Synchronization SCCs resolved, by design",
		}, []string{"design"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hsync",
			Name:      "scc_failures_total",
			Help:      "Synchronization SCCs which could not be resolved, by error kind",
		}, []string{"kind"}),
		pairs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hsync",
			Name:      "loop_break_pairs_total",
			Help:      "Loop-break pairs expanded, by pair kind",
		}, []string{"kind"}),
		rounds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hsync",
			Name:      "expansion_rounds",
			Help:      "Fixpoint rounds per expansion",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16, 32},
		}),
		gates: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hsync",
			Name:      "network_gates",
			Help:      "And gates of resolved networks",
			Buckets:   prometheus.ExponentialBuckets(4, 2, 12),
		}),
		merged: f.NewCounter(prometheus.CounterOpts{
			Namespace: "hsync",
			Name:      "oracle_merged_gates_total",
			Help:      "Gates merged by the optimizer oracle",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hsync",
			Name:      "scc_duration_seconds",
			Help:      "Time to resolve one synchronization SCC",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
	}
}

// Resolved records a resolved SCC of design.
func (c *Collector) Resolved(design string, rounds, gates int, d time.Duration) {
	if c == nil {
		return
	}
	c.resolved.WithLabelValues(design).Inc()
	c.rounds.Observe(float64(rounds))
	c.gates.Observe(float64(gates))
	c.duration.Observe(d.Seconds())
}

// Pairs records n expanded pairs of kind.
func (c *Collector) Pairs(kind string, n int) {
	if c == nil || n == 0 {
		return
	}
	c.pairs.WithLabelValues(kind).Add(float64(n))
}

// Merged records gates merged by an optimizer.
func (c *Collector) Merged(n int) {
	if c == nil || n == 0 {
		return
	}
	c.merged.Add(float64(n))
}

// Failure records an SCC which failed with an error of kind.
func (c *Collector) Failure(kind string) {
	if c == nil {
		return
	}
	c.failures.WithLabelValues(kind).Inc()
}
