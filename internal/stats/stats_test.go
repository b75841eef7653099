// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package stats_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-air/hsync/internal/stats"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := stats.New(reg)
	c.Resolved("pipe", 3, 12, time.Millisecond)
	c.Resolved("pipe", 2, 8, time.Millisecond)
	c.Pairs("enable", 2)
	c.Pairs("signal", 0)
	c.Failure("clock_window")
	c.Merged(5)

	n, err := testutil.GatherAndCount(reg, "hsync_sccs_resolved_total", "hsync_scc_failures_total",
		"hsync_loop_break_pairs_total", "hsync_oracle_merged_gates_total")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == "hsync_sccs_resolved_total" {
			assert.Equal(t, 2.0, mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
}

func TestNilCollector(t *testing.T) {
	var c *stats.Collector
	assert.NotPanics(t, func() {
		c.Resolved("x", 1, 1, 0)
		c.Pairs("enable", 1)
		c.Failure("x")
		c.Merged(1)
	})
}
