// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pipe = "../../netlist/testdata/pipe.yaml"

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	require.NoError(t, root.Execute(), errOut.String())
	return out.String()
}

func TestResolveJSON(t *testing.T) {
	var res designJSON
	require.NoError(t, json.Unmarshal([]byte(run(t, "resolve", "--json", pipe)), &res))
	assert.Equal(t, "pipe", res.Design)
	require.Len(t, res.SCCs, 1)
	s := res.SCCs[0]
	assert.Equal(t, 3, s.Pairs)
	assert.Contains(t, s.Activation, "produce@0")
	assert.Contains(t, s.Activation, "consume@0")
	assert.Len(t, s.Drivers, 12)
	for _, d := range s.Drivers {
		assert.NotEmpty(t, d.Expr, "%d.%s", d.Node, d.Port)
	}
}

func TestResolveText(t *testing.T) {
	out := run(t, "resolve", pipe)
	assert.True(t, strings.HasPrefix(out, "scc 0: 3 pairs"), out)
	assert.Contains(t, out, "  produce@0 = ")
	assert.Contains(t, out, "  w.valid@0 = ")
	assert.Contains(t, out, "non-blocking:")
}

func TestSccs(t *testing.T) {
	out := run(t, "sccs", pipe)
	parts := strings.SplitN(out, "detected:\n", 2)
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0], "scc 0: produce@0 consume@0")
	assert.Contains(t, parts[1], "scc 0: produce@0 consume@0")
}

func TestAiger(t *testing.T) {
	out := run(t, "aiger", "--scc", "0", pipe)
	assert.True(t, strings.HasPrefix(out, "aag "), out)
	assert.Contains(t, out, "e0.ack@0")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"aiger", "--scc", "7", pipe})
	assert.Error(t, root.Execute())
}

func TestMetricsOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hsync.prom")
	run(t, "--metrics-out", path, "--log-level", "debug", "--log-json", "resolve", pipe)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `hsync_sccs_resolved_total{design="pipe"} 1`)
}

func TestBadLogLevel(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--log-level", "loud", "sccs", pipe})
	assert.Error(t, root.Execute())
}

func TestBench(t *testing.T) {
	out := run(t, "bench", "--count", "3", "--stages", "4", "--seed", "5")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "inst"))
	assert.True(t, strings.HasPrefix(lines[4], "total"))
}
