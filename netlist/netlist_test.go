// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package netlist_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-air/hsync/netlist"
)

func loadPipe(t *testing.T) *netlist.Design {
	t.Helper()
	d, err := netlist.LoadFile("testdata/pipe.yaml")
	require.NoError(t, err)
	return d
}

func TestLoad(t *testing.T) {
	d := loadPipe(t)
	assert.Equal(t, "pipe", d.Name)
	assert.Equal(t, 10, d.ClockPeriod)

	w := d.Node(1)
	require.NotNil(t, w)
	assert.Equal(t, netlist.KindWrite, w.Kind)
	require.NotNil(t, w.ExtraCond)
	assert.Equal(t, netlist.Operand{Node: 7}, *w.ExtraCond)

	out := d.Node(5)
	require.NotNil(t, out.SkipWhen)
	assert.Equal(t, netlist.Operand{Node: 2, Port: netlist.PortValidNB}, *out.SkipWhen)

	stall := d.Node(10)
	assert.Equal(t, netlist.OpAnd, stall.Op)
	assert.Len(t, stall.Ins, 2)
	k := d.Node(11)
	require.NotNil(t, k.Value)
	assert.True(t, *k.Value)
	assert.Equal(t, netlist.ElementFSM, d.Element(2).Kind)
}

func TestSyncAdjacency(t *testing.T) {
	d := loadPipe(t)
	e0 := netlist.SyncKey{Elem: 0, Clock: 0}
	e1 := netlist.SyncKey{Elem: 1, Clock: 0}

	assert.Equal(t, e0, d.SyncOf(1))
	assert.Equal(t, netlist.SyncKey{Elem: 3, Clock: 1}, d.SyncOf(6))
	assert.Equal(t, netlist.SyncKey{Elem: 0, Clock: -1}, d.SyncOf(12))

	s0 := d.Sync(e0)
	require.NotNil(t, s0)
	assert.ElementsMatch(t, []netlist.NodeID{1, 3}, s0.IOs)
	assert.Equal(t, []netlist.ChannelID{0}, s0.Neighbors[e1])
	assert.Equal(t, []netlist.ChannelID{1}, s0.Neighbors[netlist.SyncKey{Elem: 2, Clock: 0}])

	assert.Equal(t, netlist.NodeID(2), d.Partner(1))
	assert.Equal(t, netlist.NodeID(1), d.Partner(2))
	assert.Equal(t, "link", d.ChannelOf(2).Name)

	var keys []netlist.SyncKey
	for _, s := range d.Syncs() {
		keys = append(keys, s.Key)
	}
	assert.Equal(t, []netlist.SyncKey{
		{Elem: 0, Clock: -1}, {Elem: 2, Clock: -1},
		{Elem: 0, Clock: 0}, {Elem: 1, Clock: 0}, {Elem: 2, Clock: 0},
		{Elem: 3, Clock: 1}}, keys)
}

func TestClockIndex(t *testing.T) {
	d := &netlist.Design{ClockPeriod: 4}
	for _, c := range []struct{ t, k int }{{0, 0}, {3, 0}, {4, 1}, {9, 2}, {-1, -1}, {-4, -1}, {-5, -2}} {
		assert.Equal(t, c.k, d.ClockIndex(c.t), "time %d", c.t)
	}
	assert.Equal(t, 8, d.WindowStart(2))
}

func TestFindSCCs(t *testing.T) {
	d := loadPipe(t)
	sccs := d.FindSCCs()
	require.Len(t, sccs, 1)
	assert.Equal(t, d.SCCs[0].Members, sccs[0].Members)
	assert.Equal(t, []netlist.NodeID{7}, sccs[0].Logic)
}

func TestFindSCCsSelfLoop(t *testing.T) {
	d := &netlist.Design{
		ClockPeriod: 1,
		Nodes: []*netlist.Node{
			{ID: 0, Kind: netlist.KindWrite, Channel: 0},
			{ID: 1, Kind: netlist.KindRead, Channel: 0},
		},
		Channels: []*netlist.Channel{{ID: 0, Write: 0, Read: 1}},
	}
	require.NoError(t, d.Link())
	sccs := d.FindSCCs()
	require.Len(t, sccs, 1)
	assert.Equal(t, []netlist.SyncKey{{Elem: 0, Clock: 0}}, sccs[0].Members)
}

func TestLinkErrors(t *testing.T) {
	cases := map[string]string{
		"period":   "clock_period: 0\nnodes: []\n",
		"dup":      "clock_period: 1\nnodes: [{id: 1, kind: operator}, {id: 1, kind: operator}]\n",
		"operand":  "clock_period: 1\nnodes: [{id: 1, kind: operator, op: not, ins: [4]}]\n",
		"endpoint": "clock_period: 1\nnodes: [{id: 1, kind: read, channel: 0}]\nchannels: [{id: 0, write: 1, read: 1}]\n",
		"member":   "clock_period: 1\nnodes: []\nsccs: [{id: 0, members: [{elem: 3, clock: 0}]}]\n",
		"stray": "clock_period: 1\nnodes: [{id: 1, kind: write, channel: 0}, {id: 2, kind: read, channel: 0}, " +
			"{id: 3, kind: read, channel: 0}]\nchannels: [{id: 0, write: 1, read: 2}]\n",
		"twice": "clock_period: 1\nnodes: [{id: 1, kind: write, channel: 0}, {id: 2, kind: read, channel: 0}]\n" +
			"channels: [{id: 0, write: 1, read: 2}]\n" +
			"sccs: [{id: 0, members: [{elem: 0, clock: 0}, {elem: 0, clock: 0}]}]\n",
	}
	for name, src := range cases {
		_, err := netlist.Load(strings.NewReader(src))
		assert.ErrorIs(t, err, netlist.ErrInvalidDesign, name)
	}
	_, err := netlist.Load(strings.NewReader("clock_period: 1\nnodes: [{id: 1, kind: gate}]\n"))
	assert.ErrorContains(t, err, "unknown node kind")
}

func TestExpr(t *testing.T) {
	a := netlist.SignalKey{Signal: netlist.Signal{Node: 1}, Clock: 0}
	b := netlist.SignalKey{Signal: netlist.Signal{Node: 2, Port: netlist.PortValid}, Clock: 0}
	ack := netlist.SignalKey{Signal: netlist.AckSignal(3), Clock: 1}
	e := netlist.Or(
		netlist.And(netlist.Sig(a), netlist.Not(netlist.Sig(b))),
		netlist.Mux(netlist.Sig(ack), netlist.Sig(b), netlist.Xor(netlist.Sig(a), netlist.Const(true))))

	assert.Equal(t, "((n1@0 & ~n2.valid@0) | (n2.valid@0 ? e3.ack@1 : (n1@0 ^ 1)))", e.String())
	assert.Equal(t, []netlist.SignalKey{a, b, ack}, e.Signals())

	env := map[netlist.SignalKey]bool{}
	get := func(k netlist.SignalKey) bool { return env[k] }
	assert.True(t, e.Eval(get)) // a=0: xor(a,1)=1
	env[a] = true
	assert.True(t, e.Eval(get))
	env[b] = true
	assert.False(t, e.Eval(get))
	env[ack] = true
	assert.True(t, e.Eval(get))
}

func TestSignalName(t *testing.T) {
	d := loadPipe(t)
	k := netlist.SignalKey{Signal: netlist.Signal{Node: 2, Port: netlist.PortValidNB}, Clock: 0}
	assert.Equal(t, "r.validNB@0", d.SignalName(k))
	assert.Equal(t, "consume.ack@0", d.SignalName(netlist.SignalKey{Signal: netlist.AckSignal(1)}))
}
