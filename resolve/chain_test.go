// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package resolve_test

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-air/hsync/gen"
	"github.com/go-air/hsync/netlist"
	"github.com/go-air/hsync/resolve"
)

// checkAcyclic checks that e reads no activation of scc and no
// handshake control port of its endpoints.
func checkAcyclic(t *testing.T, d *netlist.Design, scc *netlist.SCC, what string, e *netlist.Expr) {
	t.Helper()
	members := make(map[netlist.SyncKey]bool)
	for _, k := range scc.Members {
		members[k] = true
	}
	for _, s := range e.Signals() {
		if s.Node == netlist.NoNode {
			assert.False(t, members[netlist.SyncKey{Elem: s.Elem, Clock: s.Clock}], "%s reads %s", what, s)
			continue
		}
		if s.Port.IsControl() {
			assert.False(t, members[d.SyncOf(s.Node)], "%s reads %s", what, s)
		}
	}
}

// reference evaluates the handshake equations of an SCC on one
// valuation of its inputs, by iterating the activations from true.
// Conditions may only read values.  Every read of env goes through get,
// and every term is evaluated, so that one run records all inputs.
type reference struct {
	d       *netlist.Design
	scc     *netlist.SCC
	members map[netlist.SyncKey]bool
	logic   map[netlist.NodeID]bool
	env     map[netlist.SignalKey]bool
	seen    map[netlist.SignalKey]bool
	acks    map[netlist.SyncKey]bool
}

func newReference(d *netlist.Design, scc *netlist.SCC) *reference {
	r := &reference{
		d:       d,
		scc:     scc,
		members: make(map[netlist.SyncKey]bool),
		logic:   make(map[netlist.NodeID]bool),
		seen:    make(map[netlist.SignalKey]bool)}
	for _, k := range scc.Members {
		r.members[k] = true
	}
	for _, id := range scc.Logic {
		r.logic[id] = true
	}
	return r
}

func (r *reference) get(k netlist.SignalKey) bool {
	r.seen[k] = true
	return r.env[k]
}

func (r *reference) value(op netlist.Operand, clock int) bool {
	n := r.d.Node(op.Node)
	if n.Kind == netlist.KindConstant {
		return n.Value != nil && *n.Value
	}
	start := r.d.WindowStart(clock)
	if n.Kind != netlist.KindOperator || !r.logic[n.ID] || n.Time < start {
		return r.get(sig(op.Node, op.Port, clock))
	}
	ins := make([]bool, len(n.Ins))
	for i, in := range n.Ins {
		ins[i] = r.value(in, clock)
	}
	switch n.Op {
	case netlist.OpNot:
		return !ins[0]
	case netlist.OpAnd:
		res := true
		for _, b := range ins {
			res = res && b
		}
		return res
	case netlist.OpOr:
		res := false
		for _, b := range ins {
			res = res || b
		}
		return res
	case netlist.OpXor, netlist.OpNe:
		return ins[0] != ins[1]
	case netlist.OpEq:
		return ins[0] == ins[1]
	}
	panic(fmt.Sprintf("reference: operator %s", n.Op))
}

func (r *reference) inSCC(io netlist.NodeID) bool {
	return r.members[r.d.SyncOf(io)]
}

func (r *reference) active(io netlist.NodeID) bool {
	n := r.d.Node(io)
	clock := r.d.SyncOf(io).Clock
	ec, sw := true, false
	if n.ExtraCond != nil {
		ec = r.value(*n.ExtraCond, clock)
	}
	if n.SkipWhen != nil {
		sw = r.value(*n.SkipWhen, clock)
	}
	return ec && !sw
}

// own is the ack of the endpoint's node when it is active.
func (r *reference) own(io netlist.NodeID) bool {
	a := r.active(io)
	return r.acks[r.d.SyncOf(io)] && a
}

// granted is the ready of a write or the valid of a read.
func (r *reference) granted(io netlist.NodeID) bool {
	ch := r.d.ChannelOf(io)
	p := r.d.Partner(io)
	pc := r.d.SyncOf(p).Clock
	if io == ch.Write {
		var rr bool
		if r.inSCC(p) {
			rr = r.own(p)
		} else {
			rr = r.get(sig(p, netlist.PortReady, pc))
		}
		if ch.Capacity > 0 {
			full := r.get(sig(io, netlist.PortFull, r.d.SyncOf(io).Clock))
			return rr || !full
		}
		return rr
	}
	var wv bool
	if r.inSCC(p) {
		wv = r.own(p)
	} else {
		wv = r.get(sig(p, netlist.PortValid, pc))
	}
	switch {
	case ch.Capacity > 0:
		empty := r.get(sig(p, netlist.PortEmpty, pc))
		return wv || !empty
	case ch.MayFlush:
		flushed := r.get(sig(p, netlist.PortFlushed, pc))
		return wv || flushed
	}
	return wv
}

func (r *reference) run(env map[netlist.SignalKey]bool) {
	r.env = env
	r.acks = make(map[netlist.SyncKey]bool)
	for _, k := range r.scc.Members {
		r.acks[k] = true
	}
	for round := 0; round <= len(r.scc.Members); round++ {
		next := make(map[netlist.SyncKey]bool)
		for _, k := range r.scc.Members {
			ack := true
			for _, io := range r.d.Sync(k).IOs {
				a, g := r.active(io), r.granted(io)
				if !r.d.ChannelOf(io).ForceEnable {
					ack = ack && (!a || g)
				}
			}
			next[k] = ack
		}
		r.acks = next
	}
}

// port is the value of a rewritten port.
func (r *reference) port(io netlist.NodeID, p netlist.Port) bool {
	own, cross := r.own(io), r.granted(io)
	isWrite := r.d.Node(io).Kind == netlist.KindWrite
	switch p {
	case netlist.PortEnable:
		return own && cross
	case netlist.PortValid, netlist.PortValidNB:
		if isWrite {
			return own
		}
		return cross
	}
	if isWrite {
		return cross
	}
	return own
}

// checkReference compares res with the reference on every valuation of
// the inputs read by either.
func checkReference(t *testing.T, d *netlist.Design, scc *netlist.SCC, res *resolve.Result) {
	t.Helper()
	ref := newReference(d, scc)
	ref.run(nil)
	for _, e := range res.Activation {
		for _, s := range e.Signals() {
			ref.seen[s] = true
		}
	}
	for _, dr := range res.Drivers {
		for _, s := range dr.Expr.Signals() {
			ref.seen[s] = true
		}
	}
	keys := make([]netlist.SignalKey, 0, len(ref.seen))
	for k := range ref.seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	require.LessOrEqual(t, len(keys), 14, "inputs %v", keys)

	for row := 0; row < 1<<len(keys); row++ {
		env := make(map[netlist.SignalKey]bool, len(keys))
		for i, k := range keys {
			env[k] = row&(1<<i) != 0
		}
		get := func(k netlist.SignalKey) bool { return env[k] }
		ref.run(env)
		for k, e := range res.Activation {
			require.Equal(t, ref.acks[k], e.Eval(get), "%s: activation %s = %s at %v", d.Name, k, e, env)
		}
		for _, dr := range res.Drivers {
			require.Equal(t, ref.port(dr.Node, dr.Port), dr.Expr.Eval(get),
				"%s: n%d.%s = %s at %v", d.Name, dr.Node, dr.Port, dr.Expr, env)
		}
	}
}

func TestResolveChains(t *testing.T) {
	r := rand.New(rand.NewSource(17))
	cfgs := map[string]*resolve.Config{"default": resolve.DefaultConfig()}
	plain := resolve.DefaultConfig()
	plain.Optimize = false
	plain.ImpliedPruning = false
	cfgs["plain"] = plain

	for name, cfg := range cfgs {
		for i := 0; i < 20; i++ {
			n := 2 + r.Intn(5)
			ring := r.Intn(2) == 0
			d := gen.ChainR(n, ring, r)
			res, err := resolve.ResolveAll(context.Background(), d, cfg)
			require.NoError(t, err, "%s %s ring=%v", name, d.Name, ring)
			require.Len(t, res, 1)
			scc := d.SCCs[0]
			assert.Equal(t, n, res[0].Pairs)
			assert.Len(t, res[0].Activation, n)
			for k, e := range res[0].Activation {
				checkAcyclic(t, d, scc, k.String(), e)
			}
			for _, dr := range res[0].Drivers {
				checkAcyclic(t, d, scc, fmt.Sprintf("n%d.%s", dr.Node, dr.Port), dr.Expr)
			}
			checkReference(t, d, scc, res[0])
		}
	}
}

func TestResolvePipeReference(t *testing.T) {
	// pipe.yaml has a skip condition on a rewritten port, which the
	// reference does not model; rebuild it without.
	d := loadPipe(t)
	d.Node(5).SkipWhen = nil
	require.NoError(t, d.Link())
	res, err := resolve.Resolve(d, d.SCCs[0], nil)
	require.NoError(t, err)
	checkReference(t, d, d.SCCs[0], res)
}

func BenchmarkResolveChain(b *testing.B) {
	d := gen.ChainR(8, true, rand.New(rand.NewSource(3)))
	cfg := resolve.DefaultConfig()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := resolve.Resolve(d, d.SCCs[0], cfg); err != nil {
			b.Fatal(err)
		}
	}
}
