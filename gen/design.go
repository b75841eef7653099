// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package gen

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/go-air/hsync/netlist"
)

// make the rng seedable
var rng = rand.New(rand.NewSource(33))
var mu sync.Mutex

func Seed(s int64) {
	mu.Lock()
	defer mu.Unlock()
	rng = rand.New(rand.NewSource(s))
}

// Chain generates a design of n pipeline stages in clock window 0.
//
// Stage i writes to stage i+1 through a pass-through channel.  Stage 0
// is fed by a buffered source and stage n-1 drains into a buffered
// sink.  If ring is set, stage n-1 also writes back to stage 0 through
// a pass-through channel.  Each stage reads a status channel in the
// previous window, and each write between stages is guarded by a
// random condition over the status values.
//
// The stages form one synchronization SCC, declared in the design, if
// n > 1 or ring is set.
func Chain(n int, ring bool) *netlist.Design {
	mu.Lock()
	defer mu.Unlock()
	return ChainR(n, ring, rng)
}

// ChainR is Chain with the random source r.
func ChainR(n int, ring bool, r *rand.Rand) *netlist.Design {
	if n < 1 {
		panic(fmt.Sprintf("gen: chain of %d stages", n))
	}
	b := &builder{
		r: r,
		d: &netlist.Design{Name: fmt.Sprintf("chain%d", n), ClockPeriod: 10}}
	source := netlist.ElementID(n)
	sink := netlist.ElementID(n + 1)
	status := netlist.ElementID(n + 2)
	for i := 0; i < n; i++ {
		b.d.Elements = append(b.d.Elements, netlist.Element{ID: netlist.ElementID(i), Name: fmt.Sprintf("stage%d", i)})
	}
	b.d.Elements = append(b.d.Elements,
		netlist.Element{ID: source, Name: "source", Kind: netlist.ElementFSM},
		netlist.Element{ID: sink, Name: "sink", Kind: netlist.ElementFSM},
		netlist.Element{ID: status, Name: "status", Kind: netlist.ElementFSM})

	st := make([]netlist.NodeID, n)
	for i := range st {
		_, st[i] = b.channel(fmt.Sprintf("status%d", i), 1, status, -8, netlist.ElementID(i), -6)
	}
	b.channel("feed", 2, source, 0, 0, 1)
	for i := 0; i+1 < n; i++ {
		w, _ := b.channel(fmt.Sprintf("link%d", i), 0, netlist.ElementID(i), 2, netlist.ElementID(i+1), 2)
		b.guard(w, netlist.ElementID(i), st)
	}
	if ring {
		w, _ := b.channel("back", 0, netlist.ElementID(n-1), 2, 0, 2)
		b.guard(w, netlist.ElementID(n-1), st)
	}
	b.channel("drain", 1, netlist.ElementID(n-1), 3, sink, 15)

	if err := b.d.Link(); err != nil {
		panic(err)
	}
	b.d.SCCs = b.d.FindSCCs()
	return b.d
}

type builder struct {
	r    *rand.Rand
	d    *netlist.Design
	next netlist.NodeID
}

func (b *builder) node(n *netlist.Node) netlist.NodeID {
	n.ID = b.next
	b.next++
	b.d.Nodes = append(b.d.Nodes, n)
	return n.ID
}

// channel adds a channel from a write of elem we at time wt to a read of
// elem re at time rt.
func (b *builder) channel(name string, capacity int, we netlist.ElementID, wt int,
	re netlist.ElementID, rt int) (w, r netlist.NodeID) {
	id := netlist.ChannelID(len(b.d.Channels))
	w = b.node(&netlist.Node{Name: name + ".w", Kind: netlist.KindWrite, Time: wt, Elem: we, Channel: id})
	r = b.node(&netlist.Node{Name: name + ".r", Kind: netlist.KindRead, Time: rt, Elem: re, Channel: id})
	b.d.Channels = append(b.d.Channels, &netlist.Channel{
		ID: id, Name: name, Capacity: capacity, Write: w, Read: r})
	return w, r
}

// guard sets a random extra condition of write w over the status
// reads st.
func (b *builder) guard(w netlist.NodeID, e netlist.ElementID, st []netlist.NodeID) {
	x := netlist.Operand{Node: st[b.r.Intn(len(st))]}
	y := netlist.Operand{Node: st[b.r.Intn(len(st))]}
	var cond netlist.Operand
	switch b.r.Intn(5) {
	case 0:
		return
	case 1:
		cond = x
	case 2:
		cond = b.op(netlist.OpNot, e, x)
	case 3:
		cond = b.op(netlist.OpAnd, e, x, b.op(netlist.OpNot, e, y))
	default:
		ops := []netlist.Op{netlist.OpOr, netlist.OpXor, netlist.OpEq}
		cond = b.op(ops[b.r.Intn(len(ops))], e, x, y)
	}
	b.d.Nodes[w].ExtraCond = &cond
}

func (b *builder) op(op netlist.Op, e netlist.ElementID, ins ...netlist.Operand) netlist.Operand {
	id := b.node(&netlist.Node{Kind: netlist.KindOperator, Op: op, Ins: ins, Time: 2, Elem: e})
	return netlist.Operand{Node: id}
}
