// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package resolve

import (
	"fmt"
	"log/slog"

	"github.com/go-air/gini/z"

	"github.com/go-air/hsync/aig"
	"github.com/go-air/hsync/expand"
	"github.com/go-air/hsync/netlist"
)

// Context holds the state of the resolution of one synchronization
// SCC: its Boolean network, the translation cache and the loop-break
// pairs.  A Context is not safe for concurrent use.
type Context struct {
	d   *netlist.Design
	scc *netlist.SCC
	cfg *Config
	log *slog.Logger

	net     *aig.Network
	cache   map[netlist.SignalKey]z.Lit // write once
	busy    map[netlist.SignalKey]bool
	members map[netlist.SyncKey]bool
	logic   map[netlist.NodeID]bool

	pairs   []expand.Pair
	pairOf  map[netlist.SignalKey]int
	implied expand.Implied

	ports   []port
	acts    map[netlist.SyncKey]aig.OutputID
	ios     []netlist.NodeID
	built   bool
	cleaned bool
}

// port is a rewritten handshake port of an I/O of the SCC.
type port struct {
	key netlist.SignalKey
	out aig.OutputID
}

// NewContext creates a context for resolving scc of d.
func NewContext(d *netlist.Design, scc *netlist.SCC, cfg *Config) *Context {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := &Context{
		d:       d,
		scc:     scc,
		cfg:     cfg,
		log:     cfg.logger().With("scc", scc.ID),
		net:     aig.New(),
		cache:   make(map[netlist.SignalKey]z.Lit),
		busy:    make(map[netlist.SignalKey]bool),
		members: make(map[netlist.SyncKey]bool, len(scc.Members)),
		logic:   make(map[netlist.NodeID]bool, len(scc.Logic)),
		pairOf:  make(map[netlist.SignalKey]int),
		implied: make(expand.Implied),
		acts:    make(map[netlist.SyncKey]aig.OutputID)}
	for _, k := range scc.Members {
		c.members[k] = true
	}
	for _, id := range scc.Logic {
		c.logic[id] = true
	}
	return c
}

// Network returns the network of c.
func (c *Context) Network() *aig.Network {
	return c.net
}

// Pairs returns the loop-break pairs declared so far.
func (c *Context) Pairs() []expand.Pair {
	return c.pairs
}

func signalKey(op netlist.Operand, clock int) netlist.SignalKey {
	return netlist.SignalKey{Signal: netlist.Signal{Node: op.Node, Port: op.Port}, Clock: clock}
}

// inSCC returns whether io is an endpoint attached to a member of the
// SCC.
func (c *Context) inSCC(io netlist.NodeID) bool {
	n := c.d.Node(io)
	return n != nil && n.Kind.IsIO() && c.members[c.d.SyncOf(io)]
}

// input returns the primary input standing for k, creating it once.
func (c *Context) input(k netlist.SignalKey) z.Lit {
	if m, ok := c.cache[k]; ok {
		return m
	}
	m := c.net.NewInput(k)
	c.cache[k] = m
	return m
}

// Translate returns the literal of operand op in clock window clock.
//
// Values and ports defined before the window, or by nodes outside the
// logic of the SCC, are primary inputs: registers for earlier windows.
// Handshake control ports of endpoints of the SCC in the window are
// loop-break inputs, defined when the handshake logic is synthesized.
// Anything defined after the window ends is an ErrClockWindow.  Literals are only valid until the network is cleaned
// up by Resolve.
func (c *Context) Translate(op netlist.Operand, clock int) (z.Lit, error) {
	if c.cleaned {
		return z.LitNull, fmt.Errorf("translate after cleanup")
	}
	k := signalKey(op, clock)
	if m, ok := c.cache[k]; ok {
		return m, nil
	}
	n := c.d.Node(op.Node)
	if n == nil {
		return z.LitNull, &nodeError{node: op.Node, clock: clock,
			err: fmt.Errorf("%w: undefined node", netlist.ErrInvalidDesign)}
	}
	if op.Port != netlist.PortValue && !n.Kind.IsIO() {
		return z.LitNull, &nodeError{node: n.ID, clock: clock,
			err: fmt.Errorf("%w: %s node has no %s port", netlist.ErrInvalidDesign, n.Kind, op.Port)}
	}
	if n.Kind == netlist.KindConstant {
		m := c.net.F
		if n.Value != nil && *n.Value {
			m = c.net.T
		}
		c.cache[k] = m
		return m, nil
	}
	start := c.d.WindowStart(clock)
	if n.Time >= start+c.d.ClockPeriod {
		return z.LitNull, &nodeError{node: n.ID, clock: clock,
			err: fmt.Errorf("%w: defined at %d, window ends at %d", ErrClockWindow, n.Time, start+c.d.ClockPeriod)}
	}
	if op.Port != netlist.PortValue {
		if n.Time >= start && op.Port.IsControl() && c.inSCC(n.ID) {
			return c.declare(k, expand.Signal), nil
		}
		return c.input(k), nil
	}
	if n.Time < start || !c.logic[n.ID] || n.Kind != netlist.KindOperator {
		return c.input(k), nil
	}
	if c.busy[k] {
		return z.LitNull, &nodeError{node: n.ID, clock: clock,
			err: fmt.Errorf("%w: combinational loop through operator", netlist.ErrInvalidDesign)}
	}
	c.busy[k] = true
	m, err := c.operator(n, clock)
	delete(c.busy, k)
	if err != nil {
		return z.LitNull, err
	}
	c.cache[k] = m
	return m, nil
}

func (c *Context) operands(n *netlist.Node, clock int) ([]z.Lit, error) {
	ms := make([]z.Lit, len(n.Ins))
	for i, op := range n.Ins {
		m, err := c.Translate(op, clock)
		if err != nil {
			return nil, err
		}
		ms[i] = m
	}
	return ms, nil
}

func (c *Context) operator(n *netlist.Node, clock int) (z.Lit, error) {
	arity := func(ok bool) error {
		if ok {
			return nil
		}
		return &nodeError{node: n.ID, clock: clock,
			err: fmt.Errorf("%w: %s with %d operands", ErrUnsupportedOperator, n.Op, len(n.Ins))}
	}
	var err error
	switch n.Op {
	case netlist.OpNot:
		err = arity(len(n.Ins) == 1)
	case netlist.OpAnd, netlist.OpOr:
		err = arity(len(n.Ins) >= 2)
	case netlist.OpXor, netlist.OpEq, netlist.OpNe:
		err = arity(len(n.Ins) == 2)
	case netlist.OpSelect:
		err = arity(len(n.Ins) >= 1)
	default:
		err = &nodeError{node: n.ID, clock: clock,
			err: fmt.Errorf("%w: %s", ErrUnsupportedOperator, n.Op)}
	}
	if err != nil {
		return z.LitNull, err
	}
	ms, err := c.operands(n, clock)
	if err != nil {
		return z.LitNull, err
	}
	net := c.net
	switch n.Op {
	case netlist.OpNot:
		return ms[0].Not(), nil
	case netlist.OpAnd:
		return net.Ands(ms...), nil
	case netlist.OpOr:
		return net.Ors(ms...), nil
	case netlist.OpXor, netlist.OpNe:
		return net.Xor(ms[0], ms[1]), nil
	case netlist.OpEq:
		return net.Eq(ms[0], ms[1]), nil
	}
	// select: v0 c0 v1 c1 ... [default], first condition outermost.
	acc := net.F
	if len(ms)%2 == 1 {
		acc = ms[len(ms)-1]
	}
	for i := len(ms)/2 - 1; i >= 0; i-- {
		acc = net.Choice(ms[2*i+1], ms[2*i], acc)
	}
	return acc, nil
}

// declare returns the input of the loop-break pair of k, declaring the
// pair if needed.  The pair output is defined by define.
func (c *Context) declare(k netlist.SignalKey, kind expand.PairKind) z.Lit {
	if i, ok := c.pairOf[k]; ok {
		return c.net.Input(c.pairs[i].In)
	}
	m := c.net.NewInput(k)
	id, _ := c.net.InputID(m)
	c.pairOf[k] = len(c.pairs)
	c.pairs = append(c.pairs, expand.Pair{In: id, Out: -1, Kind: kind, Key: k})
	c.cache[k] = m
	return m
}

// define sets the definition of the pair of k.  Definitions are
// temporary outputs, retired after expansion.
func (c *Context) define(k netlist.SignalKey, def z.Lit, implies ...z.Lit) {
	p := &c.pairs[c.pairOf[k]]
	p.Out = c.net.NewOutput(k.String(), def, false)
	for _, m := range implies {
		id, _ := c.net.InputID(m)
		c.implied[p.Out] = append(c.implied[p.Out], id)
	}
}
