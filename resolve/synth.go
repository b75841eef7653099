// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package resolve

import (
	"fmt"
	"sort"

	"github.com/go-air/gini/z"

	"github.com/go-air/hsync/expand"
	"github.com/go-air/hsync/netlist"
)

// Ports rewritten for each endpoint of an SCC.
var (
	writePorts = []netlist.Port{netlist.PortValid, netlist.PortReadyNB, netlist.PortEnable}
	readPorts  = []netlist.Port{netlist.PortReady, netlist.PortValidNB, netlist.PortEnable}
)

// endpoint is a channel endpoint attached to a member of the SCC.
type endpoint struct {
	node   *netlist.Node
	ch     *netlist.Channel
	sync   netlist.SyncKey
	ack    z.Lit // activation of the endpoint's sync node
	active z.Lit // extra condition and not skipped
}

func ackKey(k netlist.SyncKey) netlist.SignalKey {
	return netlist.SignalKey{Signal: netlist.AckSignal(k.Elem), Clock: k.Clock}
}

func (c *Context) endpoint(io netlist.NodeID, eps map[netlist.NodeID]*endpoint) (*endpoint, error) {
	if ep, ok := eps[io]; ok {
		return ep, nil
	}
	n := c.d.Node(io)
	k := c.d.SyncOf(io)
	ep := &endpoint{node: n, ch: c.d.ChannelOf(io), sync: k}
	ep.ack = c.declare(ackKey(k), expand.Enable)
	ec, sw := c.net.T, c.net.F
	var err error
	if n.ExtraCond != nil {
		if ec, err = c.Translate(*n.ExtraCond, k.Clock); err != nil {
			return nil, err
		}
	}
	if n.SkipWhen != nil {
		if sw, err = c.Translate(*n.SkipWhen, k.Clock); err != nil {
			return nil, err
		}
	}
	ep.active = c.net.And(ec, sw.Not())
	eps[io] = ep
	return ep, nil
}

// ready returns the ready of the write endpoint w.  Across a buffer it
// is also ready when the buffer is not full.
func (c *Context) ready(w *endpoint, eps map[netlist.NodeID]*endpoint) (z.Lit, error) {
	rid := c.d.Partner(w.node.ID)
	var rr z.Lit
	if c.inSCC(rid) {
		r, err := c.endpoint(rid, eps)
		if err != nil {
			return z.LitNull, err
		}
		rr = c.net.And(r.ack, r.active)
	} else {
		var err error
		rr, err = c.Translate(netlist.Operand{Node: rid, Port: netlist.PortReady}, c.d.SyncOf(rid).Clock)
		if err != nil {
			return z.LitNull, err
		}
	}
	if w.ch.Capacity == 0 {
		return rr, nil
	}
	full := c.input(signalKey(netlist.Operand{Node: w.node.ID, Port: netlist.PortFull}, w.sync.Clock))
	return c.net.Or(rr, full.Not()), nil
}

// valid returns the valid of the read endpoint r: the writer is valid,
// the buffer is not empty, or the channel was flushed.
func (c *Context) valid(r *endpoint, eps map[netlist.NodeID]*endpoint) (z.Lit, error) {
	wid := c.d.Partner(r.node.ID)
	wk := c.d.SyncOf(wid)
	var wv z.Lit
	if c.inSCC(wid) {
		w, err := c.endpoint(wid, eps)
		if err != nil {
			return z.LitNull, err
		}
		wv = c.net.And(w.ack, w.active)
	} else {
		var err error
		wv, err = c.Translate(netlist.Operand{Node: wid, Port: netlist.PortValid}, wk.Clock)
		if err != nil {
			return z.LitNull, err
		}
	}
	state := func(p netlist.Port) z.Lit {
		return c.input(signalKey(netlist.Operand{Node: wid, Port: p}, wk.Clock))
	}
	switch {
	case r.ch.Capacity > 0:
		return c.net.Or(wv, state(netlist.PortEmpty).Not()), nil
	case r.ch.MayFlush:
		return c.net.Or(wv, state(netlist.PortFlushed)), nil
	}
	return wv, nil
}

// portDef returns the definition of port p of ep, and whether it
// implies the activation of ep's sync node.
func (c *Context) portDef(ep *endpoint, p netlist.Port, eps map[netlist.NodeID]*endpoint) (z.Lit, bool, error) {
	own := c.net.And(ep.ack, ep.active)
	var cross z.Lit
	var err error
	if ep.node.Kind == netlist.KindWrite {
		cross, err = c.ready(ep, eps)
	} else {
		cross, err = c.valid(ep, eps)
	}
	if err != nil {
		return z.LitNull, false, err
	}
	isWrite := ep.node.Kind == netlist.KindWrite
	switch p {
	case netlist.PortEnable:
		return c.net.And(own, cross), true, nil
	case netlist.PortValid, netlist.PortValidNB:
		if isWrite {
			return own, true, nil
		}
		return cross, false, nil
	case netlist.PortReady, netlist.PortReadyNB:
		if isWrite {
			return cross, false, nil
		}
		return own, true, nil
	}
	return z.LitNull, false, fmt.Errorf("%w: port %s is not a handshake port", netlist.ErrInvalidDesign, p)
}

// synthesize builds the activation of every member sync node and the
// rewritten handshake ports of its endpoints.
//
// A sync node is activated when each of its active endpoints is
// granted: a write is granted when its channel is ready, a read when
// its channel is valid.  Endpoints of force enabled channels never
// hold the node back.
func (c *Context) synthesize() error {
	eps := make(map[netlist.NodeID]*endpoint)
	for _, k := range c.scc.Members {
		sn := c.d.Sync(k)
		if sn == nil {
			return fmt.Errorf("%w: scc member %s has no endpoints", netlist.ErrInvalidDesign, k)
		}
		ack := c.declare(ackKey(k), expand.Enable)
		terms := make([]z.Lit, 0, len(sn.IOs))
		for _, io := range sn.IOs {
			ep, err := c.endpoint(io, eps)
			if err != nil {
				return err
			}
			c.ios = append(c.ios, io)
			if ep.ch.ForceEnable {
				continue
			}
			var granted z.Lit
			if ep.node.Kind == netlist.KindWrite {
				granted, err = c.ready(ep, eps)
			} else {
				granted, err = c.valid(ep, eps)
			}
			if err != nil {
				return err
			}
			terms = append(terms, c.net.Implies(ep.active, granted))
		}
		c.define(ackKey(k), c.net.Ands(terms...))
		c.acts[k] = c.net.NewOutput(ackKey(k).String(), ack, true)
	}
	sort.Slice(c.ios, func(i, j int) bool { return c.ios[i] < c.ios[j] })

	for _, io := range c.ios {
		ep := eps[io]
		ports := readPorts
		if ep.node.Kind == netlist.KindWrite {
			ports = writePorts
		}
		for _, p := range ports {
			def, _, err := c.portDef(ep, p, eps)
			if err != nil {
				return err
			}
			k := netlist.SignalKey{Signal: netlist.Signal{Node: io, Port: p}, Clock: ep.sync.Clock}
			c.ports = append(c.ports, port{key: k, out: c.net.NewOutput(k.String(), def, true)})
		}
	}

	// signal pairs declared while translating conditions; defining one
	// may declare more.
	for i := 0; i < len(c.pairs); i++ {
		if c.pairs[i].Out >= 0 || c.pairs[i].Kind != expand.Signal {
			continue
		}
		k := c.pairs[i].Key.(netlist.SignalKey)
		ep, err := c.endpoint(k.Node, eps)
		if err != nil {
			return err
		}
		def, implies, err := c.portDef(ep, k.Port, eps)
		if err != nil {
			return err
		}
		if implies {
			c.define(k, def, ep.ack)
		} else {
			c.define(k, def)
		}
	}
	for _, p := range c.pairs {
		if p.Out < 0 {
			return fmt.Errorf("%w: activation of %v is used but not synthesized", netlist.ErrInvalidDesign, p.Key)
		}
	}
	return nil
}
