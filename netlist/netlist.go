// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package netlist

import (
	"errors"
	"fmt"
	"sort"
)

// NodeID identifies a node of a scheduled netlist.
type NodeID int

// NoNode is the null NodeID.
const NoNode NodeID = -1

// ElementID identifies an architectural element (a pipeline or an FSM).
type ElementID int

// ChannelID identifies a channel.
type ChannelID int

// Kind is the type of a netlist node.
type Kind uint8

const (
	KindOperator Kind = iota
	KindRead
	KindWrite
	KindConstant
)

var kindNames = [...]string{"operator", "read", "write", "constant"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// IsIO returns whether k is a channel endpoint.
func (k Kind) IsIO() bool {
	return k == KindRead || k == KindWrite
}

// Op is the operator of an operator node.  Only the Boolean operators
// up to OpSelect are part of the synchronization logic vocabulary.
type Op uint8

const (
	OpNone Op = iota
	OpNot
	OpAnd
	OpOr
	OpXor
	OpEq
	OpNe
	OpSelect // alternating value/condition operands, optional default last
	OpAdd
	OpSub
	OpMul
	OpLt
	OpShl
	OpConcat
)

var opNames = [...]string{"none", "not", "and", "or", "xor", "eq", "ne", "select",
	"add", "sub", "mul", "lt", "shl", "concat"}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", o)
}

// Port names an output of a node.  Operator and constant nodes only
// have PortValue; channel endpoints also have handshake control ports
// and channel state ports.
type Port uint8

const (
	PortValue Port = iota
	PortReady
	PortValid
	PortReadyNB
	PortValidNB
	PortEnable
	PortFull
	PortEmpty
	PortFlushed
	PortAck
)

var portNames = [...]string{"value", "ready", "valid", "readyNB", "validNB", "enable",
	"full", "empty", "flushed", "ack"}

func (p Port) String() string {
	if int(p) < len(portNames) {
		return portNames[p]
	}
	return fmt.Sprintf("port(%d)", p)
}

// IsControl returns whether p is a handshake control port, whose
// driver may be rewritten by synchronization resolution.
func (p Port) IsControl() bool {
	return p >= PortReady && p <= PortEnable
}

// IsState returns whether p is register held channel state.
func (p Port) IsState() bool {
	return p >= PortFull && p <= PortFlushed
}

// Operand refers to a port of a node.
type Operand struct {
	Node NodeID `yaml:"node"`
	Port Port   `yaml:"port,omitempty"`
}

// Node is a scheduled netlist node.
type Node struct {
	ID   NodeID    `yaml:"id"`
	Name string    `yaml:"name,omitempty"`
	Kind Kind      `yaml:"kind"`
	Op   Op        `yaml:"op,omitempty"`
	Ins  []Operand `yaml:"ins,omitempty"`

	// Value of a constant; nil is an undefined constant.
	Value *bool `yaml:"value,omitempty"`

	// Time is the scheduled definition time of the node's output.
	Time int       `yaml:"time"`
	Elem ElementID `yaml:"elem"`

	// Channel endpoint attributes.  A nil ExtraCond is true and a nil
	// SkipWhen is false.
	Channel   ChannelID `yaml:"channel,omitempty"`
	ExtraCond *Operand  `yaml:"extra_cond,omitempty"`
	SkipWhen  *Operand  `yaml:"skip_when,omitempty"`
}

// Label returns the name of n, or a name derived from its id.
func (n *Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("n%d", n.ID)
}

// Channel is a write to read connection between two endpoints.
type Channel struct {
	ID          ChannelID `yaml:"id"`
	Name        string    `yaml:"name,omitempty"`
	Capacity    int       `yaml:"capacity"`
	MayFlush    bool      `yaml:"may_flush,omitempty"`
	ForceEnable bool      `yaml:"force_enable,omitempty"`
	Write       NodeID    `yaml:"write"`
	Read        NodeID    `yaml:"read"`
}

// ElementKind distinguishes pipelines from FSMs.
type ElementKind uint8

const (
	ElementPipeline ElementKind = iota
	ElementFSM
)

func (k ElementKind) String() string {
	if k == ElementFSM {
		return "fsm"
	}
	return "pipeline"
}

// Element is an architectural element produced by partitioning.
type Element struct {
	ID   ElementID   `yaml:"id"`
	Name string      `yaml:"name,omitempty"`
	Kind ElementKind `yaml:"kind,omitempty"`
}

// SyncKey identifies a sync node: one activation decision of an
// element in one clock window.
type SyncKey struct {
	Elem  ElementID `yaml:"elem"`
	Clock int       `yaml:"clock"`
}

func (k SyncKey) String() string {
	return fmt.Sprintf("e%d@%d", k.Elem, k.Clock)
}

// SyncNode is a sync node with its attached channel endpoints and its
// neighbours through channels.
type SyncNode struct {
	Key       SyncKey
	IOs       []NodeID
	Neighbors map[SyncKey][]ChannelID
}

// SCC is a declared synchronization SCC: its member sync nodes and the
// operator nodes that make up its synchronization logic.
type SCC struct {
	ID      int       `yaml:"id"`
	Members []SyncKey `yaml:"members"`
	Logic   []NodeID  `yaml:"logic,omitempty"`
}

// Design is a scheduled netlist with its partitioning into elements,
// its channels and its declared synchronization SCCs.
type Design struct {
	Name        string     `yaml:"name"`
	ClockPeriod int        `yaml:"clock_period"`
	Elements    []Element  `yaml:"elements,omitempty"`
	Nodes       []*Node    `yaml:"nodes"`
	Channels    []*Channel `yaml:"channels,omitempty"`
	SCCs        []*SCC     `yaml:"sccs,omitempty"`

	nodes    map[NodeID]*Node
	channels map[ChannelID]*Channel
	elements map[ElementID]*Element
	syncs    map[SyncKey]*SyncNode
	order    []SyncKey
}

// ErrInvalidDesign is returned by Link when the design is inconsistent.
var ErrInvalidDesign = errors.New("invalid design")

// Link validates d and builds its indexes and sync node adjacency.  It
// must be called after d is constructed or modified and before any
// query.
func (d *Design) Link() error {
	if d.ClockPeriod <= 0 {
		return fmt.Errorf("%w: clock period %d", ErrInvalidDesign, d.ClockPeriod)
	}
	d.nodes = make(map[NodeID]*Node, len(d.Nodes))
	d.channels = make(map[ChannelID]*Channel, len(d.Channels))
	d.elements = make(map[ElementID]*Element, len(d.Elements))
	d.syncs = make(map[SyncKey]*SyncNode)
	d.order = d.order[:0]
	for i := range d.Elements {
		e := &d.Elements[i]
		if _, dup := d.elements[e.ID]; dup {
			return fmt.Errorf("%w: duplicate element %d", ErrInvalidDesign, e.ID)
		}
		d.elements[e.ID] = e
	}
	for _, n := range d.Nodes {
		if _, dup := d.nodes[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node %d", ErrInvalidDesign, n.ID)
		}
		d.nodes[n.ID] = n
	}
	for _, c := range d.Channels {
		if _, dup := d.channels[c.ID]; dup {
			return fmt.Errorf("%w: duplicate channel %d", ErrInvalidDesign, c.ID)
		}
		d.channels[c.ID] = c
		w, r := d.nodes[c.Write], d.nodes[c.Read]
		if w == nil || w.Kind != KindWrite || w.Channel != c.ID {
			return fmt.Errorf("%w: channel %d write endpoint %d", ErrInvalidDesign, c.ID, c.Write)
		}
		if r == nil || r.Kind != KindRead || r.Channel != c.ID {
			return fmt.Errorf("%w: channel %d read endpoint %d", ErrInvalidDesign, c.ID, c.Read)
		}
		if c.Capacity < 0 {
			return fmt.Errorf("%w: channel %d capacity %d", ErrInvalidDesign, c.ID, c.Capacity)
		}
	}
	for _, n := range d.Nodes {
		for _, o := range n.operands() {
			if d.nodes[o.Node] == nil {
				return fmt.Errorf("%w: node %d uses undefined node %d", ErrInvalidDesign, n.ID, o.Node)
			}
		}
		if !n.Kind.IsIO() {
			continue
		}
		c := d.channels[n.Channel]
		if c == nil {
			return fmt.Errorf("%w: endpoint %d on undefined channel %d", ErrInvalidDesign, n.ID, n.Channel)
		}
		if c.Write != n.ID && c.Read != n.ID {
			return fmt.Errorf("%w: endpoint %d is not an endpoint of channel %d", ErrInvalidDesign, n.ID, c.ID)
		}
		sn := d.sync(d.SyncOf(n.ID))
		sn.IOs = append(sn.IOs, n.ID)
	}
	for _, c := range d.Channels {
		wk, rk := d.SyncOf(c.Write), d.SyncOf(c.Read)
		w, r := d.syncs[wk], d.syncs[rk]
		w.Neighbors[rk] = append(w.Neighbors[rk], c.ID)
		if wk != rk {
			r.Neighbors[wk] = append(r.Neighbors[wk], c.ID)
		}
	}
	for _, s := range d.SCCs {
		seen := make(map[SyncKey]bool, len(s.Members))
		for _, k := range s.Members {
			if d.syncs[k] == nil {
				return fmt.Errorf("%w: scc %d member %s has no endpoints", ErrInvalidDesign, s.ID, k)
			}
			if seen[k] {
				return fmt.Errorf("%w: scc %d member %s listed twice", ErrInvalidDesign, s.ID, k)
			}
			seen[k] = true
		}
		for _, id := range s.Logic {
			if d.nodes[id] == nil {
				return fmt.Errorf("%w: scc %d logic node %d undefined", ErrInvalidDesign, s.ID, id)
			}
		}
	}
	sort.Slice(d.order, func(i, j int) bool {
		a, b := d.order[i], d.order[j]
		if a.Clock != b.Clock {
			return a.Clock < b.Clock
		}
		return a.Elem < b.Elem
	})
	return nil
}

func (n *Node) operands() []Operand {
	res := append([]Operand(nil), n.Ins...)
	if n.ExtraCond != nil {
		res = append(res, *n.ExtraCond)
	}
	if n.SkipWhen != nil {
		res = append(res, *n.SkipWhen)
	}
	return res
}

func (d *Design) sync(k SyncKey) *SyncNode {
	sn := d.syncs[k]
	if sn == nil {
		sn = &SyncNode{Key: k, Neighbors: make(map[SyncKey][]ChannelID)}
		d.syncs[k] = sn
		d.order = append(d.order, k)
	}
	return sn
}

// ClockIndex returns the clock window containing time t.
func (d *Design) ClockIndex(t int) int {
	if t < 0 {
		return -((-t + d.ClockPeriod - 1) / d.ClockPeriod)
	}
	return t / d.ClockPeriod
}

// WindowStart returns the first time of clock window k.
func (d *Design) WindowStart(k int) int {
	return k * d.ClockPeriod
}

// Node returns the node with id, or nil.
func (d *Design) Node(id NodeID) *Node {
	return d.nodes[id]
}

// Channel returns the channel with id, or nil.
func (d *Design) Channel(id ChannelID) *Channel {
	return d.channels[id]
}

// Element returns the element with id, or nil if it was not declared.
func (d *Design) Element(id ElementID) *Element {
	return d.elements[id]
}

// SyncOf returns the sync node an endpoint is attached to.
func (d *Design) SyncOf(io NodeID) SyncKey {
	n := d.nodes[io]
	return SyncKey{Elem: n.Elem, Clock: d.ClockIndex(n.Time)}
}

// Sync returns the sync node with key k, or nil.
func (d *Design) Sync(k SyncKey) *SyncNode {
	return d.syncs[k]
}

// Syncs returns all sync nodes ordered by clock index then element.
func (d *Design) Syncs() []*SyncNode {
	res := make([]*SyncNode, len(d.order))
	for i, k := range d.order {
		res[i] = d.syncs[k]
	}
	return res
}

// Partner returns the other endpoint of the channel of io.
func (d *Design) Partner(io NodeID) NodeID {
	c := d.channels[d.nodes[io].Channel]
	if c.Write == io {
		return c.Read
	}
	return c.Write
}

// ChannelOf returns the channel of endpoint io.
func (d *Design) ChannelOf(io NodeID) *Channel {
	return d.channels[d.nodes[io].Channel]
}
