// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package netlist

import (
	"fmt"
	"sort"
	"strings"
)

// Signal identifies a port of a node, or the ack of an element (Node
// is NoNode and Port is PortAck).
type Signal struct {
	Node NodeID
	Elem ElementID
	Port Port
}

// AckSignal returns the ack signal of element e.
func AckSignal(e ElementID) Signal {
	return Signal{Node: NoNode, Elem: e, Port: PortAck}
}

func (s Signal) String() string {
	if s.Node == NoNode {
		return fmt.Sprintf("e%d.%s", s.Elem, s.Port)
	}
	if s.Port == PortValue {
		return fmt.Sprintf("n%d", s.Node)
	}
	return fmt.Sprintf("n%d.%s", s.Node, s.Port)
}

// SignalKey is a signal in a clock window.  The same signal in two
// windows is two distinct values.
type SignalKey struct {
	Signal
	Clock int
}

func (k SignalKey) String() string {
	return fmt.Sprintf("%s@%d", k.Signal, k.Clock)
}

// Less orders keys by clock, node, element then port.
func (k SignalKey) Less(o SignalKey) bool {
	if k.Clock != o.Clock {
		return k.Clock < o.Clock
	}
	if k.Node != o.Node {
		return k.Node < o.Node
	}
	if k.Elem != o.Elem {
		return k.Elem < o.Elem
	}
	return k.Port < o.Port
}

// ExprOp is the operator of an Expr.
type ExprOp uint8

const (
	ExprConst ExprOp = iota
	ExprSignal
	ExprNot
	ExprAnd
	ExprOr
	ExprXor
	ExprMux
)

// Expr is a Boolean expression over signals in the operator
// vocabulary of the netlist.  A mux has the operands of a one pair
// select chain: value, condition, default.
type Expr struct {
	Op    ExprOp
	Args  []*Expr
	Value bool
	Sig   SignalKey
}

// Const returns the constant expression b.
func Const(b bool) *Expr {
	return &Expr{Op: ExprConst, Value: b}
}

// Sig returns an expression reading k.
func Sig(k SignalKey) *Expr {
	return &Expr{Op: ExprSignal, Sig: k}
}

// Not returns the negation of e.
func Not(e *Expr) *Expr {
	return &Expr{Op: ExprNot, Args: []*Expr{e}}
}

// And returns the conjunction of es.
func And(es ...*Expr) *Expr {
	return &Expr{Op: ExprAnd, Args: es}
}

// Or returns the disjunction of es.
func Or(es ...*Expr) *Expr {
	return &Expr{Op: ExprOr, Args: es}
}

// Xor returns a xor b.
func Xor(a, b *Expr) *Expr {
	return &Expr{Op: ExprXor, Args: []*Expr{a, b}}
}

// Mux returns "if c then v else d".
func Mux(v, c, d *Expr) *Expr {
	return &Expr{Op: ExprMux, Args: []*Expr{v, c, d}}
}

// Eval evaluates e with signal values given by env.
func (e *Expr) Eval(env func(SignalKey) bool) bool {
	switch e.Op {
	case ExprConst:
		return e.Value
	case ExprSignal:
		return env(e.Sig)
	case ExprNot:
		return !e.Args[0].Eval(env)
	case ExprAnd:
		for _, a := range e.Args {
			if !a.Eval(env) {
				return false
			}
		}
		return true
	case ExprOr:
		for _, a := range e.Args {
			if a.Eval(env) {
				return true
			}
		}
		return false
	case ExprXor:
		return e.Args[0].Eval(env) != e.Args[1].Eval(env)
	case ExprMux:
		if e.Args[1].Eval(env) {
			return e.Args[0].Eval(env)
		}
		return e.Args[2].Eval(env)
	}
	panic(fmt.Sprintf("unknown expr op %d", e.Op))
}

// Signals returns the distinct signals read by e, ordered.
func (e *Expr) Signals() []SignalKey {
	seen := make(map[SignalKey]bool)
	var walk func(x *Expr)
	walk = func(x *Expr) {
		if x.Op == ExprSignal {
			seen[x.Sig] = true
		}
		for _, a := range x.Args {
			walk(a)
		}
	}
	walk(e)
	res := make([]SignalKey, 0, len(seen))
	for k := range seen {
		res = append(res, k)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Less(res[j]) })
	return res
}

func (e *Expr) String() string {
	var sb strings.Builder
	e.format(&sb, nil)
	return sb.String()
}

// Format writes e using name to print signals.
func (e *Expr) Format(name func(SignalKey) string) string {
	var sb strings.Builder
	e.format(&sb, name)
	return sb.String()
}

func (e *Expr) format(sb *strings.Builder, name func(SignalKey) string) {
	switch e.Op {
	case ExprConst:
		if e.Value {
			sb.WriteString("1")
		} else {
			sb.WriteString("0")
		}
	case ExprSignal:
		if name != nil {
			sb.WriteString(name(e.Sig))
		} else {
			sb.WriteString(e.Sig.String())
		}
	case ExprNot:
		sb.WriteString("~")
		e.Args[0].format(sb, name)
	case ExprAnd, ExprOr, ExprXor:
		sep := map[ExprOp]string{ExprAnd: " & ", ExprOr: " | ", ExprXor: " ^ "}[e.Op]
		sb.WriteString("(")
		for i, a := range e.Args {
			if i > 0 {
				sb.WriteString(sep)
			}
			a.format(sb, name)
		}
		sb.WriteString(")")
	case ExprMux:
		sb.WriteString("(")
		e.Args[1].format(sb, name)
		sb.WriteString(" ? ")
		e.Args[0].format(sb, name)
		sb.WriteString(" : ")
		e.Args[2].format(sb, name)
		sb.WriteString(")")
	}
}

// SignalName returns a readable name for k using node and element
// names of d.
func (d *Design) SignalName(k SignalKey) string {
	var base string
	if k.Node == NoNode {
		base = fmt.Sprintf("e%d", k.Elem)
		if e := d.Element(k.Elem); e != nil && e.Name != "" {
			base = e.Name
		}
	} else if n := d.Node(k.Node); n != nil {
		base = n.Label()
	} else {
		base = fmt.Sprintf("n%d", k.Node)
	}
	if k.Port != PortValue {
		base += "." + k.Port.String()
	}
	return fmt.Sprintf("%s@%d", base, k.Clock)
}
