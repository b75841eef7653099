// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package recog

import (
	"errors"
	"fmt"

	"github.com/go-air/gini/z"

	"github.com/go-air/hsync/aig"
	"github.com/go-air/hsync/netlist"
)

// ErrUntagged is returned for inputs which do not carry a
// netlist.SignalKey.
var ErrUntagged = errors.New("input without signal")

type shape int

const (
	shapeAnd shape = iota
	shapeXor
	shapeMux
)

// match describes the function of an and gate g.
//
//	shapeXor: g = x xor y
//	shapeMux: ~g = c ? v1 : v0
//	shapeAnd: none of the above
type match struct {
	shape     shape
	x, y      z.Lit
	c, v1, v0 z.Lit
}

// Translator rebuilds netlist expressions from literals of a network.
// Expressions of shared literals are shared.
type Translator struct {
	n      *aig.Network
	memo   map[z.Lit]*netlist.Expr
	shapes map[z.Var]match
	err    error
}

// New creates a translator for n.  The inputs of n must carry
// netlist.SignalKey data.
func New(n *aig.Network) *Translator {
	return &Translator{
		n:      n,
		memo:   make(map[z.Lit]*netlist.Expr),
		shapes: make(map[z.Var]match)}
}

// Expr returns an expression with the same function as m.
func (t *Translator) Expr(m z.Lit) (*netlist.Expr, error) {
	e := t.lit(m)
	if t.err != nil {
		return nil, t.err
	}
	return e, nil
}

// Output returns an expression for output id.
func (t *Translator) Output(id aig.OutputID) (*netlist.Expr, error) {
	if t.n.Retired(id) || t.n.Output(id) == z.LitNull {
		return nil, fmt.Errorf("output %d (%s) is not live", id, t.n.OutputName(id))
	}
	return t.Expr(t.n.Output(id))
}

// Expr returns an expression with the same function as m in n.
func Expr(n *aig.Network, m z.Lit) (*netlist.Expr, error) {
	return New(n).Expr(m)
}

// Output returns an expression for output id of n.
func Output(n *aig.Network, id aig.OutputID) (*netlist.Expr, error) {
	return New(n).Output(id)
}

func (t *Translator) lit(m z.Lit) *netlist.Expr {
	if e, ok := t.memo[m]; ok {
		return e
	}
	e := t.build(m)
	t.memo[m] = e
	return e
}

func (t *Translator) build(m z.Lit) *netlist.Expr {
	n := t.n
	switch n.Kind(m) {
	case aig.KindConst:
		return netlist.Const(m == n.T)
	case aig.KindInput:
		id, _ := n.InputID(m)
		key, ok := n.InputData(id).(netlist.SignalKey)
		if !ok {
			if t.err == nil {
				t.err = fmt.Errorf("%w: input %d has %T", ErrUntagged, id, n.InputData(id))
			}
			return netlist.Const(false)
		}
		e := netlist.Sig(key)
		if !m.IsPos() {
			return netlist.Not(e)
		}
		return e
	case aig.KindAnd:
	default:
		if t.err == nil {
			t.err = fmt.Errorf("literal %s not in network", m)
		}
		return netlist.Const(false)
	}

	mt := t.match(m.Var())
	switch mt.shape {
	case shapeXor:
		x, y := mt.x, mt.y
		if !m.IsPos() {
			y = y.Not()
		}
		if !x.IsPos() && !y.IsPos() {
			x, y = x.Not(), y.Not()
		}
		return netlist.Xor(t.lit(x), t.lit(y))
	case shapeMux:
		c, v1, v0 := mt.c, mt.v1, mt.v0
		if m.IsPos() {
			v1, v0 = v1.Not(), v0.Not()
		}
		return netlist.Mux(t.lit(v1), t.lit(c), t.lit(v0))
	}

	terms := t.conjuncts(m.Var(), nil)
	if m.IsPos() {
		return netlist.And(t.exprs(terms)...)
	}
	neg := 0
	for _, c := range terms {
		if !c.IsPos() {
			neg++
		}
	}
	if 2*neg < len(terms) {
		return netlist.Not(netlist.And(t.exprs(terms)...))
	}
	args := make([]*netlist.Expr, 0, len(terms))
	for _, c := range terms {
		e := t.lit(c.Not())
		if e.Op == netlist.ExprOr {
			args = append(args, e.Args...)
			continue
		}
		args = append(args, e)
	}
	return netlist.Or(args...)
}

func (t *Translator) exprs(ms []z.Lit) []*netlist.Expr {
	res := make([]*netlist.Expr, len(ms))
	for i, m := range ms {
		res[i] = t.lit(m)
	}
	return res
}

// conjuncts appends to acc the operands of the and tree rooted at v,
// looking through positive operands which are plain and gates.
func (t *Translator) conjuncts(v z.Var, acc []z.Lit) []z.Lit {
	a, b := t.n.Ins(v.Pos())
	for _, x := range []z.Lit{a, b} {
		if x.IsPos() && t.n.Kind(x) == aig.KindAnd && t.match(x.Var()).shape == shapeAnd {
			acc = t.conjuncts(x.Var(), acc)
			continue
		}
		acc = append(acc, x)
	}
	return acc
}

// match recognizes the xor and mux idioms at gate v.  Both are
// g = ~A & ~B with A and B and gates sharing a complemented operand:
// xor when both operands are shared so, mux otherwise.
func (t *Translator) match(v z.Var) match {
	if mt, ok := t.shapes[v]; ok {
		return mt
	}
	mt := t.match1(v)
	t.shapes[v] = mt
	return mt
}

func (t *Translator) match1(v z.Var) match {
	n := t.n
	ga, gb := n.Ins(v.Pos())
	if ga.IsPos() || gb.IsPos() || n.Kind(ga) != aig.KindAnd || n.Kind(gb) != aig.KindAnd {
		return match{}
	}
	a0, a1 := n.Ins(ga)
	b0, b1 := n.Ins(gb)
	if (b0 == a0.Not() && b1 == a1.Not()) || (b0 == a1.Not() && b1 == a0.Not()) {
		return match{shape: shapeXor, x: a0, y: a1}
	}
	as, bs := [2]z.Lit{a0, a1}, [2]z.Lit{b0, b1}
	for i := range as {
		for j := range bs {
			if as[i] != bs[j].Not() {
				continue
			}
			c, v1, v0 := as[i], as[1-i], bs[1-j]
			if !c.IsPos() {
				c, v1, v0 = c.Not(), v0, v1
			}
			return match{shape: shapeMux, c: c, v1: v1, v0: v0}
		}
	}
	return match{}
}
