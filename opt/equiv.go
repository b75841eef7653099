// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package opt

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/z"

	"github.com/go-air/hsync/aig"
)

// Checker decides equivalence questions over one network with a single
// incremental gini solver.  The network may grow between calls, new
// gates being encoded lazily, but it must not be cleaned up.
type Checker struct {
	n     *aig.Network
	s     *gini.Gini
	coded int
	calls int
}

// NewChecker creates a checker for n.
func NewChecker(n *aig.Network) *Checker {
	c := &Checker{n: n, s: gini.New(), coded: 2}
	c.s.Add(n.T)
	c.s.Add(z.LitNull)
	return c
}

// Calls returns the number of SAT calls made by c.
func (c *Checker) Calls() int {
	return c.calls
}

func (c *Checker) sync() {
	for ; c.coded < c.n.Len(); c.coded++ {
		g := z.Var(c.coded).Pos()
		if c.n.Kind(g) != aig.KindAnd {
			continue
		}
		a, b := c.n.Ins(g)
		addAnd(c.s, g, a, b)
	}
}

func (c *Checker) unsat(ms ...z.Lit) bool {
	c.sync()
	c.s.Assume(ms...)
	c.calls++
	return c.s.Solve() == -1
}

// Satisfiable returns whether m can be true.
func (c *Checker) Satisfiable(m z.Lit) bool {
	switch m {
	case c.n.T:
		return true
	case c.n.F:
		return false
	}
	return !c.unsat(m)
}

// Valid returns whether m is true under all input valuations.
func (c *Checker) Valid(m z.Lit) bool {
	return !c.Satisfiable(m.Not())
}

// Implies returns whether a implies b.
func (c *Checker) Implies(a, b z.Lit) bool {
	if a == c.n.F || b == c.n.T || a == b {
		return true
	}
	if a == b.Not() {
		return !c.Satisfiable(a)
	}
	return c.unsat(a, b.Not())
}

// Equivalent returns whether a and b denote the same function.
func (c *Checker) Equivalent(a, b z.Lit) bool {
	if a == b {
		return true
	}
	if a == b.Not() {
		return false
	}
	return c.Implies(a, b) && c.Implies(b, a)
}

func addAnd(dst inter.Adder, g, a, b z.Lit) {
	for _, cl := range [][]z.Lit{
		{g.Not(), a},
		{g.Not(), b},
		{g, a.Not(), b.Not()}} {
		for _, m := range cl {
			dst.Add(m)
		}
		dst.Add(z.LitNull)
	}
}

// Equivalent returns whether a and b are equivalent in n.
func Equivalent(n *aig.Network, a, b z.Lit) bool {
	return NewChecker(n).Equivalent(a, b)
}

// Valid returns whether m is a tautology in n.
func Valid(n *aig.Network, m z.Lit) bool {
	return NewChecker(n).Valid(m)
}

// mapAdder forwards clauses to an adder renaming literals.
type mapAdder struct {
	dst inter.Adder
	f   func(z.Lit) z.Lit
}

func (a *mapAdder) Add(m z.Lit) {
	if m == z.LitNull {
		a.dst.Add(m)
		return
	}
	a.dst.Add(a.f(m))
}

// DiffOutputs returns the live outputs of a whose function differs in
// b, where inputs of a and b are identified by handle.  Both networks
// must have the same input and output handles.
func DiffOutputs(a, b *aig.Network) []aig.OutputID {
	s := gini.New()
	offset := z.Var(a.Len())
	bin := make(map[z.Var]z.Var)
	for _, id := range b.Inputs() {
		if m := a.Input(id); m != z.LitNull {
			bin[b.Input(id).Var()] = m.Var()
		}
	}
	rename := func(m z.Lit) z.Lit {
		v := m.Var()
		var w z.Var
		switch {
		case v == 1:
			w = 1
		default:
			if av, ok := bin[v]; ok {
				w = av
			} else {
				w = v + offset
			}
		}
		if m.IsPos() {
			return w.Pos()
		}
		return w.Neg()
	}
	var ra, rb []z.Lit
	for _, id := range a.Outputs() {
		ra = append(ra, a.Output(id))
		rb = append(rb, b.Output(id))
	}
	a.ToCnfFrom(s, ra...)
	b.ToCnfFrom(&mapAdder{dst: s, f: rename}, rb...)
	var diff []aig.OutputID
	for i, id := range a.Outputs() {
		if ra[i] == z.LitNull || rb[i] == z.LitNull {
			if ra[i] != rb[i] {
				diff = append(diff, id)
			}
			continue
		}
		x, y := ra[i], rename(rb[i])
		s.Assume(x, y.Not())
		if s.Solve() == 1 {
			diff = append(diff, id)
			continue
		}
		s.Assume(x.Not(), y)
		if s.Solve() == 1 {
			diff = append(diff, id)
		}
	}
	return diff
}
