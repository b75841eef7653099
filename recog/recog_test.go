// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package recog_test

import (
	"math/rand"
	"testing"

	"github.com/go-air/gini/z"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-air/hsync/aig"
	"github.com/go-air/hsync/netlist"
	"github.com/go-air/hsync/recog"
)

func key(i int) netlist.SignalKey {
	return netlist.SignalKey{Signal: netlist.Signal{Node: netlist.NodeID(i)}}
}

type fixture struct {
	n   *aig.Network
	ins map[netlist.SignalKey]z.Lit
}

func newFixture(k int) *fixture {
	f := &fixture{n: aig.New(), ins: make(map[netlist.SignalKey]z.Lit)}
	for i := 0; i < k; i++ {
		f.ins[key(i)] = f.n.NewInput(key(i))
	}
	return f
}

func (f *fixture) build(e *netlist.Expr) z.Lit {
	n := f.n
	switch e.Op {
	case netlist.ExprConst:
		if e.Value {
			return n.T
		}
		return n.F
	case netlist.ExprSignal:
		return f.ins[e.Sig]
	case netlist.ExprNot:
		return f.build(e.Args[0]).Not()
	case netlist.ExprAnd, netlist.ExprOr:
		ms := make([]z.Lit, len(e.Args))
		for i, a := range e.Args {
			ms[i] = f.build(a)
		}
		if e.Op == netlist.ExprAnd {
			return n.Ands(ms...)
		}
		return n.Ors(ms...)
	case netlist.ExprXor:
		return n.Xor(f.build(e.Args[0]), f.build(e.Args[1]))
	case netlist.ExprMux:
		return n.Choice(f.build(e.Args[1]), f.build(e.Args[0]), f.build(e.Args[2]))
	}
	panic("bad op")
}

func randExpr(rng *rand.Rand, k, depth int) *netlist.Expr {
	if depth == 0 || rng.Intn(5) == 0 {
		if rng.Intn(10) == 0 {
			return netlist.Const(rng.Intn(2) == 1)
		}
		return netlist.Sig(key(rng.Intn(k)))
	}
	sub := func() *netlist.Expr { return randExpr(rng, k, depth-1) }
	switch rng.Intn(6) {
	case 0:
		return netlist.Not(sub())
	case 1:
		return netlist.And(sub(), sub(), sub())
	case 2:
		return netlist.Or(sub(), sub())
	case 3:
		return netlist.Xor(sub(), sub())
	case 4:
		return netlist.Mux(sub(), sub(), sub())
	}
	return netlist.And(sub(), netlist.Not(sub()))
}

// sameFunction compares a and b on all valuations of k signals.
func sameFunction(k int, a, b *netlist.Expr) bool {
	for row := 0; row < 1<<k; row++ {
		env := func(s netlist.SignalKey) bool { return row&(1<<int(s.Node)) != 0 }
		if a.Eval(env) != b.Eval(env) {
			return false
		}
	}
	return true
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(44))
	const k = 4
	for i := 0; i < 300; i++ {
		f := newFixture(k)
		orig := randExpr(rng, k, 4)
		m := f.build(orig)
		got, err := recog.Expr(f.n, m)
		require.NoError(t, err)
		require.True(t, sameFunction(k, orig, got), "%s\nbecame %s", orig, got)

		neg, err := recog.Expr(f.n, m.Not())
		require.NoError(t, err)
		require.True(t, sameFunction(k, netlist.Not(orig), neg), "~%s\nbecame %s", orig, neg)
	}
}

func TestShapes(t *testing.T) {
	f := newFixture(3)
	n := f.n
	a, b, c := f.ins[key(0)], f.ins[key(1)], f.ins[key(2)]
	str := func(m z.Lit) string {
		e, err := recog.Expr(n, m)
		require.NoError(t, err)
		return e.String()
	}
	assert.Equal(t, "(n0@0 ^ n1@0)", str(n.Xor(a, b)))
	assert.Equal(t, "(n0@0 ^ ~n1@0)", str(n.Eq(a, b)))
	assert.Equal(t, "(n2@0 ? n0@0 : n1@0)", str(n.Choice(c, a, b)))
	assert.Equal(t, "(n2@0 ? n1@0 : n0@0)", str(n.Choice(c.Not(), a, b)))
	assert.Equal(t, "(n0@0 | n1@0)", str(n.Or(a, b)))
	assert.Equal(t, "~(n0@0 & n1@0)", str(n.And(a, b).Not()))
	assert.Equal(t, "(n0@0 & ~n1@0)", str(n.And(a, b.Not())))
	assert.Equal(t, "1", str(n.T))
	assert.Equal(t, "~n2@0", str(c.Not()))

	or3, err := recog.Expr(n, n.Ors(a, b, c))
	require.NoError(t, err)
	assert.Equal(t, netlist.ExprOr, or3.Op)
	assert.Len(t, or3.Args, 3)

	and3, err := recog.Expr(n, n.Ands(a, b, c))
	require.NoError(t, err)
	assert.Equal(t, netlist.ExprAnd, and3.Op)
	assert.Len(t, and3.Args, 3)
}

func TestOutput(t *testing.T) {
	f := newFixture(2)
	n := f.n
	id := n.NewOutput("o", n.Xor(f.ins[key(0)], f.ins[key(1)]), true)
	e, err := recog.Output(n, id)
	require.NoError(t, err)
	assert.Equal(t, netlist.ExprXor, e.Op)

	n.RetireOutput(id)
	_, err = recog.Output(n, id)
	assert.Error(t, err)

	u := aig.New()
	x := u.NewInput("x")
	_, err = recog.Expr(u, x)
	assert.ErrorIs(t, err, recog.ErrUntagged)
}
