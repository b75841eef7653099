// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package aig_test

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"github.com/go-air/hsync/aig"
)

func TestGrowStrash(t *testing.T) {
	n := aig.New()
	N := 1020
	ins := make([]z.Lit, 0, N)
	for i := 0; i < N; i++ {
		ins = append(ins, n.NewInput(i))
	}
	gs := make([]z.Lit, N/2)
	for i := 0; i < N/2; i++ {
		j := len(ins) - 1 - i
		gs[i] = n.And(ins[i], ins[j])
	}
	for i := 0; i < N/2; i++ {
		j := len(ins) - 1 - i
		if g := n.And(ins[j], ins[i]); g != gs[i] {
			t.Errorf("invalid strash")
		}
	}
	if err := n.CheckWellFormed(); err != nil {
		t.Error(err)
	}
}

type op struct {
	a z.Lit
	b z.Lit
	g z.Lit
}

func TestLogic(t *testing.T) {
	n := aig.New()
	a := n.NewInput("a")
	b := n.NewInput("b")
	ops := []op{
		{a: n.T, b: n.NewInput("c")},
		{a: n.F, b: n.NewInput("d")},
		{a: a, b: a},
		{a: a, b: a.Not()},
		{a: a, b: b},
		{a: b, b: a}}

	for i := range ops {
		ops[i].g = n.And(ops[i].a, ops[i].b)
	}
	if ops[0].g != ops[0].b {
		t.Errorf("t simp")
	}
	if ops[1].g != ops[1].a {
		t.Errorf("f simp")
	}
	if ops[2].g != ops[2].a {
		t.Errorf("= simp")
	}
	if ops[3].g != n.F {
		t.Errorf("!= simp")
	}
	if ops[4].g != ops[5].g {
		t.Errorf("h simp")
	}
	if n.Kind(ops[4].g) != aig.KindAnd || n.Kind(a) != aig.KindInput || n.Kind(n.T) != aig.KindConst {
		t.Errorf("kinds")
	}
}

var rnd = rand.New(rand.NewSource(1))

func TestEval64(t *testing.T) {
	n := aig.New()
	a, b := n.NewInput("a"), n.NewInput("b")
	g := n.Xor(a, b)
	vs := make([]uint64, n.Len())
	vs[a.Var()] = uint64(rnd.Int63())
	vs[b.Var()] = uint64(rnd.Int63())
	n.Eval64(vs)
	if aig.Value64(vs, g) != vs[a.Var()]^vs[b.Var()] {
		t.Errorf("bad xor eval")
	}
	if aig.Value64(vs, n.T) != ^uint64(0) {
		t.Errorf("bad const eval")
	}
}

func TestCompose(t *testing.T) {
	n := aig.New()
	a, b, c := n.NewInput("a"), n.NewInput("b"), n.NewInput("c")
	g := n.And(a, n.Or(b, c.Not()))
	r := n.Compose(g, map[z.Var]z.Lit{b.Var(): n.F, c.Var(): n.T}, nil)
	if r != n.F {
		t.Errorf("expected false got %s", r)
	}
	r = n.Compose(g.Not(), map[z.Var]z.Lit{c.Var(): n.F}, nil)
	if r != a.Not() {
		t.Errorf("expected %s got %s", a.Not(), r)
	}
	if !n.DependsOn(g, c) || n.DependsOn(r, b) {
		t.Errorf("dependencies")
	}
	sup := n.Support(g)
	if len(sup) != 3 {
		t.Errorf("support of g: %v", sup)
	}
	n.RetireInput(sup[1])
	if sup = n.Support(r, b); len(sup) != 1 || n.Input(sup[0]) != a {
		t.Errorf("support of r, b: %v", sup)
	}
}

func TestCleanup(t *testing.T) {
	n := aig.New()
	a, b, c := n.NewInput("a"), n.NewInput("b"), n.NewInput("c")
	dead := n.And(a, c)
	_ = n.And(dead, b)
	o := n.NewOutput("o", n.Or(a, b), true)
	cid, _ := n.InputID(c)
	n.RetireInput(cid)
	removed := n.Cleanup()
	if removed != 3 {
		t.Errorf("expected 3 removed nodes got %d", removed)
	}
	if n.NumInputs() != 2 || n.Input(cid) != z.LitNull {
		t.Errorf("inputs after cleanup: %d", n.NumInputs())
	}
	if err := n.CheckWellFormed(); err != nil {
		t.Error(err)
	}
	aid, bid := aig.InputID(0), aig.InputID(1)
	if n.InputData(aid) != "a" || n.InputData(bid) != "b" {
		t.Errorf("input data lost")
	}
	vs := make([]uint64, n.Len())
	vs[n.Input(aid).Var()] = 0xc
	vs[n.Input(bid).Var()] = 0xa
	n.Eval64(vs)
	if aig.Value64(vs, n.Output(o))&0xf != 0xe {
		t.Errorf("output function changed")
	}
}

func TestCleanupRetiredInUse(t *testing.T) {
	n := aig.New()
	a := n.NewInput("a")
	n.NewOutput("o", a, true)
	id, _ := n.InputID(a)
	n.RetireInput(id)
	defer func() {
		if recover() == nil {
			t.Errorf("no panic on retired input in use")
		}
	}()
	n.Cleanup()
}

func TestCheckWellFormedCopy(t *testing.T) {
	n := aig.New()
	a, b := n.NewInput("a"), n.NewInput("b")
	o := n.NewOutput("o", n.Choice(a, b, a.Not()), true)
	m := n.Copy()
	if err := m.CheckWellFormed(); err != nil {
		t.Error(err)
	}
	if m.Output(o) != n.Output(o) {
		t.Errorf("copy changed output")
	}
	n.SetOutput(o, z.Var(n.Len()+3).Pos())
	if err := n.CheckWellFormed(); !errors.Is(err, aig.ErrMalformed) {
		t.Errorf("expected malformed, got %v", err)
	}
}

func TestWriteAscii(t *testing.T) {
	n := aig.New()
	a, b := n.NewInput("a"), n.NewInput("b")
	n.NewOutput("g", n.And(a, b.Not()), true)
	n.NewOutput("t", n.T, true)
	var buf bytes.Buffer
	if err := n.WriteAscii(&buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buf.String(), "\n")
	exp := []string{"aag 3 2 0 2 1", "2", "4", "6", "1", "6 5 2", "i0 a", "i1 b", "o0 g", "o1 t", "c", "hsync"}
	for i, e := range exp {
		if lines[i] != e {
			t.Errorf("line %d: expected %q got %q", i, e, lines[i])
		}
	}
}

func ExampleNetwork_equiv() {
	L := aig.New()
	a, b, c := L.NewInput("a"), L.NewInput("b"), L.NewInput("c")
	c1 := L.Ors(a, b, c)
	c2 := L.Ors(a, b, c.Not())
	g1 := L.And(c1, c2)
	g2 := L.Or(a, b)
	// create a "miter", test whether "(a b c) and (a b -c)" is equivalent to "(a b)".
	m := L.Xor(g1, g2)

	s := gini.New()
	L.ToCnfFrom(s, m)
	s.Assume(m)
	if s.Solve() == 1 {
		fmt.Printf("sat\n")
	} else {
		fmt.Printf("unsat\n")
	}
	//Output: unsat
}
