// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package aig

import (
	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/z"
)

// Kind identifies the type of a node in a Network.
type Kind uint8

const (
	KindNone Kind = iota
	KindConst
	KindInput
	KindAnd
)

func (k Kind) String() string {
	switch k {
	case KindConst:
		return "const"
	case KindInput:
		return "input"
	case KindAnd:
		return "and"
	}
	return "none"
}

// InputID is a stable handle for a primary input.  It survives
// Cleanup and optimizer round trips, unlike the input's literal.
type InputID int

// OutputID is a stable handle for a primary output.
type OutputID int

// Network is an and-inverter graph with named primary inputs and
// outputs.  Literals are gini literals; variable 1 is the constant,
// with T == Var(1).Pos() and F == T.Not().
//
// Nodes are kept in topological order: the operands of an and gate
// always have smaller variables than the gate.
type Network struct {
	nodes  []node   // list of all nodes
	strash []uint32 // strash
	ins    []input
	outs   []output
	inVar  map[z.Var]InputID
	F      z.Lit // false literal
	T      z.Lit
}

type node struct {
	a z.Lit  // input a
	b z.Lit  // input b
	n uint32 // next strash
}

type input struct {
	m       z.Lit
	data    interface{}
	retired bool
}

type output struct {
	name    string
	m       z.Lit
	keep    bool
	retired bool
}

// New creates a new empty network.
func New() *Network {
	return NewCap(128)
}

// NewCap creates a new network with initial node capacity capHint.
func NewCap(capHint int) *Network {
	n := &Network{}
	initNetwork(n, capHint)
	return n
}

func initNetwork(n *Network, capHint int) {
	if capHint < 2 {
		capHint = 2
	}
	n.nodes = make([]node, 2, capHint)
	n.strash = make([]uint32, capHint)
	n.inVar = make(map[z.Var]InputID)
	n.T = z.Var(1).Pos()
	n.F = n.T.Not()
}

// Len returns the number of nodes, including the unused node 0 and
// the constant.  Len() - 1 is the maximal variable in n.
func (n *Network) Len() int {
	return len(n.nodes)
}

// Kind returns the kind of the node of m.
func (n *Network) Kind(m z.Lit) Kind {
	v := m.Var()
	switch {
	case v == 0 || int(v) >= len(n.nodes):
		return KindNone
	case v == 1:
		return KindConst
	case n.nodes[v].a == z.LitNull:
		return KindInput
	}
	return KindAnd
}

// Ins returns the operands of m.  For inputs and constants, Ins
// returns z.LitNull, z.LitNull.
func (n *Network) Ins(m z.Lit) (z.Lit, z.Lit) {
	nd := n.nodes[m.Var()]
	return nd.a, nd.b
}

// NewInput creates a primary input carrying data and returns its
// positive literal.
func (n *Network) NewInput(data interface{}) z.Lit {
	_, j := n.newNode()
	m := z.Var(j).Pos()
	id := InputID(len(n.ins))
	n.ins = append(n.ins, input{m: m, data: data})
	n.inVar[m.Var()] = id
	return m
}

// InputID returns the handle of the input whose variable is m.Var().
func (n *Network) InputID(m z.Lit) (InputID, bool) {
	id, ok := n.inVar[m.Var()]
	return id, ok
}

// Input returns the positive literal of input id, or z.LitNull if
// the input has been retired.
func (n *Network) Input(id InputID) z.Lit {
	in := &n.ins[id]
	if in.retired {
		return z.LitNull
	}
	return in.m
}

// InputData returns the data associated with input id at creation.
func (n *Network) InputData(id InputID) interface{} {
	return n.ins[id].data
}

// Inputs returns the handles of all live inputs in creation order.
func (n *Network) Inputs() []InputID {
	res := make([]InputID, 0, len(n.ins))
	for i := range n.ins {
		if !n.ins[i].retired {
			res = append(res, InputID(i))
		}
	}
	return res
}

// NumInputs returns the number of live inputs.
func (n *Network) NumInputs() int {
	c := 0
	for i := range n.ins {
		if !n.ins[i].retired {
			c++
		}
	}
	return c
}

// InputCap returns the size of the input handle space, including
// retired handles.
func (n *Network) InputCap() int {
	return len(n.ins)
}

// RetireInput marks input id as no longer part of the network.  The
// caller must make sure no live output still depends on it; the node
// is dropped at the next Cleanup.
func (n *Network) RetireInput(id InputID) {
	n.ins[id].retired = true
}

// NewOutput creates a primary output named name driven by m.  Only
// outputs with keep set are outputs of interest; the others are
// temporaries which their creator retires.
func (n *Network) NewOutput(name string, m z.Lit, keep bool) OutputID {
	id := OutputID(len(n.outs))
	n.outs = append(n.outs, output{name: name, m: m, keep: keep})
	return id
}

// Output returns the literal driving output id.
func (n *Network) Output(id OutputID) z.Lit {
	return n.outs[id].m
}

// SetOutput redefines output id to be driven by m.
func (n *Network) SetOutput(id OutputID, m z.Lit) {
	n.outs[id].m = m
}

// OutputName returns the name of output id.
func (n *Network) OutputName(id OutputID) string {
	return n.outs[id].name
}

// Keep returns whether output id is an output of interest.
func (n *Network) Keep(id OutputID) bool {
	return n.outs[id].keep
}

// Retired returns whether output id has been retired.
func (n *Network) Retired(id OutputID) bool {
	return n.outs[id].retired
}

// RetireOutput removes output id from the set of live outputs.
func (n *Network) RetireOutput(id OutputID) {
	o := &n.outs[id]
	o.retired = true
	o.m = z.LitNull
}

// Outputs returns the handles of the live outputs in creation order.
func (n *Network) Outputs() []OutputID {
	res := make([]OutputID, 0, len(n.outs))
	for i := range n.outs {
		if !n.outs[i].retired {
			res = append(res, OutputID(i))
		}
	}
	return res
}

// OutputCap returns the size of the output handle space.
func (n *Network) OutputCap() int {
	return len(n.outs)
}

// And returns a literal equivalent to "a and b", which may
// be a new variable.
func (n *Network) And(a, b z.Lit) z.Lit {
	if a == b {
		return a
	}
	if a == b.Not() {
		return n.F
	}
	if a > b {
		a, b = b, a
	}
	if a == n.F || b == n.F {
		return n.F
	}
	if a == n.T {
		return b
	}
	if b == n.T {
		return a
	}
	c := strashCode(a, b)
	l := uint32(cap(n.nodes))
	i := c % l
	si := n.strash[i]
	for si != 0 {
		nd := &n.nodes[si]
		if nd.a == a && nd.b == b {
			return z.Var(si).Pos()
		}
		si = nd.n
	}
	m, j := n.newNode()
	m.a = a
	m.b = b
	k := c % uint32(cap(n.nodes))
	m.n = n.strash[k]
	n.strash[k] = j
	return z.Var(j).Pos()
}

// Ands constructs a conjunction of a sequence of literals.
// If ms is empty, then Ands returns n.T.
func (n *Network) Ands(ms ...z.Lit) z.Lit {
	a := n.T
	for _, m := range ms {
		a = n.And(a, m)
	}
	return a
}

// Or constructs a literal which is the disjunction of a and b.
func (n *Network) Or(a, b z.Lit) z.Lit {
	nor := n.And(a.Not(), b.Not())
	return nor.Not()
}

// Ors constructs a literal which is the disjunction of the literals in ms.
// If ms is empty, then Ors returns n.F
func (n *Network) Ors(ms ...z.Lit) z.Lit {
	d := n.F
	for _, m := range ms {
		d = n.Or(d, m)
	}
	return d
}

// Implies constructs a literal which is equivalent to (a implies b).
func (n *Network) Implies(a, b z.Lit) z.Lit {
	return n.Or(a.Not(), b)
}

// Xor constructs a literal which is equivalent to (a xor b).
func (n *Network) Xor(a, b z.Lit) z.Lit {
	return n.Or(n.And(a, b.Not()), n.And(a.Not(), b))
}

// Eq constructs a literal which is equivalent to (a iff b).
func (n *Network) Eq(a, b z.Lit) z.Lit {
	return n.Xor(a, b).Not()
}

// Choice constructs a literal which is equivalent to
//
//	if i then t else e
func (n *Network) Choice(i, t, e z.Lit) z.Lit {
	return n.Or(n.And(i, t), n.And(i.Not(), e))
}

// Compose returns the literal obtained from m by replacing every
// variable v in sub by sub[v].  memo caches results per variable
// and may be shared between calls with the same sub.
func (n *Network) Compose(m z.Lit, sub map[z.Var]z.Lit, memo map[z.Var]z.Lit) z.Lit {
	if memo == nil {
		memo = make(map[z.Var]z.Lit)
	}
	v := m.Var()
	res, ok := memo[v]
	if !ok {
		if s, found := sub[v]; found {
			res = s
		} else if n.Kind(m) == KindAnd {
			nd := n.nodes[v]
			res = n.And(n.Compose(nd.a, sub, memo), n.Compose(nd.b, sub, memo))
		} else {
			res = v.Pos()
		}
		memo[v] = res
	}
	if !m.IsPos() {
		return res.Not()
	}
	return res
}

// Support returns the live inputs reachable from the roots, in
// creation order.
func (n *Network) Support(roots ...z.Lit) []InputID {
	marks := make([]bool, len(n.nodes))
	n.mark(marks, roots...)
	var res []InputID
	for i := range n.ins {
		in := &n.ins[i]
		if in.retired {
			continue
		}
		if marks[in.m.Var()] {
			res = append(res, InputID(i))
		}
	}
	return res
}

// DependsOn returns whether the cone of m contains the variable of d.
func (n *Network) DependsOn(m, d z.Lit) bool {
	marks := make([]bool, len(n.nodes))
	n.mark(marks, m)
	return marks[d.Var()]
}

func (n *Network) mark(marks []bool, roots ...z.Lit) {
	stack := make([]z.Var, 0, len(roots))
	for _, r := range roots {
		if r != z.LitNull {
			stack = append(stack, r.Var())
		}
	}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if marks[v] {
			continue
		}
		marks[v] = true
		nd := n.nodes[v]
		if nd.a != z.LitNull {
			stack = append(stack, nd.a.Var(), nd.b.Var())
		}
	}
}

// Eval64 evaluates the network on 64 valuations in parallel, one per
// bit.  vs must have length Len() and contain values for all inputs.
func (n *Network) Eval64(vs []uint64) {
	vs[1] = ^uint64(0)
	for i := 2; i < len(n.nodes); i++ {
		nd := &n.nodes[i]
		if nd.a == z.LitNull {
			continue
		}
		a, b := nd.a, nd.b
		va, vb := vs[a.Var()], vs[b.Var()]
		if !a.IsPos() {
			va = ^va
		}
		if !b.IsPos() {
			vb = ^vb
		}
		vs[i] = va & vb
	}
}

// Value64 returns the value of m under the evaluation vs computed by
// Eval64.
func Value64(vs []uint64, m z.Lit) uint64 {
	v := vs[m.Var()]
	if !m.IsPos() {
		return ^v
	}
	return v
}

// ToCnfFrom creates a conjunctive normal form of n in dst, including
// only the part of the network reachable from some root in roots.
// The constant is always constrained to be true.
func (n *Network) ToCnfFrom(dst inter.Adder, roots ...z.Lit) {
	dst.Add(n.T)
	dst.Add(z.LitNull)
	dfs := make([]int8, len(n.nodes))
	var vis func(m z.Lit)
	vis = func(m z.Lit) {
		v := m.Var()
		if dfs[v] == 1 {
			return
		}
		nd := &n.nodes[v]
		if nd.a == z.LitNull {
			dfs[v] = 1
			return
		}
		vis(nd.a)
		vis(nd.b)
		addAnd(dst, v.Pos(), nd.a, nd.b)
		dfs[v] = 1
	}
	for _, root := range roots {
		if root != z.LitNull {
			vis(root)
		}
	}
}

func addAnd(dst inter.Adder, g, a, b z.Lit) {
	dst.Add(g.Not())
	dst.Add(a)
	dst.Add(0)
	dst.Add(g.Not())
	dst.Add(b)
	dst.Add(0)
	dst.Add(g)
	dst.Add(a.Not())
	dst.Add(b.Not())
	dst.Add(0)
}

// Copy makes a deep copy of n.
func (n *Network) Copy() *Network {
	res := &Network{
		nodes:  make([]node, len(n.nodes), cap(n.nodes)),
		strash: make([]uint32, len(n.strash)),
		ins:    make([]input, len(n.ins)),
		outs:   make([]output, len(n.outs)),
		inVar:  make(map[z.Var]InputID, len(n.inVar)),
		F:      n.F,
		T:      n.T}
	copy(res.nodes, n.nodes)
	copy(res.strash, n.strash)
	copy(res.ins, n.ins)
	copy(res.outs, n.outs)
	for v, id := range n.inVar {
		res.inVar[v] = id
	}
	return res
}

// Shell returns a network with the input and output handles of n but
// no gates.  Live inputs are recreated in handle order with their data;
// outputs keep their names and flags but are undriven.
func (n *Network) Shell() *Network {
	res := NewCap(len(n.nodes))
	for i := range n.ins {
		in := n.ins[i]
		if in.retired {
			res.ins = append(res.ins, input{data: in.data, retired: true})
			continue
		}
		_, j := res.newNode()
		m := z.Var(j).Pos()
		res.inVar[m.Var()] = InputID(i)
		res.ins = append(res.ins, input{m: m, data: in.data})
	}
	for i := range n.outs {
		o := n.outs[i]
		o.m = z.LitNull
		res.outs = append(res.outs, o)
	}
	return res
}

func (n *Network) newNode() (*node, uint32) {
	if len(n.nodes) == cap(n.nodes) {
		n.grow()
	}
	id := len(n.nodes)
	n.nodes = n.nodes[:id+1]
	return &n.nodes[id], uint32(id)
}

func (n *Network) grow() {
	newCap := cap(n.nodes) * 2
	nodes := make([]node, len(n.nodes), newCap)
	copy(nodes, n.nodes)
	n.nodes = nodes
	n.rehash()
}

func (n *Network) rehash() {
	ucap := uint32(cap(n.nodes))
	strash := make([]uint32, ucap)
	for i := 2; i < len(n.nodes); i++ {
		nd := &n.nodes[i]
		nd.n = 0
		if nd.a == z.LitNull {
			continue
		}
		j := strashCode(nd.a, nd.b) % ucap
		nd.n = strash[j]
		strash[j] = uint32(i)
	}
	n.strash = strash
}

func strashCode(a, b z.Lit) uint32 {
	return uint32((a << 13) * b)
}
