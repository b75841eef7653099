// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package aig

import (
	"errors"
	"fmt"

	"github.com/go-air/gini/z"
)

// ErrMalformed is returned by CheckWellFormed.
var ErrMalformed = errors.New("malformed network")

// Cleanup removes all and gates which are not reachable from a live
// output, and drops retired inputs.  Live inputs are kept even when
// unused, so the input signature of n is unchanged.
//
// Cleanup renumbers nodes: literals obtained before the call are
// invalid afterwards.  Input and output handles remain valid.
// Cleanup returns the number of nodes removed.
//
// Cleanup panics if a live output depends on a retired input.
func (n *Network) Cleanup() int {
	marks := make([]bool, len(n.nodes))
	roots := make([]z.Lit, 0, len(n.outs))
	for i := range n.outs {
		if o := &n.outs[i]; !o.retired {
			roots = append(roots, o.m)
		}
	}
	n.mark(marks, roots...)

	old := n.nodes
	remap := make([]z.Lit, len(old))
	dst := NewCap(len(old))
	remap[1] = dst.T
	inVar := make(map[z.Var]InputID, len(n.ins))
	for i := range n.ins {
		in := &n.ins[i]
		if in.retired {
			if in.m != z.LitNull && marks[in.m.Var()] {
				panic(fmt.Sprintf("retired input %d still in use", i))
			}
			in.m = z.LitNull
			continue
		}
		_, j := dst.newNode()
		m := z.Var(j).Pos()
		remap[in.m.Var()] = m
		in.m = m
		inVar[m.Var()] = InputID(i)
	}
	for i := 2; i < len(old); i++ {
		nd := old[i]
		if nd.a == z.LitNull || !marks[i] {
			continue
		}
		remap[i] = dst.And(relit(remap, nd.a), relit(remap, nd.b))
	}
	for i := range n.outs {
		o := &n.outs[i]
		if o.retired {
			continue
		}
		o.m = relit(remap, o.m)
	}
	n.nodes = dst.nodes
	n.strash = dst.strash
	n.inVar = inVar
	return len(old) - len(n.nodes)
}

func relit(remap []z.Lit, m z.Lit) z.Lit {
	r := remap[m.Var()]
	if !m.IsPos() {
		return r.Not()
	}
	return r
}

// CheckWellFormed verifies the structural invariants of n: operands
// precede gates, gates are normalised and hashed, and the input and
// output tables refer to nodes of the right kind.
func (n *Network) CheckWellFormed() error {
	if len(n.nodes) < 2 {
		return fmt.Errorf("%w: missing constant node", ErrMalformed)
	}
	for i := 0; i < 2; i++ {
		if nd := n.nodes[i]; nd.a != z.LitNull || nd.b != z.LitNull {
			return fmt.Errorf("%w: reserved node %d has operands", ErrMalformed, i)
		}
	}
	for i := 2; i < len(n.nodes); i++ {
		nd := n.nodes[i]
		v := z.Var(i)
		if nd.a == z.LitNull {
			if nd.b != z.LitNull {
				return fmt.Errorf("%w: node %s half defined", ErrMalformed, v)
			}
			if _, ok := n.inVar[v]; !ok {
				return fmt.Errorf("%w: dangling input node %s", ErrMalformed, v)
			}
			continue
		}
		if nd.a.Var() <= 1 || nd.b.Var() <= 1 {
			return fmt.Errorf("%w: gate %s has constant or null operand", ErrMalformed, v)
		}
		if int(nd.a.Var()) >= i || int(nd.b.Var()) >= i {
			return fmt.Errorf("%w: gate %s not in topological order", ErrMalformed, v)
		}
		if nd.a >= nd.b {
			return fmt.Errorf("%w: gate %s operands not normalised", ErrMalformed, v)
		}
		if n.lookup(nd.a, nd.b) != uint32(i) {
			return fmt.Errorf("%w: gate %s not hashed", ErrMalformed, v)
		}
	}
	for i := range n.ins {
		in := &n.ins[i]
		if in.retired {
			continue
		}
		if n.Kind(in.m) != KindInput || !in.m.IsPos() {
			return fmt.Errorf("%w: input %d is %s", ErrMalformed, i, in.m)
		}
		if n.inVar[in.m.Var()] != InputID(i) {
			return fmt.Errorf("%w: input %d not indexed", ErrMalformed, i)
		}
	}
	for i := range n.outs {
		o := &n.outs[i]
		if o.retired {
			continue
		}
		if n.Kind(o.m) == KindNone {
			return fmt.Errorf("%w: output %d (%s) undriven", ErrMalformed, i, o.name)
		}
	}
	return nil
}

func (n *Network) lookup(a, b z.Lit) uint32 {
	c := strashCode(a, b) % uint32(cap(n.nodes))
	si := n.strash[c]
	for si != 0 {
		nd := &n.nodes[si]
		if nd.a == a && nd.b == b {
			return si
		}
		si = nd.n
	}
	return 0
}
