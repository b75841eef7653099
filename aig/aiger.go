// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package aig

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/go-air/gini/z"
)

// WriteAscii writes n in ASCII AIGER format (version 1.9, no latches)
// to w.  Live inputs and outputs are written in handle order and named
// in the symbol table by their data and names.
func (n *Network) WriteAscii(w io.Writer) error {
	ids := make([]uint, len(n.nodes))
	next := uint(1)
	ins := n.Inputs()
	for _, id := range ins {
		ids[n.ins[id].m.Var()] = next
		next++
	}
	var ands []int
	for i := 2; i < len(n.nodes); i++ {
		if n.nodes[i].a == z.LitNull {
			continue
		}
		ids[i] = next
		next++
		ands = append(ands, i)
	}
	outs := n.Outputs()
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "aag %d %d 0 %d %d\n", next-1, len(ins), len(outs), len(ands))
	for _, id := range ins {
		fmt.Fprintf(bw, "%d\n", aigerLit(ids, n.ins[id].m))
	}
	for _, id := range outs {
		fmt.Fprintf(bw, "%d\n", aigerLit(ids, n.outs[id].m))
	}
	for _, i := range ands {
		nd := n.nodes[i]
		r0, r1 := aigerLit(ids, nd.a), aigerLit(ids, nd.b)
		if r0 < r1 {
			r0, r1 = r1, r0
		}
		fmt.Fprintf(bw, "%d %d %d\n", ids[i]*2, r0, r1)
	}
	for k, id := range ins {
		if d := n.ins[id].data; d != nil {
			fmt.Fprintf(bw, "i%d %s\n", k, symbol(fmt.Sprint(d)))
		}
	}
	for k, id := range outs {
		if nm := n.outs[id].name; nm != "" {
			fmt.Fprintf(bw, "o%d %s\n", k, symbol(nm))
		}
	}
	bw.WriteString("c\nhsync\n")
	return bw.Flush()
}

// aigerLit maps m to the AIGER literal under the variable numbering
// ids; the constant maps to 0 (false) and 1 (true).
func aigerLit(ids []uint, m z.Lit) uint {
	if m.Var() == 1 {
		if m.IsPos() {
			return 1
		}
		return 0
	}
	res := ids[m.Var()] * 2
	if !m.IsPos() {
		res++
	}
	return res
}

func symbol(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}
