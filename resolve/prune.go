// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package resolve

import (
	"github.com/go-air/gini/z"

	"github.com/go-air/hsync/aig"
	"github.com/go-air/hsync/netlist"
)

// pruneNegations merges inputs standing for NOT(x) with the input of x
// in the same clock window: every use of the first becomes the negation
// of the second, and the first is retired.  It returns the number of
// inputs retired.
func (c *Context) pruneNegations() int {
	net := c.net
	byKey := make(map[netlist.SignalKey]aig.InputID)
	for _, id := range net.Inputs() {
		if k, ok := net.InputData(id).(netlist.SignalKey); ok {
			byKey[k] = id
		}
	}
	sub := make(map[z.Var]z.Lit)
	var retire []aig.InputID
	for _, id := range net.Inputs() {
		k, ok := net.InputData(id).(netlist.SignalKey)
		if !ok || k.Node == netlist.NoNode || k.Port != netlist.PortValue {
			continue
		}
		n := c.d.Node(k.Node)
		if n == nil || n.Kind != netlist.KindOperator || n.Op != netlist.OpNot || len(n.Ins) != 1 {
			continue
		}
		xid, ok := byKey[signalKey(n.Ins[0], k.Clock)]
		if !ok {
			continue
		}
		sub[net.Input(id).Var()] = net.Input(xid).Not()
		retire = append(retire, id)
	}
	if len(retire) == 0 {
		return 0
	}
	// NOT(NOT(x)) chains resolve down to the innermost input.
	for v, m := range sub {
		for {
			s, ok := sub[m.Var()]
			if !ok {
				break
			}
			if m.IsPos() {
				m = s
			} else {
				m = s.Not()
			}
		}
		sub[v] = m
	}
	memo := make(map[z.Var]z.Lit)
	for _, id := range net.Outputs() {
		if m := net.Output(id); m != z.LitNull {
			net.SetOutput(id, net.Compose(m, sub, memo))
		}
	}
	for _, id := range retire {
		net.RetireInput(id)
	}
	c.log.Debug("pruned negations", "inputs", len(retire))
	return len(retire)
}
