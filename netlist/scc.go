// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package netlist

import "sort"

// FindSCCs returns the synchronization SCCs of d implied by its
// pass-through channels.
//
// A pass-through (capacity 0) channel makes the write side's ready
// depend on the reader's activation and the read side's valid depend
// on the writer's activation, so it couples its two sync nodes in both
// directions.  The coupling graph is therefore symmetric and its SCCs
// are its connected components.  Components of one sync node are
// reported only if a pass-through channel loops on that node.
//
// The detection is deliberately conservative: a buffered channel also
// makes the writer's ready depend on the reader's activation (ready or
// not full), but it never couples here, since its buffer state usually
// decides the handshake.  Designs needing such SCCs must declare them.
//
// Members are ordered by clock then element; the logic of each SCC is
// the set of operator nodes in the fanin of its endpoints' conditions
// scheduled in the member's clock window.
func (d *Design) FindSCCs() []*SCC {
	coupled := func(k SyncKey) []SyncKey {
		var res []SyncKey
		for nk, chans := range d.syncs[k].Neighbors {
			for _, cid := range chans {
				if d.channels[cid].Capacity == 0 {
					res = append(res, nk)
					break
				}
			}
		}
		return res
	}
	seen := make(map[SyncKey]bool, len(d.order))
	var res []*SCC
	for _, leader := range d.order {
		if seen[leader] {
			continue
		}
		seen[leader] = true
		members := []SyncKey{}
		selfLoop := false
		queue := []SyncKey{leader}
		for len(queue) > 0 {
			k := queue[0]
			queue = queue[1:]
			members = append(members, k)
			for _, nk := range coupled(k) {
				if nk == k {
					selfLoop = true
				}
				if !seen[nk] {
					seen[nk] = true
					queue = append(queue, nk)
				}
			}
		}
		if len(members) == 1 && !selfLoop {
			continue
		}
		sort.Slice(members, func(i, j int) bool {
			a, b := members[i], members[j]
			if a.Clock != b.Clock {
				return a.Clock < b.Clock
			}
			return a.Elem < b.Elem
		})
		res = append(res, &SCC{ID: len(res), Members: members, Logic: d.logicOf(members)})
	}
	return res
}

func (d *Design) logicOf(members []SyncKey) []NodeID {
	inLogic := make(map[NodeID]bool)
	var visit func(o Operand, clock int)
	visit = func(o Operand, clock int) {
		n := d.nodes[o.Node]
		if n == nil || inLogic[n.ID] || n.Kind == KindRead || n.Kind == KindWrite {
			return
		}
		if d.ClockIndex(n.Time) != clock {
			return
		}
		inLogic[n.ID] = true
		for _, in := range n.Ins {
			visit(in, clock)
		}
	}
	for _, k := range members {
		for _, io := range d.syncs[k].IOs {
			n := d.nodes[io]
			if n.ExtraCond != nil {
				visit(*n.ExtraCond, k.Clock)
			}
			if n.SkipWhen != nil {
				visit(*n.SkipWhen, k.Clock)
			}
		}
	}
	res := make([]NodeID, 0, len(inLogic))
	for id := range inLogic {
		res = append(res, id)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}
