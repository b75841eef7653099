// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package expand

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-air/gini/z"

	"github.com/go-air/hsync/aig"
	"github.com/go-air/hsync/opt"
)

// ErrUnbreakableCycle is returned when a combinational cycle has no
// fixpoint reachable by expansion.
var ErrUnbreakableCycle = errors.New("unbreakable combinational cycle")

// PairKind distinguishes the two sources of loop-break pairs.
type PairKind int

const (
	// Enable pairs stand for the activation of a sync node.
	Enable PairKind = iota
	// Signal pairs stand for a rewritten ready or valid port.
	Signal
)

func (k PairKind) String() string {
	if k == Enable {
		return "enable"
	}
	return "signal"
}

// Pair ties a placeholder input to the output defining it.  The
// network is cyclic exactly when the cones of pair outputs contain pair
// inputs.
type Pair struct {
	In   aig.InputID
	Out  aig.OutputID
	Kind PairKind
	Key  interface{} // what the pair stands for, used in errors
}

// Implied maps an output to inputs known to be true whenever the
// output is true.
type Implied map[aig.OutputID][]aig.InputID

// CycleError reports the pairs of a cycle which could not be broken.
type CycleError struct {
	Keys   []interface{}
	Rounds int
	Reason string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s %v", ErrUnbreakableCycle, e.Reason, e.Keys)
}

func (e *CycleError) Unwrap() error {
	return ErrUnbreakableCycle
}

// Engine expands the combinational loops of a network through its
// loop-break pairs.
type Engine struct {
	MaxRounds int  // lower bound on the number of iteration rounds
	Pruning   bool // use implied values to simplify definitions
	Logger    *slog.Logger
}

// Result gives statistics of one expansion.
type Result struct {
	Pairs   int // pairs expanded
	Rounds  int // rounds until the fixpoint was confirmed
	Pruned  int // implied-value substitutions
	Removed int // nodes removed by the final cleanup
}

// Expand replaces every pair input of n by the greatest fixpoint of the
// pair definitions, then retires the pair inputs and cleans up n.
//
// The fixpoint is computed by Kleene iteration from true: in each
// round every definition is evaluated with the pair inputs bound to
// the previous round's values.  Iteration stops when a round changes
// no value, as decided by structural hashing or else by gini.
//
// Pairs whose input is already retired are ignored, so that expanding
// an expanded network does nothing.
func (e *Engine) Expand(n *aig.Network, pairs []Pair, implied Implied) (*Result, error) {
	log := e.Logger
	if log == nil {
		log = slog.Default()
	}
	live := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		if n.Input(p.In) == z.LitNull {
			continue
		}
		if n.Retired(p.Out) || n.Output(p.Out) == z.LitNull {
			return nil, fmt.Errorf("pair %v: output %d is not live", p.Key, p.Out)
		}
		live = append(live, p)
	}
	res := &Result{Pairs: len(live)}
	if len(live) == 0 {
		return res, nil
	}
	chk := opt.NewChecker(n)
	if err := e.checkSelf(n, chk, live); err != nil {
		return nil, err
	}

	defs := make([]z.Lit, len(live))
	for k, p := range live {
		defs[k] = n.Output(p.Out)
	}
	if e.Pruning && implied != nil {
		res.Pruned = e.prune(n, live, defs, implied)
	}

	bound := e.MaxRounds
	if bound < len(live)+1 {
		bound = len(live) + 1
	}
	cur := make([]z.Lit, len(live))
	for k := range cur {
		cur[k] = n.T
	}
	next := make([]z.Lit, len(live))
	for {
		if res.Rounds == bound {
			keys := make([]interface{}, len(live))
			for k, p := range live {
				keys[k] = p.Key
			}
			return nil, &CycleError{Keys: keys, Rounds: res.Rounds, Reason: "no fixpoint"}
		}
		res.Rounds++
		sub := substitution(n, live, cur)
		memo := make(map[z.Var]z.Lit)
		for k := range defs {
			next[k] = n.Compose(defs[k], sub, memo)
		}
		changed := 0
		for k := range next {
			if next[k] != cur[k] && !chk.Equivalent(next[k], cur[k]) {
				changed++
			}
		}
		log.Debug("expand round", "round", res.Rounds, "pairs", len(live), "changed", changed)
		cur, next = next, cur
		if changed == 0 {
			break
		}
	}
	if err := e.checkJustified(n, chk, live, cur, bound); err != nil {
		return nil, err
	}

	sub := substitution(n, live, cur)
	memo := make(map[z.Var]z.Lit)
	for _, id := range n.Outputs() {
		if m := n.Output(id); m != z.LitNull {
			n.SetOutput(id, n.Compose(m, sub, memo))
		}
	}
	for k, p := range live {
		n.SetOutput(p.Out, cur[k])
		n.RetireInput(p.In)
	}
	res.Removed = n.Cleanup()
	return res, nil
}

func substitution(n *aig.Network, pairs []Pair, vals []z.Lit) map[z.Var]z.Lit {
	sub := make(map[z.Var]z.Lit, len(pairs))
	for k, p := range pairs {
		sub[n.Input(p.In).Var()] = vals[k]
	}
	return sub
}

// checkSelf rejects signal pairs which are defined as themselves: the
// definition holds when its input is true and fails when it is false.
// Such a signal is a true combinational loop through a ready or valid
// port.  Enable pairs are exempt, an activation defined as itself is
// resolved to true.
func (e *Engine) checkSelf(n *aig.Network, chk *opt.Checker, pairs []Pair) error {
	for _, p := range pairs {
		if p.Kind != Signal {
			continue
		}
		def, in := n.Output(p.Out), n.Input(p.In)
		if !n.DependsOn(def, in) {
			continue
		}
		hi := n.Compose(def, map[z.Var]z.Lit{in.Var(): n.T}, nil)
		lo := n.Compose(def, map[z.Var]z.Lit{in.Var(): n.F}, nil)
		if chk.Valid(hi) && !chk.Valid(lo) {
			return &CycleError{Keys: []interface{}{p.Key}, Reason: "signal defined as itself"}
		}
	}
	return nil
}

// checkJustified rejects signal pairs which only hold by sustaining
// themselves.  With the activations bound to their fixpoints, the least
// fixpoint of the signals is computed by iteration from false; a signal
// whose greatest and least fixpoints differ under every valuation of
// the primary inputs has no guard which can break its cycle.  Signals
// which differ only under some valuations are guarded and resolve to
// their greatest fixpoint.
func (e *Engine) checkJustified(n *aig.Network, chk *opt.Checker, pairs []Pair, fix []z.Lit, bound int) error {
	act := make(map[z.Var]z.Lit, len(pairs))
	var sig []int
	for k, p := range pairs {
		if p.Kind == Signal {
			sig = append(sig, k)
			continue
		}
		act[n.Input(p.In).Var()] = fix[k]
	}
	if len(sig) == 0 {
		return nil
	}
	keys := func(ks []int) []interface{} {
		res := make([]interface{}, len(ks))
		for i, k := range ks {
			res[i] = pairs[k].Key
		}
		return res
	}
	defs := make([]z.Lit, len(sig))
	memo := make(map[z.Var]z.Lit)
	for i, k := range sig {
		defs[i] = n.Compose(n.Output(pairs[k].Out), act, memo)
	}
	cur := make([]z.Lit, len(sig))
	next := make([]z.Lit, len(sig))
	for i := range cur {
		cur[i] = n.F
	}
	for rounds := 0; ; rounds++ {
		if rounds == bound {
			return &CycleError{Keys: keys(sig), Rounds: rounds, Reason: "no least fixpoint"}
		}
		sub := make(map[z.Var]z.Lit, len(sig))
		for i, k := range sig {
			sub[n.Input(pairs[k].In).Var()] = cur[i]
		}
		rmemo := make(map[z.Var]z.Lit)
		changed := 0
		for i := range defs {
			next[i] = n.Compose(defs[i], sub, rmemo)
			if next[i] != cur[i] && !chk.Equivalent(next[i], cur[i]) {
				changed++
			}
		}
		cur, next = next, cur
		if changed == 0 {
			break
		}
	}
	var bad []int
	for i, k := range sig {
		if chk.Valid(n.Xor(fix[k], cur[i])) {
			bad = append(bad, k)
		}
	}
	if len(bad) > 0 {
		return &CycleError{Keys: keys(bad), Reason: "self-justified"}
	}
	return nil
}

// prune rewrites each definition with the inputs it implies:
// if def implies x then def = def[x:=true] & x.
func (e *Engine) prune(n *aig.Network, pairs []Pair, defs []z.Lit, implied Implied) int {
	count := 0
	for k, p := range pairs {
		for _, id := range implied[p.Out] {
			if id == p.In {
				continue
			}
			x := n.Input(id)
			if x == z.LitNull || !n.DependsOn(defs[k], x) {
				continue
			}
			d := n.Compose(defs[k], map[z.Var]z.Lit{x.Var(): n.T}, nil)
			defs[k] = n.And(d, x)
			count++
		}
	}
	return count
}
