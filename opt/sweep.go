// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package opt

import (
	"log/slog"
	"math/rand"

	"github.com/go-air/gini/z"

	"github.com/go-air/hsync/aig"
)

// Optimizer is a combinational logic optimizer.
//
// Optimize returns a network computing the same function for every
// live output of n, with the same input and output handles, input data,
// output names and keep flags.  Optimize may return n itself, and may
// modify n.
type Optimizer interface {
	Optimize(n *aig.Network) (*aig.Network, error)
}

// Nop is the Optimizer which returns its argument after Cleanup.
type Nop struct{}

func (Nop) Optimize(n *aig.Network) (*aig.Network, error) {
	n.Cleanup()
	return n, nil
}

// Sweeper is an Optimizer which merges functionally equivalent gates.
//
// Candidate equivalences, up to complement and including constants,
// are found by simulating Patterns random input vectors; each candidate
// is then proved with gini before the merge.
type Sweeper struct {
	Patterns int   // number of random patterns, rounded up to 64
	Seed     int64 // seed of the pattern generator
	MaxTries int   // class representatives tried per gate
	Logger   *slog.Logger

	merged int
	calls  int
}

// NewSweeper creates a Sweeper with default settings.
func NewSweeper() *Sweeper {
	return &Sweeper{Patterns: 256, Seed: 1, MaxTries: 4}
}

// Merged returns the number of gates merged by the last call to
// Optimize.
func (s *Sweeper) Merged() int {
	return s.merged
}

// SatCalls returns the number of SAT calls made by the last call to
// Optimize.
func (s *Sweeper) SatCalls() int {
	return s.calls
}

func (s *Sweeper) simulate(n *aig.Network) [][]uint64 {
	w := (s.Patterns + 63) / 64
	if w < 1 {
		w = 1
	}
	rng := rand.New(rand.NewSource(s.Seed))
	res := make([][]uint64, n.Len())
	for i := range res {
		res[i] = make([]uint64, w)
	}
	vs := make([]uint64, n.Len())
	for k := 0; k < w; k++ {
		for _, id := range n.Inputs() {
			vs[n.Input(id).Var()] = rng.Uint64()
		}
		n.Eval64(vs)
		for i := 1; i < len(vs); i++ {
			res[i][k] = vs[i]
		}
	}
	return res
}

// signature returns a phase normalised key for words, with the phase
// flag set if the words were complemented.
func signature(words []uint64) (string, bool) {
	neg := words[0]&1 != 0
	buf := make([]byte, 0, 8*len(words))
	for _, w := range words {
		if neg {
			w = ^w
		}
		for i := 0; i < 8; i++ {
			buf = append(buf, byte(w>>(8*i)))
		}
	}
	return string(buf), neg
}

type member struct {
	m   z.Lit // literal of the class representative in the result
	neg bool
}

func (s *Sweeper) Optimize(n *aig.Network) (*aig.Network, error) {
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}
	if s.MaxTries <= 0 {
		s.MaxTries = 4
	}
	s.merged, s.calls = 0, 0
	n.Cleanup()
	sims := s.simulate(n)
	dst := n.Shell()
	chk := NewChecker(dst)
	remap := make([]z.Lit, n.Len())
	remap[1] = dst.T
	classes := make(map[string][]member)

	// the constant is the representative of the class of constants.
	k, neg := signature(sims[1])
	classes[k] = append(classes[k], member{m: dst.T, neg: neg})

	for _, id := range n.Inputs() {
		m := n.Input(id)
		remap[m.Var()] = dst.Input(id)
	}
	relit := func(m z.Lit) z.Lit {
		r := remap[m.Var()]
		if !m.IsPos() {
			return r.Not()
		}
		return r
	}
	for i := 2; i < n.Len(); i++ {
		g := z.Var(i).Pos()
		switch n.Kind(g) {
		case aig.KindInput:
			k, neg := signature(sims[i])
			classes[k] = append(classes[k], member{m: remap[i], neg: neg})
			continue
		case aig.KindAnd:
		default:
			continue
		}
		a, b := n.Ins(g)
		m := dst.And(relit(a), relit(b))
		k, neg := signature(sims[i])
		reps := classes[k]
		merged := false
		for j, rep := range reps {
			if j >= s.MaxTries {
				break
			}
			cand := rep.m
			if rep.neg != neg {
				cand = cand.Not()
			}
			if cand == m {
				merged = true
				break
			}
			if chk.Equivalent(cand, m) {
				m = cand
				merged = true
				s.merged++
				break
			}
		}
		if !merged {
			classes[k] = append(reps, member{m: m, neg: neg})
		}
		remap[i] = m
	}
	for _, id := range n.Outputs() {
		m := n.Output(id)
		if m == z.LitNull {
			continue
		}
		dst.SetOutput(id, relit(m))
	}
	s.calls = chk.Calls()
	removed := dst.Cleanup()
	log.Debug("sweep", "gates", n.Len(), "merged", s.merged, "sat_calls", s.calls, "removed", removed)
	return dst, nil
}
