// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package resolve

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/go-air/hsync/aig"
	"github.com/go-air/hsync/expand"
	"github.com/go-air/hsync/netlist"
	"github.com/go-air/hsync/opt"
	"github.com/go-air/hsync/recog"
)

// Driver is the new driver of a handshake port of an endpoint.
type Driver struct {
	Node  netlist.NodeID
	Port  netlist.Port
	Clock int
	Expr  *netlist.Expr
}

// Result is the resolved synchronization logic of one SCC.  All
// expressions are acyclic: they read no rewritten port and no
// activation of the SCC.
type Result struct {
	SCC         int
	Activation  map[netlist.SyncKey]*netlist.Expr
	Drivers     []Driver
	NonBlocking []netlist.NodeID // endpoints which no longer need to block

	Pairs  int // loop-break pairs
	Rounds int // fixpoint rounds
	Pruned int // inputs removed by negation pruning
	Gates  int // and gates of the final network
}

// Build translates the handshake logic of the SCC into the network of
// c, with loop-break pairs for the cyclic dependencies.  Build is
// called by Resolve; it is exported to inspect the cyclic network.
func (c *Context) Build() error {
	if c.built {
		return nil
	}
	c.built = true
	if err := c.synthesize(); err != nil {
		return wrap(c.scc.ID, err)
	}
	return nil
}

// Resolve computes the acyclic synchronization logic of the SCC.
func (c *Context) Resolve() (*Result, error) {
	start := time.Now()
	res, err := c.resolve()
	if err != nil {
		e := wrap(c.scc.ID, err)
		c.cfg.Stats.Failure(e.Kind.String())
		c.log.Error("resolution failed", "kind", e.Kind.String(), "err", e)
		return nil, e
	}
	c.cfg.Stats.Resolved(c.d.Name, res.Rounds, res.Gates, time.Since(start))
	c.log.Info("resolved", "pairs", res.Pairs, "rounds", res.Rounds, "gates", res.Gates,
		"pruned", res.Pruned)
	return res, nil
}

func (c *Context) resolve() (*Result, error) {
	if err := c.Build(); err != nil {
		return nil, err
	}
	c.cleaned = true
	res := &Result{
		SCC:        c.scc.ID,
		Activation: make(map[netlist.SyncKey]*netlist.Expr, len(c.acts)),
		Pairs:      len(c.pairs)}
	res.Pruned = c.pruneNegations()
	c.cache = nil

	if err := c.optimize("cyclic"); err != nil {
		return nil, err
	}
	eng := &expand.Engine{MaxRounds: c.cfg.MaxRounds, Pruning: c.cfg.ImpliedPruning, Logger: c.log}
	er, err := eng.Expand(c.net, c.pairs, c.implied)
	if err != nil {
		return nil, err
	}
	res.Rounds = er.Rounds
	counts := map[expand.PairKind]int{}
	for _, p := range c.pairs {
		counts[p.Kind]++
		c.net.RetireOutput(p.Out)
	}
	c.cfg.Stats.Pairs(expand.Enable.String(), counts[expand.Enable])
	c.cfg.Stats.Pairs(expand.Signal.String(), counts[expand.Signal])
	c.net.Cleanup()
	if err := c.optimize("expanded"); err != nil {
		return nil, err
	}

	tr := recog.New(c.net)
	for _, k := range c.scc.Members {
		e, err := tr.Output(c.acts[k])
		if err != nil {
			return nil, err
		}
		res.Activation[k] = e
	}
	for _, p := range c.ports {
		e, err := tr.Output(p.out)
		if err != nil {
			return nil, err
		}
		res.Drivers = append(res.Drivers, Driver{Node: p.key.Node, Port: p.key.Port, Clock: p.key.Clock, Expr: e})
	}
	res.NonBlocking = append(res.NonBlocking, c.ios...)
	res.Gates = c.net.Len() - 2 - c.net.NumInputs()
	return res, nil
}

// optimize runs the optimizer oracle on the network and checks its
// result.
func (c *Context) optimize(stage string) error {
	if !c.cfg.Optimize {
		return nil
	}
	sg := opt.SignatureOf(c.net)
	var before *aig.Network
	if c.cfg.VerifyOracle {
		before = c.net.Copy()
	}
	o := c.cfg.optimizer()
	size := c.net.Len()
	res, err := o.Optimize(c.net)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOracleContract, err)
	}
	if err := opt.CheckContract(sg, res, before); err != nil {
		return err
	}
	log := c.log.With("stage", stage)
	if s, ok := o.(*opt.Sweeper); ok {
		c.cfg.Stats.Merged(s.Merged())
		log = log.With("merged", s.Merged(), "sat_calls", s.SatCalls())
	}
	log.Debug("optimized", "before", size, "after", res.Len())
	c.net = res
	return nil
}

// Resolve resolves one SCC of d.
func Resolve(d *netlist.Design, scc *netlist.SCC, cfg *Config) (*Result, error) {
	return NewContext(d, scc, cfg).Resolve()
}

// ResolveAll resolves the SCCs of d in parallel.  Results are in the
// order of d.SCCs, or of d.FindSCCs() when d declares none and
// cfg.DetectSCCs is set.  On error, the results of the SCCs resolved so
// far are returned with the first error.
func ResolveAll(ctx context.Context, d *netlist.Design, cfg *Config) ([]*Result, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	sccs := d.SCCs
	if len(sccs) == 0 && cfg.DetectSCCs {
		sccs = d.FindSCCs()
		cfg.logger().Info("detected sccs", "design", d.Name, "count", len(sccs))
	}
	results := make([]*Result, len(sccs))
	g, ctx := errgroup.WithContext(ctx)
	if cfg.Workers > 0 {
		g.SetLimit(cfg.Workers)
	}
	for i, scc := range sccs {
		i, scc := i, scc
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := Resolve(d, scc, cfg)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	return results, g.Wait()
}
