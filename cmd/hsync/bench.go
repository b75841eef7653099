// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"fmt"
	"math/rand"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-air/hsync/gen"
	"github.com/go-air/hsync/resolve"
)

// instRun records the resolution of one generated design.
type instRun struct {
	Inst   int
	Stages int
	Ring   bool
	Pairs  int
	Rounds int
	Gates  int
	Dur    time.Duration
	Error  string
}

func newBenchCmd(o *options) *cobra.Command {
	var (
		count, stages int
		seed          int64
		ring          bool
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Resolve random pipeline chains and report timings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 || stages < 1 {
				return fmt.Errorf("--count and --stages must be positive")
			}
			cfg, err := o.resolverConfig()
			if err != nil {
				return err
			}
			r := rand.New(rand.NewSource(seed))
			runs := make([]instRun, 0, count)
			for i := 0; i < count; i++ {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				n := 1 + r.Intn(stages)
				ir := instRun{Inst: i, Stages: n, Ring: ring || n == 1}
				d := gen.ChainR(n, ir.Ring, r)
				start := time.Now()
				res, err := resolve.Resolve(d, d.SCCs[0], cfg)
				ir.Dur = time.Since(start)
				if err != nil {
					ir.Error = err.Error()
				} else {
					ir.Pairs, ir.Rounds, ir.Gates = res.Pairs, res.Rounds, res.Gates
				}
				runs = append(runs, ir)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "inst\tstages\tring\tpairs\trounds\tgates\tdur\terror")
			var total time.Duration
			for _, ir := range runs {
				total += ir.Dur
				fmt.Fprintf(tw, "%d\t%d\t%v\t%d\t%d\t%d\t%s\t%s\n",
					ir.Inst, ir.Stages, ir.Ring, ir.Pairs, ir.Rounds, ir.Gates, ir.Dur, ir.Error)
			}
			fmt.Fprintf(tw, "total\t\t\t\t\t\t%s\t\n", total)
			return tw.Flush()
		},
	}
	f := cmd.Flags()
	f.IntVar(&count, "count", 10, "number of designs")
	f.IntVar(&stages, "stages", 8, "maximum number of stages per design")
	f.Int64Var(&seed, "seed", 33, "random seed")
	f.BoolVar(&ring, "ring", false, "close every chain into a ring")
	return cmd
}
