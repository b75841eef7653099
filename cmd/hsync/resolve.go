// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/go-air/hsync/netlist"
	"github.com/go-air/hsync/resolve"
)

type driverJSON struct {
	Node  netlist.NodeID `json:"node"`
	Port  string         `json:"port"`
	Clock int            `json:"clock"`
	Expr  string         `json:"expr"`
}

type sccJSON struct {
	SCC         int               `json:"scc"`
	Pairs       int               `json:"pairs"`
	Rounds      int               `json:"rounds"`
	Gates       int               `json:"gates"`
	Activation  map[string]string `json:"activation"`
	Drivers     []driverJSON      `json:"drivers"`
	NonBlocking []netlist.NodeID  `json:"non_blocking"`
}

type designJSON struct {
	Design string     `json:"design"`
	SCCs   []*sccJSON `json:"sccs"`
}

func newResolveCmd(o *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "resolve <design.yaml>",
		Short: "Print the acyclic synchronization logic of every SCC",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDesign(args[0])
			if err != nil {
				return err
			}
			cfg, err := o.resolverConfig()
			if err != nil {
				return err
			}
			results, err := resolve.ResolveAll(cmd.Context(), d, cfg)
			if err != nil {
				return err
			}
			out := toJSON(d, results)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			printText(cmd.OutOrStdout(), d, out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func syncName(d *netlist.Design, k netlist.SyncKey) string {
	name := fmt.Sprintf("e%d", k.Elem)
	if e := d.Element(k.Elem); e != nil && e.Name != "" {
		name = e.Name
	}
	return fmt.Sprintf("%s@%d", name, k.Clock)
}

func toJSON(d *netlist.Design, results []*resolve.Result) *designJSON {
	out := &designJSON{Design: d.Name}
	for _, r := range results {
		s := &sccJSON{
			SCC:         r.SCC,
			Pairs:       r.Pairs,
			Rounds:      r.Rounds,
			Gates:       r.Gates,
			Activation:  make(map[string]string, len(r.Activation)),
			NonBlocking: r.NonBlocking,
		}
		for k, e := range r.Activation {
			s.Activation[syncName(d, k)] = e.Format(d.SignalName)
		}
		for _, dr := range r.Drivers {
			s.Drivers = append(s.Drivers, driverJSON{
				Node:  dr.Node,
				Port:  dr.Port.String(),
				Clock: dr.Clock,
				Expr:  dr.Expr.Format(d.SignalName)})
		}
		out.SCCs = append(out.SCCs, s)
	}
	return out
}

func printText(w io.Writer, d *netlist.Design, out *designJSON) {
	for _, s := range out.SCCs {
		fmt.Fprintf(w, "scc %d: %d pairs, %d rounds, %d gates\n", s.SCC, s.Pairs, s.Rounds, s.Gates)
		names := make([]string, 0, len(s.Activation))
		for name := range s.Activation {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %s = %s\n", name, s.Activation[name])
		}
		for _, dr := range s.Drivers {
			n := d.Node(dr.Node)
			fmt.Fprintf(w, "  %s.%s@%d = %s\n", n.Label(), dr.Port, dr.Clock, dr.Expr)
		}
		if len(s.NonBlocking) > 0 {
			fmt.Fprintf(w, "  non-blocking:")
			for _, id := range s.NonBlocking {
				fmt.Fprintf(w, " %s", d.Node(id).Label())
			}
			fmt.Fprintln(w)
		}
	}
}
