// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/go-air/hsync/netlist"
)

func newSccsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sccs <design.yaml>",
		Short: "Print the declared and the detected synchronization SCCs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDesign(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "declared:\n")
			printSCCs(w, d, d.SCCs)
			fmt.Fprintf(w, "detected:\n")
			printSCCs(w, d, d.FindSCCs())
			return nil
		},
	}
}

func printSCCs(w io.Writer, d *netlist.Design, sccs []*netlist.SCC) {
	for _, s := range sccs {
		fmt.Fprintf(w, "  scc %d:", s.ID)
		for _, k := range s.Members {
			fmt.Fprintf(w, " %s", syncName(d, k))
		}
		fmt.Fprintf(w, " (%d logic nodes)\n", len(s.Logic))
	}
}
