// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-air/hsync/netlist"
	"github.com/go-air/hsync/resolve"
)

func newAigerCmd(o *options) *cobra.Command {
	var id int
	cmd := &cobra.Command{
		Use:   "aiger <design.yaml>",
		Short: "Write the cyclic network of an SCC in ASCII AIGER",
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
			sccs := d.SCCs
			if len(sccs) == 0 {
				sccs = d.FindSCCs()
			}
			var scc *netlist.SCC
			for _, s := range sccs {
				if s.ID == id {
					scc = s
				}
			}
			if scc == nil {
				return fmt.Errorf("no scc %d in %s", id, d.Name)
			}
			c := resolve.NewContext(d, scc, cfg)
			if err := c.Build(); err != nil {
				return err
			}
			return c.Network().WriteAscii(cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&id, "scc", 0, "id of the scc")
	return cmd
}
