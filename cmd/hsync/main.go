// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Command hsync resolves the cyclic handshake logic of scheduled
// netlists.
//
// Usage:
//
//	hsync resolve design.yaml     print the resolved synchronization logic
//	hsync sccs design.yaml        print declared and detected SCCs
//	hsync aiger --scc N design.yaml
//	                              dump the cyclic network of an SCC in ASCII AIGER
//	hsync bench                   resolve random pipeline chains
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/go-air/hsync/internal/stats"
	"github.com/go-air/hsync/netlist"
	"github.com/go-air/hsync/resolve"
)

type options struct {
	config     string
	logLevel   string
	logJSON    bool
	metricsOut string

	reg *prometheus.Registry
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:          "hsync",
		Short:        "Resolve cyclic handshake synchronization logic",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setupLogging(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return o.writeMetrics()
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&o.config, "config", "", "resolver configuration (YAML)")
	pf.StringVar(&o.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	pf.BoolVar(&o.logJSON, "log-json", false, "log in JSON")
	pf.StringVar(&o.metricsOut, "metrics-out", "", "write prometheus metrics to this file")

	root.AddCommand(newResolveCmd(o), newSccsCmd(o), newAigerCmd(o), newBenchCmd(o))
	return root
}

func (o *options) setupLogging(cmd *cobra.Command) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	hopts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if o.logJSON {
		h = slog.NewJSONHandler(cmd.ErrOrStderr(), hopts)
	} else {
		h = slog.NewTextHandler(cmd.ErrOrStderr(), hopts)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

// resolverConfig loads the configuration given by --config, with
// metrics when --metrics-out is set.
func (o *options) resolverConfig() (*resolve.Config, error) {
	cfg := resolve.DefaultConfig()
	if o.config != "" {
		var err error
		if cfg, err = resolve.LoadConfig(o.config); err != nil {
			return nil, err
		}
	}
	cfg.Logger = slog.Default()
	if o.metricsOut != "" {
		o.reg = prometheus.NewRegistry()
		cfg.Stats = stats.New(o.reg)
	}
	return cfg, nil
}

func (o *options) writeMetrics() error {
	if o.reg == nil {
		return nil
	}
	return prometheus.WriteToTextfile(o.metricsOut, o.reg)
}

func loadDesign(path string) (*netlist.Design, error) {
	if path == "-" {
		return netlist.Load(os.Stdin)
	}
	return netlist.LoadFile(path)
}
