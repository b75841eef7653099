// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package resolve

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/go-air/hsync/internal/stats"
	"github.com/go-air/hsync/opt"
)

// Config controls synchronization resolution.
type Config struct {
	// MaxRounds is the least number of fixpoint rounds tried before a
	// cycle is declared unbreakable.  At least one more round than
	// there are loop-break pairs is always tried.
	MaxRounds int `yaml:"max_rounds"`

	// ImpliedPruning simplifies pair definitions with the fact that a
	// rewritten handshake port implies its sync node's activation.
	ImpliedPruning bool `yaml:"implied_pruning"`

	// Optimize runs the optimizer before and after expansion.
	Optimize bool `yaml:"optimize"`

	// VerifyOracle proves with gini that each optimizer call preserved
	// the function of every output.
	VerifyOracle bool `yaml:"verify_oracle"`

	// SweepPatterns is the number of simulation patterns of the default
	// optimizer.
	SweepPatterns int `yaml:"sweep_patterns"`

	// Workers bounds the SCCs resolved in parallel; 0 means one per SCC.
	Workers int `yaml:"workers"`

	// DetectSCCs resolves the SCCs found by netlist.FindSCCs when the
	// design declares none.
	DetectSCCs bool `yaml:"detect_sccs"`

	// Optimizer replaces the default SAT sweeping optimizer.  It must be
	// safe for concurrent use when Workers is not 1.
	Optimizer opt.Optimizer `yaml:"-"`

	Logger *slog.Logger     `yaml:"-"`
	Stats  *stats.Collector `yaml:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxRounds:      16,
		ImpliedPruning: true,
		Optimize:       true,
		VerifyOracle:   true,
		SweepPatterns:  256,
		DetectSCCs:     true,
	}
}

// LoadConfig reads a YAML configuration from path.  Fields absent
// from the file keep their default value.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.MaxRounds < 0 || cfg.SweepPatterns < 0 || cfg.Workers < 0 {
		return nil, fmt.Errorf("%s: negative bound in configuration", path)
	}
	return cfg, nil
}

func (cfg *Config) logger() *slog.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return slog.Default()
}

func (cfg *Config) optimizer() opt.Optimizer {
	if cfg.Optimizer != nil {
		return cfg.Optimizer
	}
	s := opt.NewSweeper()
	if cfg.SweepPatterns > 0 {
		s.Patterns = cfg.SweepPatterns
	}
	s.Logger = cfg.logger()
	return s
}
