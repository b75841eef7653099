// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package expand removes combinational loops from an aig network.
//
// A loop is represented by a Pair: a primary input standing for the
// value of a primary output whose cone may contain that same input.
// Engine.Expand computes the greatest fixpoint of all pair definitions
// and substitutes it for the pair inputs, leaving an acyclic network.
package expand
