// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package recog translates aig literals back into netlist expressions.
//
// Gates are matched against the xor, mux and or idioms the aig package
// builds, falling back to plain conjunctions with negated operands.
// The translation preserves the function of each literal exactly.
package recog
