// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package aig provides the Boolean network used to resolve handshake
// synchronization logic.
//
// A Network is a standard AIG (and-inverter graph) simplified with
// simple rules and structural hashing, extended with tables of named
// primary inputs and outputs.  Inputs carry arbitrary data (typically
// the signal and clock window they stand for) which is preserved across
// Cleanup and across optimizer calls.  Inputs and outputs are addressed
// by stable handles; literals are renumbered by Cleanup.
//
// Like gini's logic package, a Network uses the same variables and
// literals as the gini SAT solver, so cones can be handed to a solver
// with ToCnfFrom without any mapping.
package aig
