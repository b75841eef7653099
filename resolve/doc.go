// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package resolve replaces the cyclic handshake logic of synchronization
// SCCs with equivalent acyclic logic.
//
// For each SCC, a Context translates the conditions of the channel
// endpoints into an aig network, synthesizes the activation of every
// sync node and the handshake ports of its endpoints, and marks each
// cyclic reference with a loop-break pair.  The cycles are then expanded
// to their fixpoint, the network is optimized, and each rewritten port
// is translated back into a netlist expression.
//
// Resolve handles one SCC; ResolveAll handles every SCC of a design in
// parallel.
package resolve
