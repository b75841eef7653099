// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package netlist describes the scheduled netlist consumed by
// synchronization resolution: nodes with scheduled times, channels
// between read and write endpoints, the sync nodes (element, clock
// window) the endpoints are attached to, and the declared
// synchronization SCCs.
//
// Package netlist also defines Expr, the Boolean operator vocabulary
// (not, and, or, xor, mux) in which resolved control drivers are
// returned.
package netlist
