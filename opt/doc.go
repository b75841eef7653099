// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package opt provides combinational optimization of aig networks and
// the SAT based equivalence checks the resolver relies on.
//
// An Optimizer is treated as an oracle: its result is only trusted
// after CheckContract has compared it with the signature of its
// argument.
package opt
