// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package gen contains generators of random scheduled netlists with
// synchronization SCCs, for testing and benchmarking resolution.
package gen
