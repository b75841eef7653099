// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-air/hsync/expand"
	"github.com/go-air/hsync/netlist"
	"github.com/go-air/hsync/opt"
)

var (
	// ErrUnsupportedOperator is returned when the logic of an SCC uses
	// an operator outside the Boolean vocabulary.
	ErrUnsupportedOperator = errors.New("unsupported operator in synchronization logic")

	// ErrClockWindow is returned when the logic of a sync node reads a
	// value defined after the end of its clock window.
	ErrClockWindow = errors.New("value defined after its use window")

	// ErrUnbreakableCycle is returned when the handshake logic of an SCC
	// is a true combinational loop.
	ErrUnbreakableCycle = expand.ErrUnbreakableCycle

	// ErrOracleContract is returned when the optimizer changed the
	// signature or the function of a network.
	ErrOracleContract = opt.ErrOracleContract
)

// ErrorKind classifies resolution errors.
type ErrorKind int

const (
	KindInvalid ErrorKind = iota
	KindUnsupportedOperator
	KindClockWindow
	KindUnbreakableCycle
	KindOracleContract
)

var errorKindNames = [...]string{"invalid", "unsupported_operator", "clock_window",
	"unbreakable_cycle", "oracle_contract"}

func (k ErrorKind) String() string {
	return errorKindNames[k]
}

func kindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrUnsupportedOperator):
		return KindUnsupportedOperator
	case errors.Is(err, ErrClockWindow):
		return KindClockWindow
	case errors.Is(err, ErrUnbreakableCycle):
		return KindUnbreakableCycle
	case errors.Is(err, ErrOracleContract):
		return KindOracleContract
	}
	return KindInvalid
}

// Error is the error returned for a synchronization SCC which could
// not be resolved.
type Error struct {
	Kind    ErrorKind
	SCC     int
	Clock   int
	Signals []netlist.SignalKey // signals of the failing cycle, if known
	Node    netlist.NodeID      // offending node, or netlist.NoNode
	Err     error
}

func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "scc %d", e.SCC)
	if e.Node != netlist.NoNode {
		fmt.Fprintf(&sb, " node %d@%d", e.Node, e.Clock)
	}
	if len(e.Signals) > 0 {
		sb.WriteString(" [")
		for i, s := range e.Signals {
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(s.String())
		}
		sb.WriteString("]")
	}
	fmt.Fprintf(&sb, ": %v", e.Err)
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// nodeError is an error at a node in a clock window, before it is
// attributed to an SCC.
type nodeError struct {
	node  netlist.NodeID
	clock int
	err   error
}

func (e *nodeError) Error() string {
	return fmt.Sprintf("node %d@%d: %v", e.node, e.clock, e.err)
}

func (e *nodeError) Unwrap() error {
	return e.err
}

// wrap attributes err to scc.
func wrap(scc int, err error) *Error {
	var re *Error
	if errors.As(err, &re) {
		return re
	}
	res := &Error{Kind: kindOf(err), SCC: scc, Node: netlist.NoNode, Err: err}
	var ne *nodeError
	if errors.As(err, &ne) {
		res.Node, res.Clock, res.Err = ne.node, ne.clock, ne.err
	}
	var ce *expand.CycleError
	if errors.As(err, &ce) {
		for _, k := range ce.Keys {
			if sk, ok := k.(netlist.SignalKey); ok {
				res.Signals = append(res.Signals, sk)
			}
		}
	}
	return res
}
