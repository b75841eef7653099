// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package opt

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-air/gini/z"

	"github.com/go-air/hsync/aig"
)

// ErrOracleContract is returned when an optimizer result does not have
// the input and output signature of its argument.
var ErrOracleContract = errors.New("optimizer broke its contract")

// Signature records the input and output tables of a network.
type Signature struct {
	Inputs  []InputSig
	Outputs []OutputSig
}

type InputSig struct {
	Data    interface{}
	Retired bool
}

type OutputSig struct {
	Name    string
	Keep    bool
	Retired bool
}

// SignatureOf returns the signature of n.
func SignatureOf(n *aig.Network) *Signature {
	sg := &Signature{
		Inputs:  make([]InputSig, n.InputCap()),
		Outputs: make([]OutputSig, n.OutputCap())}
	for i := range sg.Inputs {
		id := aig.InputID(i)
		sg.Inputs[i] = InputSig{Data: n.InputData(id), Retired: n.Input(id) == z.LitNull}
	}
	for i := range sg.Outputs {
		id := aig.OutputID(i)
		sg.Outputs[i] = OutputSig{Name: n.OutputName(id), Keep: n.Keep(id), Retired: n.Retired(id)}
	}
	return sg
}

// CheckContract verifies that the network res returned by an optimizer
// is well formed and has signature sg.  If before is not nil, it also checks
// with gini that every live output of before is preserved in res; before
// must then be an unmodified copy of the optimizer's argument.
func CheckContract(sg *Signature, res, before *aig.Network) error {
	if res == nil {
		return fmt.Errorf("%w: no result", ErrOracleContract)
	}
	if err := res.CheckWellFormed(); err != nil {
		return fmt.Errorf("%w: %v", ErrOracleContract, err)
	}
	if res.InputCap() != len(sg.Inputs) {
		return fmt.Errorf("%w: %d inputs, want %d", ErrOracleContract, res.InputCap(), len(sg.Inputs))
	}
	if res.OutputCap() != len(sg.Outputs) {
		return fmt.Errorf("%w: %d outputs, want %d", ErrOracleContract, res.OutputCap(), len(sg.Outputs))
	}
	for i, want := range sg.Inputs {
		id := aig.InputID(i)
		retired := res.Input(id) == z.LitNull
		if retired != want.Retired {
			return fmt.Errorf("%w: input %d retired=%t", ErrOracleContract, i, retired)
		}
		if !reflect.DeepEqual(res.InputData(id), want.Data) {
			return fmt.Errorf("%w: input %d data changed", ErrOracleContract, i)
		}
	}
	for i, want := range sg.Outputs {
		id := aig.OutputID(i)
		got := OutputSig{Name: res.OutputName(id), Keep: res.Keep(id), Retired: res.Retired(id)}
		if got != want {
			return fmt.Errorf("%w: output %d is %+v, want %+v", ErrOracleContract, i, got, want)
		}
	}
	if before == nil {
		return nil
	}
	if diff := DiffOutputs(before, res); len(diff) != 0 {
		return fmt.Errorf("%w: output %q changed function", ErrOracleContract, before.OutputName(diff[0]))
	}
	return nil
}
