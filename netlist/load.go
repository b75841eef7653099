// Copyright 2026 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package netlist

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a design in YAML from r and links it.
func Load(r io.Reader) (*Design, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	d := &Design{}
	if err := dec.Decode(d); err != nil {
		return nil, fmt.Errorf("decode design: %w", err)
	}
	if err := d.Link(); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadFile reads a design from the YAML file at path.
func LoadFile(path string) (*Design, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func unmarshalName(value *yaml.Node, what string, names []string) (int, error) {
	var s string
	if err := value.Decode(&s); err != nil {
		return 0, err
	}
	for i, nm := range names {
		if nm == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("line %d: unknown %s %q", value.Line, what, s)
}

func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	i, err := unmarshalName(value, "node kind", kindNames[:])
	*k = Kind(i)
	return err
}

func (o *Op) UnmarshalYAML(value *yaml.Node) error {
	i, err := unmarshalName(value, "operator", opNames[:])
	*o = Op(i)
	return err
}

func (p *Port) UnmarshalYAML(value *yaml.Node) error {
	i, err := unmarshalName(value, "port", portNames[:])
	*p = Port(i)
	return err
}

func (k *ElementKind) UnmarshalYAML(value *yaml.Node) error {
	i, err := unmarshalName(value, "element kind", []string{"pipeline", "fsm"})
	*k = ElementKind(i)
	return err
}

// UnmarshalYAML accepts either a node id or a {node, port} mapping.
func (o *Operand) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var id int
		if err := value.Decode(&id); err != nil {
			return err
		}
		*o = Operand{Node: NodeID(id)}
		return nil
	}
	type plain Operand
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*o = Operand(p)
	return nil
}
