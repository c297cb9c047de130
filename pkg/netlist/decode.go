package netlist

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is the decoded hierarchical netlist input: a mapping from
// module name to module, in the insertion order the source JSON carried them
// in, so the "first module by insertion order" top-module fallback is
// reproducible. encoding/json's native map decoding loses key order, so
// Document decodes the outer object itself with a token-driven pass.
type Document struct {
	Modules []NamedModule
}

// NamedModule pairs a module name with its decoded body.
type NamedModule struct {
	Name   string
	Module *Module
}

// Module is one netlist module: its external ports, internal cells, and
// optional attributes.
type Module struct {
	Ports      map[string]*RawPort `json:"ports"`
	Cells      map[string]*RawCell `json:"cells"`
	Attributes map[string]any      `json:"attributes,omitempty"`
}

// RawPort is a module-level external port.
type RawPort struct {
	Direction string       `json:"direction"`
	Bits      SignalVector `json:"bits"`
}

// RawCell is an internal cell instance within a module.
type RawCell struct {
	Type           string                  `json:"type"`
	PortDirections map[string]string       `json:"port_directions,omitempty"`
	Connections    map[string]SignalVector `json:"connections"`
	Attributes     map[string]any          `json:"attributes,omitempty"`
}

// IsTop reports whether this module's attributes mark it as the top module
// (attributes.top === 1).
func (m *Module) IsTop() bool {
	if m.Attributes == nil {
		return false
	}
	v, ok := m.Attributes["top"]
	if !ok {
		return false
	}
	switch n := v.(type) {
	case float64:
		return n == 1
	case string:
		return n == "1"
	default:
		return false
	}
}

// TopModule returns the module whose attributes mark it top; if none does,
// the first module by insertion order. Returns an error only when the document
// has no modules at all.
func (d *Document) TopModule() (name string, mod *Module, err error) {
	if len(d.Modules) == 0 {
		return "", nil, fmt.Errorf("netlist: document has no modules")
	}
	for _, nm := range d.Modules {
		if nm.Module.IsTop() {
			return nm.Name, nm.Module, nil
		}
	}
	first := d.Modules[0]
	return first.Name, first.Module, nil
}

// Decode parses a netlist document, preserving the top-level "modules" key
// order so TopModule's fallback is deterministic and matches the source text.
func Decode(data []byte) (*Document, error) {
	var envelope struct {
		Modules json.RawMessage `json:"modules"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("netlist: decoding document: %w", err)
	}
	if envelope.Modules == nil {
		return nil, fmt.Errorf("netlist: document has no \"modules\" key")
	}

	doc := &Document{}
	dec := json.NewDecoder(bytes.NewReader(envelope.Modules))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("netlist: decoding modules: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("netlist: \"modules\" must be an object")
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("netlist: decoding module name: %w", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("netlist: module key is not a string")
		}

		var mod Module
		if err := dec.Decode(&mod); err != nil {
			return nil, fmt.Errorf("netlist: decoding module %q: %w", name, err)
		}
		doc.Modules = append(doc.Modules, NamedModule{Name: name, Module: &mod})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("netlist: decoding modules: %w", err)
	}

	return doc, nil
}
