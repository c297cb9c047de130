package netlist

import "sort"

// Port is a flat port record: key within its parent cell, signal
// vector, and back-references to its parent cell and its wire.
type Port struct {
	Key        string
	Value      SignalVector
	ParentNode *Cell // assigned by Cell.AddInput/AddOutput when the port is attached
	Wire       *Wire // assigned by the net builder
}

// Cell is a flat node: either a synthesized terminal/constant/split/join cell
// or a flattened instance of a netlist cell.
type Cell struct {
	Key     string
	Type    string
	Inputs  map[string]*Port
	Outputs map[string]*Port
	Attrs   map[string]string
}

// NewCell creates an empty cell of the given key/type.
func NewCell(key, typ string) *Cell {
	return &Cell{
		Key:     key,
		Type:    typ,
		Inputs:  make(map[string]*Port),
		Outputs: make(map[string]*Port),
	}
}

// AddInput creates and attaches an input port, wiring its parent back-reference.
func (c *Cell) AddInput(key string, value SignalVector) *Port {
	p := &Port{Key: key, Value: value, ParentNode: c}
	c.Inputs[key] = p
	return p
}

// AddOutput creates and attaches an output port, wiring its parent back-reference.
func (c *Cell) AddOutput(key string, value SignalVector) *Port {
	p := &Port{Key: key, Value: value, ParentNode: c}
	c.Outputs[key] = p
	return p
}

// SortedInputKeys returns the cell's input port names in deterministic order.
func (c *Cell) SortedInputKeys() []string { return sortedKeys(c.Inputs) }

// SortedOutputKeys returns the cell's output port names in deterministic order.
func (c *Cell) SortedOutputKeys() []string { return sortedKeys(c.Outputs) }

func sortedKeys(m map[string]*Port) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Wire groups the driver, rider and lateral ports of a single net.
type Wire struct {
	Drivers  []*Port
	Riders   []*Port
	Laterals []*Port
}

// AllPorts returns drivers, then riders, then laterals, for iteration convenience.
func (w *Wire) AllPorts() []*Port {
	out := make([]*Port, 0, len(w.Drivers)+len(w.Riders)+len(w.Laterals))
	out = append(out, w.Drivers...)
	out = append(out, w.Riders...)
	out = append(out, w.Laterals...)
	return out
}

// FlatModule is the flattened node/wire graph that the rest of the pipeline
// operates over.
type FlatModule struct {
	Nodes []*Cell
	Wires []*Wire
}

// NewFlatModule returns an empty FlatModule.
func NewFlatModule() *FlatModule {
	return &FlatModule{}
}

// AddNode appends a cell to the module in the order it was synthesized/flattened.
func (m *FlatModule) AddNode(c *Cell) {
	m.Nodes = append(m.Nodes, c)
}

// FindNode returns the cell with the given key, or nil if absent.
func (m *FlatModule) FindNode(key string) *Cell {
	for _, c := range m.Nodes {
		if c.Key == key {
			return c
		}
	}
	return nil
}

// AllPorts returns every input and output port of every node, in node order
// then input-keys-then-output-keys order.
func (m *FlatModule) AllPorts() []*Port {
	var out []*Port
	for _, c := range m.Nodes {
		for _, k := range c.SortedInputKeys() {
			out = append(out, c.Inputs[k])
		}
		for _, k := range c.SortedOutputKeys() {
			out = append(out, c.Outputs[k])
		}
	}
	return out
}
