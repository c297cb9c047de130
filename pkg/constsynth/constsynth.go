// Package constsynth replaces literal 0/1 bits in port connections with
// fresh signals driven by synthesized constant cells, coalescing identical
// literal bit-groups into a shared driver.
package constsynth

import (
	"strings"

	"github.com/netlistsvg/netlistsvg-go/pkg/netlist"
)

// Synthesize mutates mod in place: every literal bit inside an input port's
// vector is replaced by a fresh integer signal driven by a $_constant_ cell,
// and constant cells with identical reversed-literal names are shared.
func Synthesize(mod *netlist.FlatModule) {
	max, _ := currentMaxSignal(mod)

	existing := make(map[string]*netlist.Cell)
	for _, cell := range mod.Nodes {
		if cell.Type == netlist.TypeConstant {
			existing[cell.Key] = cell
		}
	}

	// Snapshot the node list: synthesized constant cells are appended to
	// mod.Nodes as we go and must not themselves be rescanned.
	nodes := make([]*netlist.Cell, len(mod.Nodes))
	copy(nodes, mod.Nodes)

	for _, cell := range nodes {
		for _, key := range cell.SortedInputKeys() {
			synthesizePort(cell.Inputs[key], &max, existing, mod)
		}
	}
}

// currentMaxSignal scans every output port to find the largest integer
// signal currently in use.
func currentMaxSignal(mod *netlist.FlatModule) (max int, ok bool) {
	for _, cell := range mod.Nodes {
		for _, key := range cell.SortedOutputKeys() {
			if m, found := cell.Outputs[key].Value.MaxSignal(); found {
				if !ok || m > max {
					max, ok = m, true
				}
			}
		}
	}
	return max, ok
}

// synthesizePort scans one port's vector left to right, replacing each
// maximal run of literal bits with a fresh signal run and assigning that
// run to a (possibly shared) constant cell.
func synthesizePort(port *netlist.Port, max *int, existing map[string]*netlist.Cell, mod *netlist.FlatModule) {
	v := port.Value
	i := 0
	for i < len(v) {
		if !v[i].IsLiteral() {
			i++
			continue
		}

		start := i
		var literalBits []string
		var runSignals netlist.SignalVector
		for i < len(v) && v[i].IsLiteral() {
			literalBits = append(literalBits, v[i].Literal())
			*max++
			sig := netlist.IntSignal(*max)
			v[i] = sig
			runSignals = append(runSignals, sig)
			i++
		}

		assignRun(port, start, literalBits, runSignals, existing, mod)
	}
}

// assignRun coalesces a literal run by reversed-name, or synthesizes a new
// constant cell when no prior run shares that name.
func assignRun(port *netlist.Port, start int, literalBits []string, runSignals netlist.SignalVector, existing map[string]*netlist.Cell, mod *netlist.FlatModule) {
	name := reverseJoin(literalBits)

	if cell, ok := existing[name]; ok {
		out := cell.Outputs["Y"]
		for offset, sig := range out.Value {
			port.Value[start+offset] = sig
		}
		return
	}

	cell := netlist.NewCell(name, netlist.TypeConstant)
	cell.AddOutput("Y", runSignals.Clone())
	mod.AddNode(cell)
	existing[name] = cell
}

// reverseJoin concatenates bits in reverse order, so the first-encountered
// literal bit ends up at the name's end.
func reverseJoin(bits []string) string {
	var b strings.Builder
	for i := len(bits) - 1; i >= 0; i-- {
		b.WriteString(bits[i])
	}
	return b.String()
}
