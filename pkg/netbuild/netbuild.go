// Package netbuild groups flat ports into wire records, partitioned into
// drivers, riders and laterals.
package netbuild

import (
	"fmt"

	"github.com/netlistsvg/netlistsvg-go/pkg/netlist"
	"github.com/netlistsvg/netlistsvg-go/pkg/skin"
)

// Build groups every port in mod by its canonical signal vector into a Wire,
// classifying each port as driver, rider or lateral, and appends the result
// to mod.Wires. Every port is mutated to carry a back-reference to its wire.
func Build(mod *netlist.FlatModule, lib *skin.Library) error {
	order := make([]string, 0)
	wires := make(map[string]*netlist.Wire)

	for _, cell := range mod.Nodes {
		tmpl, err := lib.Lookup(cell.Type)
		if err != nil {
			return fmt.Errorf("netbuild: cell %q: %w", cell.Key, err)
		}

		for _, key := range cell.SortedOutputKeys() {
			port := cell.Outputs[key]
			addPort(wires, &order, port, classify(lib, tmpl, key, true))
		}
		for _, key := range cell.SortedInputKeys() {
			port := cell.Inputs[key]
			addPort(wires, &order, port, classify(lib, tmpl, key, false))
		}
	}

	for _, key := range order {
		mod.Wires = append(mod.Wires, wires[key])
	}
	return nil
}

type portRole int

const (
	roleDriver portRole = iota
	roleRider
	roleLateral
)

func classify(lib *skin.Library, tmpl *skin.CellTemplate, pid string, isOutput bool) portRole {
	if lib.PortIsLateral(tmpl, pid) {
		return roleLateral
	}
	if isOutput {
		return roleDriver
	}
	return roleRider
}

func addPort(wires map[string]*netlist.Wire, order *[]string, port *netlist.Port, role portRole) {
	key := port.Value.Canonical()
	w, ok := wires[key]
	if !ok {
		w = &netlist.Wire{}
		wires[key] = w
		*order = append(*order, key)
	}
	switch role {
	case roleDriver:
		w.Drivers = append(w.Drivers, port)
	case roleRider:
		w.Riders = append(w.Riders, port)
	case roleLateral:
		w.Laterals = append(w.Laterals, port)
	}
	port.Wire = w
}
