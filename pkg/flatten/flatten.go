// Package flatten converts one hierarchical netlist module into a flat
// node graph, promoting external ports to dedicated terminal cells.
package flatten

import (
	"fmt"
	"sort"

	"github.com/netlistsvg/netlistsvg-go/pkg/netlist"
	"github.com/netlistsvg/netlistsvg-go/pkg/skin"
)

// Flatten converts mod's ports and cells into a FlatModule with nodes but no
// wires (wires are assigned later by the net builder).
func Flatten(mod *netlist.Module, lib *skin.Library) (*netlist.FlatModule, error) {
	flat := netlist.NewFlatModule()

	for _, name := range sortedPortNames(mod.Ports) {
		port := mod.Ports[name]
		switch port.Direction {
		case "input":
			cell := netlist.NewCell(name, netlist.TypeInputExt)
			cell.AddOutput("Y", port.Bits)
			flat.AddNode(cell)
		case "output":
			cell := netlist.NewCell(name, netlist.TypeOutputExt)
			cell.AddInput("A", port.Bits)
			flat.AddNode(cell)
		default:
			return nil, fmt.Errorf("flatten: port %q has unknown direction %q", name, port.Direction)
		}
	}

	for _, key := range sortedCellNames(mod.Cells) {
		raw := mod.Cells[key]
		cell := netlist.NewCell(key, raw.Type)
		if raw.Attributes != nil {
			cell.Attrs = make(map[string]string, len(raw.Attributes))
			for k, v := range raw.Attributes {
				cell.Attrs[k] = fmt.Sprint(v)
			}
		}

		directions, err := resolveDirections(raw, lib)
		if err != nil {
			return nil, fmt.Errorf("flatten: cell %q: %w", key, err)
		}

		for _, portName := range sortedConnectionNames(raw.Connections) {
			value := raw.Connections[portName]
			switch directions[portName] {
			case "input":
				cell.AddInput(portName, value)
			case "output":
				cell.AddOutput(portName, value)
			default:
				return nil, fmt.Errorf("flatten: cell %q port %q: direction could not be determined", key, portName)
			}
		}

		flat.AddNode(cell)
	}

	return flat, nil
}

// resolveDirections returns the input/output direction for every connected
// port of raw, using declared port_directions where present and otherwise
// inferring from the skin template's port position.
func resolveDirections(raw *netlist.RawCell, lib *skin.Library) (map[string]string, error) {
	directions := make(map[string]string, len(raw.Connections))
	for name, dir := range raw.PortDirections {
		directions[name] = dir
	}

	missing := missingPorts(raw.Connections, directions)
	if len(missing) == 0 {
		return directions, nil
	}

	tmpl, err := lib.Lookup(raw.Type)
	if err != nil {
		return nil, err
	}
	for _, portName := range missing {
		pt := tmpl.PortByPID(portName)
		if pt == nil {
			return nil, fmt.Errorf("no port_directions for %q and no matching template pin", portName)
		}
		dir := pt.InferredDirection()
		if dir == "" {
			return nil, fmt.Errorf("template pin %q has no left/right/top/bottom position to infer direction from", portName)
		}
		directions[portName] = dir
	}
	return directions, nil
}

func missingPorts(connections map[string]netlist.SignalVector, directions map[string]string) []string {
	var missing []string
	for name := range connections {
		if _, ok := directions[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

func sortedPortNames(ports map[string]*netlist.RawPort) []string {
	names := make([]string, 0, len(ports))
	for n := range ports {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func sortedCellNames(cells map[string]*netlist.RawCell) []string {
	names := make([]string, 0, len(cells))
	for n := range cells {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func sortedConnectionNames(conns map[string]netlist.SignalVector) []string {
	names := make([]string, 0, len(conns))
	for n := range conns {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
