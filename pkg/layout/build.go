package layout

import (
	"fmt"

	"github.com/netlistsvg/netlistsvg-go/pkg/netlist"
	"github.com/netlistsvg/netlistsvg-go/pkg/skin"
)

// BuildRequest turns a flattened, wired module into a layout Request: one
// child per cell plus dummy fan-out nodes, and one edge set per wire.
func BuildRequest(mod *netlist.FlatModule, lib *skin.Library) (*Request, error) {
	req := &Request{Options: lib.LayoutEngineOptions}

	for _, cell := range mod.Nodes {
		child, err := buildChild(cell, lib)
		if err != nil {
			return nil, fmt.Errorf("layout: %w", err)
		}
		req.Children = append(req.Children, child)
	}

	edgeN, dummyN := 0, 0
	nextEdgeID := func() string { edgeN++; return fmt.Sprintf("e%d", edgeN) }
	nextDummyID := func() string { dummyN++; return fmt.Sprintf("$d_%d", dummyN) }

	for _, w := range mod.Wires {
		buildWireEdges(req, w, nextEdgeID, nextDummyID)
	}

	return req, nil
}

// buildChild materializes one flat cell as a fixed-port-position layout
// child, deriving geometry from its skin template.
func buildChild(cell *netlist.Cell, lib *skin.Library) (*Child, error) {
	tmpl, err := lib.Lookup(cell.Type)
	if err != nil {
		return nil, fmt.Errorf("cell %q: %w", cell.Key, err)
	}

	child := &Child{ID: cell.Key, CellKey: cell.Key}

	switch tmpl.TypeName {
	case "generic", "split", "join":
		buildReplicatedChild(child, tmpl, cell, lib.GenericPortGap())
	default:
		if err := buildLiteralChild(child, tmpl, cell); err != nil {
			return nil, err
		}
		if tmpl.TypeName == "inputExt" || tmpl.TypeName == "outputExt" {
			child.Labels = append(child.Labels, Label{Text: cell.Key, X: child.Width / 2, Y: child.Height / 2})
		}
	}

	return child, nil
}

// buildReplicatedChild lays out a generic/split/join cell: its body grows
// with the larger of its input/output port counts, and its port positions
// are computed by replicating the template's left/right prototype pin once
// per actual port.
func buildReplicatedChild(child *Child, tmpl *skin.CellTemplate, cell *netlist.Cell, gap float64) {
	inKeys := cell.SortedInputKeys()
	outKeys := cell.SortedOutputKeys()

	height := float64(max(len(inKeys), len(outKeys))) * gap
	if height < tmpl.Height {
		height = tmpl.Height
	}
	child.Width = tmpl.Width
	child.Height = height

	if left := findProtoByPosition(tmpl, "left"); left != nil {
		child.Ports = append(child.Ports, replicatePorts(left, inKeys, height)...)
	}
	if right := findProtoByPosition(tmpl, "right"); right != nil {
		child.Ports = append(child.Ports, replicatePorts(right, outKeys, height)...)
	}
	for _, p := range child.Ports {
		child.Labels = append(child.Labels, Label{Text: p.PID, X: p.X, Y: p.Y})
	}
}

// buildLiteralChild lays out a cell whose template provides a fixed pin for
// every actual port name, taking geometry literally.
func buildLiteralChild(child *Child, tmpl *skin.CellTemplate, cell *netlist.Cell) error {
	child.Width = tmpl.Width
	child.Height = tmpl.Height

	for _, k := range cell.SortedInputKeys() {
		pt := tmpl.PortByPID(k)
		if pt == nil {
			return fmt.Errorf("cell %q: no template pin for input %q", cell.Key, k)
		}
		child.Ports = append(child.Ports, PortSpec{PID: k, X: pt.X, Y: pt.Y})
	}
	for _, k := range cell.SortedOutputKeys() {
		pt := tmpl.PortByPID(k)
		if pt == nil {
			return fmt.Errorf("cell %q: no template pin for output %q", cell.Key, k)
		}
		child.Ports = append(child.Ports, PortSpec{PID: k, X: pt.X, Y: pt.Y})
	}
	return nil
}

func findProtoByPosition(tmpl *skin.CellTemplate, pos string) *skin.PortTemplate {
	for _, p := range tmpl.Ports {
		if p.Position == pos {
			return p
		}
	}
	return nil
}

// replicatePorts spaces len(keys) ports evenly across [0, height], keeping
// proto's X (its left/right side) fixed.
func replicatePorts(proto *skin.PortTemplate, keys []string, height float64) []PortSpec {
	n := len(keys)
	if n == 0 {
		return nil
	}
	slot := height / float64(n)
	out := make([]PortSpec, n)
	for i, k := range keys {
		out[i] = PortSpec{PID: k, X: proto.X, Y: slot * (float64(i) + 0.5)}
	}
	return out
}

// buildWireEdges produces the edge set for one wire, keyed off its
// driver/rider/lateral counts.
func buildWireEdges(req *Request, w *netlist.Wire, nextEdgeID, nextDummyID func() string) {
	d, r, l := len(w.Drivers), len(w.Riders), len(w.Laterals)

	switch {
	case d >= 1 && r >= 1 && l == 0:
		for _, drv := range w.Drivers {
			for _, rid := range w.Riders {
				e := driverRiderEdge(nextEdgeID(), drv, rid)
				req.Edges = append(req.Edges, e)
			}
		}

	case (d >= 1 || r >= 1) && l >= 1:
		for _, drv := range w.Drivers {
			for _, lat := range w.Laterals {
				req.Edges = append(req.Edges, portEdge(nextEdgeID(), drv, lat, nil))
			}
		}
		for _, lat := range w.Laterals {
			for _, rid := range w.Riders {
				req.Edges = append(req.Edges, portEdge(nextEdgeID(), lat, rid, nil))
			}
		}

	case r == 0 && d >= 2:
		dummyID := nextDummyID()
		req.Children = append(req.Children, newDummyChild(dummyID))
		for _, drv := range w.Drivers {
			req.Edges = append(req.Edges, &Edge{
				ID: nextEdgeID(),
				SourceNode: drv.ParentNode.Key, SourcePort: drv.Key,
				TargetNode: dummyID, TargetPort: ".p",
				JunctionPoints: pendingJunction(),
			})
		}

	case d == 0 && r >= 2:
		dummyID := nextDummyID()
		req.Children = append(req.Children, newDummyChild(dummyID))
		for _, rid := range w.Riders {
			req.Edges = append(req.Edges, &Edge{
				ID: nextEdgeID(),
				SourceNode: dummyID, SourcePort: ".p",
				TargetNode: rid.ParentNode.Key, TargetPort: rid.Key,
				JunctionPoints: pendingJunction(),
			})
		}

	case l >= 2 && d == 0 && r == 0:
		first := w.Laterals[0]
		for _, lat := range w.Laterals[1:] {
			req.Edges = append(req.Edges, portEdge(nextEdgeID(), first, lat, nil))
		}

	default:
		// 1 driver xor 1 rider, no laterals: no edges.
	}
}

// driverRiderEdge builds a direct driver->rider edge, attaching the
// forward-priority hint unless the driver's cell is a $dff.
func driverRiderEdge(id string, drv, rid *netlist.Port) *Edge {
	var hint *EdgeHint
	if drv.ParentNode.Type != "$dff" {
		hint = &EdgeHint{ForwardPriority: 10}
	}
	return portEdge(id, drv, rid, hint)
}

func portEdge(id string, src, dst *netlist.Port, hint *EdgeHint) *Edge {
	return &Edge{
		ID:         id,
		SourceNode: src.ParentNode.Key, SourcePort: src.Key,
		TargetNode: dst.ParentNode.Key, TargetPort: dst.Key,
		Hint: hint,
	}
}

// pendingJunction leaves a dummy-incident edge without junction points until
// the engine has run: LayeredEngine.Layout fills them with the dummy's
// computed position, and against an engine that never fills them the
// reconciler falls back to the dummy's own position.
func pendingJunction() []Point { return nil }
