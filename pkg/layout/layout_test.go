package layout

import (
	"context"
	"strconv"
	"testing"

	"github.com/netlistsvg/netlistsvg-go/pkg/netlist"
)

// buildFanOutRequest constructs the "0 riders, >=2 drivers" wire shape:
// three driver children feeding a single dummy, run without consuming riders.
func buildFanOutRequest() *Request {
	req := &Request{}
	for i := 0; i < 3; i++ {
		req.Children = append(req.Children, &Child{
			ID:     []string{"a", "b", "c"}[i],
			Width:  20, Height: 10,
			Ports: []PortSpec{{PID: "Y", X: 20, Y: 5}},
		})
	}
	dummy := newDummyChild("$d_1")
	req.Children = append(req.Children, dummy)

	for i, id := range []string{"a", "b", "c"} {
		req.Edges = append(req.Edges, &Edge{
			ID:         []string{"e1", "e2", "e3"}[i],
			SourceNode: id, SourcePort: "Y",
			TargetNode: "$d_1", TargetPort: ".p",
		})
	}
	return req
}

func TestLayeredEngineAssignsDistinctLayers(t *testing.T) {
	req := buildFanOutRequest()
	engine := NewLayeredEngine(40, 20)
	out, err := engine.Layout(context.Background(), req)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	dummy := out.ChildByID("$d_1")
	if dummy == nil {
		t.Fatal("dummy child missing after layout")
	}
	for _, id := range []string{"a", "b", "c"} {
		driver := out.ChildByID(id)
		if driver.X == dummy.X {
			t.Fatalf("driver %s shares a layer (x=%v) with its dummy", id, dummy.X)
		}
	}
}

func TestReconcileFoldsFanOutIntoSingleJunction(t *testing.T) {
	req := buildFanOutRequest()
	engine := NewLayeredEngine(40, 20)
	out, err := engine.Layout(context.Background(), req)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	drawing, err := Reconcile(out)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	for _, c := range drawing.Children {
		if c.IsDummy {
			t.Fatalf("dummy child %s survived reconciliation", c.ID)
		}
	}
	if len(drawing.Children) != 3 {
		t.Fatalf("want 3 real children, got %d", len(drawing.Children))
	}

	for _, e := range drawing.Edges {
		if e.TargetNode == "$d_1" || e.SourceNode == "$d_1" {
			t.Fatalf("edge %s still references the removed dummy", e.ID)
		}
	}

	if len(drawing.Junctions) != 1 {
		t.Fatalf("want exactly 1 junction for a 3-way fan-out, got %d", len(drawing.Junctions))
	}
	want := drawing.Junctions[0]
	for _, e := range drawing.Edges {
		if e.EndPoint != want {
			t.Fatalf("edge %s does not terminate at the shared junction: got %v want %v", e.ID, e.EndPoint, want)
		}
	}
}

func TestReconcileDropsDegenerateTwoWayTurn(t *testing.T) {
	req := &Request{}
	req.Children = append(req.Children,
		&Child{ID: "a", Width: 20, Height: 10, Ports: []PortSpec{{PID: "Y", X: 20, Y: 5}}},
		&Child{ID: "b", Width: 20, Height: 10, Ports: []PortSpec{{PID: "A", X: 0, Y: 5}}},
		newDummyChild("$d_1"),
	)
	req.Edges = append(req.Edges,
		&Edge{ID: "e1", SourceNode: "a", SourcePort: "Y", TargetNode: "$d_1", TargetPort: ".p"},
		&Edge{ID: "e2", SourceNode: "$d_1", SourcePort: ".p", TargetNode: "b", TargetPort: "A"},
	)

	engine := NewLayeredEngine(40, 20)
	out, err := engine.Layout(context.Background(), req)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	// A dummy with one incoming and one outgoing edge is not a real
	// fan-out: here the two edges leave the fold point in two different
	// directions (down and right), so reconciliation must report no junction.
	drawing, err := Reconcile(out)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(drawing.Junctions) != 0 {
		t.Fatalf("want no junction for a two-way turn, got %d", len(drawing.Junctions))
	}
}

func TestBuildWireEdgesCartesianDriverRider(t *testing.T) {
	d1 := netlist.NewCell("d1", "$_not_")
	d2 := netlist.NewCell("d2", "$_not_")
	r1 := netlist.NewCell("r1", "$_not_")
	d1out := d1.AddOutput("Y", netlist.SignalVector{netlist.IntSignal(1)})
	d2out := d2.AddOutput("Y", netlist.SignalVector{netlist.IntSignal(1)})
	r1in := r1.AddInput("A", netlist.SignalVector{netlist.IntSignal(1)})

	w := &netlist.Wire{Drivers: []*netlist.Port{d1out, d2out}, Riders: []*netlist.Port{r1in}}

	req := &Request{}
	nextEdge, nextDummy := counter("e"), counter("$d_")
	buildWireEdges(req, w, nextEdge, nextDummy)

	if len(req.Edges) != 2 {
		t.Fatalf("want 2 cartesian edges for 2 drivers x 1 rider, got %d", len(req.Edges))
	}
	for _, e := range req.Edges {
		if e.Hint == nil || e.Hint.ForwardPriority != 10 {
			t.Fatalf("edge %s missing forward-priority hint", e.ID)
		}
	}
}

func TestBuildWireEdgesDFFSourceSkipsForwardHint(t *testing.T) {
	dff := netlist.NewCell("dff1", "$dff")
	r1 := netlist.NewCell("r1", "$_not_")
	out := dff.AddOutput("Q", netlist.SignalVector{netlist.IntSignal(1)})
	in := r1.AddInput("A", netlist.SignalVector{netlist.IntSignal(1)})

	w := &netlist.Wire{Drivers: []*netlist.Port{out}, Riders: []*netlist.Port{in}}

	req := &Request{}
	nextEdge, nextDummy := counter("e"), counter("$d_")
	buildWireEdges(req, w, nextEdge, nextDummy)

	if len(req.Edges) != 1 {
		t.Fatalf("want 1 edge, got %d", len(req.Edges))
	}
	if req.Edges[0].Hint != nil {
		t.Fatalf("edge sourced from a $dff must not carry the forward-priority hint")
	}
}

func counter(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + strconv.Itoa(n)
	}
}
