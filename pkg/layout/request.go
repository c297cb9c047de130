// Package layout builds the flat request graph handed to an orthogonal
// layered-graph layout engine, and reconciles its response back into a
// dummy-free drawing.
package layout

import "fmt"

// Point is a 2D coordinate in layout units.
type Point struct {
	X, Y float64
}

// PortSpec is one fixed-position pin on a layout child, in the child's own
// local coordinate frame.
type PortSpec struct {
	PID  string
	X, Y float64
}

// Label is a piece of text anchored at a local coordinate on a child (a port
// name or a body label), attached by the request builder and consumed by the
// drawing assembler.
type Label struct {
	Text string
	X, Y float64
}

// Child is one node of the layout request: a real flattened cell or a
// synthesized dummy fan-out node.
type Child struct {
	ID      string // cell key, or "$d_N" for a dummy
	CellKey string // empty for dummy children
	IsDummy bool

	Width, Height float64
	Ports         []PortSpec
	Labels        []Label

	// X, Y are the child's computed top-left position; zero until the engine
	// runs.
	X, Y float64
}

// EdgeHint carries a routing preference for the layout engine.
type EdgeHint struct {
	// ForwardPriority biases the router toward routing this edge in the
	// forward (left-to-right) direction.
	ForwardPriority int
}

// Edge is one connection in the layout request/response. Before layout, only
// the Source/Target/Hint fields are meaningful; after layout, StartPoint,
// Bends, EndPoint and (when the engine supports it) JunctionPoints are
// populated by the engine.
type Edge struct {
	ID string

	SourceNode, SourcePort string
	TargetNode, TargetPort string
	Hint                   *EdgeHint

	StartPoint     Point
	Bends          []Point
	EndPoint       Point
	JunctionPoints []Point // points the engine already knows are shared with other edges
}

// Request is the flat graph handed to the layout engine and, after layout,
// returned populated with computed geometry.
type Request struct {
	Children []*Child
	Edges    []*Edge
	Options  map[string]any

	byID map[string]*Child
}

// ChildByID returns the child with the given id, or nil.
func (r *Request) ChildByID(id string) *Child {
	if r.byID == nil {
		r.byID = make(map[string]*Child, len(r.Children))
		for _, c := range r.Children {
			r.byID[c.ID] = c
		}
	}
	return r.byID[id]
}

func newDummyChild(id string) *Child {
	return &Child{
		ID:      id,
		IsDummy: true,
		Ports:   []PortSpec{{PID: ".p"}},
	}
}

func (c *Child) String() string {
	return fmt.Sprintf("Child[%s %gx%g @(%g,%g)]", c.ID, c.Width, c.Height, c.X, c.Y)
}
