// Package drawing instantiates skin templates at their computed layout
// positions and emits routed edges and junction dots into a final drawing
// tree.
package drawing

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"

	"github.com/netlistsvg/netlistsvg-go/pkg/layout"
	"github.com/netlistsvg/netlistsvg-go/pkg/netlist"
	"github.com/netlistsvg/netlistsvg-go/pkg/skin"
)

// Assembler builds a final drawing tree from a reconciled layout and the
// skin library it was laid out against.
type Assembler struct {
	lib *skin.Library
}

// NewAssembler returns an Assembler bound to lib.
func NewAssembler(lib *skin.Library) *Assembler {
	return &Assembler{lib: lib}
}

// Assemble clones the skin's root, strips its template definitions, and
// appends one instantiated element per drawing child plus the routed edges
// and junction dots, with the root's width/height set to the computed
// layout size.
func (a *Assembler) Assemble(mod *netlist.FlatModule, dr *layout.Drawing) (*skin.Node, error) {
	root := a.lib.Root.Clone()
	root.Children = stripTemplates(root.Children)

	w, h := bounds(dr.Children)
	root.SetAttr("width", formatFloat(w))
	root.SetAttr("height", formatFloat(h))

	for _, child := range dr.Children {
		cell := mod.FindNode(child.CellKey)
		if cell == nil {
			return nil, fmt.Errorf("drawing: no flat cell for layout child %q", child.ID)
		}
		node, err := a.instantiate(cell, child)
		if err != nil {
			return nil, fmt.Errorf("drawing: cell %q: %w", cell.Key, err)
		}
		root.Children = append(root.Children, node)
	}

	for _, e := range dr.Edges {
		node, err := polylineNode(e)
		if err != nil {
			return nil, fmt.Errorf("drawing: edge %s: %w", e.ID, err)
		}
		root.Children = append(root.Children, node)
	}
	for _, j := range dr.Junctions {
		node, err := junctionNode(j)
		if err != nil {
			return nil, fmt.Errorf("drawing: junction: %w", err)
		}
		root.Children = append(root.Children, node)
	}

	return root, nil
}

// stripTemplates drops every top-level s:type template definition from a
// cloned skin root, leaving its style elements and anything else untouched.
func stripTemplates(children []*skin.Node) []*skin.Node {
	out := children[:0:0]
	for _, c := range children {
		if _, ok := c.Attr("s:type"); ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

// instantiate clones cell's skin template, translates it to the computed
// position, applies the generic/split/join special cases, and substitutes
// its text placeholders.
func (a *Assembler) instantiate(cell *netlist.Cell, child *layout.Child) (*skin.Node, error) {
	tmpl, err := a.lib.Lookup(cell.Type)
	if err != nil {
		return nil, err
	}
	node := tmpl.Node.Clone()
	node.SetAttr("transform", fmt.Sprintf("translate(%s,%s)", formatFloat(child.X), formatFloat(child.Y)))

	switch tmpl.TypeName {
	case "generic":
		replicatePortNodes(node, tmpl, cell, child)
		substitute(node, "type", cell.Type)
	case "split", "join":
		resizeBody(node, child)
		replicatePortNodes(node, tmpl, cell, child)
	}

	ref := cell.Key
	if cell.Type == netlist.TypeConstant && len(cell.Key) > 1 {
		ref = constantRef(cell.Key)
	}
	substitute(node, "ref", ref)
	if name, ok := cell.Attrs["value"]; ok && name != "" {
		substitute(node, "name", name)
	}

	return node, nil
}

// substitute finds every descendant carrying s:attribute==which and sets
// its text content to val.
func substitute(node *skin.Node, which, val string) {
	for _, el := range node.FindAllWithAttr("s:attribute") {
		if v, _ := el.Attr("s:attribute"); v == which {
			setText(el, val)
		}
	}
}

func setText(el *skin.Node, val string) {
	for _, c := range el.Children {
		if c.Kind == skin.KindText {
			c.Text = val
			return
		}
	}
	el.Children = append(el.Children, &skin.Node{Kind: skin.KindText, Text: val})
}

// resizeBody sets the cloned template's nominal body dimensions to the
// computed generic height (and, for width, the layout-computed width),
// mirroring what the request builder already sized the child to.
func resizeBody(node *skin.Node, child *layout.Child) {
	node.SetAttr("s:width", formatFloat(child.Width))
	node.SetAttr("s:height", formatFloat(child.Height))
	if rect := node.Find("rect"); rect != nil {
		rect.SetAttr("width", formatFloat(child.Width))
		rect.SetAttr("height", formatFloat(child.Height))
	}
}

// replicatePortNodes replicates the template's left-side prototype pin once
// per actual input port and its right-side prototype once per actual output
// port, repositioning each copy to its computed Y slot.
func replicatePortNodes(node *skin.Node, tmpl *skin.CellTemplate, cell *netlist.Cell, child *layout.Child) {
	replicateSide(node, tmpl, "left", cell.SortedInputKeys(), child)
	replicateSide(node, tmpl, "right", cell.SortedOutputKeys(), child)
}

func replicateSide(node *skin.Node, tmpl *skin.CellTemplate, side string, keys []string, child *layout.Child) {
	if len(keys) == 0 {
		return
	}
	proto := protoPinNode(node, tmpl, side)
	if proto == nil {
		return
	}
	parent := findParent(node, proto)
	if parent == nil {
		return
	}

	for i, k := range keys {
		y, ok := portY(child, k)
		if !ok {
			continue
		}
		if i == 0 {
			proto.SetAttr("s:pid", k)
			proto.SetAttr("s:y", formatFloat(y))
			continue
		}
		clone := proto.Clone()
		clone.SetAttr("s:pid", k)
		clone.SetAttr("s:y", formatFloat(y))
		parent.Children = append(parent.Children, clone)
	}
}

// protoPinNode finds the first pin element on the given side (left/right)
// within a freshly-cloned template instance.
func protoPinNode(node *skin.Node, tmpl *skin.CellTemplate, side string) *skin.Node {
	var wantPID string
	for _, p := range tmpl.Ports {
		if p.Position == side {
			wantPID = p.PID
			break
		}
	}
	if wantPID == "" {
		return nil
	}
	for _, el := range node.FindAllWithAttr("s:pid") {
		if pid, _ := el.Attr("s:pid"); pid == wantPID {
			return el
		}
	}
	return nil
}

func findParent(root, target *skin.Node) *skin.Node {
	for _, c := range root.Children {
		if c == target {
			return root
		}
		if p := findParent(c, target); p != nil {
			return p
		}
	}
	return nil
}

func portY(child *layout.Child, pid string) (float64, bool) {
	for _, p := range child.Ports {
		if p.PID == pid {
			return p.Y, true
		}
	}
	return 0, false
}

// bounds computes the drawing's overall width/height as the bounding box of
// every child's footprint.
func bounds(children []*layout.Child) (float64, float64) {
	var maxX, maxY float64
	for _, c := range children {
		if r := c.X + c.Width; r > maxX {
			maxX = r
		}
		if b := c.Y + c.Height; b > maxY {
			maxY = b
		}
	}
	return maxX, maxY
}

// polylineNode renders one routed edge as a polyline element spanning its
// start point, bend points, and end point, using svgo's primitive writer
// and reparsing the emitted fragment back into the drawing tree.
func polylineNode(e *layout.Edge) (*skin.Node, error) {
	pts := make([]layout.Point, 0, len(e.Bends)+2)
	pts = append(pts, e.StartPoint)
	pts = append(pts, e.Bends...)
	pts = append(pts, e.EndPoint)

	xs := make([]int, len(pts))
	ys := make([]int, len(pts))
	for i, p := range pts {
		xs[i] = int(math.Round(p.X))
		ys[i] = int(math.Round(p.Y))
	}

	var buf bytes.Buffer
	svg.New(&buf).Polyline(xs, ys, "fill:none;stroke:#000;stroke-width:1")
	return parseFragment(buf.Bytes())
}

// junctionNode renders a fan-out point as a small filled circle.
func junctionNode(p layout.Point) (*skin.Node, error) {
	var buf bytes.Buffer
	svg.New(&buf).Circle(int(math.Round(p.X)), int(math.Round(p.Y)), 3, "fill:#000")
	return parseFragment(buf.Bytes())
}

func parseFragment(b []byte) (*skin.Node, error) {
	return skin.ParseTree(bytes.NewReader(b))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// constantRef renders a multi-bit constant's reversed-literal key as a hex
// literal, e.g. "0x4".
func constantRef(key string) string {
	n, err := strconv.ParseInt(key, 2, 64)
	if err != nil {
		return key
	}
	return "0x" + strconv.FormatInt(n, 16)
}
