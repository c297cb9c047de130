package layout

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// Engine is the layout engine contract: it takes a flat graph request and
// returns it with every child positioned and every edge routed.
// The pipeline's only asynchronous boundary is this call.
type Engine interface {
	Layout(ctx context.Context, req *Request) (*Request, error)
}

// LayeredEngine is a concrete orthogonal layered-graph engine: BFS/topological
// layering, grid placement, and Manhattan routing, adapted from a room-graph
// embedder to a port-level netlist graph.
type LayeredEngine struct {
	HSpacing, VSpacing float64
}

// NewLayeredEngine returns a LayeredEngine with the given column/row gaps.
func NewLayeredEngine(hSpacing, vSpacing float64) *LayeredEngine {
	if hSpacing <= 0 {
		hSpacing = 40
	}
	if vSpacing <= 0 {
		vSpacing = 20
	}
	return &LayeredEngine{HSpacing: hSpacing, VSpacing: vSpacing}
}

// Layout assigns layers, grid positions, and Manhattan-routed edges to req.
func (e *LayeredEngine) Layout(ctx context.Context, req *Request) (*Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	if len(req.Children) == 0 {
		return req, nil
	}

	layers := assignLayers(req.Children, req.Edges)
	assignPositions(req.Children, layers, e.HSpacing, e.VSpacing)
	routeEdges(req)

	return req, nil
}

// assignLayers performs Kahn's-algorithm topological layering over the
// request's directed edge set, seeded from every source (in-degree zero)
// node, so a multi-source DAG layers correctly (cyclic feedback, e.g. around
// a $dff, is tolerated: a node never reached through forward edges keeps its
// zero-value layer).
func assignLayers(children []*Child, edges []*Edge) map[string]int {
	indeg := make(map[string]int, len(children))
	succ := make(map[string][]string)
	for _, c := range children {
		indeg[c.ID] = 0
	}
	for _, e := range edges {
		succ[e.SourceNode] = append(succ[e.SourceNode], e.TargetNode)
		indeg[e.TargetNode]++
	}

	layer := make(map[string]int, len(children))
	var queue []string
	ids := make([]string, 0, len(children))
	for _, c := range children {
		ids = append(ids, c.ID)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if indeg[id] == 0 {
			layer[id] = 0
			queue = append(queue, id)
		}
	}

	visited := make(map[string]bool, len(children))
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		for _, next := range succ[cur] {
			if layer[cur]+1 > layer[next] {
				layer[next] = layer[cur] + 1
			}
			indeg[next]--
			if indeg[next] <= 0 && !visited[next] {
				queue = append(queue, next)
			}
		}
	}
	// Anything that still has no layer was never reached from a processed
	// node (it sits on, or behind, a feedback cycle); layer 0 is a safe
	// default that still lets routing proceed. Unvisited nodes that a
	// processed node points at keep the layer that edge gave them.
	for _, id := range ids {
		if _, ok := layer[id]; !ok {
			layer[id] = 0
		}
	}
	return layer
}

// assignPositions places children on a grid: column = layer, row = position
// within the layer (sorted by id for determinism), with column widths and
// row heights derived from the widest/tallest child in that slot.
func assignPositions(children []*Child, layer map[string]int, hSpacing, vSpacing float64) {
	byLayer := make(map[int][]*Child)
	maxLayer := 0
	for _, c := range children {
		l := layer[c.ID]
		byLayer[l] = append(byLayer[l], c)
		if l > maxLayer {
			maxLayer = l
		}
	}

	x := 0.0
	for l := 0; l <= maxLayer; l++ {
		nodes := byLayer[l]
		sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

		maxWidth := 0.0
		y := 0.0
		for _, c := range nodes {
			c.X, c.Y = x, y
			y += c.Height + vSpacing
			if c.Width > maxWidth {
				maxWidth = c.Width
			}
		}
		x += maxWidth + hSpacing
	}
}

// routeEdges computes a start/bend/end polyline for every edge from its
// endpoints' computed child positions plus local port offsets, and marks
// each edge incident to a dummy with the dummy's resolved position as its
// junction point.
func routeEdges(req *Request) {
	for _, e := range req.Edges {
		src := req.ChildByID(e.SourceNode)
		dst := req.ChildByID(e.TargetNode)
		if src == nil || dst == nil {
			continue
		}

		sx, sy := portPoint(src, e.SourcePort)
		dx, dy := portPoint(dst, e.TargetPort)

		e.StartPoint = Point{X: sx, Y: sy}
		e.EndPoint = Point{X: dx, Y: dy}
		e.Bends = manhattanBend(sx, sy, dx, dy)

		if src.IsDummy {
			e.JunctionPoints = []Point{{X: src.X, Y: src.Y}}
		} else if dst.IsDummy {
			e.JunctionPoints = []Point{{X: dst.X, Y: dst.Y}}
		}
	}
}

func portPoint(c *Child, pid string) (float64, float64) {
	for _, p := range c.Ports {
		if p.PID == pid {
			return c.X + p.X, c.Y + p.Y
		}
	}
	return c.X, c.Y
}

// manhattanBend returns the single corner point of an L-shaped route from
// (x1,y1) to (x2,y2), horizontal segment first, or no bend when the two
// points are already orthogonally aligned.
func manhattanBend(x1, y1, x2, y2 float64) []Point {
	if math.Abs(x1-x2) < 1e-9 || math.Abs(y1-y2) < 1e-9 {
		return nil
	}
	return []Point{{X: x2, Y: y1}}
}
