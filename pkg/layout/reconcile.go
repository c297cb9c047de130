package layout

import (
	"errors"
	"fmt"
	"sort"
)

// dummySafetyCap bounds the dummy-processing loop; exceeding it indicates a
// pathological netlist and is not itself an error.
const dummySafetyCap = 10000

// sentinelScore de-prioritizes an edge with no known junction point during
// anchor selection.
const sentinelScore = 1 << 30

// Drawing is the dummy-free, fully-routed graph produced by Reconcile: every
// child is a real cell, and every edge's geometry is final.
type Drawing struct {
	Children  []*Child
	Edges     []*Edge
	Junctions []Point
}

// Reconcile removes every dummy node from a laid-out request, folding its
// incident edges into a single logical fan-out point, and returns the
// resulting dummy-free Drawing.
func Reconcile(req *Request) (*Drawing, error) {
	dummies := make(map[string]*Child)
	realChildren := make([]*Child, 0, len(req.Children))
	for _, c := range req.Children {
		if c.IsDummy {
			dummies[c.ID] = c
		} else {
			realChildren = append(realChildren, c)
		}
	}

	incidentByDummy := make(map[string][]*Edge)
	var dummyIDs []string
	for _, e := range req.Edges {
		if _, ok := dummies[e.SourceNode]; ok {
			incidentByDummy[e.SourceNode] = append(incidentByDummy[e.SourceNode], e)
		}
		if _, ok := dummies[e.TargetNode]; ok {
			incidentByDummy[e.TargetNode] = append(incidentByDummy[e.TargetNode], e)
		}
	}
	for id := range incidentByDummy {
		dummyIDs = append(dummyIDs, id)
	}
	sort.Strings(dummyIDs)

	var junctions []Point
	processed := 0
	for _, dummyID := range dummyIDs {
		if processed >= dummySafetyCap {
			break
		}
		processed++

		incident := incidentByDummy[dummyID]
		anchor := selectAnchor(dummyID, incident)
		j := anchorJunction(anchor, dummies[dummyID])

		directions := make(map[string]bool)
		for _, e := range incident {
			isTarget := e.TargetNode == dummyID
			rewriteTerminus(e, isTarget, j)
			if isTarget {
				e.TargetNode, e.TargetPort = "", ""
			} else {
				e.SourceNode, e.SourcePort = "", ""
			}
			directions[directionFromJunction(e, isTarget, j)] = true
		}

		if len(directions) != 2 {
			junctions = append(junctions, j)
		}
	}

	for _, e := range req.Edges {
		if err := validateOrthogonal(e); err != nil {
			return nil, fmt.Errorf("layout: edge %s: %w", e.ID, err)
		}
	}

	return &Drawing{Children: realChildren, Edges: req.Edges, Junctions: junctions}, nil
}

// selectAnchor picks the incident edge whose junction point best represents
// the dummy's true fan-out geometry.
func selectAnchor(dummyID string, incident []*Edge) *Edge {
	best := incident[0]
	bestScore := anchorScore(dummyID, best)
	for _, e := range incident[1:] {
		if score := anchorScore(dummyID, e); score < bestScore {
			best, bestScore = e, score
		}
	}
	return best
}

func anchorScore(dummyID string, e *Edge) int {
	if len(e.JunctionPoints) == 0 {
		return sentinelScore
	}
	if e.TargetNode == dummyID {
		return -len(e.Bends) // prefer the edge with the latest (highest-index) bend
	}
	return len(e.Bends) // prefer the edge with the earliest (lowest-index) bend
}

// anchorJunction returns the anchor's first junction point, falling back to
// the dummy's own computed position when the anchor (and therefore every
// incident edge) carries no junction point at all.
func anchorJunction(anchor *Edge, dummy *Child) Point {
	if len(anchor.JunctionPoints) > 0 {
		return anchor.JunctionPoints[0]
	}
	return Point{X: dummy.X, Y: dummy.Y}
}

// rewriteTerminus moves the edge's dummy-side endpoint to j and drops any
// bend point now co-located with it.
func rewriteTerminus(e *Edge, isTarget bool, j Point) {
	if isTarget {
		e.EndPoint = j
	} else {
		e.StartPoint = j
	}
	filtered := e.Bends[:0]
	for _, b := range e.Bends {
		if b != j {
			filtered = append(filtered, b)
		}
	}
	e.Bends = filtered
}

// directionFromJunction reports the compass direction in which e leaves j,
// looking at the first point of e on the non-dummy side.
func directionFromJunction(e *Edge, isTarget bool, j Point) string {
	var adjacent Point
	if isTarget {
		if n := len(e.Bends); n > 0 {
			adjacent = e.Bends[n-1]
		} else {
			adjacent = e.StartPoint
		}
	} else {
		if len(e.Bends) > 0 {
			adjacent = e.Bends[0]
		} else {
			adjacent = e.EndPoint
		}
	}
	switch {
	case adjacent.X > j.X:
		return "right"
	case adjacent.X < j.X:
		return "left"
	case adjacent.Y > j.Y:
		return "down"
	case adjacent.Y < j.Y:
		return "up"
	default:
		return "none"
	}
}

// validateOrthogonal walks e's full polyline and rejects a zero-length or
// diagonal step, which can only mean the layout engine produced geometry
// this pipeline does not support.
func validateOrthogonal(e *Edge) error {
	pts := make([]Point, 0, len(e.Bends)+2)
	pts = append(pts, e.StartPoint)
	pts = append(pts, e.Bends...)
	pts = append(pts, e.EndPoint)

	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		if a == b {
			return errors.New("start and end are the same")
		}
		if a.X != b.X && a.Y != b.Y {
			return errors.New("start and end aren't orthogonal")
		}
	}
	return nil
}
