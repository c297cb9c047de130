// Package splitjoin computes the minimal cover of bus-split and bus-join
// cells so that every consumer's bit pattern can be assembled from declared
// drivers plus synthesized splits/joins. This is the hardest
// subsystem in the pipeline: a greedy longest-contiguous-match search over
// comma-delimited canonical vector strings.
package splitjoin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/netlistsvg/netlistsvg-go/pkg/netlist"
)

// segment is one contiguous run of a target vector, satisfied either by an
// exact/partial driver match or by another (recursively resolved) consumer.
type segment struct {
	pos, length int
	source      netlist.SignalVector
	srcStart    int
}

type state struct {
	mod *netlist.FlatModule

	pool        map[string]netlist.SignalVector // canonical -> vector of every available source (drivers, splits, joins)
	consumers   map[string]netlist.SignalVector // canonical -> vector, every distinct rider vector in the module
	resolving   map[string]bool
	splitCells  map[string]*netlist.Cell // keyed by source canonical
	joinCells   map[string]*netlist.Cell // keyed by target canonical
}

// Synthesize mutates mod in place, appending $_split_ and $_join_ cells so
// that every input port's signal vector is fully covered by declared
// drivers plus the newly synthesized cells.
func Synthesize(mod *netlist.FlatModule) {
	s := &state{
		mod:        mod,
		pool:       make(map[string]netlist.SignalVector),
		consumers:  make(map[string]netlist.SignalVector),
		resolving:  make(map[string]bool),
		splitCells: make(map[string]*netlist.Cell),
		joinCells:  make(map[string]*netlist.Cell),
	}

	// Snapshot the pre-synthesis node list: drivers and rider targets are
	// both fixed before any split/join cell is appended.
	nodes := make([]*netlist.Cell, len(mod.Nodes))
	copy(nodes, mod.Nodes)

	var targets []netlist.SignalVector
	for _, cell := range nodes {
		for _, key := range cell.SortedOutputKeys() {
			v := cell.Outputs[key].Value
			s.pool[v.Canonical()] = v
		}
	}
	for _, cell := range nodes {
		for _, key := range cell.SortedInputKeys() {
			v := cell.Inputs[key].Value
			if len(v) == 0 {
				continue
			}
			c := v.Canonical()
			if _, ok := s.consumers[c]; !ok {
				s.consumers[c] = v
				targets = append(targets, v)
			}
		}
	}

	for _, t := range targets {
		s.resolve(t)
	}
}

// resolve ensures T is fully covered by the pool, synthesizing splits and
// (if T decomposes into more than one source) a join.
func (s *state) resolve(t netlist.SignalVector) {
	tc := t.Canonical()
	if _, ok := s.pool[tc]; ok {
		return
	}
	if s.resolving[tc] {
		return // cyclic dependency in a malformed netlist; terminate rather than loop
	}
	s.resolving[tc] = true

	segments := s.decompose(t)

	if len(segments) == 1 && segments[0].pos == 0 && segments[0].length == len(t) {
		s.ensureSplitOutput(segments[0])
		s.pool[tc] = t
		return
	}

	join := s.getOrCreateJoin(tc, t)
	for _, seg := range segments {
		s.ensureSplitOutput(seg)
		name := rangeName(seg.pos, seg.pos+seg.length-1)
		if _, exists := join.Inputs[name]; !exists {
			join.AddInput(name, t[seg.pos:seg.pos+seg.length])
		}
	}
	s.pool[tc] = t
}

// decompose finds an ordered cover of t's bit positions, preferring the
// longest available contiguous match at each position and falling back to
// single-bit matches when nothing length>=2 is found.
func (s *state) decompose(t netlist.SignalVector) []segment {
	var segs []segment
	pos := 0
	for pos < len(t) {
		maxLen := len(t) - pos
		matched := false
		for length := maxLen; length >= 2; length-- {
			sub := t[pos : pos+length]
			if src, offset, ok := s.findSource(sub, t); ok {
				segs = append(segs, segment{pos, length, src, offset})
				pos += length
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		sub := t[pos : pos+1]
		if src, offset, ok := s.findSource(sub, t); ok {
			segs = append(segs, segment{pos, 1, src, offset})
			pos++
			continue
		}

		// No driver or consumer anywhere carries this bit: degrade to a
		// trivial self-contained 1-bit segment rather than failing.
		segs = append(segs, segment{pos, 1, sub.Clone(), 0})
		pos++
	}
	return segs
}

// findSource looks for sub as a contiguous run within the driver pool first,
// then within other consumer vectors, recursively resolving the consumer it
// was found in.
func (s *state) findSource(sub, self netlist.SignalVector) (netlist.SignalVector, int, bool) {
	core := sub.Canonical()

	for _, v := range s.pool {
		if offset, ok := indexInCanonical(v.Canonical(), core); ok {
			return v, offset, true
		}
	}

	selfCanonical := self.Canonical()
	for c, v := range s.consumers {
		if c == selfCanonical {
			continue
		}
		if offset, ok := indexInCanonical(v.Canonical(), core); ok {
			s.resolve(v)
			if resolved, ok := s.pool[c]; ok {
				if off, ok := indexInCanonical(resolved.Canonical(), core); ok {
					return resolved, off, true
				}
			}
			return v, offset, true
		}
	}

	return nil, 0, false
}

// ensureSplitOutput makes seg's source range obtainable: if seg spans the
// entire source vector, nothing is needed (the source is already available
// whole); otherwise a $_split_ cell exposing that sub-range is created (or
// reused) and the sub-range is registered as an available source in its own
// right.
func (s *state) ensureSplitOutput(seg segment) {
	if seg.length == len(seg.source) {
		return
	}

	key := "$split$" + seg.source.Canonical()
	cell, ok := s.splitCells[key]
	if !ok {
		cell = netlist.NewCell(key, netlist.TypeSplit)
		cell.AddInput("A", seg.source.Clone())
		s.mod.AddNode(cell)
		s.splitCells[key] = cell
	}

	rangeVec := seg.source[seg.srcStart : seg.srcStart+seg.length]
	name := rangeName(seg.srcStart, seg.srcStart+seg.length-1)
	if _, exists := cell.Outputs[name]; !exists {
		cell.AddOutput(name, rangeVec.Clone())
	}
	s.pool[rangeVec.Canonical()] = rangeVec
}

func (s *state) getOrCreateJoin(targetCanonical string, t netlist.SignalVector) *netlist.Cell {
	key := "$join$" + targetCanonical
	if cell, ok := s.joinCells[key]; ok {
		return cell
	}
	cell := netlist.NewCell(key, netlist.TypeJoin)
	cell.AddOutput("Y", t.Clone())
	s.mod.AddNode(cell)
	s.joinCells[key] = cell
	return cell
}

// indexInCanonical searches haystack (a comma-framed canonical vector
// string) for needle (another comma-framed canonical string) and, if found,
// returns the bit offset at which the match begins, computed by counting
// commas before the match.
func indexInCanonical(haystack, needle string) (offset int, ok bool) {
	idx := strings.Index(haystack, needle)
	if idx < 0 {
		return 0, false
	}
	return strings.Count(haystack[:idx], ","), true
}

// rangeName renders a bit range as "i" for a single bit or "i:j" for an
// inclusive range.
func rangeName(i, j int) string {
	if i == j {
		return strconv.Itoa(i)
	}
	return fmt.Sprintf("%d:%d", i, j)
}
