package splitjoin

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/netlistsvg/netlistsvg-go/pkg/netlist"
)

// TestSynthesizeSplitCoversPartition checks that for a bus driven whole by
// one cell and consumed piecewise by several others, exactly one split cell
// is synthesized, it has one output per consumer range, and no join is
// needed.
func TestSynthesizeSplitCoversPartition(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 8).Draw(rt, "n")
		numPieces := rapid.IntRange(2, n).Draw(rt, "numPieces")
		bounds := partitionBounds(rt, n, numPieces)

		mod := netlist.NewFlatModule()
		driver := netlist.NewCell("drv", "$_not_")
		full := intVector(0, n)
		driver.AddOutput("Y", full)
		mod.AddNode(driver)

		for i := 0; i < len(bounds)-1; i++ {
			consumer := netlist.NewCell("c"+string(rune('a'+i)), "$_not_")
			consumer.AddInput("A", full[bounds[i]:bounds[i+1]])
			mod.AddNode(consumer)
		}

		Synthesize(mod)

		var splits, joins int
		var splitCell *netlist.Cell
		for _, c := range mod.Nodes {
			switch c.Type {
			case netlist.TypeSplit:
				splits++
				splitCell = c
			case netlist.TypeJoin:
				joins++
			}
		}
		if joins != 0 {
			rt.Fatalf("want no join cells when one driver covers the whole bus, got %d", joins)
		}
		if splits != 1 {
			rt.Fatalf("want exactly 1 split cell, got %d", splits)
		}
		if len(splitCell.Outputs) != len(bounds)-1 {
			rt.Fatalf("want %d split outputs (one per consumer range), got %d", len(bounds)-1, len(splitCell.Outputs))
		}
	})
}

// partitionBounds draws numPieces-1 distinct interior cut points in (0,n)
// and returns the sorted boundary list [0, ..., n] of length numPieces+1.
func partitionBounds(rt *rapid.T, n, numPieces int) []int {
	if numPieces == 1 {
		return []int{0, n}
	}
	cuts := map[int]bool{}
	for len(cuts) < numPieces-1 {
		cuts[rapid.IntRange(1, n-1).Draw(rt, "cut")] = true
	}
	bounds := []int{0}
	for c := range cuts {
		bounds = append(bounds, c)
	}
	bounds = append(bounds, n)
	sortInts(bounds)
	return bounds
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

func intVector(start, n int) netlist.SignalVector {
	v := make(netlist.SignalVector, n)
	for i := 0; i < n; i++ {
		v[i] = netlist.IntSignal(start + i)
	}
	return v
}
