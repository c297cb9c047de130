// Package schematic orchestrates the netlist-to-drawing pipeline: flatten,
// synthesize constants, synthesize splits/joins, build nets, lay out, and
// assemble the final drawing.
package schematic
