package flatten

import (
	"strings"
	"testing"

	"github.com/netlistsvg/netlistsvg-go/pkg/netlist"
	"github.com/netlistsvg/netlistsvg-go/pkg/skin"
)

const genericSkin = `<svg xmlns:s="skin">
<g s:type="generic" s:width="30" s:height="20">
  <g s:pid="A" s:x="0" s:y="10" s:position="left"/>
  <g s:pid="Y" s:x="30" s:y="10" s:position="right"/>
</g>
</svg>`

func TestFlattenPromotesPortsToTerminalCells(t *testing.T) {
	lib, err := skin.Parse(strings.NewReader(genericSkin))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	mod := &netlist.Module{
		Ports: map[string]*netlist.RawPort{
			"a": {Direction: "input", Bits: netlist.SignalVector{netlist.IntSignal(1)}},
			"y": {Direction: "output", Bits: netlist.SignalVector{netlist.IntSignal(2)}},
		},
		Cells: map[string]*netlist.RawCell{
			"u1": {
				Type:           "$_not_",
				PortDirections: map[string]string{"A": "input", "Y": "output"},
				Connections: map[string]netlist.SignalVector{
					"A": {netlist.IntSignal(1)},
					"Y": {netlist.IntSignal(2)},
				},
			},
		},
	}

	flat, err := Flatten(mod, lib)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}

	if flat.FindNode("a") == nil || flat.FindNode("a").Type != netlist.TypeInputExt {
		t.Fatal("want an inputExt terminal cell for port a")
	}
	if flat.FindNode("y") == nil || flat.FindNode("y").Type != netlist.TypeOutputExt {
		t.Fatal("want an outputExt terminal cell for port y")
	}
	if flat.FindNode("u1") == nil {
		t.Fatal("want the original cell preserved")
	}
}

func TestFlattenInfersDirectionFromTemplateWhenUndeclared(t *testing.T) {
	lib, err := skin.Parse(strings.NewReader(genericSkin))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	mod := &netlist.Module{
		Ports: map[string]*netlist.RawPort{},
		Cells: map[string]*netlist.RawCell{
			"u1": {
				Type: "$_not_",
				Connections: map[string]netlist.SignalVector{
					"A": {netlist.IntSignal(1)},
					"Y": {netlist.IntSignal(2)},
				},
			},
		},
	}

	flat, err := Flatten(mod, lib)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	cell := flat.FindNode("u1")
	if _, ok := cell.Inputs["A"]; !ok {
		t.Fatal("want A inferred as an input from the template's left position")
	}
	if _, ok := cell.Outputs["Y"]; !ok {
		t.Fatal("want Y inferred as an output from the template's right position")
	}
}
