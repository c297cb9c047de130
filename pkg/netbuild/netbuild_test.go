package netbuild

import (
	"strings"
	"testing"

	"github.com/netlistsvg/netlistsvg-go/pkg/netlist"
	"github.com/netlistsvg/netlistsvg-go/pkg/skin"
)

const lateralSkin = `<svg xmlns:s="skin">
<g s:type="generic" s:width="30" s:height="20">
  <g s:pid="A" s:x="0" s:y="10" s:position="left"/>
  <g s:pid="Y" s:x="30" s:y="10" s:position="right"/>
</g>
<g s:type="busbar" s:width="10" s:height="10">
  <g s:pid="B" s:x="5" s:y="5" s:dir="lateral"/>
</g>
</svg>`

func TestBuildClassifiesDriversRidersAndLaterals(t *testing.T) {
	lib, err := skin.Parse(strings.NewReader(lateralSkin))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	mod := netlist.NewFlatModule()
	u1 := netlist.NewCell("u1", "$_not_")
	u1.AddOutput("Y", netlist.SignalVector{netlist.IntSignal(1)})
	u2 := netlist.NewCell("u2", "$_not_")
	u2.AddInput("A", netlist.SignalVector{netlist.IntSignal(1)})
	bus := netlist.NewCell("bus1", "busbar")
	bus.AddInput("B", netlist.SignalVector{netlist.IntSignal(1)})
	mod.AddNode(u1)
	mod.AddNode(u2)
	mod.AddNode(bus)

	if err := Build(mod, lib); err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(mod.Wires) != 1 {
		t.Fatalf("want 1 wire (all three ports share signal 1), got %d", len(mod.Wires))
	}
	w := mod.Wires[0]
	if len(w.Drivers) != 1 || len(w.Riders) != 1 || len(w.Laterals) != 1 {
		t.Fatalf("want 1 driver, 1 rider, 1 lateral, got d=%d r=%d l=%d", len(w.Drivers), len(w.Riders), len(w.Laterals))
	}
	if u1.Outputs["Y"].Wire != w {
		t.Fatal("want the driver port's Wire back-reference set")
	}
}
