package skin

import (
	"strings"
	"testing"
)

const testDoc = `<svg xmlns:s="skin">
<s:properties constants="false" splitsAndJoins="true" genericPortGap="15"/>
<g s:type="generic" s:width="30" s:height="20">
  <s:alias val="$_not_"/>
  <g s:pid="A" s:x="0" s:y="10" s:position="left"/>
  <g s:pid="Y" s:x="30" s:y="10" s:position="right"/>
</g>
</svg>`

func TestParseRegistersTemplatesAndAliases(t *testing.T) {
	lib, err := Parse(strings.NewReader(testDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tmpl, err := lib.Lookup("$_not_")
	if err != nil {
		t.Fatalf("Lookup($_not_): %v", err)
	}
	if tmpl.TypeName != "generic" {
		t.Fatalf("want the aliased template's type to be generic, got %q", tmpl.TypeName)
	}
	if pt := tmpl.PortByPID("A"); pt == nil || pt.Position != "left" {
		t.Fatalf("want port A at position left, got %+v", pt)
	}
}

func TestParseReadsPropertiesOptions(t *testing.T) {
	lib, err := Parse(strings.NewReader(testDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if lib.ConstantsEnabled() {
		t.Fatal("want constants disabled per s:properties")
	}
	if !lib.SplitsAndJoinsEnabled() {
		t.Fatal("want splitsAndJoins enabled per s:properties")
	}
	if got := lib.GenericPortGap(); got != 15 {
		t.Fatalf("GenericPortGap() = %v, want 15", got)
	}
}

func TestLookupFallsBackToFirstGeneric(t *testing.T) {
	lib, err := Parse(strings.NewReader(testDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tmpl, err := lib.Lookup("$unknown_type")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if tmpl.TypeName != "generic" {
		t.Fatalf("want the generic fallback, got %q", tmpl.TypeName)
	}
}

func TestCloneIsIndependentOfSource(t *testing.T) {
	root, err := ParseTree(strings.NewReader(testDoc))
	if err != nil {
		t.Fatalf("ParseTree: %v", err)
	}
	clone := root.Clone()
	clone.SetAttr("width", "999")
	if _, ok := root.Attr("width"); ok {
		t.Fatal("mutating a clone's attribute must not affect the source")
	}
}
