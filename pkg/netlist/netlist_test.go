package netlist

import (
	"encoding/json"
	"testing"
)

func TestDecodeTopModuleFallsBackToFirstByInsertionOrder(t *testing.T) {
	doc, err := Decode([]byte(`{
		"modules": {
			"second": {"ports": {}, "cells": {}},
			"first": {"ports": {}, "cells": {}}
		}
	}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	name, _, err := doc.TopModule()
	if err != nil {
		t.Fatalf("TopModule: %v", err)
	}
	if name != "second" {
		t.Fatalf("want first-by-insertion-order module %q, got %q", "second", name)
	}
}

func TestDecodeTopModuleHonorsTopAttribute(t *testing.T) {
	doc, err := Decode([]byte(`{
		"modules": {
			"a": {"ports": {}, "cells": {}},
			"b": {"ports": {}, "cells": {}, "attributes": {"top": 1}}
		}
	}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	name, _, err := doc.TopModule()
	if err != nil {
		t.Fatalf("TopModule: %v", err)
	}
	if name != "b" {
		t.Fatalf("want module marked top (%q), got %q", "b", name)
	}
}

func TestTopModuleRejectsDocumentWithNoModules(t *testing.T) {
	doc, err := Decode([]byte(`{"modules": {}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, _, err := doc.TopModule(); err == nil {
		t.Fatal("want an error when the document has no modules at all")
	}
}

func TestSignalUnmarshalDistinguishesLiteralsFromIntegers(t *testing.T) {
	var vec SignalVector
	if err := json.Unmarshal([]byte(`[1, "0", "1", 2]`), &vec); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(vec) != 4 {
		t.Fatalf("want 4 signals, got %d", len(vec))
	}
	if vec[0].IsLiteral() || vec[0].Int() != 1 {
		t.Fatalf("want signal 0 to be integer 1, got %+v", vec[0])
	}
	if !vec[1].IsLiteral() || vec[1].Literal() != "0" {
		t.Fatalf("want signal 1 to be literal \"0\", got %+v", vec[1])
	}
	if !vec.HasLiteral() {
		t.Fatal("want HasLiteral true while literal bits remain")
	}
}

func TestSignalVectorCanonicalIsCommaFramed(t *testing.T) {
	v := SignalVector{IntSignal(10), IntSignal(11)}
	if got, want := v.Canonical(), ",10,11,"; got != want {
		t.Fatalf("Canonical() = %q, want %q", got, want)
	}
}
