package skin

import (
	"fmt"
	"io"
	"strconv"
)

// PortTemplate describes one pin of a cell template: its name, anchor
// coordinates, and classification.
type PortTemplate struct {
	PID      string
	X, Y     float64
	Position string // "left", "right", "top", "bottom", or "" when s:dir=lateral
	Lateral  bool
}

// InferredDirection reports "input" for a left/top pin position, "output"
// for right/bottom, or "" when the position doesn't determine a direction.
func (pt *PortTemplate) InferredDirection() string {
	switch pt.Position {
	case "left", "top":
		return "input"
	case "right", "bottom":
		return "output"
	default:
		return ""
	}
}

// CellTemplate is one parsed skin template: its drawing subtree, nominal
// body geometry, and classified ports.
type CellTemplate struct {
	TypeName string
	Width    float64
	Height   float64
	Node     *Node
	Ports    []*PortTemplate
}

// PortByPID returns the port template with the given pin name, or nil.
func (ct *CellTemplate) PortByPID(pid string) *PortTemplate {
	for _, p := range ct.Ports {
		if p.PID == pid {
			return p
		}
	}
	return nil
}

// Library is a parsed skin document: its cell templates (keyed by type name
// and every declared alias) and its recognized render options.
type Library struct {
	Root                *Node
	Templates           map[string]*CellTemplate
	Options             map[string]any
	LayoutEngineOptions map[string]any

	firstGeneric *CellTemplate
}

// Parse reads a skin document and builds its template library.
func Parse(r io.Reader) (*Library, error) {
	root, err := ParseTree(r)
	if err != nil {
		return nil, err
	}
	return FromTree(root)
}

// FromTree builds a Library from an already-parsed skin tree, for callers
// that receive a pre-parsed drawing tree directly.
func FromTree(root *Node) (*Library, error) {
	lib := &Library{
		Root:                root,
		Templates:           make(map[string]*CellTemplate),
		Options:             make(map[string]any),
		LayoutEngineOptions: make(map[string]any),
	}

	if props := root.Find("s:properties"); props != nil {
		for k, v := range props.Attrs {
			lib.Options[k] = coerce(v)
		}
		if engine := props.Find("s:layoutEngine"); engine != nil {
			for k, v := range engine.Attrs {
				lib.LayoutEngineOptions[k] = coerce(v)
			}
		}
	}

	for _, child := range root.Children {
		if child.Kind != KindElement {
			continue
		}
		typeName, ok := child.Attr("s:type")
		if !ok {
			continue
		}
		tmpl := buildTemplate(typeName, child)
		lib.register(typeName, tmpl)
		for _, alias := range child.FindAll("s:alias") {
			if val, ok := alias.Attr("val"); ok {
				lib.register(val, tmpl)
			}
		}
	}

	return lib, nil
}

func (l *Library) register(name string, tmpl *CellTemplate) {
	l.Templates[name] = tmpl
	if tmpl.TypeName == "generic" && l.firstGeneric == nil {
		l.firstGeneric = tmpl
	}
}

func buildTemplate(typeName string, node *Node) *CellTemplate {
	tmpl := &CellTemplate{
		TypeName: typeName,
		Node:     node,
		Width:    attrFloat(node, "s:width", 0),
		Height:   attrFloat(node, "s:height", 0),
	}
	for _, pinNode := range node.FindAllWithAttr("s:pid") {
		pid, _ := pinNode.Attr("s:pid")
		pt := &PortTemplate{
			PID: pid,
			X:   attrFloat(pinNode, "s:x", 0),
			Y:   attrFloat(pinNode, "s:y", 0),
		}
		if dir, ok := pinNode.Attr("s:dir"); ok && dir == "lateral" {
			pt.Lateral = true
		}
		if pos, ok := pinNode.Attr("s:position"); ok {
			pt.Position = pos
		}
		tmpl.Ports = append(tmpl.Ports, pt)
	}
	return tmpl
}

func attrFloat(n *Node, name string, def float64) float64 {
	v, ok := n.Attr(name)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func coerce(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// Lookup finds the template for a cell type, falling back to the first
// generic template when the type is unknown.
func (l *Library) Lookup(cellType string) (*CellTemplate, error) {
	if t, ok := l.Templates[cellType]; ok {
		return t, nil
	}
	if l.firstGeneric != nil {
		return l.firstGeneric, nil
	}
	return nil, fmt.Errorf("skin: no template for type %q and no generic fallback available", cellType)
}

func (l *Library) boolOption(name string, def bool) bool {
	v, ok := l.Options[name]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// ConstantsEnabled reports whether constant synthesis should run.
func (l *Library) ConstantsEnabled() bool { return l.boolOption("constants", true) }

// SplitsAndJoinsEnabled reports whether split/join synthesis should run,
// defaulting to enabled unless the skin explicitly disables it.
func (l *Library) SplitsAndJoinsEnabled() bool { return l.boolOption("splitsAndJoins", true) }

// GenericsLaterals reports whether every port of a generic template should
// be treated as lateral.
func (l *Library) GenericsLaterals() bool { return l.boolOption("genericsLaterals", false) }

// GenericPortGap returns the vertical spacing used between replicated ports
// on generic/split/join templates, read from the "genericPortGap" option
// when present.
func (l *Library) GenericPortGap() float64 {
	if v, ok := l.Options["genericPortGap"]; ok {
		if f, ok := v.(float64); ok && f > 0 {
			return f
		}
	}
	return 20
}

// PortIsLateral classifies a pin by name within a cell template.
func (l *Library) PortIsLateral(tmpl *CellTemplate, pid string) bool {
	if tmpl == nil {
		return false
	}
	if pt := tmpl.PortByPID(pid); pt != nil && pt.Lateral {
		return true
	}
	return tmpl.TypeName == "generic" && l.GenericsLaterals()
}
