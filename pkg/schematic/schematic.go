package schematic

import (
	"context"
	"fmt"

	"github.com/netlistsvg/netlistsvg-go/pkg/constsynth"
	"github.com/netlistsvg/netlistsvg-go/pkg/drawing"
	"github.com/netlistsvg/netlistsvg-go/pkg/flatten"
	"github.com/netlistsvg/netlistsvg-go/pkg/layout"
	"github.com/netlistsvg/netlistsvg-go/pkg/netbuild"
	"github.com/netlistsvg/netlistsvg-go/pkg/netlist"
	"github.com/netlistsvg/netlistsvg-go/pkg/skin"
	"github.com/netlistsvg/netlistsvg-go/pkg/splitjoin"
)

// Renderer turns a decoded netlist document into a drawing tree against a
// given skin library.
//
// Contract: every stage up through net reconstruction runs synchronously and
// uncancelably; the one deferred boundary is the layout engine, whose
// context is honored for cancellation and nothing else in the pipeline
// checks ctx again.
type Renderer interface {
	Render(ctx context.Context, doc *netlist.Document, skinLib *skin.Library, cfg *Config) (*skin.Node, error)
}

// DefaultRenderer is the reference Renderer, wired to a concrete layout
// engine. A nil engine means Render builds a LayeredEngine from the Config's
// spacing on every call.
type DefaultRenderer struct {
	engine layout.Engine
}

// NewRenderer returns a DefaultRenderer that builds a layered-graph engine
// sized from each call's Config.
func NewRenderer() *DefaultRenderer {
	return &DefaultRenderer{}
}

// NewRendererWithEngine returns a DefaultRenderer backed by a caller-supplied
// layout engine, for tests and alternative layout strategies. The supplied
// engine's own spacing is used regardless of Config.Layout.
func NewRendererWithEngine(engine layout.Engine) *DefaultRenderer {
	return &DefaultRenderer{engine: engine}
}

// Render runs the full pipeline: flatten the top module, synthesize
// constants and splits/joins per the skin's options, reconstruct nets,
// build a layout request, lay it out, reconcile dummies into junctions, and
// assemble the final drawing.
func (r *DefaultRenderer) Render(ctx context.Context, doc *netlist.Document, skinLib *skin.Library, cfg *Config) (*skin.Node, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("schematic: invalid config: %w", err)
	}

	_, top, err := doc.TopModule()
	if err != nil {
		return nil, fmt.Errorf("schematic: %w", err)
	}

	flat, err := flatten.Flatten(top, skinLib)
	if err != nil {
		return nil, fmt.Errorf("schematic: flatten: %w", err)
	}

	if skinLib.ConstantsEnabled() {
		constsynth.Synthesize(flat)
	}
	if skinLib.SplitsAndJoinsEnabled() {
		splitjoin.Synthesize(flat)
	}

	if err := netbuild.Build(flat, skinLib); err != nil {
		return nil, fmt.Errorf("schematic: net build: %w", err)
	}

	req, err := layout.BuildRequest(flat, skinLib)
	if err != nil {
		return nil, fmt.Errorf("schematic: layout request: %w", err)
	}

	engine := r.engine
	if engine == nil {
		engine = layout.NewLayeredEngine(cfg.Layout.HSpacing, cfg.Layout.VSpacing)
	}
	laidOut, err := engine.Layout(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("schematic: layout: %w", err)
	}

	drawn, err := layout.Reconcile(laidOut)
	if err != nil {
		return nil, fmt.Errorf("schematic: reconcile: %w", err)
	}

	out, err := drawing.NewAssembler(skinLib).Assemble(flat, drawn)
	if err != nil {
		return nil, fmt.Errorf("schematic: assemble: %w", err)
	}
	return out, nil
}
