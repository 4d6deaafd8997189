package layout

import (
	"math"
	"sort"

	"github.com/chanfle/docrecon/model"
)

// Line represents a single reconstructed line of text on a page
type Line struct {
	// Y is the line's representative baseline: the baseline of the
	// fragment that opened the line. All member fragments are within
	// the configured vertical tolerance of it.
	Y float64

	// Fragments are the member fragments in ascending X order
	// (decoder stream order for coincident X).
	Fragments []model.TextFragment

	// BBox is the bounding box of the line
	BBox model.BBox

	// Text is the rendered line text with inferred inter-fragment
	// spacing. Filled in by the Reconstructor.
	Text string

	// seq is the creation order of the line during assembly. It breaks
	// ties between lines sharing a baseline, preserving decoder
	// emission order.
	seq int
}

// X0 returns the line's leftmost X coordinate
func (l Line) X0() float64 {
	return l.BBox.X
}

// LineConfig holds configuration for line assembly
type LineConfig struct {
	// VerticalTolerance is the maximum |ΔY| between a fragment's
	// baseline and a line's representative Y for the fragment to join
	// that line (default: 1.8 geometry units)
	VerticalTolerance float64
}

// DefaultLineConfig returns sensible default configuration
func DefaultLineConfig() LineConfig {
	return LineConfig{
		VerticalTolerance: 1.8,
	}
}

// Assembler groups a page's text fragments into baseline-aligned lines
type Assembler struct {
	config LineConfig
}

// NewAssembler creates a new assembler with default configuration
func NewAssembler() *Assembler {
	return &Assembler{
		config: DefaultLineConfig(),
	}
}

// NewAssemblerWithConfig creates an assembler with custom configuration
func NewAssemblerWithConfig(config LineConfig) *Assembler {
	return &Assembler{
		config: config,
	}
}

// Assemble groups fragments into lines. Each fragment joins the line
// whose representative Y is nearest its baseline, provided the distance
// is within the vertical tolerance; otherwise it opens a new line at
// its own baseline. When two candidate lines are equally near, the most
// recently created one wins.
//
// The result is unordered; callers sort descending by Y for reading
// order. An empty fragment list yields an empty result, not an error.
func (a *Assembler) Assemble(fragments []model.TextFragment) []Line {
	if len(fragments) == 0 {
		return nil
	}

	// Normalize stream order so that reconstruction does not depend on
	// the decoder's emission order. Strict comparisons keep coincident
	// coordinates in stream order.
	sorted := make([]model.TextFragment, 0, len(fragments))
	for _, f := range fragments {
		if !validFragment(f) {
			continue
		}
		sorted = append(sorted, f)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start.Y != sorted[j].Start.Y {
			return sorted[i].Start.Y > sorted[j].Start.Y
		}
		return sorted[i].Start.X < sorted[j].Start.X
	})

	var lines []Line
	for _, frag := range sorted {
		best := -1
		bestDelta := math.Inf(1)
		for i := range lines {
			delta := math.Abs(frag.Start.Y - lines[i].Y)
			if delta > a.config.VerticalTolerance {
				continue
			}
			// <= prefers the most recently created line on an exact tie
			if delta <= bestDelta {
				best = i
				bestDelta = delta
			}
		}

		if best >= 0 {
			lines[best].Fragments = append(lines[best].Fragments, frag)
		} else {
			lines = append(lines, Line{
				Y:         frag.Start.Y,
				Fragments: []model.TextFragment{frag},
				seq:       len(lines),
			})
		}
	}

	for i := range lines {
		finishLine(&lines[i])
	}

	return lines
}

// finishLine sorts a line's fragments by X and computes its bounding
// box. The sort is stable with a strict comparison, so fragments at
// coincident X positions keep decoder stream order.
func finishLine(line *Line) {
	sort.SliceStable(line.Fragments, func(i, j int) bool {
		return line.Fragments[i].Start.X < line.Fragments[j].Start.X
	})

	bbox := line.Fragments[0].BBox()
	for _, f := range line.Fragments[1:] {
		bbox = bbox.Union(f.BBox())
	}
	line.BBox = bbox
}

// validFragment reports whether a fragment's geometry is usable.
// Fragments with non-finite coordinates are dropped rather than
// rejected, degrading the page instead of failing it.
func validFragment(f model.TextFragment) bool {
	for _, v := range []float64{f.Start.X, f.Start.Y, f.End.X, f.End.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
