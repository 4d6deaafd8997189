// Package layout reconstructs human reading order from positioned text
// fragments.
//
// The source format carries no logical structure: lines, word spacing,
// indentation, and paragraph breaks all have to be inferred from glyph
// geometry and font metrics. The package does this in two stages:
//
//   - [Assembler] - groups a page's fragments into baseline-aligned lines
//   - [Reconstructor] - orders lines top-to-bottom and renders them as
//     plain text with inferred inter-word spacing, indentation, and
//     paragraph breaks
//
// Both stages are pure computation over an input fragment list: no
// shared mutable state, safe to run on arbitrary parallel workers.
//
// # Determinism
//
// Reconstruction is deterministic: the same multiset of fragments
// yields byte-identical text regardless of input stream order. The one
// exception is fragments with coincident coordinates, where the
// decoder's emission order is the tie-break and is preserved exactly.
//
// # Configuration
//
// Every heuristic threshold lives in [LineConfig] and [LayoutConfig]
// with documented defaults:
//
//	config := layout.DefaultLayoutConfig()
//	config.ParagraphGap = 14
//	r := layout.NewReconstructorWithConfig(layout.DefaultLineConfig(), config)
//	page := r.Page(input)
package layout
