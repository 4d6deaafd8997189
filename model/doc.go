// Package model defines the data types shared by every stage of the
// reconstruction pipeline.
//
// The central type is [TextFragment]: one contiguous run of text with a
// baseline position, font identity, and nominal single-space advance
// width, as emitted by an external format decoder. Fragments are
// immutable values; they are produced once per reconstruction pass and
// consumed by the layout, font, segment, and forensic packages.
//
// [PageInput] bundles a page's fragment stream with the decoder's raw
// per-object revision signals and resource summaries, and is the input
// contract for every higher-level operation.
//
// # Geometry
//
// Geometric primitives support position and layout calculations:
//
//   - [BBox] - bounding box with intersection, union, and overlap calculations
//   - [Point] - 2D point with distance calculation
package model
