package model

// DefaultSpaceWidth is the fallback single-space advance width used when
// a fragment carries neither a space width nor a usable font size.
const DefaultSpaceWidth = 2.5

// TextFragment is one contiguous run of text sharing a font and baseline
// position. Fragments are immutable values produced by an external
// decoder; coordinates are in the source's geometry units with Y growing
// upward.
type TextFragment struct {
	Text string

	// Start and End are the baseline origin and baseline end points.
	Start Point
	End   Point

	// FontID is the decoder's resource identifier for the font;
	// FontName is the (possibly subset-prefixed) font name.
	FontID   string
	FontName string

	// FontSize is the nominal font size, when the decoder knows it.
	FontSize float64

	// SpaceWidth is the advance width of a single space in this
	// fragment's font and size. Zero when the decoder could not
	// measure it; use EffectiveSpaceWidth.
	SpaceWidth float64

	// Page is the 1-based page number the fragment appeared on.
	Page int
}

// Width returns the horizontal extent of the fragment's baseline.
func (f TextFragment) Width() float64 {
	return f.End.X - f.Start.X
}

// EffectiveSpaceWidth returns the fragment's space width, falling back
// to half the font size and finally to DefaultSpaceWidth so that
// spacing inference stays well-defined for fragments with missing
// metrics.
func (f TextFragment) EffectiveSpaceWidth() float64 {
	if f.SpaceWidth > 0 {
		return f.SpaceWidth
	}
	if f.FontSize > 0 {
		return f.FontSize * 0.5
	}
	return DefaultSpaceWidth
}

// EffectiveFontSize returns the fragment's font size, estimated from
// the space width when the decoder did not report one.
func (f TextFragment) EffectiveFontSize() float64 {
	if f.FontSize > 0 {
		return f.FontSize
	}
	if f.SpaceWidth > 0 {
		return f.SpaceWidth * 2
	}
	return DefaultSpaceWidth * 2
}

// BBox returns an approximate bounding box for the fragment: the
// baseline extent horizontally, one nominal font size vertically.
func (f TextFragment) BBox() BBox {
	x0 := f.Start.X
	x1 := f.End.X
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	return BBox{
		X:      x0,
		Y:      f.Start.Y,
		Width:  x1 - x0,
		Height: f.EffectiveFontSize(),
	}
}
