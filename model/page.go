package model

// ObjectSignal is a raw per-object revision signal from the decoder. A
// nonzero Generation means the object was overwritten in a later
// incremental revision of the source file.
type ObjectSignal struct {
	ObjectID   int
	Generation int
}

// ResourceSummary lists the non-text resources the decoder observed on
// a page.
type ResourceSummary struct {
	// Images are image resource names.
	Images []string

	// FormFields maps form field names to their current values.
	FormFields map[string]string

	// Annotations are annotation subtype names.
	Annotations []string
}

// PageInput is the decoder's complete output for one page: the ordered
// fragment stream plus raw revision signals and resource summaries.
// Fragment order is the decoder's emission order and is meaningful only
// as a tie-break for coincident coordinates.
type PageInput struct {
	// Number is the 1-based page number.
	Number int

	// Width and Height are the page media dimensions.
	Width  float64
	Height float64

	Fragments []TextFragment
	Objects   []ObjectSignal
	Resources ResourceSummary
}
