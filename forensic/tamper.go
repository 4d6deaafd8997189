package forensic

import (
	"fmt"

	"github.com/chanfle/docrecon/layout"
	"github.com/chanfle/docrecon/model"
)

// ModificationType classifies a tamper indicator.
type ModificationType string

const (
	// ContentStreamModified marks an object overwritten in a later
	// incremental revision of the source file.
	ContentStreamModified ModificationType = "content_stream_modified"

	// TextOverlap marks two distinct fragments sharing a baseline
	// origin with different text, possible masking of original content.
	TextOverlap ModificationType = "text_overlap"

	// AbruptFontChange marks a font identity switch between adjacent
	// fragments in reading order, a likely localized insertion.
	AbruptFontChange ModificationType = "abrupt_font_change"

	// TextFlowGap marks an in-line horizontal gap larger than normal
	// word spacing but smaller than a full text block, possible
	// redaction or insertion.
	TextFlowGap ModificationType = "text_flow_gap"
)

// Modification is one flagged tamper indicator.
type Modification struct {
	Page        int
	Type        ModificationType
	Description string

	// BBox locates the indicator on the page when it has geometry.
	BBox *model.BBox

	// ObjectID and Generation identify the source object for
	// revision-based indicators; zero otherwise.
	ObjectID   int
	Generation int
}

// ScanConfig holds configuration for the tamper scan
type ScanConfig struct {
	// OverlapRadius is the baseline-origin distance within which two
	// differing fragments count as overlapping (default: 2.0 units)
	OverlapRadius float64

	// FontChangeRadius is the maximum distance between adjacent
	// fragments for a font switch to count as abrupt (default: 50)
	FontChangeRadius float64

	// GapMinRatio and GapMaxRatio bound the suspicious in-line gap
	// range as multiples of the trailing fragment's space width
	// (defaults: 3 and 15)
	GapMinRatio float64
	GapMaxRatio float64
}

// DefaultScanConfig returns sensible default configuration
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		OverlapRadius:    2.0,
		FontChangeRadius: 50.0,
		GapMinRatio:      3.0,
		GapMaxRatio:      15.0,
	}
}

// Scanner runs the single-document tamper scan
type Scanner struct {
	config ScanConfig
	recon  *layout.Reconstructor
}

// NewScanner creates a scanner with default configuration
func NewScanner() *Scanner {
	return NewScannerWithConfig(DefaultScanConfig())
}

// NewScannerWithConfig creates a scanner with custom configuration
func NewScannerWithConfig(config ScanConfig) *Scanner {
	return &Scanner{
		config: config,
		recon:  layout.NewReconstructor(),
	}
}

// Scan runs the four tamper checks over a document's pages. The checks
// are independent and their results are concatenated, not deduplicated.
// The full page set must be materialized before calling.
func (s *Scanner) Scan(pages []model.PageInput) []Modification {
	var mods []Modification
	for _, page := range pages {
		mods = append(mods, s.revisions(page)...)
		mods = append(mods, s.overlaps(page)...)

		text := s.recon.Page(page)
		mods = append(mods, s.fontChanges(text)...)
		mods = append(mods, s.flowGaps(text)...)
	}
	return mods
}

// revisions flags every object with a nonzero revision generation.
func (s *Scanner) revisions(page model.PageInput) []Modification {
	var mods []Modification
	for _, obj := range page.Objects {
		if obj.Generation == 0 {
			continue
		}
		mods = append(mods, Modification{
			Page: page.Number,
			Type: ContentStreamModified,
			Description: fmt.Sprintf("object %d overwritten in revision generation %d",
				obj.ObjectID, obj.Generation),
			ObjectID:   obj.ObjectID,
			Generation: obj.Generation,
		})
	}
	return mods
}

// overlaps flags pairs of fragments whose baseline origins coincide
// within the overlap radius but whose text differs.
func (s *Scanner) overlaps(page model.PageInput) []Modification {
	var mods []Modification
	frags := page.Fragments
	for i := 0; i < len(frags); i++ {
		for j := i + 1; j < len(frags); j++ {
			if frags[i].Text == frags[j].Text {
				continue
			}
			if frags[i].Start.Distance(frags[j].Start) > s.config.OverlapRadius {
				continue
			}
			bbox := frags[i].BBox().Union(frags[j].BBox())
			mods = append(mods, Modification{
				Page: page.Number,
				Type: TextOverlap,
				Description: fmt.Sprintf("%q overlaps %q at (%.1f, %.1f)",
					frags[i].Text, frags[j].Text, frags[i].Start.X, frags[i].Start.Y),
				BBox: &bbox,
			})
		}
	}
	return mods
}

// fontChanges flags font identity switches between adjacent fragments
// in reading order when the fragments sit close together.
func (s *Scanner) fontChanges(page layout.PageText) []Modification {
	var mods []Modification
	var prev *model.TextFragment
	for li := range page.Lines {
		for fi := range page.Lines[li].Fragments {
			frag := &page.Lines[li].Fragments[fi]
			if prev != nil &&
				fontIdentity(*prev) != fontIdentity(*frag) &&
				prev.End.Distance(frag.Start) <= s.config.FontChangeRadius {
				bbox := frag.BBox()
				mods = append(mods, Modification{
					Page: page.Number,
					Type: AbruptFontChange,
					Description: fmt.Sprintf("font changes from %s to %s at %q",
						fontIdentity(*prev), fontIdentity(*frag), frag.Text),
					BBox: &bbox,
				})
			}
			prev = frag
		}
	}
	return mods
}

// flowGaps flags in-line gaps in the suspicious range: wider than
// normal word spacing, narrower than a full text block.
func (s *Scanner) flowGaps(page layout.PageText) []Modification {
	var mods []Modification
	for _, line := range page.Lines {
		for i := 1; i < len(line.Fragments); i++ {
			prev := line.Fragments[i-1]
			frag := line.Fragments[i]
			gap := frag.Start.X - prev.End.X
			sw := frag.EffectiveSpaceWidth()
			if gap <= sw*s.config.GapMinRatio || gap >= sw*s.config.GapMaxRatio {
				continue
			}
			bbox := model.NewBBox(prev.End.X, line.BBox.Y, gap, line.BBox.Height)
			mods = append(mods, Modification{
				Page: page.Number,
				Type: TextFlowGap,
				Description: fmt.Sprintf("gap of %.1f units between %q and %q",
					gap, prev.Text, frag.Text),
				BBox: &bbox,
			})
		}
	}
	return mods
}

func fontIdentity(f model.TextFragment) string {
	if f.FontID != "" {
		return f.FontID
	}
	return f.FontName
}
