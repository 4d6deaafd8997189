package docrecon

import (
	"github.com/chanfle/docrecon/font"
	"github.com/chanfle/docrecon/forensic"
	"github.com/chanfle/docrecon/layout"
	"github.com/chanfle/docrecon/model"
	"github.com/chanfle/docrecon/segment"
)

// Analysis provides a fluent interface over one document's pages.
// Each configuration method returns a new Analysis instance, making it
// safe for concurrent use and allowing method chaining.
type Analysis struct {
	pages   []model.PageInput
	options analysisOptions
}

// clone creates a copy of the Analysis sharing the page slice. Configs
// are value types, so the copy is independent.
func (a *Analysis) clone() *Analysis {
	return &Analysis{
		pages:   a.pages,
		options: a.options,
	}
}

// Text reconstructs every page and joins them with a blank line between
// pages.
func (a *Analysis) Text() string {
	return layout.DocumentText(a.PageTexts())
}

// PageTexts reconstructs every page, preserving per-line detail.
func (a *Analysis) PageTexts() []layout.PageText {
	recon := layout.NewReconstructorWithConfig(a.options.line, a.options.layout)
	return recon.Document(a.pages)
}

// Boundaries segments the pages into logical documents. The result is
// always a contiguous partition of the input; a single-document source
// yields one boundary covering every page.
func (a *Analysis) Boundaries() []segment.Boundary {
	texts := a.PageTexts()
	summaries := make([]segment.PageSummary, 0, len(a.pages))
	for i, page := range a.pages {
		summaries = append(summaries, segment.Summarize(page, texts[i]))
	}
	return segment.NewSegmenterWithConfig(a.options.segment).Segment(summaries)
}

// Profile returns the document-level font usage profile.
func (a *Analysis) Profile() font.Profile {
	profiler := font.NewProfiler()
	for _, page := range a.pages {
		profiler.Observe(page)
	}
	return profiler.Document()
}

// Scan inspects the pages for modification signals.
func (a *Analysis) Scan() []forensic.Modification {
	return forensic.NewScannerWithConfig(a.options.scan).Scan(a.pages)
}
