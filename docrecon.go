// Package docrecon provides a fluent API for reconstructing document text
// from positioned fragment streams, and for the structural analyses built
// on top of the reconstruction: document-boundary detection, font
// profiling, and tamper scanning.
//
// Basic usage:
//
//	text := docrecon.FromPages(pages).Text()
//
// With options:
//
//	boundaries := docrecon.FromPages(pages).
//	    WithSegmentConfig(cfg).
//	    Boundaries()
//
// For advanced use cases, the lower-level layout, segment, forensic, font
// and index packages are also available.
package docrecon

import (
	"github.com/chanfle/docrecon/forensic"
	"github.com/chanfle/docrecon/layout"
	"github.com/chanfle/docrecon/model"
)

// FromPages wraps a decoded document's pages in an Analysis for fluent
// configuration. The pages are held by reference and must not be mutated
// while the Analysis is in use.
//
// Example:
//
//	text := docrecon.FromPages(pages).Text()
func FromPages(pages []model.PageInput) *Analysis {
	return &Analysis{
		pages:   pages,
		options: defaultOptions(),
	}
}

// Compare reconstructs two captures of the same document and reports the
// content present in later but absent from earlier. Both captures use the
// default reconstruction configuration; for tuned reconstruction, build
// the page states directly and call forensic.Diff.
func Compare(earlier, later []model.PageInput) forensic.DiffReport {
	recon := layout.NewReconstructor()
	return forensic.Diff(pageStates(recon, earlier), pageStates(recon, later))
}

func pageStates(recon *layout.Reconstructor, pages []model.PageInput) []forensic.PageState {
	states := make([]forensic.PageState, 0, len(pages))
	for _, page := range pages {
		states = append(states, forensic.PageState{
			Page:      recon.Page(page),
			Resources: page.Resources,
		})
	}
	return states
}
