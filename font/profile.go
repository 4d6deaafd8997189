// Package font aggregates font observations from fragment streams into
// per-page and per-document profiles. Profiles feed the document
// segmenter (font-set shift as a boundary signal) and the cache index
// (per-page font lists for the fonts query scope).
package font

import (
	"math"
	"sort"

	"github.com/chanfle/docrecon/model"
)

// SizeEpsilon is the tolerance within which two observed font sizes are
// considered the same.
const SizeEpsilon = 0.1

// Profile maps a font name to the distinct sizes observed for it,
// sorted ascending and deduplicated within SizeEpsilon.
type Profile map[string][]float64

// Add records one font observation.
func (p Profile) Add(name string, size float64) {
	if name == "" {
		name = "(unnamed)"
	}
	sizes := p[name]
	for _, s := range sizes {
		if math.Abs(s-size) <= SizeEpsilon {
			return
		}
	}
	sizes = append(sizes, size)
	sort.Float64s(sizes)
	p[name] = sizes
}

// Names returns the observed font names, sorted.
func (p Profile) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sizes returns the distinct sizes observed for a font, or nil.
func (p Profile) Sizes(name string) []float64 {
	return p[name]
}

// Merge folds another profile into this one.
func (p Profile) Merge(other Profile) {
	for name, sizes := range other {
		for _, s := range sizes {
			p.Add(name, s)
		}
	}
}

// Profiler folds a fragment stream into font profiles, scoped per page
// and for the whole document. It is one of several independent
// aggregates computed from the same canonical fragment stream.
type Profiler struct {
	pages map[int]Profile
	doc   Profile
}

// NewProfiler creates an empty profiler.
func NewProfiler() *Profiler {
	return &Profiler{
		pages: make(map[int]Profile),
		doc:   make(Profile),
	}
}

// Observe records the fragments of one page.
func (pr *Profiler) Observe(page model.PageInput) {
	for _, f := range page.Fragments {
		name := f.FontName
		if name == "" {
			name = f.FontID
		}
		size := f.EffectiveFontSize()

		p, ok := pr.pages[page.Number]
		if !ok {
			p = make(Profile)
			pr.pages[page.Number] = p
		}
		p.Add(name, size)
		pr.doc.Add(name, size)
	}
}

// Page returns the profile for one page. Pages never observed yield an
// empty profile.
func (pr *Profiler) Page(number int) Profile {
	if p, ok := pr.pages[number]; ok {
		return p
	}
	return Profile{}
}

// Document returns the aggregate profile across all observed pages.
func (pr *Profiler) Document() Profile {
	return pr.doc
}

// ProfilePage is a convenience fold over a single page.
func ProfilePage(page model.PageInput) Profile {
	p := make(Profile)
	for _, f := range page.Fragments {
		name := f.FontName
		if name == "" {
			name = f.FontID
		}
		p.Add(name, f.EffectiveFontSize())
	}
	return p
}
