package forensic

import (
	"sort"
	"strings"

	"github.com/chanfle/docrecon/layout"
	"github.com/chanfle/docrecon/model"
)

// DiffScope identifies which aspect of a page a diff entry came from.
type DiffScope string

const (
	ScopeWord  DiffScope = "word"
	ScopeLine  DiffScope = "line"
	ScopeImage DiffScope = "image"
	ScopeField DiffScope = "field"
)

// DiffEntry is one piece of content present in the later version of a
// page but absent from the earlier one.
type DiffEntry struct {
	// Page is the 1-based page number in the later version.
	Page int

	Scope DiffScope

	// Term is the normalized (lowercased) term the set difference was
	// computed on.
	Term string

	// BBox locates the content on the page; zero for resources with no
	// geometry.
	BBox model.BBox

	// Text is the content as it appears in the later version.
	Text string
}

// PageDiff groups a page's diff entries by scope.
type PageDiff struct {
	NewWords  []DiffEntry
	NewLines  []DiffEntry
	NewImages []DiffEntry
	NewFields []DiffEntry
}

// Empty reports whether the page diff carries no entries.
func (d PageDiff) Empty() bool {
	return len(d.NewWords) == 0 && len(d.NewLines) == 0 &&
		len(d.NewImages) == 0 && len(d.NewFields) == 0
}

// DiffReport maps page numbers to their diffs. Pages with no changes
// are omitted.
type DiffReport map[int]PageDiff

// PageState is one page of a reconstructed document version: its
// reading-order text plus the decoder's resource summary.
type PageState struct {
	Page      layout.PageText
	Resources model.ResourceSummary
}

// Diff computes the per-page content difference between two
// reconstructions of the same document: everything present in later
// but absent from earlier, as a case-insensitive set comparison of
// words, lines, image resource names, and form fields.
//
// A page missing from the earlier version is treated as entirely new,
// never an error. Repositioned but textually identical content is
// intentionally not reported.
func Diff(earlier, later []PageState) DiffReport {
	byNumber := make(map[int]PageState, len(earlier))
	for _, p := range earlier {
		byNumber[p.Page.Number] = p
	}

	report := make(DiffReport)
	for _, lp := range later {
		ep := byNumber[lp.Page.Number] // zero value when the page is new
		if d := diffPage(ep, lp); !d.Empty() {
			report[lp.Page.Number] = d
		}
	}
	return report
}

func diffPage(earlier, later PageState) PageDiff {
	var d PageDiff

	oldWords := wordSet(earlier.Page)
	oldLines := lineSet(earlier.Page)

	seenWords := make(map[string]bool)
	seenLines := make(map[string]bool)
	for _, line := range later.Page.Lines {
		text := strings.TrimSpace(line.Text)
		if text == "" {
			continue
		}

		key := strings.ToLower(text)
		if !oldLines[key] && !seenLines[key] {
			seenLines[key] = true
			d.NewLines = append(d.NewLines, DiffEntry{
				Page:  later.Page.Number,
				Scope: ScopeLine,
				Term:  key,
				BBox:  line.BBox,
				Text:  text,
			})
		}

		for _, word := range strings.Fields(text) {
			wkey := strings.ToLower(word)
			if oldWords[wkey] || seenWords[wkey] {
				continue
			}
			seenWords[wkey] = true
			d.NewWords = append(d.NewWords, DiffEntry{
				Page:  later.Page.Number,
				Scope: ScopeWord,
				Term:  wkey,
				BBox:  wordBBox(line, word),
				Text:  word,
			})
		}
	}

	d.NewImages = resourceDiff(later.Page.Number, ScopeImage,
		earlier.Resources.Images, later.Resources.Images)
	d.NewFields = fieldDiff(later.Page.Number,
		earlier.Resources.FormFields, later.Resources.FormFields)

	return d
}

func wordSet(page layout.PageText) map[string]bool {
	set := make(map[string]bool)
	for _, line := range page.Lines {
		for _, word := range strings.Fields(line.Text) {
			set[strings.ToLower(word)] = true
		}
	}
	return set
}

func lineSet(page layout.PageText) map[string]bool {
	set := make(map[string]bool)
	for _, line := range page.Lines {
		if text := strings.TrimSpace(line.Text); text != "" {
			set[strings.ToLower(text)] = true
		}
	}
	return set
}

// wordBBox locates a word within a line: the bbox of the first fragment
// whose text contains it, falling back to the line's bbox.
func wordBBox(line layout.Line, word string) model.BBox {
	lower := strings.ToLower(word)
	for _, f := range line.Fragments {
		if strings.Contains(strings.ToLower(f.Text), lower) {
			return f.BBox()
		}
	}
	return line.BBox
}

func resourceDiff(page int, scope DiffScope, earlier, later []string) []DiffEntry {
	old := make(map[string]bool, len(earlier))
	for _, name := range earlier {
		old[strings.ToLower(name)] = true
	}

	var entries []DiffEntry
	seen := make(map[string]bool)
	for _, name := range later {
		key := strings.ToLower(name)
		if old[key] || seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, DiffEntry{
			Page:  page,
			Scope: scope,
			Term:  key,
			Text:  name,
		})
	}
	return entries
}

func fieldDiff(page int, earlier, later map[string]string) []DiffEntry {
	var entries []DiffEntry
	for name, value := range later {
		if old, ok := earlier[name]; ok && strings.EqualFold(old, value) {
			continue
		}
		entries = append(entries, DiffEntry{
			Page:  page,
			Scope: ScopeField,
			Term:  strings.ToLower(name),
			Text:  name + "=" + value,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}
