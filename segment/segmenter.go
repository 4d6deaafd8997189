// Package segment partitions a multi-page source into logical
// sub-documents.
//
// Sources in scope routinely concatenate many short documents into one
// file with no structural markers, so boundaries are inferred from
// weighted per-page signals: a change in the first-line label pattern,
// a shift in the page's observed font set, a page-geometry change, and
// explicit separator markers. The output always partitions the full
// page range; when no internal signal clears the threshold the whole
// range is one boundary.
package segment

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/chanfle/docrecon/font"
	"github.com/chanfle/docrecon/layout"
	"github.com/chanfle/docrecon/model"
)

// SignalWeights are the per-signal contributions to a page's boundary
// score. They are heuristic policy, exposed so callers can tune them
// against their own corpus.
type SignalWeights struct {
	// LabelChange fires when the first-line label pattern of a page
	// differs from the previous page's (default: 0.40)
	LabelChange float64

	// FontChange scales with the Jaccard distance between consecutive
	// pages' font sets (default: 0.35)
	FontChange float64

	// GeometryChange fires on a page size or orientation change
	// (default: 0.25)
	GeometryChange float64

	// Separator fires on an explicit separator marker (default: 0.60)
	Separator float64
}

// Config holds configuration for document segmentation
type Config struct {
	// Threshold is the weighted score a page must reach to open a new
	// boundary (default: 0.5)
	Threshold float64

	Weights SignalWeights

	// MaxLabelLen is the length in runes past which boundary labels
	// are truncated with an ellipsis (default: 60)
	MaxLabelLen int

	// SeparatorMarkers are case-insensitive substrings that mark an
	// explicit document separator when present on a page. Pages whose
	// entire text is a rule of 10+ punctuation characters are always
	// treated as separators.
	SeparatorMarkers []string
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Threshold: 0.5,
		Weights: SignalWeights{
			LabelChange:    0.40,
			FontChange:     0.35,
			GeometryChange: 0.25,
			Separator:      0.60,
		},
		MaxLabelLen: 60,
	}
}

// PageSummary is the per-page view the segmenter consumes: the
// reconstructed text, the observed font set, and the page geometry.
type PageSummary struct {
	Number    int
	Text      string
	FirstLine string
	Fonts     font.Profile
	Width     float64
	Height    float64
}

// Summarize builds a PageSummary from a page's decoder input and its
// reconstructed text.
func Summarize(input model.PageInput, page layout.PageText) PageSummary {
	return PageSummary{
		Number:    input.Number,
		Text:      page.Text,
		FirstLine: page.FirstNonEmptyLine(),
		Fonts:     font.ProfilePage(input),
		Width:     input.Width,
		Height:    input.Height,
	}
}

// Boundary is one logical sub-document: a contiguous page range with a
// derived label and the confidence of the boundary decision.
type Boundary struct {
	StartPage  int
	EndPage    int
	PageCount  int
	Label      string
	Confidence float64
}

// Segmenter detects logical document boundaries in a page sequence
type Segmenter struct {
	config Config
}

// NewSegmenter creates a segmenter with default configuration
func NewSegmenter() *Segmenter {
	return &Segmenter{config: DefaultConfig()}
}

// NewSegmenterWithConfig creates a segmenter with custom configuration
func NewSegmenterWithConfig(config Config) *Segmenter {
	return &Segmenter{config: config}
}

// Segment partitions the page sequence into boundaries. The result has
// no gaps or overlaps and always contains at least one boundary for a
// non-empty input; the boundary that opens the document carries
// confidence 1.
func (s *Segmenter) Segment(pages []PageSummary) []Boundary {
	if len(pages) == 0 {
		return nil
	}

	starts := []int{0}
	confidences := []float64{1.0}

	for i := 1; i < len(pages); i++ {
		score := s.score(pages[i-1], pages[i])
		if score >= s.config.Threshold {
			starts = append(starts, i)
			confidences = append(confidences, math.Min(1, score))
		}
	}

	boundaries := make([]Boundary, 0, len(starts))
	for bi, start := range starts {
		end := len(pages) - 1
		if bi+1 < len(starts) {
			end = starts[bi+1] - 1
		}

		boundaries = append(boundaries, Boundary{
			StartPage:  pages[start].Number,
			EndPage:    pages[end].Number,
			PageCount:  end - start + 1,
			Label:      s.label(pages[start : end+1]),
			Confidence: confidences[bi],
		})
	}

	return boundaries
}

// score computes the weighted boundary score for cur following prev.
func (s *Segmenter) score(prev, cur PageSummary) float64 {
	w := s.config.Weights
	score := 0.0

	if labelChanged(prev.FirstLine, cur.FirstLine) {
		score += w.LabelChange
	}

	score += w.FontChange * jaccardDistance(prev.Fonts.Names(), cur.Fonts.Names())

	if geometryChanged(prev, cur) {
		score += w.GeometryChange
	}

	if s.isSeparator(prev) || s.hasMarker(cur.FirstLine) {
		score += w.Separator
	}

	return score
}

// label derives a boundary label from the first non-empty first line
// in the range, truncated past MaxLabelLen.
func (s *Segmenter) label(pages []PageSummary) string {
	text := ""
	for _, p := range pages {
		if p.FirstLine != "" {
			text = p.FirstLine
			break
		}
	}
	if text == "" {
		return "(untitled)"
	}

	runes := []rune(text)
	if len(runes) > s.config.MaxLabelLen {
		return string(runes[:s.config.MaxLabelLen]) + "…"
	}
	return text
}

var separatorRule = regexp.MustCompile(`^[-=*_#]{10,}$`)

// isSeparator reports whether a page is an explicit separator: its
// whole text is a punctuation rule, or it carries a configured marker.
func (s *Segmenter) isSeparator(p PageSummary) bool {
	trimmed := strings.TrimSpace(p.Text)
	if separatorRule.MatchString(trimmed) {
		return true
	}
	return s.hasMarker(trimmed)
}

func (s *Segmenter) hasMarker(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, marker := range s.config.SeparatorMarkers {
		if marker != "" && strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

// labelClass is a coarse classification of a page's first line.
type labelClass int

const (
	labelEmpty labelClass = iota
	labelHeading
	labelForm
	labelOther
)

func classifyLabel(line string) labelClass {
	line = strings.TrimSpace(line)
	if line == "" {
		return labelEmpty
	}

	letters, upper := 0, 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters >= 4 && float64(upper) >= float64(letters)*0.8 {
		return labelHeading
	}

	if r := []rune(line)[0]; unicode.IsDigit(r) {
		return labelForm
	}
	return labelOther
}

// labelChanged reports whether two first lines represent different
// label patterns. Body-text lines (labelOther) never fire on wording
// alone; heading lines fire when their skeletons differ, so that a
// running number inside a repeated heading does not split a document.
func labelChanged(prev, cur string) bool {
	pc, cc := classifyLabel(prev), classifyLabel(cur)
	if pc != cc {
		return true
	}
	if pc == labelHeading {
		return labelSkeleton(prev) != labelSkeleton(cur)
	}
	return false
}

// labelSkeleton lowercases a label, strips digits, and collapses runs
// of whitespace.
func labelSkeleton(line string) string {
	var sb strings.Builder
	lastSpace := false
	for _, r := range strings.ToLower(strings.TrimSpace(line)) {
		switch {
		case unicode.IsDigit(r):
			continue
		case unicode.IsSpace(r):
			if !lastSpace {
				sb.WriteRune(' ')
				lastSpace = true
			}
		default:
			sb.WriteRune(r)
			lastSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}

func geometryChanged(prev, cur PageSummary) bool {
	if prev.Width == 0 || cur.Width == 0 {
		return false
	}
	return math.Abs(prev.Width-cur.Width) > 1.0 || math.Abs(prev.Height-cur.Height) > 1.0
}

// jaccardDistance is 1 minus the Jaccard similarity of two name sets.
// Two empty sets are identical, not distant.
func jaccardDistance(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	set := make(map[string]int, len(a)+len(b))
	for _, s := range a {
		set[s] |= 1
	}
	for _, s := range b {
		set[s] |= 2
	}
	both := 0
	for _, v := range set {
		if v == 3 {
			both++
		}
	}
	return 1 - float64(both)/float64(len(set))
}
