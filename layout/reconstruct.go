package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/chanfle/docrecon/model"
)

// LayoutConfig holds configuration for text reconstruction
type LayoutConfig struct {
	// SpaceGapRatio is the fraction of the trailing fragment's single
	// space width a horizontal gap must exceed before spaces are
	// inferred between two fragments (default: 0.3)
	SpaceGapRatio float64

	// ParagraphGap is the vertical baseline distance beyond which a
	// blank line is inserted to mark a paragraph break (default: 10
	// geometry units)
	ParagraphGap float64

	// MinIndent is the minimum raw left indent, relative to the page's
	// left margin, before indentation spaces are emitted (default: 5
	// geometry units)
	MinIndent float64
}

// DefaultLayoutConfig returns sensible default configuration
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		SpaceGapRatio: 0.3,
		ParagraphGap:  10.0,
		MinIndent:     5.0,
	}
}

// PageText is the reconstructed reading-order text of one page
type PageText struct {
	// Number is the 1-based page number
	Number int

	// Text is the page's plain text: lines top-to-bottom with inferred
	// spacing, indentation, and paragraph breaks
	Text string

	// Lines are the assembled lines in reading order (descending Y,
	// decoder emission order for lines sharing a baseline)
	Lines []Line
}

// FirstNonEmptyLine returns the text of the first line with visible
// content, or "" when the page has none.
func (p PageText) FirstNonEmptyLine() string {
	for _, line := range p.Lines {
		if s := strings.TrimSpace(line.Text); s != "" {
			return s
		}
	}
	return ""
}

// Reconstructor turns a page's fragment stream into reading-order text
type Reconstructor struct {
	assembler *Assembler
	config    LayoutConfig
}

// NewReconstructor creates a reconstructor with default configuration
func NewReconstructor() *Reconstructor {
	return &Reconstructor{
		assembler: NewAssembler(),
		config:    DefaultLayoutConfig(),
	}
}

// NewReconstructorWithConfig creates a reconstructor with custom line
// and layout configuration
func NewReconstructorWithConfig(line LineConfig, config LayoutConfig) *Reconstructor {
	return &Reconstructor{
		assembler: NewAssemblerWithConfig(line),
		config:    config,
	}
}

// Page reconstructs one page. A page with no usable fragments yields a
// PageText with empty text, never an error.
func (r *Reconstructor) Page(page model.PageInput) PageText {
	lines := r.assembler.Assemble(page.Fragments)
	if len(lines) == 0 {
		return PageText{Number: page.Number}
	}

	// Reading order: top to bottom, decoder emission order for lines
	// sharing a baseline.
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Y != lines[j].Y {
			return lines[i].Y > lines[j].Y
		}
		return lines[i].seq < lines[j].seq
	})

	leftMargin := lines[0].X0()
	for _, line := range lines[1:] {
		if line.X0() < leftMargin {
			leftMargin = line.X0()
		}
	}

	var sb strings.Builder
	for i := range lines {
		line := &lines[i]
		line.Text = r.renderLine(line)

		if i > 0 {
			sb.WriteString("\n")
			if lines[i-1].Y-line.Y > r.config.ParagraphGap {
				sb.WriteString("\n")
			}
		}

		sb.WriteString(r.indentFor(line, leftMargin))
		sb.WriteString(line.Text)
	}

	return PageText{
		Number: page.Number,
		Text:   sb.String(),
		Lines:  lines,
	}
}

// Document reconstructs every page of a document in order.
func (r *Reconstructor) Document(pages []model.PageInput) []PageText {
	out := make([]PageText, 0, len(pages))
	for _, page := range pages {
		out = append(out, r.Page(page))
	}
	return out
}

// DocumentText joins reconstructed pages into a single document text.
func DocumentText(pages []PageText) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n\n")
}

// renderLine joins a line's fragments with inferred spacing. A gap
// between adjacent fragments wider than SpaceGapRatio of the trailing
// fragment's space width becomes max(1, round(gap/spaceWidth)) spaces.
func (r *Reconstructor) renderLine(line *Line) string {
	var sb strings.Builder
	for i, frag := range line.Fragments {
		if i > 0 {
			prev := line.Fragments[i-1]
			gap := frag.Start.X - prev.End.X
			sw := frag.EffectiveSpaceWidth()
			if gap > sw*r.config.SpaceGapRatio {
				n := int(math.Round(gap / sw))
				if n < 1 {
					n = 1
				}
				sb.WriteString(strings.Repeat(" ", n))
			}
		}
		sb.WriteString(frag.Text)
	}
	return sb.String()
}

// indentFor converts a line's left offset from the page margin into
// leading spaces, suppressing offsets below MinIndent.
func (r *Reconstructor) indentFor(line *Line, leftMargin float64) string {
	indent := line.X0() - leftMargin
	if indent <= r.config.MinIndent {
		return ""
	}
	sw := line.Fragments[0].EffectiveSpaceWidth()
	n := int(math.Round(indent / sw))
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}
