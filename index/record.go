package index

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"github.com/chanfle/docrecon/font"
	"github.com/chanfle/docrecon/layout"
	"github.com/chanfle/docrecon/model"
)

// Key derives the canonical document identity for a source path and
// reconstruction mode: re-ingesting the same pair always upserts the
// same entry.
func Key(source, mode string) string {
	sum := blake3.Sum256([]byte(mode + "\x00" + source))
	return hex.EncodeToString(sum[:])
}

// DocumentRecord is one cached document.
type DocumentRecord struct {
	Key       string    `json:"key"`
	Source    string    `json:"source"`
	Mode      string    `json:"mode"`
	CreatedAt time.Time `json:"created_at"`
	PageCount int       `json:"page_count"`
}

// PageFlags are content flags precomputed at ingestion so common scans
// never touch the page text.
type PageFlags struct {
	// HasAmount reports a currency amount somewhere on the page.
	HasAmount bool

	// HasReference reports a long punctuated reference number (case or
	// process numbers, invoice ids).
	HasReference bool

	// WordCount is the number of whitespace-separated words.
	WordCount int
}

// PageRecord is one cached page.
type PageRecord struct {
	DocumentKey string
	Number      int

	// Text is the full reconstructed page text; Header and Footer are
	// its first and last few lines.
	Text   string
	Header string
	Footer string

	// Fonts are the font names observed on the page.
	Fonts []string

	// Objects are "id:generation" pairs for the page's raw object
	// signals.
	Objects []string

	Flags PageFlags
}

// DefaultEdgeLines is the number of lines taken into the header and
// footer slices of a page.
const DefaultEdgeLines = 3

var (
	amountPattern    = regexp.MustCompile(`(\p{Sc}|R\$)\s*\d[\d.,]*`)
	referencePattern = regexp.MustCompile(`\d{4,}[-./]\d{2,}`)
)

// ComputeFlags folds a page text into its content flags.
func ComputeFlags(text string) PageFlags {
	return PageFlags{
		HasAmount:    amountPattern.MatchString(text),
		HasReference: referencePattern.MatchString(text),
		WordCount:    len(strings.Fields(text)),
	}
}

// BuildPageRecord assembles the cache record for one reconstructed
// page. edgeLines <= 0 uses DefaultEdgeLines.
func BuildPageRecord(key string, input model.PageInput, page layout.PageText, edgeLines int) PageRecord {
	if edgeLines <= 0 {
		edgeLines = DefaultEdgeLines
	}

	lines := strings.Split(page.Text, "\n")
	header := lines
	if len(header) > edgeLines {
		header = header[:edgeLines]
	}
	footer := lines
	if len(footer) > edgeLines {
		footer = footer[len(footer)-edgeLines:]
	}

	objects := make([]string, 0, len(input.Objects))
	for _, obj := range input.Objects {
		objects = append(objects, fmt.Sprintf("%d:%d", obj.ObjectID, obj.Generation))
	}

	return PageRecord{
		DocumentKey: key,
		Number:      page.Number,
		Text:        page.Text,
		Header:      strings.Join(header, "\n"),
		Footer:      strings.Join(footer, "\n"),
		Fonts:       font.ProfilePage(input).Names(),
		Objects:     objects,
		Flags:       ComputeFlags(page.Text),
	}
}
