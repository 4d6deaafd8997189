package index

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Scope selects which slice of the cached content a query matches
// against.
type Scope string

const (
	// ScopeText matches against full page text.
	ScopeText Scope = "text"

	// ScopeHeader and ScopeFooter match against the page edge slices.
	ScopeHeader Scope = "header"
	ScopeFooter Scope = "footer"

	// ScopeDoc matches against a document's whole aggregated text, so
	// an AND query can be satisfied by terms on different pages of the
	// same document.
	ScopeDoc Scope = "doc"

	// ScopeMeta matches against document metadata (key, source, mode).
	ScopeMeta Scope = "meta"

	// ScopeFonts matches against the per-page font list.
	ScopeFonts Scope = "fonts"

	// ScopeObjects matches against the per-page object signal list.
	ScopeObjects Scope = "objects"
)

// Format selects the rendering of query results.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

var (
	// ErrInvalidScope rejects an unknown query scope.
	ErrInvalidScope = errors.New("invalid query scope")

	// ErrInvalidFormat rejects an unknown output format.
	ErrInvalidFormat = errors.New("invalid output format")
)

// QueryParams are the parameters consumed from the command layer.
// Terms are AND-combined; a trailing * makes a term a prefix wildcard.
// Matching is case-insensitive and diacritic-normalized. Zero values
// leave a filter unset.
type QueryParams struct {
	Terms []string
	Scope Scope

	PageMin int
	PageMax int

	MinWords int
	MaxWords int

	Limit int
}

// Match is one query result. Page is 0 for document-level matches.
type Match struct {
	DocumentKey string `json:"key"`
	Source      string `json:"source"`
	Page        int    `json:"page,omitempty"`
	Text        string `json:"text,omitempty"`
}

// Query runs a read-only content query against the index. An unknown
// scope is rejected with a descriptive error, never silently remapped.
func (s *Store) Query(p QueryParams) ([]Match, error) {
	scope := p.Scope
	if scope == "" {
		scope = ScopeText
	}
	if !validScope(scope) {
		return nil, fmt.Errorf("%w: %q (valid: text, header, footer, doc, meta, fonts, objects)",
			ErrInvalidScope, p.Scope)
	}

	terms := make([]string, 0, len(p.Terms))
	for _, t := range p.Terms {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, normalizeText(t))
		}
	}

	var matches []Match
	var err error
	switch scope {
	case ScopeMeta:
		matches, err = s.queryMeta(terms)
	case ScopeDoc:
		matches, err = s.queryDocuments(terms, p)
	default:
		matches, err = s.queryPages(scope, terms, p)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].DocumentKey != matches[j].DocumentKey {
			return matches[i].DocumentKey < matches[j].DocumentKey
		}
		return matches[i].Page < matches[j].Page
	})
	if p.Limit > 0 && len(matches) > p.Limit {
		matches = matches[:p.Limit]
	}
	return matches, nil
}

func (s *Store) queryMeta(terms []string) ([]Match, error) {
	docs, err := s.Documents()
	if err != nil {
		return nil, err
	}

	var matches []Match
	for _, doc := range docs {
		meta := doc.Key + " " + doc.Source + " " + doc.Mode
		if matchTerms(meta, terms) {
			matches = append(matches, Match{
				DocumentKey: doc.Key,
				Source:      doc.Source,
				Text:        doc.Source,
			})
		}
	}
	return matches, nil
}

// queryDocuments aggregates each document's pages before matching, so
// AND terms may be satisfied across pages.
func (s *Store) queryDocuments(terms []string, p QueryParams) ([]Match, error) {
	rows, err := s.db.Query(
		`SELECT pg.document_key, d.source, pg.page_number, pg.text
		 FROM pages pg JOIN documents d ON d.key = pg.document_key
		 ORDER BY pg.document_key, pg.page_number`)
	if err != nil {
		return nil, fmt.Errorf("aggregate query: %w", err)
	}
	defer rows.Close()

	type agg struct {
		source string
		text   strings.Builder
	}
	byKey := make(map[string]*agg)
	var order []string
	for rows.Next() {
		var key, source, text string
		var number int
		if err := rows.Scan(&key, &source, &number, &text); err != nil {
			return nil, err
		}
		if !pageInRange(number, p) {
			continue
		}
		a, ok := byKey[key]
		if !ok {
			a = &agg{source: source}
			byKey[key] = a
			order = append(order, key)
		}
		a.text.WriteString(text)
		a.text.WriteString("\n")
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var matches []Match
	for _, key := range order {
		a := byKey[key]
		text := a.text.String()
		words := len(strings.Fields(text))
		if p.MinWords > 0 && words < p.MinWords {
			continue
		}
		if p.MaxWords > 0 && words > p.MaxWords {
			continue
		}
		if matchTerms(text, terms) {
			matches = append(matches, Match{
				DocumentKey: key,
				Source:      a.source,
				Text:        a.source,
			})
		}
	}
	return matches, nil
}

func (s *Store) queryPages(scope Scope, terms []string, p QueryParams) ([]Match, error) {
	query := `SELECT pg.document_key, d.source, pg.page_number,
			pg.text, pg.header, pg.footer, pg.fonts, pg.objects, pg.word_count
		 FROM pages pg JOIN documents d ON d.key = pg.document_key WHERE 1=1`
	var args []any

	if p.PageMin > 0 {
		query += ` AND pg.page_number >= ?`
		args = append(args, p.PageMin)
	}
	if p.PageMax > 0 {
		query += ` AND pg.page_number <= ?`
		args = append(args, p.PageMax)
	}
	if p.MinWords > 0 {
		query += ` AND pg.word_count >= ?`
		args = append(args, p.MinWords)
	}
	if p.MaxWords > 0 {
		query += ` AND pg.word_count <= ?`
		args = append(args, p.MaxWords)
	}

	// The FTS index narrows text-scope queries; matchTerms below stays
	// the source of truth for word-boundary semantics.
	if scope == ScopeText && len(terms) > 0 {
		query += ` AND pg.id IN (SELECT rowid FROM pages_fts WHERE pages_fts MATCH ?)`
		args = append(args, ftsExpr(terms))
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("page query: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var key, source, text, header, footer, fonts, objects string
		var number, wordCount int
		if err := rows.Scan(&key, &source, &number,
			&text, &header, &footer, &fonts, &objects, &wordCount); err != nil {
			return nil, err
		}

		var scoped string
		switch scope {
		case ScopeText:
			scoped = text
		case ScopeHeader:
			scoped = header
		case ScopeFooter:
			scoped = footer
		case ScopeFonts:
			scoped = fonts
		case ScopeObjects:
			scoped = objects
		}

		if matchTerms(scoped, terms) {
			matches = append(matches, Match{
				DocumentKey: key,
				Source:      source,
				Page:        number,
				Text:        firstLineOf(scoped),
			})
		}
	}
	return matches, rows.Err()
}

func validScope(s Scope) bool {
	switch s {
	case ScopeText, ScopeHeader, ScopeFooter, ScopeDoc, ScopeMeta, ScopeFonts, ScopeObjects:
		return true
	}
	return false
}

func pageInRange(number int, p QueryParams) bool {
	if p.PageMin > 0 && number < p.PageMin {
		return false
	}
	if p.PageMax > 0 && number > p.PageMax {
		return false
	}
	return true
}

// normalizeText lowercases and strips combining marks, so "Relatório"
// matches the terms "relatorio" and "RELATÓRIO" alike.
func normalizeText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// matchTerms reports whether every term matches a word of the text.
// Terms arrive normalized; the text is normalized here. A term with a
// trailing * matches any word it prefixes, other terms match whole
// words with surrounding punctuation trimmed.
func matchTerms(text string, terms []string) bool {
	if len(terms) == 0 {
		return true
	}

	fields := strings.Fields(normalizeText(text))
	words := make(map[string]bool, len(fields))
	trimmed := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.Trim(f, `.,;:!?()[]{}"'`)
		if w == "" {
			continue
		}
		words[w] = true
		trimmed = append(trimmed, w)
	}

	for _, term := range terms {
		if prefix, ok := strings.CutSuffix(term, "*"); ok {
			found := false
			for _, w := range trimmed {
				if strings.HasPrefix(w, prefix) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
			continue
		}
		if !words[term] {
			return false
		}
	}
	return true
}

// ftsExpr builds an FTS5 boolean query from normalized terms.
func ftsExpr(terms []string) string {
	parts := make([]string, 0, len(terms))
	for _, term := range terms {
		prefix, wildcard := strings.CutSuffix(term, "*")
		quoted := `"` + strings.ReplaceAll(prefix, `"`, `""`) + `"`
		if wildcard {
			quoted += "*"
		}
		parts = append(parts, quoted)
	}
	return strings.Join(parts, " AND ")
}

func firstLineOf(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// FormatMatches renders query results in the requested output format.
// An unknown format is rejected, never silently degraded.
func FormatMatches(matches []Match, format Format) (string, error) {
	switch format {
	case "", FormatText:
		var sb strings.Builder
		for _, m := range matches {
			if m.Page > 0 {
				fmt.Fprintf(&sb, "%s\tp%d\t%s\n", m.Source, m.Page, m.Text)
			} else {
				fmt.Fprintf(&sb, "%s\t-\t%s\n", m.Source, m.Text)
			}
		}
		return sb.String(), nil

	case FormatJSON:
		data, err := json.MarshalIndent(matches, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode matches: %w", err)
		}
		return string(data) + "\n", nil

	case FormatCSV:
		var sb strings.Builder
		w := csv.NewWriter(&sb)
		if err := w.Write([]string{"key", "source", "page", "text"}); err != nil {
			return "", err
		}
		for _, m := range matches {
			page := ""
			if m.Page > 0 {
				page = fmt.Sprintf("%d", m.Page)
			}
			if err := w.Write([]string{m.DocumentKey, m.Source, page, m.Text}); err != nil {
				return "", err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return "", err
		}
		return sb.String(), nil
	}

	return "", fmt.Errorf("%w: %q (valid: text, json, csv)", ErrInvalidFormat, format)
}
