package forensic

import (
	"testing"

	"github.com/chanfle/docrecon/model"
)

func countType(mods []Modification, t ModificationType) int {
	n := 0
	for _, m := range mods {
		if m.Type == t {
			n++
		}
	}
	return n
}

func TestScanner_RevisionGeneration(t *testing.T) {
	s := NewScanner()
	mods := s.Scan([]model.PageInput{{
		Number:    2,
		Fragments: []model.TextFragment{frag("body", 10, 700)},
		Objects: []model.ObjectSignal{
			{ObjectID: 12, Generation: 0},
			{ObjectID: 14, Generation: 1},
		},
	}})

	if countType(mods, ContentStreamModified) != 1 {
		t.Fatalf("Expected 1 ContentStreamModified, got %+v", mods)
	}
	for _, m := range mods {
		if m.Type != ContentStreamModified {
			continue
		}
		if m.Page != 2 || m.ObjectID != 14 || m.Generation != 1 {
			t.Errorf("Unexpected modification: %+v", m)
		}
	}
}

func TestScanner_TextOverlap(t *testing.T) {
	s := NewScanner()

	a := frag("original", 100, 700)
	b := frag("masked", 101, 699)
	mods := s.Scan([]model.PageInput{{Number: 1, Fragments: []model.TextFragment{a, b}}})

	if countType(mods, TextOverlap) != 1 {
		t.Errorf("Expected 1 TextOverlap, got %+v", mods)
	}

	// Identical text at the same position is a decoder artifact, not
	// masking.
	mods = s.Scan([]model.PageInput{{Number: 1, Fragments: []model.TextFragment{a, a}}})
	if countType(mods, TextOverlap) != 0 {
		t.Errorf("Expected no overlap for identical text, got %+v", mods)
	}
}

func TestScanner_OverlapOutsideRadius(t *testing.T) {
	s := NewScanner()
	mods := s.Scan([]model.PageInput{{Number: 1, Fragments: []model.TextFragment{
		frag("one", 100, 700),
		frag("two", 100, 690),
	}}})

	if countType(mods, TextOverlap) != 0 {
		t.Errorf("Expected no overlap 10 units apart, got %+v", mods)
	}
}

func TestScanner_AbruptFontChange(t *testing.T) {
	s := NewScanner()

	a := frag("approved", 10, 700)
	b := frag("amount", 60, 700)
	b.FontID = "F9"
	b.FontName = "Courier"

	mods := s.Scan([]model.PageInput{{Number: 1, Fragments: []model.TextFragment{a, b}}})
	if countType(mods, AbruptFontChange) != 1 {
		t.Errorf("Expected 1 AbruptFontChange, got %+v", mods)
	}
}

func TestScanner_FontChangeBeyondRadiusIgnored(t *testing.T) {
	s := NewScanner()

	a := frag("left", 10, 700)
	b := frag("right", 300, 700)
	b.FontID = "F9"

	mods := s.Scan([]model.PageInput{{Number: 1, Fragments: []model.TextFragment{a, b}}})
	if countType(mods, AbruptFontChange) != 0 {
		t.Errorf("Expected distant font change to be ignored, got %+v", mods)
	}
}

func TestScanner_TextFlowGap(t *testing.T) {
	s := NewScanner()

	// frag("pay", ...) ends at 10+15=25; a gap of 20 against a space
	// width of 5 is 4x: inside the suspicious (3x, 15x) range.
	mods := s.Scan([]model.PageInput{{Number: 1, Fragments: []model.TextFragment{
		frag("pay", 10, 700),
		frag("now", 45, 700),
	}}})
	if countType(mods, TextFlowGap) != 1 {
		t.Errorf("Expected 1 TextFlowGap, got %+v", mods)
	}
}

func TestScanner_NormalAndHugeGapsNotFlagged(t *testing.T) {
	s := NewScanner()

	// Gap of 10 (2x space width): normal word spacing.
	mods := s.Scan([]model.PageInput{{Number: 1, Fragments: []model.TextFragment{
		frag("pay", 10, 700),
		frag("now", 35, 700),
	}}})
	if countType(mods, TextFlowGap) != 0 {
		t.Errorf("Expected normal gap not flagged, got %+v", mods)
	}

	// Gap of 100 (20x): a full column break, not a redaction.
	mods = s.Scan([]model.PageInput{{Number: 1, Fragments: []model.TextFragment{
		frag("pay", 10, 700),
		frag("now", 125, 700),
	}}})
	if countType(mods, TextFlowGap) != 0 {
		t.Errorf("Expected block-scale gap not flagged, got %+v", mods)
	}
}

func TestScanner_ChecksConcatenated(t *testing.T) {
	// Independent checks accumulate; nothing is deduplicated.
	s := NewScanner()

	a := frag("original", 100, 700)
	b := frag("masked", 100, 700)
	b.FontID = "F9"

	mods := s.Scan([]model.PageInput{{
		Number:    1,
		Fragments: []model.TextFragment{a, b},
		Objects:   []model.ObjectSignal{{ObjectID: 3, Generation: 2}},
	}})

	if countType(mods, ContentStreamModified) != 1 {
		t.Errorf("Missing revision flag: %+v", mods)
	}
	if countType(mods, TextOverlap) != 1 {
		t.Errorf("Missing overlap flag: %+v", mods)
	}
	if countType(mods, AbruptFontChange) != 1 {
		t.Errorf("Missing font change flag: %+v", mods)
	}
}
