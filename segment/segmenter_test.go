package segment

import (
	"strings"
	"testing"

	"github.com/chanfle/docrecon/font"
)

func makeSummary(number int, firstLine string, fonts ...string) PageSummary {
	profile := make(font.Profile)
	for _, name := range fonts {
		profile.Add(name, 12)
	}
	return PageSummary{
		Number:    number,
		Text:      firstLine + "\nbody text for page",
		FirstLine: firstLine,
		Fonts:     profile,
		Width:     612,
		Height:    792,
	}
}

// checkPartition verifies the boundary invariant: contiguous,
// non-overlapping, covering [first, last] exactly.
func checkPartition(t *testing.T, boundaries []Boundary, first, last int) {
	t.Helper()

	if len(boundaries) == 0 {
		t.Fatal("Expected at least one boundary")
	}
	if boundaries[0].StartPage != first {
		t.Errorf("Expected first boundary to start at %d, got %d", first, boundaries[0].StartPage)
	}
	if boundaries[len(boundaries)-1].EndPage != last {
		t.Errorf("Expected last boundary to end at %d, got %d", last, boundaries[len(boundaries)-1].EndPage)
	}
	for i := 1; i < len(boundaries); i++ {
		if boundaries[i].StartPage != boundaries[i-1].EndPage+1 {
			t.Errorf("Gap or overlap between boundary %d and %d: %+v",
				i-1, i, boundaries)
		}
	}
	for _, b := range boundaries {
		if b.PageCount != b.EndPage-b.StartPage+1 {
			t.Errorf("Inconsistent page count: %+v", b)
		}
	}
}

func TestSegmenter_EmptyInput(t *testing.T) {
	s := NewSegmenter()
	if got := s.Segment(nil); got != nil {
		t.Errorf("Expected nil for empty input, got %+v", got)
	}
}

func TestSegmenter_DegenerateSingleBoundary(t *testing.T) {
	s := NewSegmenter()
	pages := []PageSummary{
		makeSummary(1, "ANNUAL REPORT", "Helvetica"),
		makeSummary(2, "ANNUAL REPORT", "Helvetica"),
		makeSummary(3, "ANNUAL REPORT", "Helvetica"),
	}

	boundaries := s.Segment(pages)
	checkPartition(t, boundaries, 1, 3)

	if len(boundaries) != 1 {
		t.Fatalf("Expected 1 boundary, got %d", len(boundaries))
	}
	if boundaries[0].Confidence != 1.0 {
		t.Errorf("Expected opening boundary confidence 1.0, got %f", boundaries[0].Confidence)
	}
	if boundaries[0].Label != "ANNUAL REPORT" {
		t.Errorf("Unexpected label %q", boundaries[0].Label)
	}
}

func TestSegmenter_LabelAndFontShift(t *testing.T) {
	// Six pages: 1-3 share a label and font set, 4-6 share another.
	s := NewSegmenter()
	pages := []PageSummary{
		makeSummary(1, "DISPATCH ORDER", "Helvetica"),
		makeSummary(2, "DISPATCH ORDER", "Helvetica"),
		makeSummary(3, "DISPATCH ORDER", "Helvetica"),
		makeSummary(4, "PAYMENT NOTICE", "Courier"),
		makeSummary(5, "PAYMENT NOTICE", "Courier"),
		makeSummary(6, "PAYMENT NOTICE", "Courier"),
	}

	boundaries := s.Segment(pages)
	checkPartition(t, boundaries, 1, 6)

	if len(boundaries) != 2 {
		t.Fatalf("Expected 2 boundaries, got %d: %+v", len(boundaries), boundaries)
	}
	if boundaries[0].StartPage != 1 || boundaries[0].EndPage != 3 {
		t.Errorf("Expected first boundary [1,3], got [%d,%d]",
			boundaries[0].StartPage, boundaries[0].EndPage)
	}
	if boundaries[1].StartPage != 4 || boundaries[1].EndPage != 6 {
		t.Errorf("Expected second boundary [4,6], got [%d,%d]",
			boundaries[1].StartPage, boundaries[1].EndPage)
	}
	for _, b := range boundaries {
		if b.Confidence <= DefaultConfig().Threshold {
			t.Errorf("Expected confidence above threshold, got %f for %+v", b.Confidence, b)
		}
	}
}

func TestSegmenter_RunningNumberDoesNotSplit(t *testing.T) {
	// A page counter inside a repeated heading is not a label change.
	s := NewSegmenter()
	pages := []PageSummary{
		makeSummary(1, "DISPATCH 101", "Helvetica"),
		makeSummary(2, "DISPATCH 102", "Helvetica"),
	}

	boundaries := s.Segment(pages)
	if len(boundaries) != 1 {
		t.Errorf("Expected running numbers to stay in one boundary, got %+v", boundaries)
	}
}

func TestSegmenter_FontChangeAloneBelowThreshold(t *testing.T) {
	// A complete font-set swap scores 0.35, under the 0.5 threshold.
	s := NewSegmenter()
	pages := []PageSummary{
		makeSummary(1, "Report body continues here", "Helvetica"),
		makeSummary(2, "and flows across pages", "Courier"),
	}

	boundaries := s.Segment(pages)
	if len(boundaries) != 1 {
		t.Errorf("Expected font change alone not to split, got %+v", boundaries)
	}
}

func TestSegmenter_SeparatorMarker(t *testing.T) {
	config := DefaultConfig()
	config.SeparatorMarkers = []string{"--- next document ---"}
	s := NewSegmenterWithConfig(config)

	pages := []PageSummary{
		makeSummary(1, "Body text", "Helvetica"),
		makeSummary(2, "--- NEXT DOCUMENT ---", "Helvetica"),
		makeSummary(3, "Body text", "Helvetica"),
	}

	boundaries := s.Segment(pages)
	checkPartition(t, boundaries, 1, 3)
	if len(boundaries) < 2 {
		t.Errorf("Expected separator marker to open a boundary, got %+v", boundaries)
	}
}

func TestSegmenter_GeometryChangeContributes(t *testing.T) {
	config := DefaultConfig()
	config.Threshold = 0.2
	s := NewSegmenterWithConfig(config)

	landscape := makeSummary(2, "continued", "Helvetica")
	landscape.Width, landscape.Height = 792, 612

	boundaries := s.Segment([]PageSummary{
		makeSummary(1, "continued", "Helvetica"),
		landscape,
	})

	if len(boundaries) != 2 {
		t.Errorf("Expected orientation flip to split at low threshold, got %+v", boundaries)
	}
}

func TestSegmenter_LabelTruncation(t *testing.T) {
	s := NewSegmenter()
	long := strings.Repeat("HEADING WORDS ", 10)
	pages := []PageSummary{makeSummary(1, strings.TrimSpace(long), "Helvetica")}

	boundaries := s.Segment(pages)
	label := boundaries[0].Label
	if !strings.HasSuffix(label, "…") {
		t.Errorf("Expected truncated label to end with ellipsis: %q", label)
	}
	if got := len([]rune(label)); got != DefaultConfig().MaxLabelLen+1 {
		t.Errorf("Expected %d runes, got %d", DefaultConfig().MaxLabelLen+1, got)
	}
}

func TestSegmenter_PartitionProperty(t *testing.T) {
	// Alternating labels and fonts produce many boundaries; the result
	// must still partition the page range exactly.
	s := NewSegmenter()
	var pages []PageSummary
	for i := 1; i <= 17; i++ {
		if i%3 == 0 {
			pages = append(pages, makeSummary(i, "SECTION HEADING", "Courier"))
		} else {
			pages = append(pages, makeSummary(i, "COVER SHEET", "Helvetica"))
		}
	}

	boundaries := s.Segment(pages)
	checkPartition(t, boundaries, 1, 17)
}

func TestJaccardDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []string
		expected float64
	}{
		{"both empty", nil, nil, 0},
		{"identical", []string{"A", "B"}, []string{"A", "B"}, 0},
		{"disjoint", []string{"A"}, []string{"B"}, 1},
		{"half overlap", []string{"A", "B"}, []string{"B", "C"}, 1 - 1.0/3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := jaccardDistance(tt.a, tt.b); got != tt.expected {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
		})
	}
}
