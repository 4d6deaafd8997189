package layout

import (
	"math"
	"testing"

	"github.com/chanfle/docrecon/model"
)

// makeFragment creates a test fragment with a horizontal baseline
func makeFragment(txt string, x, y, width, spaceWidth float64) model.TextFragment {
	return model.TextFragment{
		Text:       txt,
		Start:      model.Point{X: x, Y: y},
		End:        model.Point{X: x + width, Y: y},
		FontID:     "F1",
		FontName:   "Helvetica",
		FontSize:   12,
		SpaceWidth: spaceWidth,
		Page:       1,
	}
}

func TestAssembler_Empty(t *testing.T) {
	a := NewAssembler()

	if lines := a.Assemble(nil); len(lines) != 0 {
		t.Errorf("Expected no lines, got %d", len(lines))
	}
	if lines := a.Assemble([]model.TextFragment{}); len(lines) != 0 {
		t.Errorf("Expected no lines, got %d", len(lines))
	}
}

func TestAssembler_SingleFragment(t *testing.T) {
	a := NewAssembler()
	lines := a.Assemble([]model.TextFragment{
		makeFragment("Hello", 100, 700, 40, 5),
	})

	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if lines[0].Y != 700 {
		t.Errorf("Expected representative Y 700, got %f", lines[0].Y)
	}
	if len(lines[0].Fragments) != 1 {
		t.Errorf("Expected 1 fragment, got %d", len(lines[0].Fragments))
	}
}

func TestAssembler_GroupsWithinTolerance(t *testing.T) {
	a := NewAssembler()
	lines := a.Assemble([]model.TextFragment{
		makeFragment("first", 100, 700, 40, 5),
		makeFragment("second", 150, 700.9, 40, 5),
		makeFragment("below", 100, 685, 40, 5),
	})

	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}

	var top *Line
	for i := range lines {
		if len(lines[i].Fragments) == 2 {
			top = &lines[i]
		}
	}
	if top == nil {
		t.Fatal("Expected one line with 2 fragments")
	}
	for _, f := range top.Fragments {
		if math.Abs(f.Start.Y-top.Y) > DefaultLineConfig().VerticalTolerance {
			t.Errorf("Fragment at Y=%f outside tolerance of line Y=%f", f.Start.Y, top.Y)
		}
	}
}

func TestAssembler_ToleranceBoundary(t *testing.T) {
	config := LineConfig{VerticalTolerance: 2.0}
	a := NewAssemblerWithConfig(config)

	// Exactly at tolerance joins; just past it opens a new line.
	lines := a.Assemble([]model.TextFragment{
		makeFragment("a", 100, 700, 10, 5),
		makeFragment("b", 120, 698, 10, 5),
	})
	if len(lines) != 1 {
		t.Errorf("Expected fragments 2.0 apart to share a line, got %d lines", len(lines))
	}

	lines = a.Assemble([]model.TextFragment{
		makeFragment("a", 100, 700, 10, 5),
		makeFragment("b", 120, 697.9, 10, 5),
	})
	if len(lines) != 2 {
		t.Errorf("Expected fragments 2.1 apart to split, got %d lines", len(lines))
	}
}

func TestAssembler_FragmentsSortedByX(t *testing.T) {
	a := NewAssembler()
	lines := a.Assemble([]model.TextFragment{
		makeFragment("right", 300, 700, 40, 5),
		makeFragment("left", 100, 700, 40, 5),
		makeFragment("middle", 200, 700, 40, 5),
	})

	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}

	got := ""
	for _, f := range lines[0].Fragments {
		got += f.Text + " "
	}
	if got != "left middle right " {
		t.Errorf("Fragments not in X order: %q", got)
	}
}

func TestAssembler_CoincidentXPreservesStreamOrder(t *testing.T) {
	a := NewAssembler()
	frags := []model.TextFragment{
		makeFragment("first", 100, 700, 40, 5),
		makeFragment("second", 100, 700, 40, 5),
	}

	lines := a.Assemble(frags)
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if lines[0].Fragments[0].Text != "first" || lines[0].Fragments[1].Text != "second" {
		t.Errorf("Stream order not preserved for coincident fragments: %q then %q",
			lines[0].Fragments[0].Text, lines[0].Fragments[1].Text)
	}

	// Reversing the stream reverses the output: stream order is the
	// documented tie-break for coincident coordinates.
	lines = a.Assemble([]model.TextFragment{frags[1], frags[0]})
	if lines[0].Fragments[0].Text != "second" {
		t.Errorf("Expected reversed stream to yield reversed order, got %q first",
			lines[0].Fragments[0].Text)
	}
}

func TestAssembler_DropsNonFiniteGeometry(t *testing.T) {
	a := NewAssembler()
	bad := makeFragment("bad", 100, 700, 40, 5)
	bad.Start.Y = math.NaN()

	lines := a.Assemble([]model.TextFragment{
		bad,
		makeFragment("good", 100, 680, 40, 5),
	})

	if len(lines) != 1 {
		t.Fatalf("Expected 1 line after dropping bad geometry, got %d", len(lines))
	}
	if lines[0].Fragments[0].Text != "good" {
		t.Errorf("Expected surviving fragment 'good', got %q", lines[0].Fragments[0].Text)
	}
}

func TestAssembler_LineBBox(t *testing.T) {
	a := NewAssembler()
	lines := a.Assemble([]model.TextFragment{
		makeFragment("a", 100, 700, 40, 5),
		makeFragment("b", 200, 700, 60, 5),
	})

	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	bbox := lines[0].BBox
	if bbox.X != 100 {
		t.Errorf("Expected bbox left 100, got %f", bbox.X)
	}
	if bbox.Right() != 260 {
		t.Errorf("Expected bbox right 260, got %f", bbox.Right())
	}
}
