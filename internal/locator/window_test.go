package locator

import "testing"

func TestBuildWindowsSkipsNoiseAndExcludedPages(t *testing.T) {
	lines := []Line{
		newLine(0, 1, 0, "1 GENERAL ........... 1"),
		newLine(1, 2, 0, "real body text"),
		newLine(2, 3, 0, "excluded page text"),
	}
	lines[0].IsTOC = true
	excluded := map[int]bool{3: true}

	windows := BuildWindows(lines, excluded)
	for _, w := range windows {
		if w.Page == 1 {
			t.Errorf("window on page 1 should have been skipped as noise: %+v", w)
		}
		if w.Page == 3 {
			t.Errorf("window on excluded page 3 should have been skipped: %+v", w)
		}
	}
}

func TestBuildWindowsProducesW2AndW3Fusions(t *testing.T) {
	lines := []Line{
		newLine(0, 1, 0, "APPENDIX A"),
		newLine(1, 1, 1, "SUBMITTALS"),
		newLine(2, 1, 2, "AND FORMS"),
	}
	windows := BuildWindows(lines, nil)

	sawSingle, sawDouble, sawTriple := false, false, false
	for _, w := range windows {
		switch w.Text {
		case "appendix a":
			sawSingle = true
		case "appendix a submittals":
			sawDouble = true
		case "appendix a submittals and forms":
			sawTriple = true
		}
	}
	if !sawSingle {
		t.Error("expected a W1 window")
	}
	if !sawDouble {
		t.Error("expected a W2 window")
	}
	if !sawTriple {
		t.Error("expected a W3 window")
	}
}

func TestBuildWindowsAggregatesFontMax(t *testing.T) {
	lines := []Line{
		withFont(newLine(0, 1, 0, "Intro"), 10, false),
		withFont(newLine(1, 1, 1, "Scope"), 16, true),
	}
	windows := BuildWindows(lines, nil)
	var w2 Window
	for _, w := range windows {
		if w.Text == "intro scope" {
			w2 = w
		}
	}
	if w2.FontMax != 16.0 {
		t.Errorf("FontMax = %v, want 16.0", w2.FontMax)
	}
}

func TestFontRankAndYBonusClampToUnit(t *testing.T) {
	if got := fontRank(20, 10); got != 1.0 {
		t.Errorf("fontRank(20, 10) = %v, want 1.0", got)
	}
	if got := fontRank(5, 10); got != 0.5 {
		t.Errorf("fontRank(5, 10) = %v, want 0.5", got)
	}
	if got := fontRank(5, 0); got != 0.0 {
		t.Errorf("fontRank(5, 0) = %v, want 0.0", got)
	}

	if got := yBonus(0, 0, 100); got != 1.0 {
		t.Errorf("yBonus(0, 0, 100) = %v, want 1.0", got)
	}
	if got := yBonus(100, 0, 100); got != 0.0 {
		t.Errorf("yBonus(100, 0, 100) = %v, want 0.0", got)
	}
}
