package locator

import (
	"math"
	"testing"
)

func TestAlignerResolvesSequentialLevel1Headers(t *testing.T) {
	lines := []Line{
		newLine(0, 1, 0, "1 Introduction"),
		newLine(1, 1, 1, "prose"),
		newLine(2, 1, 2, "2 Requirements"),
	}
	windows := BuildWindows(lines, nil)
	cfg := DefaultConfig()
	ctx := baseScoreContext()
	ctx.PageLineCount = map[int]int{1: len(lines)}

	headers := []CandidateHeader{
		{Text: "Introduction", Number: "1", Level: 1, SourceIdx: 0},
		{Text: "Requirements", Number: "2", Level: 1, SourceIdx: 1},
	}
	aligner := NewAligner(lines, windows, cfg)
	results, _ := aligner.Align(headers, ctx, nil)

	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if !results[0].resolved {
		t.Error("expected results[0] to be resolved")
	}
	if !results[1].resolved {
		t.Error("expected results[1] to be resolved")
	}
	if results[0].anchor.GlobalIdx != 0 {
		t.Errorf("results[0].anchor.GlobalIdx = %d, want 0", results[0].anchor.GlobalIdx)
	}
	if results[1].anchor.GlobalIdx != 2 {
		t.Errorf("results[1].anchor.GlobalIdx = %d, want 2", results[1].anchor.GlobalIdx)
	}
}

func TestAlignerResolvesDescendantWithinParentWindow(t *testing.T) {
	lines := []Line{
		newLine(0, 1, 0, "1 Introduction"),
		newLine(1, 1, 1, "1.1 Scope"),
		newLine(2, 1, 2, "2 Requirements"),
	}
	windows := BuildWindows(lines, nil)
	cfg := DefaultConfig()
	ctx := baseScoreContext()
	ctx.PageLineCount = map[int]int{1: len(lines)}

	headers := []CandidateHeader{
		{Text: "Introduction", Number: "1", Level: 1, SourceIdx: 0},
		{Text: "Scope", Number: "1.1", Level: 2, SourceIdx: 1},
		{Text: "Requirements", Number: "2", Level: 1, SourceIdx: 2},
	}
	aligner := NewAligner(lines, windows, cfg)
	results, _ := aligner.Align(headers, ctx, nil)

	if !results[1].resolved {
		t.Fatal("expected results[1] to be resolved")
	}
	if results[1].anchor.GlobalIdx != 1 {
		t.Errorf("results[1].anchor.GlobalIdx = %d, want 1", results[1].anchor.GlobalIdx)
	}
}

func TestCoverageOfNumberedIgnoresUnNumberedHeaders(t *testing.T) {
	results := []alignResult{
		{spec: ParseNumber("1"), resolved: true},
		{spec: ParseNumber("2"), resolved: false},
		{spec: nil, resolved: false},
	}
	got := CoverageOfNumbered(results)
	if math.Abs(got-0.5) > 1e-9 {
		t.Errorf("CoverageOfNumbered() = %v, want 0.5", got)
	}
}

func TestCoverageOfNumberedAllNumberlessIsFullCoverage(t *testing.T) {
	results := []alignResult{{spec: nil}, {spec: nil}}
	if got := CoverageOfNumbered(results); got != 1.0 {
		t.Errorf("CoverageOfNumbered() = %v, want 1.0", got)
	}
}
