package locator

import (
	"math"
	"testing"
)

func baseScoreContext() ScoreContext {
	return ScoreContext{
		TOCPages:            map[int]bool{},
		RunningTexts:        map[string]bool{},
		MedianFontSize:      10,
		PageBandLines:       5,
		PageLineCount:       map[int]int{1: 20},
		AllowLastOccurrence: true,
	}
}

func TestScoreCandidateRejectsOnTOCWithoutLastOccurrence(t *testing.T) {
	cfg := DefaultConfig()
	ctx := baseScoreContext()
	ctx.TOCPages[1] = true
	ctx.AllowLastOccurrence = false

	h := CandidateHeader{Text: "General", Number: "1"}
	spec := ParseNumber("1")
	w := makeWindow([]Line{newLine(0, 1, 10, "1 General")}, 0, 0)

	if _, ok := ScoreCandidate(h, spec, w, ctx, cfg); ok {
		t.Error("expected TOC candidate without last-occurrence fallback to be rejected")
	}
}

func TestScoreCandidateAcceptsNumberedMatch(t *testing.T) {
	cfg := DefaultConfig()
	ctx := baseScoreContext()
	h := CandidateHeader{Text: "General", Number: "1"}
	spec := ParseNumber("1")
	w := makeWindow([]Line{newLine(0, 1, 10, "1 General")}, 0, 0)

	sc, ok := ScoreCandidate(h, spec, w, ctx, cfg)
	if !ok {
		t.Fatal("expected candidate to be accepted")
	}
	if !sc.HasNumber {
		t.Error("expected HasNumber = true")
	}
	if sc.Strategy != StrategyNumTitle {
		t.Errorf("Strategy = %v, want %v", sc.Strategy, StrategyNumTitle)
	}
}

func TestScoreCandidateRejectsLowRatio(t *testing.T) {
	cfg := DefaultConfig()
	ctx := baseScoreContext()
	h := CandidateHeader{Text: "Completely Different Title", Number: "1"}
	spec := ParseNumber("1")
	w := makeWindow([]Line{newLine(0, 1, 10, "1 General")}, 0, 0)

	if _, ok := ScoreCandidate(h, spec, w, ctx, cfg); ok {
		t.Error("expected low fuzzy-ratio candidate to be rejected")
	}
}

func TestTokenSetRatioIgnoresWordOrderAndDuplicates(t *testing.T) {
	r := tokenSetRatio("general requirements", "requirements general general")
	if r <= 90.0 {
		t.Errorf("tokenSetRatio() = %v, want > 90.0", r)
	}
}

func TestScoreVectorCandidateGatesBeforeFusing(t *testing.T) {
	cfg := DefaultConfig()
	if _, ok := ScoreVectorCandidate(0.1, 0.9, 1, 1, cfg); ok {
		t.Error("below MinLexical must reject regardless of cosine")
	}

	if _, ok := ScoreVectorCandidate(0.9, 0.1, 1, 1, cfg); ok {
		t.Error("below MinCosine must reject regardless of lexical")
	}

	fused, ok := ScoreVectorCandidate(1, 1, 1, 1, cfg)
	if !ok {
		t.Fatal("expected fully-weighted inputs to pass gating")
	}
	if math.Abs(fused-1.0) > 1e-9 {
		t.Errorf("fused = %v, want 1.0", fused)
	}
}

func TestScoreCandidateTypoBonusRewardsBoldAndOversizedFont(t *testing.T) {
	cfg := DefaultConfig()
	ctx := baseScoreContext()
	h := CandidateHeader{Text: "General", Number: "1"}
	spec := ParseNumber("1")

	plain := makeWindow([]Line{newLine(0, 1, 10, "1 General")}, 0, 0)
	scPlain, ok := ScoreCandidate(h, spec, plain, ctx, cfg)
	if !ok {
		t.Fatal("expected plain candidate to be accepted")
	}

	boldLine := withFont(newLine(0, 1, 10, "1 General"), 11, true)
	bold := makeWindow([]Line{boldLine}, 0, 0)
	scBold, ok := ScoreCandidate(h, spec, bold, ctx, cfg)
	if !ok {
		t.Fatal("expected bold candidate to be accepted")
	}
	if scBold.Score <= scPlain.Score {
		t.Errorf("bold score %v should exceed plain score %v", scBold.Score, scPlain.Score)
	}

	bigLine := withFont(newLine(0, 1, 10, "1 General"), 14, false)
	big := makeWindow([]Line{bigLine}, 0, 0)
	scBig, ok := ScoreCandidate(h, spec, big, ctx, cfg)
	if !ok {
		t.Fatal("expected oversized-font candidate to be accepted")
	}
	if scBig.Score <= scPlain.Score {
		t.Errorf("oversized-font score %v should exceed plain score %v", scBig.Score, scPlain.Score)
	}
}

func TestScoreCandidateFusesVectorPathWhenEnabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseEmbeddings = true
	cfg.MinLexical = 0
	cfg.MinCosine = 0

	ctx := baseScoreContext()
	ctx.UseEmbeddings = true
	ctx.PageMaxFont = map[int]float64{1: 12}
	ctx.PageMinY = map[int]float64{1: 0}
	ctx.PageMaxY = map[int]float64{1: 100}
	ctx.Cosine = func(w Window) (float64, bool) { return 0.8, true }

	h := CandidateHeader{Text: "General", Number: "1"}
	spec := ParseNumber("1")
	line := withBBox(withFont(newLine(0, 1, 10, "1 General"), 12, false), 0, 10, 100, 20)
	w := makeWindow([]Line{line}, 0, 0)

	sc, ok := ScoreCandidate(h, spec, w, ctx, cfg)
	if !ok {
		t.Fatal("expected vector-fused candidate to be accepted")
	}
	if sc.Strategy != StrategyVector {
		t.Errorf("Strategy = %v, want %v", sc.Strategy, StrategyVector)
	}
	if sc.Score <= 0.0 {
		t.Errorf("Score = %v, want > 0", sc.Score)
	}
}

func TestWindowInBandDetectsTopAndBottomBand(t *testing.T) {
	ctx := baseScoreContext()
	top := Window{Page: 1, StartLineIdx: 0}
	mid := Window{Page: 1, StartLineIdx: 10}
	bottom := Window{Page: 1, StartLineIdx: 19}

	if !windowInBand(top, ctx) {
		t.Error("expected top-band window to be in band")
	}
	if windowInBand(mid, ctx) {
		t.Error("expected mid-page window to not be in band")
	}
	if !windowInBand(bottom, ctx) {
		t.Error("expected bottom-band window to be in band")
	}
}
