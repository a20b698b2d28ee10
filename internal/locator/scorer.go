package locator

import (
	"strings"

	"github.com/agext/levenshtein"
)

// ScoreContext bundles the cross-cutting state the scorer needs that isn't
// carried by the window or header themselves.
type ScoreContext struct {
	TOCPages         map[int]bool
	RunningTexts     map[string]bool
	MedianFontSize   float64
	PageBandLines    int   // B in spec, default from cfg.BandLines
	PageLineCount    map[int]int
	AllowLastOccurrence bool

	// Per-page stats for the vector path's fontRank/yBonus normalization.
	PageMaxFont map[int]float64
	PageMinY    map[int]float64
	PageMaxY    map[int]float64

	// Vector path, optional.
	UseEmbeddings bool
	Cosine        func(w Window) (float64, bool)
}

// ScoredCandidate is one window scored against one header.
type ScoredCandidate struct {
	Window   Window
	Score    float64
	Strategy Strategy
	HasNumber bool
	BandFlag bool
	OnTOC    bool
	OnRunning bool
}

// tokenSetRatio approximates rapidfuzz's token_set_ratio: compare the
// union/intersection of token sets via normalized Levenshtein similarity
// over the sorted-unique-token strings, which is robust to word reordering
// and duplication the way token_set_ratio is.
func tokenSetRatio(a, b string) float64 {
	ta := uniqueSortedTokens(a)
	tb := uniqueSortedTokens(b)
	if ta == "" && tb == "" {
		return 100
	}
	if ta == "" || tb == "" {
		return 0
	}
	sim := levenshtein.Match(ta, tb, nil)
	return sim * 100
}

func uniqueSortedTokens(s string) string {
	toks := tokenize(strings.ToLower(s))
	seen := map[string]bool{}
	uniq := make([]string, 0, len(toks))
	for _, t := range toks {
		if !seen[t] {
			seen[t] = true
			uniq = append(uniq, t)
		}
	}
	sortStrings(uniq)
	return strings.Join(uniq, " ")
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// partialRatio is used by the section spanner's query helpers; it falls
// back to the same normalized similarity rather than a true substring
// partial-ratio, which is an acceptable approximation for ranking.
func partialRatio(query, candidate string) float64 {
	if query == "" || candidate == "" {
		return 0
	}
	return levenshtein.Match(strings.ToLower(query), strings.ToLower(candidate), nil) * 100
}

// ScoreCandidate implements C5's score() contract for the lexical path.
func ScoreCandidate(header CandidateHeader, numSpec *NumberSpec, w Window, ctx ScoreContext, cfg Config) (ScoredCandidate, bool) {
	onTOC := ctx.TOCPages[w.Page]
	onRunning := windowIsRunning(w, ctx.RunningTexts)

	allowNoise := ctx.AllowLastOccurrence && cfg.LastOccurrenceFallback
	if (onTOC || onRunning) && !allowNoise {
		return ScoredCandidate{}, false
	}

	hasNumber := false
	if numSpec != nil {
		re := CompileFuzzyRegex(numSpec)
		if re != nil && re.MatchString(w.Text) {
			hasNumber = true
		}
	}

	var want string
	if hasNumber {
		want = Normalize(header.Number+" "+header.Text, true)
	} else {
		want = Normalize(header.Text, true)
	}
	ratio := tokenSetRatio(want, w.Text)

	threshold := cfg.FuzzyThresholdTitleOnly
	if hasNumber {
		threshold = cfg.FuzzyThresholdNumTitle
	}
	if ratio < threshold {
		return ScoredCandidate{}, false
	}

	typoBonus := 0.0
	if w.FontMax >= maxFloat(12, 1.1*ctx.MedianFontSize) {
		typoBonus += 1
	}
	if w.BoldAny {
		typoBonus += 1
	}

	bandFlag := windowInBand(w, ctx)

	score := cfg.WeightFuzzy*ratio + cfg.WeightTypo*(50*typoBonus)
	if !bandFlag {
		score += cfg.WeightPos * 50
	}
	if bandFlag {
		score -= cfg.PenaltyBand
	}
	if onTOC {
		score -= cfg.PenaltyTOC
	}
	if onRunning {
		score -= cfg.RunningPenalty
	}

	strategy := StrategyTitleOnly
	if hasNumber {
		strategy = StrategyNumTitle
		if ratio < cfg.FuzzyThresholdNumTitle+5 {
			strategy = StrategyNumTitleWeak
		}
	}

	if ctx.UseEmbeddings && ctx.Cosine != nil {
		if cosine, ok := ctx.Cosine(w); ok {
			fontRk := fontRank(w.FontMax, ctx.PageMaxFont[w.Page])
			yB := yBonus(w.YTop, ctx.PageMinY[w.Page], ctx.PageMaxY[w.Page])
			if fused, fuseOK := ScoreVectorCandidate(ratio/100, cosine, fontRk, yB, cfg); fuseOK {
				score = fused * 100
				strategy = StrategyVector
			}
		}
	}

	return ScoredCandidate{
		Window:    w,
		Score:     score,
		Strategy:  strategy,
		HasNumber: hasNumber,
		BandFlag:  bandFlag,
		OnTOC:     onTOC,
		OnRunning: onRunning,
	}, true
}

func windowIsRunning(w Window, runningTexts map[string]bool) bool {
	if len(runningTexts) == 0 {
		return false
	}
	return runningTexts[w.Text]
}

func windowInBand(w Window, ctx ScoreContext) bool {
	band := ctx.PageBandLines
	if band <= 0 {
		band = 5
	}
	total, ok := ctx.PageLineCount[w.Page]
	if !ok || total == 0 {
		return false
	}
	return w.StartLineIdx < band || w.StartLineIdx >= total-band
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// ScoreVectorCandidate fuses lexical, cosine, font-rank, and y-bonus
// signals per the optional vector path in §4.5. It gates on MinLexical and
// MinCosine before fusing, matching Python's locate_headers_with_vectors
// gating order.
func ScoreVectorCandidate(lexicalNorm, cosine, fontRk, yB float64, cfg Config) (float64, bool) {
	if lexicalNorm < cfg.MinLexical || cosine < cfg.MinCosine {
		return 0, false
	}
	w := cfg.FuseWeights
	fused := w[0]*lexicalNorm + w[1]*cosine + w[2]*fontRk + w[3]*yB
	return fused, true
}
