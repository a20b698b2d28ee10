package locator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Locate runs the full pipeline (C1-C10) over a line arena and an oracle's
// candidate outline, producing the final anchored headers and section
// spans. It never returns an error except for the two preconditions in
// errors.go; every other degraded condition is reported through
// LocateResult.Messages and Mode.
// The optional cosine argument wires the C5 vector-fusion path (spec §6.2):
// callers that have an embedder pass a function returning a cosine
// similarity for a Window. The function receives only the window, not the
// header being scored, so it cannot tell which header it is compared
// against. Locate
// itself never talks to an embedder — that would make the core's
// determinism depend on network/model availability.
func Locate(lines []Line, candidates []CandidateHeader, cfg Config, cosine ...func(w Window) (float64, bool)) (LocateResult, error) {
	if len(lines) == 0 {
		return LocateResult{}, ErrNoLines
	}

	tracer := NewTracer(cfg.TraceEnabled)
	result := LocateResult{Mode: ModeLLMFull}

	// C1: normalize every line in place.
	normalized := make([]Line, len(lines))
	copy(normalized, lines)
	for i := range normalized {
		normalized[i].NormalizedText = Normalize(normalized[i].Text, true)
	}

	// C2: classify noise.
	tocPages, _, runningTexts := DetectNoise(normalized, cfg)
	excludedPages := map[int]bool{}
	for p := range tocPages {
		excludedPages[p] = true
	}

	// C3: build scoring windows from the non-excluded lines.
	windows := BuildWindows(normalized, nil)

	pageLineCount := map[int]int{}
	for _, l := range normalized {
		pageLineCount[l.Page]++
	}
	medianFont := medianFontSize(normalized)

	scoreCtx := ScoreContext{
		TOCPages:            tocPages,
		RunningTexts:        runningTexts,
		MedianFontSize:      medianFont,
		PageBandLines:       cfg.BandLines,
		PageLineCount:       pageLineCount,
		AllowLastOccurrence: true,
	}
	if cfg.UseEmbeddings && len(cosine) > 0 && cosine[0] != nil {
		scoreCtx.UseEmbeddings = true
		scoreCtx.Cosine = cosine[0]
		scoreCtx.PageMaxFont, scoreCtx.PageMinY, scoreCtx.PageMaxY = pageExtents(normalized)
	}

	// C6: sequential alignment.
	aligner := NewAligner(normalized, windows, cfg)
	aligned, _ := aligner.Align(candidates, scoreCtx, tracer)

	anchors := make([]AnchoredHeader, 0, len(aligned))
	for _, r := range aligned {
		if r.resolved && r.anchor != nil {
			anchors = append(anchors, *r.anchor)
		}
	}

	// Two-tier coverage gate: if too few numbered headers resolved, fall
	// back to a pure sequential scan ignoring the cursor-gated windows.
	if cfg.SequentialCoverageMin > 0 && CoverageOfNumbered(aligned) < cfg.SequentialCoverageMin {
		anchors = sequentialFallback(candidates, windows, scoreCtx, cfg, tracer, anchors)
		result.Mode = ModeLLMStrict
		result.Messages = append(result.Messages, "sequential coverage below threshold, legacy fallback applied")
	}

	// C7: enforce invariants.
	anchors, stalled := EnforceInvariants(anchors, windows, normalized, scoreCtx, cfg, tracer)
	if stalled {
		result.Messages = append(result.Messages, fmt.Sprintf(msgMonotonicStall, cfg.RescanPasses))
	}

	// C8: fill numbering gaps.
	anchors = FillGaps(anchors, normalized, cfg, tracer)

	// Re-run C7 after gap filling: a recovered header's position comes from
	// a best-effort regex scan and must pass through the same parent-reanchor,
	// child-relocate, dedupe, and final-monotonic-guard repair as everything
	// else before it's trusted (spec.md §4.8 step 4).
	anchors, stalledAfterGapFill := EnforceInvariants(anchors, windows, normalized, scoreCtx, cfg, tracer)
	if stalledAfterGapFill {
		result.Messages = append(result.Messages, fmt.Sprintf(msgMonotonicStall, cfg.RescanPasses))
	}

	sort.Slice(anchors, func(i, j int) bool { return anchors[i].GlobalIdx < anchors[j].GlobalIdx })

	// C9: span sections.
	sections := BuildSections(anchors, normalized)

	result.Headers = anchors
	result.Sections = sections
	result.DocHash = DocHash(lines)
	for p := range excludedPages {
		result.ExcludedPages = append(result.ExcludedPages, p)
	}
	sort.Ints(result.ExcludedPages)

	if tracer != nil {
		headerDump := make([]map[string]any, 0, len(anchors))
		for _, a := range anchors {
			headerDump = append(headerDump, map[string]any{
				"number": a.Number, "text": a.Text, "level": a.Level, "global_idx": a.GlobalIdx,
			})
		}
		tracer.Event("final_outline", map[string]any{"headers": headerDump})
		result.Trace = tracer.AsList()
	}

	return result, nil
}

// sequentialFallback re-scans every header against the full candidate pool
// without cursor gating, used when the aligner's coverage of numbered
// headers falls below SequentialCoverageMin. Headers already anchored keep their anchor;
// only unresolved ones are retried.
func sequentialFallback(headers []CandidateHeader, windows []Window, ctx ScoreContext, cfg Config, tracer *Tracer, existing []AnchoredHeader) []AnchoredHeader {
	have := map[int]bool{}
	for _, a := range existing {
		have[a.SourceIdx] = true
	}

	out := append([]AnchoredHeader(nil), existing...)
	for _, h := range headers {
		if have[h.SourceIdx] {
			continue
		}
		spec := ParseNumber(h.Number)
		var best ScoredCandidate
		found := false
		for _, w := range windows {
			sc, ok := ScoreCandidate(h, spec, w, ctx, cfg)
			if !ok {
				continue
			}
			if !found || sc.Score > best.Score {
				best, found = sc, true
			}
		}
		if !found {
			if tracer != nil {
				tracer.Event("fallback_triggered", map[string]any{"reason": "sequential_fallback_miss", "source_idx": h.SourceIdx})
			}
			continue
		}
		best.Strategy = StrategySequentialFallback
		anchor := anchorFromCandidate(h, spec, best)
		out = append(out, *anchor)
		if tracer != nil {
			tracer.Event("anchor_resolved", map[string]any{"number": h.Number, "global_idx": anchor.GlobalIdx, "strategy": string(anchor.Strategy)})
		}
	}
	return out
}

// pageExtents computes, per page, the maximum font size and the Y-coordinate
// span observed across its lines. Only consulted by the vector fusion path
// (§4.5), so it's skipped entirely when embeddings are disabled.
func pageExtents(lines []Line) (maxFont, minY, maxY map[int]float64) {
	maxFont = map[int]float64{}
	minY = map[int]float64{}
	maxY = map[int]float64{}
	seen := map[int]bool{}
	for _, l := range lines {
		if l.HasFontSize && l.FontSize > maxFont[l.Page] {
			maxFont[l.Page] = l.FontSize
		}
		if l.HasBBox {
			if !seen[l.Page] || l.Y0 < minY[l.Page] {
				minY[l.Page] = l.Y0
			}
			if !seen[l.Page] || l.Y0 > maxY[l.Page] {
				maxY[l.Page] = l.Y0
			}
			seen[l.Page] = true
		}
	}
	return maxFont, minY, maxY
}

func medianFontSize(lines []Line) float64 {
	sizes := make([]float64, 0, len(lines))
	for _, l := range lines {
		if l.HasFontSize && l.FontSize > 0 {
			sizes = append(sizes, l.FontSize)
		}
	}
	if len(sizes) == 0 {
		return 0
	}
	sort.Float64s(sizes)
	mid := len(sizes) / 2
	if len(sizes)%2 == 0 {
		return (sizes[mid-1] + sizes[mid]) / 2
	}
	return sizes[mid]
}

// DocHash fingerprints the line stream's text content, used as the stable
// document identity component of the cache key (see cache.go).
func DocHash(lines []Line) string {
	h := sha256.New()
	for _, l := range lines {
		h.Write([]byte(l.Text))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
