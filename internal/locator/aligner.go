package locator

import "sort"

// alignWindow is the span of global_idx a descendant header is allowed to
// search within.
type alignWindow struct {
	start, end int // [start, end)
}

// Aligner implements C6: first-pass anchor assignment respecting source
// order and monotonicity.
type Aligner struct {
	cfg     Config
	windows []Window
	byLine  map[LineID]Window // keyed by StartLineID, preferring a multi-line window over W1
	lines   []Line
}

// NewAligner indexes windows for the scans the alignment algorithm performs.
func NewAligner(lines []Line, windows []Window, cfg Config) *Aligner {
	byLine := make(map[LineID]Window, len(windows))
	for _, w := range windows {
		if existing, ok := byLine[w.StartLineID]; !ok || w.IsTriple && !existing.IsTriple {
			byLine[w.StartLineID] = w
		}
	}
	return &Aligner{cfg: cfg, windows: windows, byLine: byLine, lines: lines}
}

// candidatesInRange returns every window whose StartLineID falls in
// [start, end), sorted by StartLineID ascending.
func (a *Aligner) candidatesInRange(start, end int) []Window {
	out := make([]Window, 0)
	for _, w := range a.windows {
		gid := int(w.StartLineID)
		if gid >= start && gid < end {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartLineID < out[j].StartLineID })
	return out
}

// alignResult is one header's resolution (or lack of one).
type alignResult struct {
	header  CandidateHeader
	spec    *NumberSpec
	anchor  *AnchoredHeader
	resolved bool
}

// Align runs the two-pass cursor scan for level-1 headers, then scans
// descendants within their parent's computed window. It returns results in
// oracle source order, plus the per-level-1-header windows for callers
// (gap filler, enforcer) that need them. It never raises; unresolved
// headers come back with resolved=false and the caller emits
// anchor_unresolved.
func (a *Aligner) Align(headers []CandidateHeader, ctx ScoreContext, tracer *Tracer) ([]alignResult, map[string]alignWindow) {
	results := make([]alignResult, len(headers))
	specs := make([]*NumberSpec, len(headers))
	for i, h := range headers {
		specs[i] = ParseNumber(h.Number)
		results[i] = alignResult{header: h, spec: specs[i]}
	}

	lastLineGlobalIdx := -1
	if len(a.lines) > 0 {
		lastLineGlobalIdx = a.lines[len(a.lines)-1].GlobalIdx
	}

	level1Idx := []int{}
	for i, h := range headers {
		if h.Level == 1 {
			level1Idx = append(level1Idx, i)
		}
	}

	cursor := -1
	for _, i := range level1Idx {
		best, ok := a.scanTwoPass(results[i].header, specs[i], cursor, lastLineGlobalIdx+1, ctx)
		if !ok {
			if tracer != nil {
				tracer.Event("anchor_unresolved", map[string]any{"number": results[i].header.Number, "text": results[i].header.Text})
			}
			continue
		}
		results[i].anchor = anchorFromCandidate(results[i].header, specs[i], best)
		results[i].resolved = true
		cursor = results[i].anchor.GlobalIdx
		if tracer != nil {
			tracer.Event("anchor_resolved", map[string]any{"number": results[i].header.Number, "text": results[i].header.Text, "global_idx": cursor, "strategy": string(best.Strategy)})
		}
	}

	windows := a.computeLevel1Windows(results, level1Idx, lastLineGlobalIdx)

	// Descendants in (parent-number, level, source-order).
	descIdx := []int{}
	for i, h := range headers {
		if h.Level != 1 {
			descIdx = append(descIdx, i)
		}
	}
	sort.Slice(descIdx, func(x, y int) bool {
		ix, iy := descIdx[x], descIdx[y]
		pkx, pky := specs[ix].ParentKey(), specs[iy].ParentKey()
		if pkx != pky {
			return pkx < pky
		}
		if headers[ix].Level != headers[iy].Level {
			return headers[ix].Level < headers[iy].Level
		}
		return headers[ix].SourceIdx < headers[iy].SourceIdx
	})

	chainCursor := map[string]int{} // parentKey -> cursor
	for _, i := range descIdx {
		pk := specs[i].ParentKey()
		win, ok := windows[pk]
		if !ok {
			win = alignWindow{start: 0, end: lastLineGlobalIdx + 1}
		}
		start := win.start - a.cfg.WindowPad
		if start < 0 {
			start = 0
		}
		end := win.end + a.cfg.WindowPad
		if end > lastLineGlobalIdx+1 {
			end = lastLineGlobalIdx + 1
		}
		cur := chainCursor[pk]
		if cur == 0 {
			cur = win.start - 1
		}

		best, ok := a.scanTwoPass(results[i].header, specs[i], cur, end, ctx)
		if !ok {
			if tracer != nil {
				tracer.Event("anchor_unresolved", map[string]any{"number": results[i].header.Number, "text": results[i].header.Text})
			}
			continue
		}
		if int(best.Window.StartLineID) < start {
			continue
		}
		results[i].anchor = anchorFromCandidate(results[i].header, specs[i], best)
		results[i].resolved = true
		chainCursor[pk] = results[i].anchor.GlobalIdx
		windows[specs[i].Key()] = alignWindow{start: results[i].anchor.GlobalIdx, end: win.end}
		if tracer != nil {
			tracer.Event("anchor_resolved", map[string]any{"number": results[i].header.Number, "text": results[i].header.Text, "global_idx": results[i].anchor.GlobalIdx, "strategy": string(best.Strategy)})
		}
	}

	return results, windows
}

// scanTwoPass implements the cursor-based two-pass scan plus monotonic
// violation / later-duplicate recovery from §4.6.
func (a *Aligner) scanTwoPass(header CandidateHeader, spec *NumberSpec, cursor, end int, ctx ScoreContext) (ScoredCandidate, bool) {
	cands := a.candidatesInRange(cursor+1, end)

	scoreAll := func(requireNumber bool) []ScoredCandidate {
		out := []ScoredCandidate{}
		for _, w := range cands {
			sc, ok := ScoreCandidate(header, spec, w, ctx, a.cfg)
			if !ok {
				continue
			}
			if requireNumber && spec != nil && !sc.HasNumber {
				continue
			}
			out = append(out, sc)
		}
		return out
	}

	pass1 := scoreAll(true)
	chosen, ok := pickBest(pass1, cursor)
	if !ok && !a.cfg.StrictNumericFirstPass {
		pass2 := scoreAll(false)
		chosen, ok = pickBest(pass2, cursor)
	}
	if ok {
		return chosen, true
	}

	// Monotonic violation / later-duplicate recovery: search the full
	// candidate set (not cursor-gated) for the best match, then look for
	// a later occurrence of the same normalized text after the cursor.
	allCands := a.candidatesInRange(0, end)
	fullScored := []ScoredCandidate{}
	for _, w := range allCands {
		sc, ok := ScoreCandidate(header, spec, w, ctx, a.cfg)
		if ok {
			fullScored = append(fullScored, sc)
		}
	}
	if len(fullScored) == 0 {
		return ScoredCandidate{}, false
	}
	sort.Slice(fullScored, func(i, j int) bool { return fullScored[i].Score > fullScored[j].Score })
	violator := fullScored[0]
	for _, w := range allCands {
		if int(w.StartLineID) <= cursor {
			continue
		}
		if w.Text == violator.Window.Text {
			dup := violator
			dup.Window = w
			return dup, true
		}
	}
	if a.cfg.LastOccurrenceFallback && !a.cfg.AfterAnchorOnly {
		violator.Strategy = StrategyLastOccurrence
		return violator, true
	}
	return ScoredCandidate{}, false
}

// pickBest applies the §4.6 tie-break chain: earliest global_idx > cursor
// with the max score; ties broken by numeric evidence, font_max, non-band,
// then lowest source_idx (source_idx is constant per call so it only
// matters when this is invoked per-header, which it is).
func pickBest(cands []ScoredCandidate, cursor int) (ScoredCandidate, bool) {
	best := -1
	for i, c := range cands {
		if int(c.Window.StartLineID) <= cursor {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		if better(c, cands[best]) {
			best = i
		}
	}
	if best == -1 {
		return ScoredCandidate{}, false
	}
	return cands[best], true
}

func better(a, b ScoredCandidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Window.StartLineID != b.Window.StartLineID {
		return a.Window.StartLineID < b.Window.StartLineID
	}
	if a.HasNumber != b.HasNumber {
		return a.HasNumber
	}
	if a.Window.FontMax != b.Window.FontMax {
		return a.Window.FontMax > b.Window.FontMax
	}
	if a.BandFlag != b.BandFlag {
		return !a.BandFlag
	}
	return false
}

func anchorFromCandidate(h CandidateHeader, spec *NumberSpec, sc ScoredCandidate) *AnchoredHeader {
	return &AnchoredHeader{
		Text:      h.Text,
		Number:    h.Number,
		Level:     h.Level,
		Page:      sc.Window.Page,
		LineIdx:   sc.Window.StartLineIdx,
		GlobalIdx: int(sc.Window.StartLineID),
		SourceIdx: h.SourceIdx,
		Strategy:  sc.Strategy,
		Score:     sc.Score,
		Spec:      spec,
	}
}

// computeLevel1Windows builds [anchor(N_i), anchor(N_{i+1})) for every
// resolved level-1 header, with the last window extending to the document
// end, keyed by the header's NumberSpec.Key().
func (a *Aligner) computeLevel1Windows(results []alignResult, level1Idx []int, lastLineGlobalIdx int) map[string]alignWindow {
	windows := map[string]alignWindow{}
	resolved := []int{}
	for _, i := range level1Idx {
		if results[i].resolved {
			resolved = append(resolved, i)
		}
	}
	sort.Slice(resolved, func(x, y int) bool {
		return results[resolved[x]].anchor.GlobalIdx < results[resolved[y]].anchor.GlobalIdx
	})
	for pos, i := range resolved {
		start := results[i].anchor.GlobalIdx
		end := lastLineGlobalIdx + 1
		if pos+1 < len(resolved) {
			end = results[resolved[pos+1]].anchor.GlobalIdx
		}
		windows[results[i].spec.Key()] = alignWindow{start: start, end: end}
	}
	return windows
}

// CoverageOfNumbered returns the fraction of headers carrying a number that
// resolved to an anchor, used to gate the legacy fallback strategy.
func CoverageOfNumbered(results []alignResult) float64 {
	total, resolved := 0, 0
	for _, r := range results {
		if r.spec == nil {
			continue
		}
		total++
		if r.resolved {
			resolved++
		}
	}
	if total == 0 {
		return 1
	}
	return float64(resolved) / float64(total)
}
