package locator

import "sort"

// EnforceInvariants implements C7: parent reanchor, child relocation,
// dedupe, and a final monotonic guard, iterated to a fixpoint bounded by
// cfg.RescanPasses.
func EnforceInvariants(anchors []AnchoredHeader, windowsByLine []Window, lines []Line, ctx ScoreContext, cfg Config, tracer *Tracer) ([]AnchoredHeader, bool) {
	stalled := false
	for pass := 0; pass < cfg.RescanPasses; pass++ {
		var changed1, changed2, changed3 bool

		anchors, changed1 = passParentReanchor(anchors, windowsByLine, lines, ctx, cfg, tracer)
		anchors, changed2 = passChildRelocate(anchors, windowsByLine, lines, ctx, cfg, tracer)
		anchors, changed3 = passDedupe(anchors, cfg, tracer)
		changed := changed1 || changed2 || changed3

		if !changed {
			break
		}
		if pass == cfg.RescanPasses-1 {
			stalled = hasMonotonicViolation(anchors)
		}
	}

	if cfg.FinalMonotonicGuard {
		anchors = finalMonotonicGuard(anchors, lines, tracer)
	}

	sort.Slice(anchors, func(i, j int) bool { return anchors[i].GlobalIdx < anchors[j].GlobalIdx })
	return anchors, stalled
}

func byNumberKey(anchors []AnchoredHeader) map[string]*AnchoredHeader {
	m := map[string]*AnchoredHeader{}
	for i := range anchors {
		if anchors[i].Spec != nil {
			m[anchors[i].Spec.Key()] = &anchors[i]
		}
	}
	return m
}

// passParentReanchor: for each parent P whose anchor succeeds any anchored
// child (violating I3), rescan [max(0, earliestChild-window), earliestChild)
// for P's number; failing that, set an implied anchor at earliestChild.
func passParentReanchor(anchors []AnchoredHeader, windows []Window, lines []Line, ctx ScoreContext, cfg Config, tracer *Tracer) ([]AnchoredHeader, bool) {
	byKey := byNumberKey(anchors)
	changed := false

	childrenByParent := map[string][]int{}
	for i, a := range anchors {
		if a.Spec == nil {
			continue
		}
		pk := a.Spec.ParentKey()
		if pk == "" {
			continue
		}
		childrenByParent[pk] = append(childrenByParent[pk], i)
	}

	for parentKey, childIdxs := range childrenByParent {
		parent, ok := byKey[parentKey]
		if !ok {
			continue
		}
		earliestChild := -1
		for _, ci := range childIdxs {
			gid := anchors[ci].GlobalIdx
			if earliestChild == -1 || gid < earliestChild {
				earliestChild = gid
			}
		}
		if parent.GlobalIdx < earliestChild {
			continue
		}

		start := earliestChild - cfg.ParentReanchorWindow
		if start < 0 {
			start = 0
		}
		best, found := scanForNumber(parent.Spec, parent.Text, windows, start, earliestChild, ctx, cfg)
		if found {
			parent.GlobalIdx = int(best.Window.StartLineID)
			parent.Page = best.Window.Page
			parent.LineIdx = best.Window.StartLineIdx
			parent.Strategy = StrategyReanchorFromScan
			changed = true
			if tracer != nil {
				tracer.Event("reanchor_parent", map[string]any{"number": parent.Number, "global_idx": parent.GlobalIdx})
			}
		} else {
			parent.GlobalIdx = earliestChild
			parent.Strategy = StrategyReanchorImplied
			changed = true
			if tracer != nil {
				tracer.Event("reanchor_parent_implied", map[string]any{"number": parent.Number, "global_idx": parent.GlobalIdx})
			}
		}
	}
	return anchors, changed
}

func scanForNumber(spec *NumberSpec, title string, windows []Window, start, end int, ctx ScoreContext, cfg Config) (ScoredCandidate, bool) {
	header := CandidateHeader{Text: title, Number: spec.Raw}
	var best ScoredCandidate
	found := false
	for _, w := range windows {
		gid := int(w.StartLineID)
		if gid < start || gid >= end {
			continue
		}
		sc, ok := ScoreCandidate(header, spec, w, ctx, cfg)
		if !ok || !sc.HasNumber {
			continue
		}
		if !found || sc.Score > best.Score {
			best = sc
			found = true
		}
	}
	return best, found
}

// passChildRelocate: for each anchored descendant D of P outside P's
// computed window, rescan that window for a candidate with numeric
// evidence and move D there if found.
func passChildRelocate(anchors []AnchoredHeader, windows []Window, lines []Line, ctx ScoreContext, cfg Config, tracer *Tracer) ([]AnchoredHeader, bool) {
	byKey := byNumberKey(anchors)
	changed := false
	lastGID := -1
	if len(lines) > 0 {
		lastGID = lines[len(lines)-1].GlobalIdx
	}

	// Build sibling-ordered windows per parent so "next sibling" bounds are
	// known for the [p, q) check in I4.
	siblingsByParent := map[string][]int{}
	for i, a := range anchors {
		if a.Spec == nil {
			continue
		}
		pk := a.Spec.ParentKey()
		siblingsByParent[pk] = append(siblingsByParent[pk], i)
	}

	for i := range anchors {
		a := &anchors[i]
		if a.Spec == nil {
			continue
		}
		pk := a.Spec.ParentKey()
		parent, ok := byKey[pk]
		if !ok {
			continue
		}
		winEnd := lastGID + 1
		for _, sibIdx := range siblingsByParent[pk] {
			sib := anchors[sibIdx]
			if sib.GlobalIdx > parent.GlobalIdx && sib.GlobalIdx < winEnd && sib.GlobalIdx != a.GlobalIdx {
				if sib.Level <= a.Level && sib.GlobalIdx > a.GlobalIdx {
					winEnd = sib.GlobalIdx
				}
			}
		}
		if a.GlobalIdx >= parent.GlobalIdx && a.GlobalIdx < winEnd {
			continue
		}
		best, found := scanForNumber(a.Spec, a.Text, windows, parent.GlobalIdx, winEnd, ctx, cfg)
		if found {
			a.GlobalIdx = int(best.Window.StartLineID)
			a.Page = best.Window.Page
			a.LineIdx = best.Window.StartLineIdx
			changed = true
			if tracer != nil {
				tracer.Event("child_relocate_to_window", map[string]any{"number": a.Number, "global_idx": a.GlobalIdx})
			}
		}
	}
	return anchors, changed
}

// passDedupe: within headers sharing the same number, keep the best (or
// earliest) and drop the rest.
func passDedupe(anchors []AnchoredHeader, cfg Config, tracer *Tracer) ([]AnchoredHeader, bool) {
	groups := map[string][]int{}
	for i, a := range anchors {
		if a.Spec == nil {
			continue
		}
		groups[a.Spec.Key()] = append(groups[a.Spec.Key()], i)
	}

	drop := map[int]bool{}
	changed := false
	for _, idxs := range groups {
		if len(idxs) <= 1 {
			continue
		}
		keep := idxs[0]
		for _, i := range idxs[1:] {
			if cfg.DedupePolicy == "earliest" {
				if anchors[i].GlobalIdx < anchors[keep].GlobalIdx {
					drop[keep] = true
					keep = i
				} else {
					drop[i] = true
				}
			} else {
				if dedupeBetter(anchors[i], anchors[keep]) {
					drop[keep] = true
					keep = i
				} else {
					drop[i] = true
				}
			}
		}
		changed = changed || len(drop) > 0
	}
	if len(drop) == 0 {
		return anchors, false
	}

	out := make([]AnchoredHeader, 0, len(anchors)-len(drop))
	for i, a := range anchors {
		if drop[i] {
			if tracer != nil {
				tracer.Event("dedupe_drop", map[string]any{"number": a.Number, "global_idx": a.GlobalIdx})
			}
			continue
		}
		out = append(out, a)
	}
	return out, changed
}

func dedupeBetter(a, b AnchoredHeader) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.GlobalIdx != b.GlobalIdx {
		return a.GlobalIdx < b.GlobalIdx
	}
	return a.SourceIdx < b.SourceIdx
}

func hasMonotonicViolation(anchors []AnchoredHeader) bool {
	byKey := byNumberKey(anchors)
	for _, a := range anchors {
		if a.Spec == nil {
			continue
		}
		pk := a.Spec.ParentKey()
		if pk == "" {
			continue
		}
		if parent, ok := byKey[pk]; ok && parent.GlobalIdx >= a.GlobalIdx {
			return true
		}
	}
	return false
}

// finalMonotonicGuard: after all passes, for each header N with parent P
// where anchor(P) > anchor(N), search for a later post-parent occurrence
// of N's number; move it forward, or drop N if none exists.
func finalMonotonicGuard(anchors []AnchoredHeader, lines []Line, tracer *Tracer) []AnchoredHeader {
	byKey := byNumberKey(anchors)
	drop := map[int]bool{}

	lineByNormText := map[string][]Line{}
	for _, l := range lines {
		lineByNormText[l.NormalizedText] = append(lineByNormText[l.NormalizedText], l)
	}

	for i := range anchors {
		a := &anchors[i]
		if a.Spec == nil {
			continue
		}
		pk := a.Spec.ParentKey()
		if pk == "" {
			continue
		}
		parent, ok := byKey[pk]
		if !ok || parent.GlobalIdx <= a.GlobalIdx {
			continue
		}

		moved := false
		for _, l := range lineByNormText[Normalize(a.Number+" "+a.Text, true)] {
			if l.GlobalIdx > parent.GlobalIdx && !l.IsTOC {
				a.GlobalIdx = l.GlobalIdx
				a.Page = l.Page
				a.LineIdx = l.LineIdx
				moved = true
				if tracer != nil {
					tracer.Event("final_monotonic_fix", map[string]any{"number": a.Number, "global_idx": a.GlobalIdx})
				}
				break
			}
		}
		if !moved {
			drop[i] = true
			if tracer != nil {
				tracer.Event("fallback_triggered", map[string]any{"reason": "monotonic_guard_drop", "number": a.Number})
			}
		}
	}

	if len(drop) == 0 {
		return anchors
	}
	out := make([]AnchoredHeader, 0, len(anchors)-len(drop))
	for i, a := range anchors {
		if !drop[i] {
			out = append(out, a)
		}
	}
	return out
}
