package locator

import (
	"fmt"
	"sort"
	"strings"
)

// FillGaps implements C8: detects missing integer/alpha last-component
// values within each (parent-prefix, kind) group of the anchored set, and
// attempts to recover the missing header by scanning the span between the
// surrounding anchors.
func FillGaps(anchors []AnchoredHeader, lines []Line, cfg Config, tracer *Tracer) []AnchoredHeader {
	if !cfg.GapFillEnabled {
		return anchors
	}

	groups := groupByParentAndKind(anchors)
	result := append([]AnchoredHeader(nil), anchors...)

	for _, members := range groups {
		sort.Slice(members, func(i, j int) bool { return members[i].GlobalIdx < members[j].GlobalIdx })
		if len(members) < 2 {
			continue
		}
		expectedNext := members[0].Spec.Components[len(members[0].Spec.Components)-1].Value + 1

		for i := 1; i < len(members); i++ {
			last := members[i].Spec.Components[len(members[i].Spec.Components)-1]
			v := last.Value
			if v <= expectedNext {
				expectedNext = v + 1
				continue
			}
			for m := expectedNext; m < v; m++ {
				recovered, ok := recoverGap(members[i-1], members[i], m, last.Kind, lines)
				if ok {
					result = append(result, recovered)
					if tracer != nil {
						tracer.Event("gap_recovered", map[string]any{"global_idx": recovered.GlobalIdx, "number": recovered.Number})
					}
				} else if tracer != nil {
					tracer.Event("fallback_triggered", map[string]any{"reason": "gap_unrecovered", "after_index": members[i-1].GlobalIdx, "missing_value": m})
				}
			}
			expectedNext = v + 1
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].GlobalIdx < result[j].GlobalIdx })
	return result
}

func groupByParentAndKind(anchors []AnchoredHeader) map[string][]AnchoredHeader {
	groups := map[string][]AnchoredHeader{}
	for _, a := range anchors {
		if a.Spec == nil || len(a.Spec.Components) == 0 {
			continue
		}
		last := a.Spec.Components[len(a.Spec.Components)-1]
		key := a.Spec.ParentKey() + "#" + fmt.Sprint(last.Kind)
		groups[key] = append(groups[key], a)
	}
	return groups
}

// recoverGap builds a regex for the parent prefix plus the missing value
// and scans the chunk between prev and next for a line bearing it.
func recoverGap(prev, next AnchoredHeader, missingValue int, kind NumberKind, lines []Line) (AnchoredHeader, bool) {
	comps := make([]NumberComponent, len(next.Spec.Components))
	copy(comps, next.Spec.Components)
	comps[len(comps)-1] = NumberComponent{
		Raw:   renderComponentRaw(missingValue, kind, next.Spec.Components[len(comps)-1].Raw),
		Kind:  kind,
		Value: missingValue,
	}
	missingSpec := &NumberSpec{Components: comps}
	missingSpec.Raw = missingSpec.Render()
	re := CompileFuzzyRegex(missingSpec)
	if re == nil {
		return AnchoredHeader{}, false
	}

	for _, l := range lines {
		if l.GlobalIdx <= prev.GlobalIdx || l.GlobalIdx >= next.GlobalIdx {
			continue
		}
		if l.IsTOC || l.IsIndex || l.IsRunning {
			continue
		}
		loc := re.FindStringIndex(l.NormalizedText)
		if loc == nil {
			continue
		}
		remainder := strings.TrimSpace(l.NormalizedText[loc[1]:])
		if orig := re.FindStringIndex(l.Text); orig != nil {
			remainder = strings.TrimSpace(l.Text[orig[1]:])
		}
		if remainder == "" {
			continue
		}
		return AnchoredHeader{
			Text:      remainder,
			Number:    missingSpec.Raw,
			Level:     next.Level,
			Page:      l.Page,
			LineIdx:   l.LineIdx,
			GlobalIdx: l.GlobalIdx,
			SourceIdx: next.SourceIdx,
			Strategy:  StrategyGapFill,
			Spec:      missingSpec,
		}, true
	}
	return AnchoredHeader{}, false
}

func renderComponentRaw(value int, kind NumberKind, templateRaw string) string {
	if kind == KindAlpha {
		return string(rune('A' + value - 1))
	}
	width := len(templateRaw)
	s := fmt.Sprint(value)
	for len(s) < width {
		s = "0" + s
	}
	return s
}
