package locator

import (
	"regexp"
	"sort"
	"strings"
)

var (
	reSlugSeparators = regexp.MustCompile(`[^a-z0-9]+`)
	reSlugCollapse   = regexp.MustCompile(`-+`)
)

// slugify produces the "[a-z0-9-]+" slug used by section_key.
func slugify(title string) string {
	s := strings.ToLower(title)
	s = reSlugSeparators.ReplaceAllString(s, "-")
	s = reSlugCollapse.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "section"
	}
	return s
}

// MakeSectionKey builds "<number-part>::<slug(title)>::<start_global_idx>"
// per §4.9.
func MakeSectionKey(number, title string, startGlobalIdx int) string {
	numberPart := strings.ReplaceAll(strings.TrimSpace(number), " ", "-")
	parts := []string{}
	if numberPart != "" {
		parts = append(parts, numberPart)
	}
	parts = append(parts, slugify(title))
	parts = append(parts, itoa(startGlobalIdx))
	return strings.Join(parts, "::")
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	buf := [20]byte{}
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// BuildSections implements C9: converts ordered anchors into half-open
// line ranges bounded by the next anchor (or the document end).
func BuildSections(anchors []AnchoredHeader, lines []Line) []SectionSpan {
	if len(anchors) == 0 {
		return nil
	}
	ordered := append([]AnchoredHeader(nil), anchors...)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].GlobalIdx != ordered[j].GlobalIdx {
			return ordered[i].GlobalIdx < ordered[j].GlobalIdx
		}
		return ordered[i].SourceIdx < ordered[j].SourceIdx
	})

	// Defensive same-global_idx dedupe, keeping lowest source_idx.
	deduped := make([]AnchoredHeader, 0, len(ordered))
	for i := 0; i < len(ordered); i++ {
		if i > 0 && ordered[i].GlobalIdx == deduped[len(deduped)-1].GlobalIdx {
			continue
		}
		deduped = append(deduped, ordered[i])
	}

	documentEnd := 0
	if len(lines) > 0 {
		documentEnd = lines[len(lines)-1].GlobalIdx + 1
	}

	lineByGID := map[int]Line{}
	for _, l := range lines {
		lineByGID[l.GlobalIdx] = l
	}

	spans := make([]SectionSpan, 0, len(deduped))
	for i, a := range deduped {
		end := documentEnd
		if i+1 < len(deduped) {
			end = deduped[i+1].GlobalIdx
		}
		startLine, hasStart := lineByGID[a.GlobalIdx]
		endLine, hasEnd := lineByGID[end-1]
		span := SectionSpan{
			SectionKey:     MakeSectionKey(a.Number, a.Text, a.GlobalIdx),
			Title:          a.Text,
			Number:         a.Number,
			Level:          a.Level,
			StartGlobalIdx: a.GlobalIdx,
			EndGlobalIdx:   end,
			StartPage:      a.Page,
			EndPage:        a.Page,
		}
		if hasStart {
			span.StartPage = startLine.Page
		}
		if hasEnd {
			span.EndPage = endLine.Page
		}
		spans = append(spans, span)
	}
	return spans
}

// RouteQuery ranks section spans against a free-text query, returning the
// top `limit` section keys. Supplements the core's native scope with a
// read-only helper the original's `route_query_to_sections` exposed.
func RouteQuery(spans []SectionSpan, query string, limit int) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	type scored struct {
		key   string
		score float64
	}
	out := make([]scored, 0, len(spans))
	for _, s := range spans {
		label := strings.TrimSpace(s.Number + " " + s.Title)
		score := partialRatio(query, label)
		if score <= 0 {
			continue
		}
		out = append(out, scored{s.SectionKey, score})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].score > out[j].score })
	if limit <= 0 || limit > len(out) {
		limit = len(out)
	}
	keys := make([]string, 0, limit)
	for _, o := range out[:limit] {
		keys = append(keys, o.key)
	}
	return keys
}

// SearchMatch is one line-level hit from SearchInSections.
type SearchMatch struct {
	SectionKey string
	Text       string
	GlobalIdx  int
	Page       int
	Score      float64
}

// SearchInSections ranks lines within the given sections against a query,
// mirroring the original's `search_in_sections` retrieval helper.
func SearchInSections(spans []SectionSpan, lines []Line, query string, sectionKeys map[string]bool, limit int) []SearchMatch {
	query = strings.TrimSpace(query)
	if query == "" || len(sectionKeys) == 0 {
		return nil
	}
	byKey := map[string]SectionSpan{}
	for _, s := range spans {
		if sectionKeys[s.SectionKey] {
			byKey[s.SectionKey] = s
		}
	}
	lineByGID := map[int]Line{}
	for _, l := range lines {
		lineByGID[l.GlobalIdx] = l
	}

	matches := make([]SearchMatch, 0)
	for key, span := range byKey {
		for gid := span.StartGlobalIdx; gid < span.EndGlobalIdx; gid++ {
			l, ok := lineByGID[gid]
			if !ok || strings.TrimSpace(l.Text) == "" {
				continue
			}
			score := partialRatio(query, l.Text)
			if score <= 0 {
				continue
			}
			matches = append(matches, SearchMatch{SectionKey: key, Text: l.Text, GlobalIdx: gid, Page: l.Page, Score: score})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if limit <= 0 || limit > len(matches) {
		limit = len(matches)
	}
	return matches[:limit]
}
