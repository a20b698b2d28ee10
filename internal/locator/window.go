package locator

import "regexp"

var reToken = regexp.MustCompile(`[\w\-']+`)

func tokenize(s string) []string {
	return reToken.FindAllString(s, -1)
}

// BuildWindows implements C3: W1 (single eligible line), W2 (two
// consecutive eligible lines on the same page) and W3 (three consecutive
// eligible lines on the same page). Lines flagged IsTOC,
// IsIndex, or IsRunning, and lines on pages in excludedPages, are skipped
// entirely — they never become windows.
func BuildWindows(lines []Line, excludedPages map[int]bool) []Window {
	eligible := make([]int, 0, len(lines)) // indices into lines
	for i, l := range lines {
		if l.IsTOC || l.IsIndex || l.IsRunning {
			continue
		}
		if excludedPages != nil && excludedPages[l.Page] {
			continue
		}
		if l.NormalizedText == "" {
			continue
		}
		eligible = append(eligible, i)
	}

	windows := make([]Window, 0, len(eligible)*2)

	// W1
	for _, idx := range eligible {
		windows = append(windows, makeWindow(lines, idx, idx))
	}

	// W2: two consecutive eligible lines on the same page, fused into one
	// synthetic window. Covers split titles such as "APPENDIX A" followed
	// by "SUBMITTALS AND FORMS" on the next line.
	for i := 0; i+1 < len(eligible); i++ {
		a, b := eligible[i], eligible[i+1]
		if lines[b].GlobalIdx != lines[a].GlobalIdx+1 {
			continue
		}
		if lines[a].Page != lines[b].Page {
			continue
		}
		windows = append(windows, makeWindow(lines, a, b))
	}

	// W3: three consecutive eligible indices must also be three
	// consecutive lines on the same page (no gaps from excluded lines).
	for i := 0; i+2 < len(eligible); i++ {
		a, b, c := eligible[i], eligible[i+1], eligible[i+2]
		if lines[b].GlobalIdx != lines[a].GlobalIdx+1 {
			continue
		}
		if lines[c].GlobalIdx != lines[b].GlobalIdx+1 {
			continue
		}
		if lines[a].Page != lines[c].Page {
			continue
		}
		windows = append(windows, makeWindow(lines, a, c))
	}

	return windows
}

func makeWindow(lines []Line, startIdx, endIdx int) Window {
	parts := make([]string, 0, endIdx-startIdx+1)
	fontMax := 0.0
	boldAny := false
	yTop := lines[startIdx].Y0
	hasY := false
	for i := startIdx; i <= endIdx; i++ {
		l := lines[i]
		parts = append(parts, l.NormalizedText)
		if l.HasFontSize && l.FontSize > fontMax {
			fontMax = l.FontSize
		}
		if l.Bold {
			boldAny = true
		}
		if l.HasBBox {
			if !hasY || l.Y0 < yTop {
				yTop = l.Y0
			}
			hasY = true
		}
	}
	text := joinNonEmpty(parts)
	return Window{
		Page:         lines[startIdx].Page,
		StartLineID:  LineID(lines[startIdx].GlobalIdx),
		EndLineID:    LineID(lines[endIdx].GlobalIdx),
		StartLineIdx: lines[startIdx].LineIdx,
		Text:         text,
		Tokens:       tokenize(text),
		FontMax:      fontMax,
		BoldAny:      boldAny,
		YTop:         yTop,
		IsTriple:     endIdx != startIdx,
	}
}

func joinNonEmpty(parts []string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += p
	}
	return out
}

// fontRank normalizes a window's FontMax against the page's maximum font
// size, for use in the C5 vector fusion.
func fontRank(windowFontMax, pageMaxFont float64) float64 {
	if pageMaxFont <= 0 {
		return 0
	}
	r := windowFontMax / pageMaxFont
	if r > 1 {
		r = 1
	}
	return r
}

// yBonus rewards windows nearer the top of a page, inverted and normalized
// within [pageMinY, pageMaxY].
func yBonus(y, pageMinY, pageMaxY float64) float64 {
	span := pageMaxY - pageMinY
	if span <= 0 {
		return 0
	}
	norm := (y - pageMinY) / span
	if norm < 0 {
		norm = 0
	}
	if norm > 1 {
		norm = 1
	}
	return 1 - norm
}
