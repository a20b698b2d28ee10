package locator

import (
	"regexp"
	"strings"
)

var (
	reTOCDotLeader  = regexp.MustCompile(`\.{3,}\s*\d{1,4}\s*$`)
	reTOCSectionish = regexp.MustCompile(`^\s*\d+(?:\s*[.⋄‧·]\s*\d+)*\b`)
	reIndexEntry    = regexp.MustCompile(`^[A-Z][A-Za-z …]+\s+\.{2,}\s*\d+(?:\s*,\s*\d+)*$`)
)

// isProbableTOCLine reports whether a single normalized line looks like a
// table-of-contents entry (used by the scorer to penalize matches and by
// the page classifier below).
func isProbableTOCLine(text string) bool {
	return reTOCDotLeader.MatchString(text)
}

// DetectNoise implements C2. It returns the set of TOC pages, index pages,
// and case-folded running texts, and mutates each Line's IsTOC/IsIndex/
// IsRunning flags in place. Never fails; empty inputs yield empty sets.
func DetectNoise(lines []Line, cfg Config) (tocPages, indexPages map[int]bool, runningTexts map[string]bool) {
	tocPages = map[int]bool{}
	indexPages = map[int]bool{}
	runningTexts = map[string]bool{}
	if len(lines) == 0 {
		return
	}

	byPage := map[int][]*Line{}
	pageOrder := []int{}
	for i := range lines {
		p := lines[i].Page
		if _, ok := byPage[p]; !ok {
			pageOrder = append(pageOrder, p)
		}
		byPage[p] = append(byPage[p], &lines[i])
	}

	if cfg.SuppressTOC {
		for _, p := range pageOrder {
			if classifyTOCPage(byPage[p], cfg) {
				tocPages[p] = true
			}
			if classifyIndexPage(byPage[p]) {
				indexPages[p] = true
			}
		}
	}

	if cfg.SuppressRunning {
		runningTexts = detectRunningTexts(byPage, pageOrder, cfg)
	}

	for i := range lines {
		l := &lines[i]
		if tocPages[l.Page] {
			l.IsTOC = true
		}
		if indexPages[l.Page] {
			l.IsIndex = true
		}
		if runningTexts[l.NormalizedText] {
			l.IsRunning = true
		}
	}
	return
}

func classifyTOCPage(pageLines []*Line, cfg Config) bool {
	dotLeaders, sectionish, longProse := 0, 0, 0
	for _, l := range pageLines {
		text := l.NormalizedText
		if reTOCDotLeader.MatchString(text) {
			dotLeaders++
		}
		if reTOCSectionish.MatchString(text) {
			sectionish++
		}
		if len(text) >= 40 && strings.Contains(text, ".") {
			longProse++
		}
		if strings.HasPrefix(text, "table of contents") || text == "contents" {
			return true
		}
	}
	if dotLeaders >= cfg.MinTOCDotLeaders {
		return true
	}
	if sectionish >= cfg.MinTOCSectionish && longProse*2 <= sectionish {
		return true
	}
	return false
}

func classifyIndexPage(pageLines []*Line) bool {
	if len(pageLines) == 0 {
		return false
	}
	var firstNonEmpty string
	for _, l := range pageLines {
		if strings.TrimSpace(l.NormalizedText) != "" {
			firstNonEmpty = l.NormalizedText
			break
		}
	}
	if firstNonEmpty == "index" || firstNonEmpty == "glossary" {
		return true
	}
	matches := 0
	for _, l := range pageLines {
		if reIndexEntry.MatchString(l.Text) {
			matches++
		}
	}
	threshold := len(pageLines) / 2
	if threshold < 6 {
		threshold = 6
	}
	return matches >= threshold
}

// detectRunningTexts samples the top/bottom band of each page and counts
// cross-page repetition, exactly as the Python detect_running_header_footer
// does: band = cfg.BandLines, threshold = max(2, 0.6*total_pages).
func detectRunningTexts(byPage map[int][]*Line, pageOrder []int, cfg Config) map[string]bool {
	band := cfg.BandLines
	if band <= 0 {
		band = 5
	}
	totalPages := len(pageOrder)
	threshold := int(0.6 * float64(totalPages))
	if threshold < 2 {
		threshold = 2
	}

	pagesSeenBy := map[string]map[int]bool{}
	for _, p := range pageOrder {
		pageLines := byPage[p]
		n := len(pageLines)
		if n == 0 {
			continue
		}
		seenOnPage := map[string]bool{}
		top := band
		if top > n {
			top = n
		}
		for i := 0; i < top; i++ {
			text := strings.TrimSpace(pageLines[i].NormalizedText)
			if len(text) >= 6 {
				seenOnPage[text] = true
			}
		}
		bottom := band
		if bottom > n {
			bottom = n
		}
		for i := n - bottom; i < n; i++ {
			if i < 0 {
				continue
			}
			text := strings.TrimSpace(pageLines[i].NormalizedText)
			if len(text) >= 6 {
				seenOnPage[text] = true
			}
		}
		for text := range seenOnPage {
			if pagesSeenBy[text] == nil {
				pagesSeenBy[text] = map[int]bool{}
			}
			pagesSeenBy[text][p] = true
		}
	}

	result := map[string]bool{}
	for text, pages := range pagesSeenBy {
		if len(pages) >= threshold {
			result[text] = true
		}
	}
	return result
}
