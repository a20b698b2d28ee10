package locator

// newLine builds a Line for test fixtures with a normalized text already
// populated, sized as most tests need it (no bbox/font by default).
func newLine(globalIdx, page, lineIdx int, text string) Line {
	return Line{
		GlobalIdx:      globalIdx,
		Page:           page,
		LineIdx:        lineIdx,
		Text:           text,
		NormalizedText: Normalize(text, true),
	}
}

func withFont(l Line, size float64, bold bool) Line {
	l.HasFontSize = true
	l.FontSize = size
	l.Bold = bold
	return l
}

func withBBox(l Line, x0, y0, x1, y1 float64) Line {
	l.HasBBox = true
	l.X0, l.Y0, l.X1, l.Y1 = x0, y0, x1, y1
	return l
}
