// Package pdfsource turns a PDF file into the ordered []locator.Line stream
// the locator core consumes. It is the one place in this module that reads
// raw PDF bytes; everything downstream works in terms of Line.
package pdfsource

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/outlinehq/specloc/internal/locator"
)

// yEpsilon is the vertical tolerance, in PDF user-space units, for two text
// runs to be considered part of the same line. Body text in construction
// specs is typically 9-11pt with ~1.15 leading, so 2pt comfortably absorbs
// baseline jitter from kerning/rounding without merging adjacent lines.
const yEpsilon = 2.0

// boldNameMarkers are substrings pdfcpu's font resource names commonly
// carry for bold weights (e.g. "Helvetica-Bold", "Arial,Bold").
var boldNameMarkers = []string{"bold", "black", "heavy"}

// Extract reads the PDF at path and returns its text content as an ordered
// []locator.Line stream, one entry per visually distinct line of text,
// with strictly increasing GlobalIdx in document order.
func Extract(path string) ([]locator.Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pdfsource: open %s: %w", path, err)
	}
	defer f.Close()

	pageCount, err := api.PageCount(f, nil)
	if err != nil {
		return nil, fmt.Errorf("pdfsource: page count for %s: %w", path, err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("pdfsource: %s has no pages", path)
	}

	var lines []locator.Line
	globalIdx := 0
	for page := 1; page <= pageCount; page++ {
		content, err := pageContentStream(path, page)
		if err != nil {
			return nil, fmt.Errorf("pdfsource: extract content for page %d: %w", page, err)
		}

		runs := parseContentStream(content)
		pageLines := groupRunsIntoLines(runs, page)
		for i := range pageLines {
			pageLines[i].GlobalIdx = globalIdx
			pageLines[i].LineIdx = i
			globalIdx++
		}
		lines = append(lines, pageLines...)
	}

	return lines, nil
}

// pageContentStream extracts and decompresses the raw content stream for
// one page by writing it to a scratch directory via pdfcpu and reading it
// back; pdfcpu's own content-stream model isn't exported, so this module
// parses the PostScript-like operator stream itself.
func pageContentStream(path string, page int) ([]byte, error) {
	dir, err := os.MkdirTemp("", "specloc-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	pageSel := []string{strconv.Itoa(page)}
	if err := api.ExtractContentFile(path, dir, pageSel, nil); err != nil {
		return nil, fmt.Errorf("pdfcpu extract content: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scratch dir: %w", err)
	}
	var buf bytes.Buffer
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		b, err := os.ReadFile(dir + string(os.PathSeparator) + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read content stream %s: %w", e.Name(), err)
		}
		buf.Write(b)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// textRun is one Tj/TJ text-showing operation resolved to an absolute
// baseline position, with the font state active at that point.
type textRun struct {
	text     string
	x, y     float64
	fontSize float64
	bold     bool
}

// parseContentStream walks a decompressed page content stream and resolves
// BT/ET text objects into textRuns. It tracks the subset of the text state
// this module needs (text matrix, font size, font resource name) and
// ignores graphics-state operators that don't affect text positioning.
func parseContentStream(content []byte) []textRun {
	var runs []textRun

	var fontSize float64
	var fontName string
	var tx, ty float64
	inText := false

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := tokenizeOperators(line)
		for _, tok := range fields {
			switch tok.op {
			case "BT":
				inText = true
				tx, ty = 0, 0
			case "ET":
				inText = false
			case "Tf":
				if len(tok.args) >= 2 {
					fontName = strings.TrimPrefix(tok.args[0], "/")
					fontSize = parseFloat(tok.args[1])
				}
			case "Td", "TD":
				if len(tok.args) >= 2 {
					tx += parseFloat(tok.args[0])
					ty += parseFloat(tok.args[1])
				}
			case "Tm":
				if len(tok.args) >= 6 {
					tx = parseFloat(tok.args[4])
					ty = parseFloat(tok.args[5])
				}
			case "Tj", "'", "\"":
				if !inText || len(tok.args) == 0 {
					continue
				}
				text := decodeLiteralString(tok.args[0])
				if text == "" {
					continue
				}
				runs = append(runs, textRun{
					text: text, x: tx, y: ty,
					fontSize: fontSize,
					bold:     isBoldFontName(fontName),
				})
			case "TJ":
				if !inText || len(tok.args) == 0 {
					continue
				}
				text := decodeTJArray(tok.args[0])
				if text == "" {
					continue
				}
				runs = append(runs, textRun{
					text: text, x: tx, y: ty,
					fontSize: fontSize,
					bold:     isBoldFontName(fontName),
				})
			}
		}
	}
	return runs
}

type operatorToken struct {
	op   string
	args []string
}

// tokenizeOperators splits one content-stream line into whitespace
// separated tokens and groups them as (operand... operator) per the
// PostScript-like postfix convention content streams use.
func tokenizeOperators(line string) []operatorToken {
	var pending []string
	var out []operatorToken
	inString := false
	inArray := false
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			pending = append(pending, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '(' && !inArray:
			inString = !inString
			cur.WriteByte(c)
		case inString:
			cur.WriteByte(c)
			if c == ')' {
				inString = false
			}
		case c == '[':
			inArray = true
			cur.WriteByte(c)
		case c == ']':
			inArray = false
			cur.WriteByte(c)
			flush()
		case inArray:
			cur.WriteByte(c)
		case c == ' ' || c == '\t':
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()

	if len(pending) == 0 {
		return out
	}
	last := pending[len(pending)-1]
	if isOperatorName(last) {
		out = append(out, operatorToken{op: last, args: pending[:len(pending)-1]})
	}
	return out
}

func isOperatorName(s string) bool {
	switch s {
	case "BT", "ET", "Tf", "Td", "TD", "Tm", "Tj", "TJ", "'", "\"":
		return true
	}
	return false
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func decodeLiteralString(s string) string {
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	return unescapePDFString(s)
}

// decodeTJArray extracts only the string operands of a TJ array, dropping
// the interleaved kerning adjustment numbers.
func decodeTJArray(s string) string {
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	var b strings.Builder
	depth := 0
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '(' && depth == 0:
			depth++
			cur.Reset()
		case c == ')' && depth == 1:
			depth--
			b.WriteString(unescapePDFString(cur.String()))
		case depth == 1:
			cur.WriteByte(c)
		}
	}
	return b.String()
}

func unescapePDFString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case '(', ')', '\\':
				b.WriteByte(s[i])
			default:
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isBoldFontName(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range boldNameMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// groupRunsIntoLines fuses textRuns sharing a baseline (within yEpsilon)
// into one locator.Line, concatenating their text in x order and taking
// the max font size/bold-ness across the fused runs.
func groupRunsIntoLines(runs []textRun, page int) []locator.Line {
	if len(runs) == 0 {
		return nil
	}

	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].y != runs[j].y {
			return runs[i].y > runs[j].y // top of page first
		}
		return runs[i].x < runs[j].x
	})

	var out []locator.Line
	i := 0
	for i < len(runs) {
		j := i + 1
		for j < len(runs) && absf(runs[j].y-runs[i].y) <= yEpsilon {
			j++
		}
		group := runs[i:j]
		sort.SliceStable(group, func(a, b int) bool { return group[a].x < group[b].x })

		var text strings.Builder
		minX, maxX := group[0].x, group[0].x
		maxFont := 0.0
		bold := false
		y := group[0].y
		for k, r := range group {
			if k > 0 {
				text.WriteByte(' ')
			}
			text.WriteString(r.text)
			if r.x < minX {
				minX = r.x
			}
			if r.x > maxX {
				maxX = r.x
			}
			if r.fontSize > maxFont {
				maxFont = r.fontSize
			}
			bold = bold || r.bold
		}

		out = append(out, locator.Line{
			Page:        page,
			Text:        text.String(),
			HasFontSize: maxFont > 0,
			FontSize:    maxFont,
			Bold:        bold,
			HasBBox:     true,
			X0:          minX,
			Y0:          y,
			X1:          maxX + maxFont,
			Y1:          y + maxFont,
		})
		i = j
	}
	return out
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
