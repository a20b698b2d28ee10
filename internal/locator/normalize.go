package locator

import (
	"regexp"
	"strings"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// reSpacedDotRun collapses "1 . 2" style numbering glyphs the PDF text
// stream frequently emits for "1.2". Repeated to a fixpoint since a
// three-component number can need more than one pass ("1 . 2 . 3").
var reSpacedDotRun = regexp.MustCompile(`(\d)\s*[.⋄‧·]\s*(\d)`)

// reConfusableDigit folds an I or l standing in for the digit 1 between a
// digit/dot and a word boundary, e.g. "1.I" -> "1.1".
var reConfusableDigit = regexp.MustCompile(`(?:(\d)|(\.))([Il])\b`)

// reSpacedConfusable folds the spaced form "1 . I" to "1.1", which the dot
// collapse cannot join on its own because I is not a digit. Together with
// the second dot collapse after folding, "1 . I .3" becomes "1.1.3".
var reSpacedConfusable = regexp.MustCompile(`(\d)\s*[.⋄‧·]\s*[Il]\b`)

var reWhitespaceRun = regexp.MustCompile(`\s+`)

const (
	softHyphen      = "­"
	nbsp            = " "
	figureSpace     = " "
	thinSpace       = " "
)

// Normalize applies the C1 rules in order. Deterministic and idempotent:
// Normalize(Normalize(s)) == Normalize(s) (P7).
func Normalize(s string, foldConfusables bool) string {
	// 1. strip soft hyphens.
	s = strings.ReplaceAll(s, softHyphen, "")

	// 2. non-breaking/narrow spaces -> ASCII space.
	s = strings.ReplaceAll(s, nbsp, " ")
	s = strings.ReplaceAll(s, figureSpace, " ")
	s = strings.ReplaceAll(s, thinSpace, " ")

	// NFC fold before the numbering-glyph passes so composed/decomposed
	// punctuation variants behave identically.
	if normalized, _, err := transform.String(norm.NFC, s); err == nil {
		s = normalized
	}

	// 3. collapse spaced dot runs to a fixpoint.
	for {
		next := reSpacedDotRun.ReplaceAllString(s, "$1.$2")
		if next == s {
			break
		}
		s = next
	}

	// 4. fold confusable I/l standing in for digit 1, then collapse spaced
	// dot runs again since a folded digit can complete one.
	if foldConfusables {
		s = reSpacedConfusable.ReplaceAllString(s, "${1}.1")
		s = reConfusableDigit.ReplaceAllStringFunc(s, func(m string) string {
			sub := reConfusableDigit.FindStringSubmatch(m)
			prefix := sub[1]
			if prefix == "" {
				prefix = sub[2]
			}
			return prefix + "1"
		})
		for {
			next := reSpacedDotRun.ReplaceAllString(s, "$1.$2")
			if next == s {
				break
			}
			s = next
		}
	}

	// 5. collapse whitespace, trim, case-fold ASCII letters.
	s = reWhitespaceRun.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)

	return s
}
