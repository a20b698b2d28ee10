// Package locator implements the header location and section spanning
// engine: given a stream of normalized lines extracted from a PDF and a
// candidate outline proposed by an external oracle, it produces the final
// anchored outline and the section spans it bounds.
//
// Data flow: lines + candidates -> normalize -> classify noise -> build
// windows -> score candidates -> sequential align -> repair invariants ->
// fill gaps -> emit sections -> trace.
package locator

// LineID indexes into the Line arena held by a run. Never a back-pointer;
// all traversal goes through the arena.
type LineID int32

// HeaderID indexes into the CandidateHeader arena held by a run.
type HeaderID int32

// Line is an immutable record produced by the external PDF parser. Its
// boolean noise flags (IsTOC, IsIndex, IsRunning) are the only fields
// mutated after creation, and only by the noise detector (C2), exactly
// once, before scoring begins.
type Line struct {
	GlobalIdx      int     // document-wide, monotonically increasing, unique
	Page           int     // 1-based
	LineIdx        int     // 0-based within page
	Text           string  // original text
	NormalizedText string  // populated by Normalize (C1)
	HasBBox        bool
	X0, Y0, X1, Y1 float64
	HasFontSize    bool
	FontSize       float64
	Bold           bool

	IsTOC     bool
	IsIndex   bool
	IsRunning bool
}

// NumberKind classifies one component of a parsed NumberSpec.
type NumberKind int

const (
	KindNumeric NumberKind = iota
	KindAlpha
	KindToken
)

// NumberComponent is one dot-separated piece of a header numbering string.
type NumberComponent struct {
	Raw   string
	Kind  NumberKind
	Value int // for KindToken, always 0; participates in equality, not order
}

// NumberSpec is the parsed form of a CandidateHeader.Number or an observed
// numbering string found in the body text.
type NumberSpec struct {
	Raw        string
	Components []NumberComponent
}

// CandidateHeader is what the oracle proposes for one entry of the outline.
type CandidateHeader struct {
	Text      string
	Number    string // printed numbering string, or "" if absent
	Level     int    // >= 1
	SourceIdx int    // position in oracle output; stable tiebreaker
}

// Strategy records which scoring/alignment path produced an anchor.
type Strategy string

const (
	StrategyNumTitle            Strategy = "num+title"
	StrategyTitleOnly           Strategy = "title_only"
	StrategyNumTitleWeak        Strategy = "num+title-weak"
	StrategyLastOccurrence      Strategy = "last_occurrence"
	StrategySequentialFallback  Strategy = "sequential_fallback"
	StrategyVector              Strategy = "vector"
	StrategyGapFill             Strategy = "gap_fill"
	StrategyReanchorImplied     Strategy = "reanchor_parent_implied"
	StrategyReanchorFromScan    Strategy = "reanchor_parent_scanned"
)

// AnchoredHeader is a header resolved to a specific body line.
type AnchoredHeader struct {
	Text      string
	Number    string
	Level     int
	Page      int
	LineIdx   int
	GlobalIdx int
	SourceIdx int

	Strategy Strategy
	Score    float64

	// Spec is the parsed form of Number, cached for repeated comparisons
	// during invariant enforcement and gap filling. Nil if Number == "".
	Spec *NumberSpec
}

// SectionSpan is a half-open line range bounded by two anchors (or by the
// document start/end for the first/last span).
type SectionSpan struct {
	SectionKey     string
	Title          string
	Number         string
	Level          int
	StartGlobalIdx int // inclusive
	EndGlobalIdx   int // exclusive
	StartPage      int
	EndPage        int
}

// Window covers one, two, or three consecutive, non-excluded lines on the
// same page. Built by C3, consumed only by C5.
type Window struct {
	Page         int
	StartLineID  LineID
	EndLineID    LineID // inclusive
	StartLineIdx int
	Text         string
	Tokens       []string
	FontMax      float64
	BoldAny      bool
	YTop         float64
	IsTriple     bool
}

// Mode reports which path produced a LocateResult, and to what degree it
// degraded from the fully-featured run.
type Mode string

const (
	ModeLLMFull      Mode = "llm_full"
	ModeLLMStrict    Mode = "llm_strict"
	ModeLLMVector    Mode = "llm_vector"
	ModeCache        Mode = "cache"
	ModeLLMDisabled  Mode = "llm_disabled"
	ModeLLMFullError Mode = "llm_full_error"
)

// LocateResult is the engine's output.
type LocateResult struct {
	Headers       []AnchoredHeader
	Sections      []SectionSpan
	Mode          Mode
	Messages      []string
	ExcludedPages []int
	DocHash       string
	Trace         []TraceEvent
}
