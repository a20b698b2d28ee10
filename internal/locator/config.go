package locator

// Config collapses every runtime knob from spec §6.4 into one immutable
// value constructed at the process boundary (see internal/config). The
// core never reads environment variables or watches files itself.
type Config struct {
	// C2 Noise Detector
	SuppressTOC     bool
	SuppressRunning bool
	BandLines       int // top/bottom band size for C2 and C5, default 5
	MinTOCDotLeaders int // D_TOC, default 4
	MinTOCSectionish int // S_TOC, default 6

	// C5 Candidate Scorer
	FuzzyThresholdNumTitle  float64 // TH_NUMTITLE, default 82
	FuzzyThresholdTitleOnly float64 // TH_TITLE_ONLY, default 78
	PenaltyBand             float64 // default 0.25
	PenaltyTOC              float64 // default 0.45
	WeightFuzzy             float64 // W_FUZZY, default 0.6
	WeightTypo              float64 // W_TYPO, default 0.15
	WeightPos               float64 // W_POS, default 0.25
	RunningPenalty          float64 // additive penalty for running_texts lines, default 500

	// C5 vector path
	UseEmbeddings bool
	FuseWeights   [4]float64 // [lexical, cosine, font_rank, y_bonus], default [0.55, 0.30, 0.10, 0.05]
	MinLexical    float64    // default 0.3
	MinCosine     float64    // default 0.25

	// C6 Sequential Aligner
	StrictNumericFirstPass bool // when true, pass 2 (title-only) is skipped
	AfterAnchorOnly        bool // forbid candidates with global_idx <= cursor
	WindowPad              int  // pad lines around computed windows, default 40
	SequentialCoverageMin  float64 // coverage gate below which legacy fallback runs, default 0.6

	// C7 Invariant Enforcer
	RescanPasses         int    // default 2
	DedupePolicy         string // "best" or "earliest"
	LastOccurrenceFallback bool
	FinalMonotonicGuard  bool
	ParentReanchorWindow int // lines to rescan before earliest child, default 800

	// C8 Gap Filler
	GapFillEnabled bool

	// C10 Tracer
	TraceEnabled bool
}

// DefaultConfig returns the configuration spec.md §6.4 and the ported
// Python constants describe.
func DefaultConfig() Config {
	return Config{
		SuppressTOC:      true,
		SuppressRunning:  true,
		BandLines:        5,
		MinTOCDotLeaders: 4,
		MinTOCSectionish: 6,

		FuzzyThresholdNumTitle:  82,
		FuzzyThresholdTitleOnly: 78,
		PenaltyBand:             0.25,
		PenaltyTOC:              0.45,
		WeightFuzzy:             0.6,
		WeightTypo:              0.15,
		WeightPos:               0.25,
		RunningPenalty:          500,

		UseEmbeddings: false,
		FuseWeights:   [4]float64{0.55, 0.30, 0.10, 0.05},
		MinLexical:    0.3,
		MinCosine:     0.25,

		StrictNumericFirstPass: false,
		AfterAnchorOnly:        true,
		WindowPad:              40,
		SequentialCoverageMin:  0.6,

		RescanPasses:           2,
		DedupePolicy:           "best",
		LastOccurrenceFallback: true,
		FinalMonotonicGuard:    true,
		ParentReanchorWindow:   800,

		GapFillEnabled: true,
		TraceEnabled:   true,
	}
}
