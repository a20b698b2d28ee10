package config

// Entry documents one configuration key: its default value and what it
// controls. Used by the CLI's `specloc config defaults` command to print
// a human-readable reference; it is not backed by a live store. Every
// value here comes from DefaultConfig(), except oracle.api_key, whose
// value is the placeholder WriteDefault puts into a new config file.
type Entry struct {
	Key         string
	Value       any
	Description string
}

// DefaultEntries returns the default configuration entries.
func DefaultEntries() []Entry {
	d := DefaultConfig()
	return []Entry{
		{Key: "locator.suppress_toc", Value: d.Locator.SuppressTOC, Description: "exclude table-of-contents pages from candidate windows"},
		{Key: "locator.suppress_running", Value: d.Locator.SuppressRunning, Description: "exclude detected running headers/footers from candidate windows"},
		{Key: "locator.band_lines", Value: d.Locator.BandLines, Description: "number of lines sampled top/bottom of a page when detecting running text"},
		{Key: "locator.min_toc_dot_leaders", Value: d.Locator.MinTOCDotLeaders, Description: "dot-leader lines required before a page is classified as TOC"},
		{Key: "locator.min_toc_sectionish", Value: d.Locator.MinTOCSectionish, Description: "section-numbering-like lines required before a page is classified as TOC"},

		{Key: "locator.fuzzy_threshold_num_title", Value: d.Locator.FuzzyThresholdNumTitle, Description: "minimum fuzzy match ratio for a numbered+titled candidate"},
		{Key: "locator.fuzzy_threshold_title_only", Value: d.Locator.FuzzyThresholdTitleOnly, Description: "minimum fuzzy match ratio for a title-only candidate"},
		{Key: "locator.penalty_band", Value: d.Locator.PenaltyBand, Description: "score penalty applied to matches found in the top/bottom running-text band"},
		{Key: "locator.penalty_toc", Value: d.Locator.PenaltyTOC, Description: "score penalty applied to matches found on a suppressed TOC page"},
		{Key: "locator.weight_fuzzy", Value: d.Locator.WeightFuzzy, Description: "fusion weight for the lexical fuzzy-match signal"},
		{Key: "locator.weight_typo", Value: d.Locator.WeightTypo, Description: "fusion weight for the typography (font size / bold) signal"},
		{Key: "locator.weight_pos", Value: d.Locator.WeightPos, Description: "fusion weight for the positional signal (bonus for windows outside the page's top/bottom band)"},
		{Key: "locator.running_penalty", Value: d.Locator.RunningPenalty, Description: "additive penalty subtracted from matches on lines flagged as running text"},

		{Key: "locator.use_embeddings", Value: d.Locator.UseEmbeddings, Description: "enable the optional vector-fusion scoring path"},
		{Key: "locator.min_lexical", Value: d.Locator.MinLexical, Description: "minimum lexical score required before vector fusion is attempted"},
		{Key: "locator.min_cosine", Value: d.Locator.MinCosine, Description: "minimum cosine similarity required before vector fusion is attempted"},

		{Key: "locator.strict_numeric_first_pass", Value: d.Locator.StrictNumericFirstPass, Description: "skip the title-only alignment pass entirely"},
		{Key: "locator.after_anchor_only", Value: d.Locator.AfterAnchorOnly, Description: "forbid candidates at or before the current cursor position"},
		{Key: "locator.window_pad", Value: d.Locator.WindowPad, Description: "lines of padding added around a computed per-level window"},
		{Key: "locator.sequential_coverage_min", Value: d.Locator.SequentialCoverageMin, Description: "coverage ratio below which the legacy full-pool fallback runs"},

		{Key: "locator.rescan_passes", Value: d.Locator.RescanPasses, Description: "maximum invariant-repair passes before giving up"},
		{Key: "locator.dedupe_policy", Value: d.Locator.DedupePolicy, Description: "\"best\" or \"earliest\" tie-break policy for duplicate anchors"},
		{Key: "locator.last_occurrence_fallback", Value: d.Locator.LastOccurrenceFallback, Description: "allow the last matching occurrence to anchor when no forward candidate exists"},
		{Key: "locator.final_monotonic_guard", Value: d.Locator.FinalMonotonicGuard, Description: "run one last monotonic-order check after repair"},
		{Key: "locator.parent_reanchor_window", Value: d.Locator.ParentReanchorWindow, Description: "lines to rescan backward when reanchoring an implied parent"},

		{Key: "locator.gap_fill_enabled", Value: d.Locator.GapFillEnabled, Description: "recover missing numbered headers implied by a numbering gap"},
		{Key: "locator.trace_enabled", Value: d.Locator.TraceEnabled, Description: "emit an NDJSON trace of every decision Locate makes"},

		{Key: "oracle.model", Value: d.Oracle.Model, Description: "chat completion model used to propose the candidate outline"},
		{Key: "oracle.max_retries", Value: d.Oracle.MaxRetries, Description: "transport retry attempts before the oracle call is abandoned"},
		{Key: "oracle.timeout", Value: d.Oracle.Timeout, Description: "per-request timeout for the oracle HTTP client"},
		{Key: "oracle.api_key", Value: "${OPENAI_API_KEY}", Description: "oracle API key, resolved from the named environment variable"},

		{Key: "embedder.enabled", Value: d.Embedder.Enabled, Description: "enable the hash/model-backed embedder and its vector cache"},
		{Key: "embedder.cache_dir", Value: d.Embedder.CacheDir, Description: "directory (relative to the home dir's data path) holding cached window vectors"},
	}
}

// GetDefault returns the default entry for a config key, or nil if none
// exists.
func GetDefault(key string) *Entry {
	for _, entry := range DefaultEntries() {
		if entry.Key == key {
			return &entry
		}
	}
	return nil
}
