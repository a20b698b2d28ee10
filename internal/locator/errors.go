package locator

import "errors"

// Precondition errors. These are the only two conditions that surface as
// Go errors from Locate; every other failure mode degrades LocateResult.Mode
// instead (see DESIGN.md "Open Question resolutions").
var (
	// ErrNoLines is returned when the input line stream is empty after
	// filtering.
	ErrNoLines = errors.New("locator: no lines after filtering")

	// ErrOutlineParse is returned when strict mode is enabled and the
	// oracle response lacks a valid fenced JSON outline.
	ErrOutlineParse = errors.New("locator: outline parse failed")
)

// recoverable conditions, surfaced only through Messages/Mode, never as a
// returned error:
//   - OracleUnavailable: transport failure reaching the oracle.
//   - EmbedderUnavailable: transport failure reaching the embedder.
//   - MonotonicStall: C7 could not reach a fixpoint within RescanPasses.
//   - CacheWriteError: the embeddings/result cache failed to persist.
const (
	msgOracleUnavailable  = "oracle unavailable: %v"
	msgEmbedderUnavailable = "embedder unavailable: %v"
	msgMonotonicStall     = "invariant enforcer did not reach a fixpoint within %d passes"
	msgCacheWriteError    = "cache write failed: %v"
)
