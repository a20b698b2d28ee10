package locator

import (
	"path/filepath"
	"testing"
)

func TestTracerDisabledIsNoOp(t *testing.T) {
	tr := NewTracer(false)
	tr.Event("candidate_found", map[string]any{"x": 1})
	if len(tr.AsList()) != 0 {
		t.Errorf("AsList() = %v, want empty", tr.AsList())
	}
	if err := tr.FlushJSONL(filepath.Join(t.TempDir(), "trace.jsonl")); err != nil {
		t.Errorf("FlushJSONL() error = %v", err)
	}
}

func TestTracerRecordsEventsAndFlushesSummary(t *testing.T) {
	tr := NewTracer(true)
	tr.Event("candidate_found", map[string]any{"number": "1"})
	tr.Event("anchor_resolved", map[string]any{"number": "1", "global_idx": 3})
	tr.Event("some_internal_detail", map[string]any{"noise": true})

	if len(tr.AsList()) != 3 {
		t.Errorf("len(AsList()) = %d, want 3", len(tr.AsList()))
	}
	if tr.RunID == "" {
		t.Error("expected non-empty RunID")
	}

	path := filepath.Join(t.TempDir(), "run.jsonl")
	if err := tr.FlushJSONL(path); err != nil {
		t.Fatalf("FlushJSONL() error = %v", err)
	}

	summary := tr.buildSummary()
	if len(summary.Decisions) != 2 {
		t.Errorf("len(summary.Decisions) = %d, want 2 (only decisionTypes entries should appear)", len(summary.Decisions))
	}
	if summary.RunID != tr.RunID {
		t.Errorf("summary.RunID = %q, want %q", summary.RunID, tr.RunID)
	}
}

func TestSummaryPathForReplacesKnownSuffixes(t *testing.T) {
	if got := summaryPathFor("run.jsonl"); got != "run-summary.json" {
		t.Errorf("summaryPathFor(%q) = %q, want %q", "run.jsonl", got, "run-summary.json")
	}
	if got := summaryPathFor("run.ndjson"); got != "run-summary.json" {
		t.Errorf("summaryPathFor(%q) = %q, want %q", "run.ndjson", got, "run-summary.json")
	}
	if got := summaryPathFor("run"); got != "run-summary.json" {
		t.Errorf("summaryPathFor(%q) = %q, want %q", "run", got, "run-summary.json")
	}
}
