package locator

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// TraceEvent is one structured decision-point record, as described in
// §4.10. Data carries the event-specific payload (number, global_idx,
// strategy, and so on).
type TraceEvent struct {
	T    float64        `json:"t"`
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// decisionTypes are the event types a summary highlights, matching the
// Python HeaderTracer._build_summary filter.
var decisionTypes = map[string]bool{
	"candidate_found":     true,
	"anchor_resolved":     true,
	"fallback_triggered":  true,
	"monotonic_violation": true,
}

// Tracer is a pure sink: disabling it changes no semantics of the engine,
// only whether events are recorded.
type Tracer struct {
	RunID   string
	enabled bool
	events  []TraceEvent
}

// NewTracer creates a tracer. If enabled is false, Event is a no-op and
// Flush writes nothing.
func NewTracer(enabled bool) *Tracer {
	return &Tracer{RunID: uuid.NewString(), enabled: enabled}
}

// Event appends a timestamped event. Safe to call on a disabled tracer.
func (t *Tracer) Event(eventType string, data map[string]any) {
	if t == nil || !t.enabled {
		return
	}
	t.events = append(t.events, TraceEvent{
		T:    float64(time.Now().UnixNano()) / 1e9,
		Type: eventType,
		Data: data,
	})
}

// AsList returns every recorded event.
func (t *Tracer) AsList() []TraceEvent {
	if t == nil {
		return nil
	}
	return t.events
}

// FlushJSONL writes the newline-delimited event log to path and a
// companion summary JSON to the same path with a "-summary.json" suffix
// (replacing any trailing ".jsonl"/".ndjson").
func (t *Tracer) FlushJSONL(path string) error {
	if t == nil || !t.enabled {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tracer: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, ev := range t.events {
		if err := enc.Encode(ev); err != nil {
			return fmt.Errorf("tracer: encode event: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("tracer: flush %s: %w", path, err)
	}

	summary := t.buildSummary()
	summaryPath := summaryPathFor(path)
	sf, err := os.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("tracer: create %s: %w", summaryPath, err)
	}
	defer sf.Close()
	summaryEnc := json.NewEncoder(sf)
	summaryEnc.SetIndent("", "  ")
	if err := summaryEnc.Encode(summary); err != nil {
		return fmt.Errorf("tracer: encode summary: %w", err)
	}
	return nil
}

func summaryPathFor(path string) string {
	for _, suffix := range []string{".jsonl", ".ndjson"} {
		if len(path) > len(suffix) && path[len(path)-len(suffix):] == suffix {
			return path[:len(path)-len(suffix)] + "-summary.json"
		}
	}
	return path + "-summary.json"
}

// summary mirrors the Python HeaderTracer._build_summary shape: metadata,
// decisions filtered to the key types, and the final outline.
type summary struct {
	RunID       string           `json:"run_id"`
	ElapsedSecs float64          `json:"elapsed_seconds"`
	Decisions   []TraceEvent     `json:"decisions"`
	FinalOutline []map[string]any `json:"final_outline,omitempty"`
}

func (t *Tracer) buildSummary() summary {
	s := summary{RunID: t.RunID}
	if len(t.events) > 0 {
		s.ElapsedSecs = t.events[len(t.events)-1].T - t.events[0].T
	}
	for _, ev := range t.events {
		if decisionTypes[ev.Type] {
			s.Decisions = append(s.Decisions, ev)
		}
		if ev.Type == "final_outline" {
			if outline, ok := ev.Data["headers"].([]map[string]any); ok {
				s.FinalOutline = outline
			}
		}
	}
	return s
}
