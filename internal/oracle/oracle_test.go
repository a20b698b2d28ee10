package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/outlinehq/specloc/internal/locator"
)

func TestMockOracleReturnsConfiguredHeaders(t *testing.T) {
	headers := []locator.CandidateHeader{
		{Text: "General Conditions", Number: "1", Level: 1},
		{Text: "Scope", Number: "1.1", Level: 2},
	}
	o := NewMockOracle(headers)

	got, err := o.ProposeOutline(context.Background(), "anything")
	if err != nil {
		t.Fatalf("ProposeOutline() error = %v", err)
	}
	if len(got) != len(headers) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(headers))
	}
	for i := range headers {
		if got[i] != headers[i] {
			t.Errorf("got[%d] = %+v, want %+v", i, got[i], headers[i])
		}
	}

	// mutating the returned slice must not corrupt the oracle's own copy.
	got[0].Text = "mutated"
	got2, err := o.ProposeOutline(context.Background(), "anything")
	if err != nil {
		t.Fatalf("ProposeOutline() error = %v", err)
	}
	if got2[0].Text != "General Conditions" {
		t.Errorf("got2[0].Text = %q, want %q", got2[0].Text, "General Conditions")
	}
}

func TestMockOracleFailReturnsTransportError(t *testing.T) {
	o := &MockOracle{Fail: true}

	_, err := o.ProposeOutline(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected error")
	}

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Errorf("error = %v, want *TransportError", err)
	}
}

func TestToCandidateHeadersDefaultsMissingLevelAndTracksSourceOrder(t *testing.T) {
	raw := []rawHeader{
		{Text: "Division 1", Number: "1", Level: 0},
		{Text: "Section 1.1", Number: "1.1", Level: 2},
	}

	got := toCandidateHeaders(raw)
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if got[0].Level != 1 {
		t.Errorf("got[0].Level = %d, want 1", got[0].Level)
	}
	if got[0].SourceIdx != 0 {
		t.Errorf("got[0].SourceIdx = %d, want 0", got[0].SourceIdx)
	}
	if got[1].Level != 2 {
		t.Errorf("got[1].Level = %d, want 2", got[1].Level)
	}
	if got[1].SourceIdx != 1 {
		t.Errorf("got[1].SourceIdx = %d, want 1", got[1].SourceIdx)
	}
}

func TestTransportErrorUnwrap(t *testing.T) {
	inner := context.DeadlineExceeded
	err := &TransportError{Err: inner}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected errors.Is(err, context.DeadlineExceeded) = true")
	}
}
