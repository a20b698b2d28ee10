// Package oracle talks to the external LLM collaborator that proposes a
// candidate outline for a document, per spec §6.1: given the full
// document text, it returns a fenced JSON object of the form
// {"headers":[{"text":..., "number": "..."|null, "level": int}]}.
package oracle

import (
	"context"
	"fmt"

	"github.com/outlinehq/specloc/internal/locator"
)

// Oracle proposes a candidate outline for a document's full text. The
// locator core never talks to an LLM directly; it only consumes the
// []locator.CandidateHeader this returns.
type Oracle interface {
	// ProposeOutline asks the oracle for a candidate outline over the
	// given document text. Implementations must degrade gracefully:
	// transport failures are wrapped so callers can tell OracleUnavailable
	// apart from a malformed response.
	ProposeOutline(ctx context.Context, documentText string) ([]locator.CandidateHeader, error)
}

// TransportError wraps a failure reaching the oracle (timeout, 4xx, 5xx),
// distinct from a response that parsed but failed schema validation.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("oracle transport: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// rawHeader mirrors the wire shape of one entry in the oracle's
// {"headers":[...]} response.
type rawHeader struct {
	Text   string `json:"text"`
	Number string `json:"number"`
	Level  int    `json:"level"`
}

// rawOutline is the top-level shape the oracle's fenced JSON block must
// conform to.
type rawOutline struct {
	Headers []rawHeader `json:"headers"`
}

func toCandidateHeaders(headers []rawHeader) []locator.CandidateHeader {
	out := make([]locator.CandidateHeader, 0, len(headers))
	for i, h := range headers {
		if h.Level <= 0 {
			h.Level = 1
		}
		out = append(out, locator.CandidateHeader{
			Text:      h.Text,
			Number:    h.Number,
			Level:     h.Level,
			SourceIdx: i,
		})
	}
	return out
}
