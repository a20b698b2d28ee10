package oracle

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/outlinehq/specloc/internal/locator"
)

const mockClientName = "mock"

// mockLLMClient is an llmClient for testing openaiOracle's retry/parse
// logic without a network call.
type mockLLMClient struct {
	Latency      time.Duration
	ShouldFail   bool
	FailAfter    int
	ResponseText string

	requestCount atomic.Int64
}

func (c *mockLLMClient) Name() string { return mockClientName }

func (c *mockLLMClient) Chat(ctx context.Context, req *chatRequest) (*chatResult, error) {
	count := c.requestCount.Add(1)
	if c.ShouldFail {
		return nil, fmt.Errorf("mock client configured to fail")
	}
	if c.FailAfter > 0 && int(count) > c.FailAfter {
		return nil, fmt.Errorf("mock client failed after %d requests", c.FailAfter)
	}

	select {
	case <-time.After(c.Latency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return &chatResult{
		Content:   c.ResponseText,
		Provider:  mockClientName,
		ModelUsed: req.Model,
		Attempts:  1,
	}, nil
}

// MockOracle is an Oracle for tests: it returns a fixed outline regardless
// of document text.
type MockOracle struct {
	Headers []locator.CandidateHeader
	Fail    bool
}

// NewMockOracle returns a MockOracle seeded with the given headers.
func NewMockOracle(headers []locator.CandidateHeader) *MockOracle {
	return &MockOracle{Headers: headers}
}

// ProposeOutline implements Oracle.
func (m *MockOracle) ProposeOutline(ctx context.Context, documentText string) ([]locator.CandidateHeader, error) {
	if m.Fail {
		return nil, &TransportError{Err: fmt.Errorf("mock oracle configured to fail")}
	}
	out := make([]locator.CandidateHeader, len(m.Headers))
	copy(out, m.Headers)
	return out, nil
}
