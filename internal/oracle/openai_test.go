package oracle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/outlinehq/specloc/internal/locator"
)

func TestOpenAIOracleProposeOutlineHappyPath(t *testing.T) {
	client := &mockLLMClient{
		ResponseText: "```json\n{\"headers\":[{\"text\":\"General Conditions\",\"number\":\"1\",\"level\":1}]}\n```",
	}
	o := newOracleWithClient(client, "test-model", 3)

	headers, err := o.ProposeOutline(context.Background(), "document text")
	if err != nil {
		t.Fatalf("ProposeOutline() error = %v", err)
	}
	if len(headers) != 1 {
		t.Fatalf("len(headers) = %d, want 1", len(headers))
	}
	if headers[0].Text != "General Conditions" {
		t.Errorf("headers[0].Text = %q, want %q", headers[0].Text, "General Conditions")
	}
	if headers[0].Number != "1" {
		t.Errorf("headers[0].Number = %q, want %q", headers[0].Number, "1")
	}
	if headers[0].Level != 1 {
		t.Errorf("headers[0].Level = %d, want 1", headers[0].Level)
	}
}

func TestOpenAIOracleRetriesTransientTransportFailure(t *testing.T) {
	client := &flakyMockClient{failUntilCall: 3, responseText: "```json\n{\"headers\":[]}\n```"}
	o := newOracleWithClient(client, "test-model", 5)

	_, err := o.ProposeOutline(context.Background(), "document text")
	if err != nil {
		t.Fatalf("ProposeOutline() error = %v", err)
	}
	if client.calls != 3 {
		t.Errorf("client.calls = %d, want 3", client.calls)
	}
}

// flakyMockClient fails every call before failUntilCall, then succeeds,
// used to exercise the retry-go backoff path in ProposeOutline.
type flakyMockClient struct {
	failUntilCall int
	responseText  string
	calls         int
}

func (c *flakyMockClient) Name() string { return "flaky-mock" }

func (c *flakyMockClient) Chat(ctx context.Context, req *chatRequest) (*chatResult, error) {
	c.calls++
	if c.calls < c.failUntilCall {
		return nil, context.DeadlineExceeded
	}
	return &chatResult{Content: c.responseText, ModelUsed: req.Model}, nil
}

func TestOpenAIOracleTransportFailureWrapsAsTransportError(t *testing.T) {
	client := &mockLLMClient{ShouldFail: true}
	o := newOracleWithClient(client, "test-model", 2)

	_, err := o.ProposeOutline(context.Background(), "document text")
	if err == nil {
		t.Fatal("expected error")
	}

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Errorf("error = %v, want *TransportError", err)
	}
}

func TestOpenAIOracleRepairsMalformedOutlineThenSucceeds(t *testing.T) {
	client := &repairingMockClient{
		firstResponse:  "not json at all",
		secondResponse: "```json\n{\"headers\":[{\"text\":\"Scope\",\"number\":null,\"level\":1}]}\n```",
	}
	o := newOracleWithClient(client, "test-model", 1)

	headers, err := o.ProposeOutline(context.Background(), "document text")
	if err != nil {
		t.Fatalf("ProposeOutline() error = %v", err)
	}
	if len(headers) != 1 {
		t.Fatalf("len(headers) = %d, want 1", len(headers))
	}
	if headers[0].Text != "Scope" {
		t.Errorf("headers[0].Text = %q, want %q", headers[0].Text, "Scope")
	}
	if headers[0].Number != "" {
		t.Errorf("headers[0].Number = %q, want empty", headers[0].Number)
	}
	if client.calls != 2 {
		t.Errorf("client.calls = %d, want 2", client.calls)
	}
}

func TestOpenAIOracleGivesUpAfterFailedRepair(t *testing.T) {
	client := &repairingMockClient{
		firstResponse:  "not json at all",
		secondResponse: "still not json",
	}
	o := newOracleWithClient(client, "test-model", 1)

	_, err := o.ProposeOutline(context.Background(), "document text")
	if !errors.Is(err, locator.ErrOutlineParse) {
		t.Errorf("error = %v, want %v", err, locator.ErrOutlineParse)
	}
}

// repairingMockClient returns firstResponse on the first call and
// secondResponse on every call after, so the repair path can be tested
// deterministically without counting against the retry loop.
type repairingMockClient struct {
	firstResponse  string
	secondResponse string
	calls          int
}

func (c *repairingMockClient) Name() string { return "repairing-mock" }

func (c *repairingMockClient) Chat(ctx context.Context, req *chatRequest) (*chatResult, error) {
	c.calls++
	if c.calls == 1 {
		return &chatResult{Content: c.firstResponse, ModelUsed: req.Model}, nil
	}
	return &chatResult{Content: c.secondResponse, ModelUsed: req.Model}, nil
}

func TestMockLLMClientFailsAfterConfiguredCallCount(t *testing.T) {
	client := &mockLLMClient{FailAfter: 1, ResponseText: "ok"}

	_, err := client.Chat(context.Background(), &chatRequest{Model: "test-model"})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	_, err = client.Chat(context.Background(), &chatRequest{Model: "test-model"})
	if err == nil {
		t.Error("expected error on second call after FailAfter")
	}
}

func TestMockLLMClientRespectsContextCancellation(t *testing.T) {
	client := &mockLLMClient{Latency: time.Hour}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.Chat(ctx, &chatRequest{Model: "test-model"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want %v", err, context.DeadlineExceeded)
	}
}
