package oracle

import (
	"context"
	"encoding/json"
	"time"
)

// llmClient is the transport-level chat interface a concrete Oracle
// adapter talks through. Kept distinct from the Oracle interface itself
// so openaiOracle can be tested against mockLLMClient without a network.
type llmClient interface {
	Chat(ctx context.Context, req *chatRequest) (*chatResult, error)
	Name() string
}

// message is one chat turn.
type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// responseFormat requests structured JSON output from the model.
type responseFormat struct {
	Type       string          `json:"type"`
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

// chatRequest is a request to the oracle's underlying LLM.
type chatRequest struct {
	Messages       []message       `json:"messages"`
	Model          string          `json:"model,omitempty"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Timeout        time.Duration   `json:"-"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// chatResult is the complete response from one chat call.
type chatResult struct {
	Content          string `json:"content"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	Provider         string `json:"provider"`
	ModelUsed        string `json:"model_used"`
	Attempts         int    `json:"attempts"`
}
