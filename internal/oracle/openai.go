package oracle

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	"github.com/outlinehq/specloc/internal/locator"
)

const (
	defaultOracleModel = openai.ChatModelGPT4oMini

	outlineSystemPrompt = `You extract a document's header outline. Return ONLY a fenced JSON code block ` +
		`containing {"headers":[{"text":"...","number":"..."|null,"level":1}]}. Number is the printed ` +
		`numbering string exactly as it appears (e.g. "1.2", "APPENDIX A"), or null if the header is ` +
		`unnumbered. Level is the nesting depth starting at 1. Do not include any other text.`
)

// openaiSDKClient adapts the official OpenAI SDK to llmClient.
type openaiSDKClient struct {
	client openai.Client
}

func (c *openaiSDKClient) Name() string { return "openai" }

func (c *openaiSDKClient) Chat(ctx context.Context, req *chatRequest) (*chatResult, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			msgs = append(msgs, openai.SystemMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    req.Model,
		Messages: msgs,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: empty choices")
	}
	return &chatResult{
		Content:   resp.Choices[0].Message.Content,
		Provider:  "openai",
		ModelUsed: req.Model,
		Attempts:  1,
	}, nil
}

// OpenAIConfig configures a concrete OpenAI-backed Oracle.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	BaseURL    string // optional, for tests
	MaxRetries int
	Timeout    time.Duration
	HTTPClient *http.Client
}

// openaiOracle implements Oracle against an llmClient transport. It is
// constructed with the real OpenAI SDK by NewOpenAIOracle, or with
// mockLLMClient in tests via newOracleWithClient.
type openaiOracle struct {
	client     llmClient
	model      string
	maxRetries int
}

// NewOpenAIOracle constructs an Oracle backed by the OpenAI SDK.
func NewOpenAIOracle(cfg OpenAIConfig) *openaiOracle {
	if cfg.Model == "" {
		cfg.Model = defaultOracleModel
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return newOracleWithClient(&openaiSDKClient{client: openai.NewClient(opts...)}, cfg.Model, cfg.MaxRetries)
}

func newOracleWithClient(client llmClient, model string, maxRetries int) *openaiOracle {
	if maxRetries <= 0 {
		maxRetries = 1
	}
	return &openaiOracle{client: client, model: model, maxRetries: maxRetries}
}

// ProposeOutline implements Oracle. It retries transport failures with
// exponential backoff via retry-go, and on a schema validation failure
// re-prompts once with a repair message before giving up.
func (o *openaiOracle) ProposeOutline(ctx context.Context, documentText string) ([]locator.CandidateHeader, error) {
	requestID := uuid.NewString()

	req := &chatRequest{
		Model: o.model,
		Messages: []message{
			{Role: "system", Content: outlineSystemPrompt},
			{Role: "user", Content: documentText},
		},
	}

	var content string
	err := retry.Do(
		func() error {
			resp, err := o.client.Chat(ctx, req)
			if err != nil {
				return err
			}
			content = resp.Content
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(o.maxRetries)),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
	)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("request %s: %w", requestID, err)}
	}

	outline, err := parseOutline(content)
	if err != nil {
		repaired, repairErr := o.repair(ctx, content, err)
		if repairErr != nil {
			return nil, locator.ErrOutlineParse
		}
		outline = repaired
	}

	return toCandidateHeaders(outline.Headers), nil
}

// repair re-prompts once with the validation failure, matching the
// structured-output self-repair loop the prompt/response helpers support.
func (o *openaiOracle) repair(ctx context.Context, lastOutput string, issue error) (rawOutline, error) {
	prompt := structuredRepairPrompt([]byte(outlineSchema), lastOutput, issue)
	req := &chatRequest{
		Model: o.model,
		Messages: []message{
			{Role: "system", Content: outlineSystemPrompt},
			{Role: "user", Content: prompt},
		},
	}
	resp, err := o.client.Chat(ctx, req)
	if err != nil {
		return rawOutline{}, err
	}
	return parseOutline(resp.Content)
}

var _ Oracle = (*openaiOracle)(nil)
