package llm

import (
	"context"
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enricher/internal/resilience"
	"github.com/sells-group/contact-enricher/pkg/anthropic"
)

const defaultAnthropicMaxTokens = 4096

// Anthropic implements Extractor on top of the Messages API.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropic wraps client. A non-positive maxTokens uses 4096.
func NewAnthropic(client anthropic.Client, model string, maxTokens int64) *Anthropic {
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	return &Anthropic{client: client, model: model, maxTokens: maxTokens}
}

// Name implements Extractor.
func (a *Anthropic) Name() string { return "anthropic" }

// Extract implements Extractor.
func (a *Anthropic) Extract(ctx context.Context, req Request) (*Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = a.maxTokens
	}
	resp, err := a.client.Complete(ctx, anthropic.Prompt{
		Model:       a.model,
		System:      req.System,
		User:        req.User,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, classifyAnthropicErr(err)
	}
	resp.Usage.Log(a.model)
	if resp.Truncated() {
		zap.L().Warn("llm: anthropic answer hit the token limit",
			zap.String("model", a.model),
			zap.Int64("max_tokens", maxTokens),
		)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return nil, ErrEmptyResponse
	}
	return &Response{
		Text:         text,
		Model:        resp.Model,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}, nil
}

func classifyAnthropicErr(err error) error {
	wrapped := eris.Wrap(err, "llm: anthropic extract")
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return resilience.WrapStatus(wrapped, apiErr.StatusCode)
	}
	if resilience.IsTransient(err) {
		return resilience.NewTransientError(wrapped, 0)
	}
	return wrapped
}
