// Package anthropic is a single-turn Messages API client for structured
// extraction prompts.
package anthropic

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Client sends one prompt and returns the model's text answer.
type Client interface {
	Complete(ctx context.Context, p Prompt) (*Completion, error)
}

// Prompt is a single user turn with an optional system instruction. The
// system text is sent as a cacheable block since it repeats across calls.
type Prompt struct {
	Model       string
	System      string
	User        string
	MaxTokens   int64
	Temperature float64
}

// Completion is the model's answer to a Prompt.
type Completion struct {
	Model      string
	Text       string // text blocks joined with "\n"
	StopReason string
	Usage      Usage
}

// Truncated reports whether the answer was cut off by the token limit.
func (c *Completion) Truncated() bool {
	return c != nil && c.StopReason == "max_tokens"
}

// Usage counts the tokens billed for one call.
type Usage struct {
	InputTokens      int64
	OutputTokens     int64
	CacheWriteTokens int64
	CacheReadTokens  int64
}

// price is USD per million input and output tokens.
type price struct {
	in, out float64
}

// Keyed by model family; dated snapshots share their family's price.
var prices = []struct {
	prefix string
	price  price
}{
	{"claude-haiku-4-5", price{1.00, 5.00}},
	{"claude-sonnet-4-5", price{3.00, 15.00}},
	{"claude-3-5-haiku", price{0.80, 4.00}},
}

func priceFor(model string) (price, bool) {
	for _, p := range prices {
		if strings.HasPrefix(model, p.prefix) {
			return p.price, true
		}
	}
	return price{}, false
}

// Cost estimates the USD cost of u under model's pricing. Cache writes bill
// at 1.25x input and cache reads at 0.1x. Unknown models cost 0.
func (u Usage) Cost(model string) float64 {
	p, ok := priceFor(model)
	if !ok {
		return 0
	}
	const mtok = 1e6
	return float64(u.InputTokens)/mtok*p.in +
		float64(u.OutputTokens)/mtok*p.out +
		float64(u.CacheWriteTokens)/mtok*p.in*1.25 +
		float64(u.CacheReadTokens)/mtok*p.in*0.1
}

// Log writes the token counts and estimated cost of one call.
func (u Usage) Log(model string) {
	zap.L().Info("anthropic: usage",
		zap.String("model", model),
		zap.Int64("input_tokens", u.InputTokens),
		zap.Int64("output_tokens", u.OutputTokens),
		zap.Int64("cache_write_tokens", u.CacheWriteTokens),
		zap.Int64("cache_read_tokens", u.CacheReadTokens),
		zap.Float64("estimated_cost_usd", u.Cost(model)),
	)
}

type sdkClient struct {
	client sdk.Client
}

// NewClient returns a Client for apiKey. The SDK's own retries are off so
// that callers see every failed status.
func NewClient(apiKey string, opts ...option.RequestOption) Client {
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	return &sdkClient{client: sdk.NewClient(append(base, opts...)...)}
}

func (c *sdkClient) Complete(ctx context.Context, p Prompt) (*Completion, error) {
	params := sdk.MessageNewParams{
		Model:       sdk.Model(p.Model),
		MaxTokens:   p.MaxTokens,
		Messages:    []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(p.User))},
		Temperature: sdk.Float(p.Temperature),
	}
	if p.System != "" {
		params.System = []sdk.TextBlockParam{{
			Text:         p.System,
			CacheControl: sdk.NewCacheControlEphemeralParam(),
		}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: complete")
	}

	var parts []string
	for _, b := range msg.Content {
		if b.Type == "text" && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return &Completion{
		Model:      string(msg.Model),
		Text:       strings.Join(parts, "\n"),
		StopReason: string(msg.StopReason),
		Usage: Usage{
			InputTokens:      msg.Usage.InputTokens,
			OutputTokens:     msg.Usage.OutputTokens,
			CacheWriteTokens: msg.Usage.CacheCreationInputTokens,
			CacheReadTokens:  msg.Usage.CacheReadInputTokens,
		},
	}, nil
}
