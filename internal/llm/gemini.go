package llm

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/sells-group/contact-enricher/internal/resilience"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiConfig configures the Gemini extractor.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	// Schema constrains the JSON output. Nil leaves the output unconstrained.
	Schema *genai.Schema
}

// Gemini implements Extractor using the Gemini API in JSON mode.
type Gemini struct {
	client *genai.Client
	model  string
	schema *genai.Schema
}

// NewGemini builds a Gemini extractor.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, eris.New("llm: gemini api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultGeminiModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, eris.Wrap(err, "llm: create gemini client")
	}
	return &Gemini{client: client, model: model, schema: cfg.Schema}, nil
}

// Name implements Extractor.
func (g *Gemini) Name() string { return "gemini" }

// Extract implements Extractor.
func (g *Gemini) Extract(ctx context.Context, req Request) (*Response, error) {
	genCfg := &genai.GenerateContentConfig{
		CandidateCount:   1,
		ResponseMIMEType: "application/json",
		ResponseSchema:   g.schema,
		Temperature:      genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.User), genCfg)
	if err != nil {
		return nil, classifyGeminiErr(err)
	}

	out := &Response{Text: strings.TrimSpace(resp.Text()), Model: g.model}
	if resp.UsageMetadata != nil {
		out.InputTokens = int64(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int64(resp.UsageMetadata.CandidatesTokenCount)
	}
	zap.L().Info("llm usage",
		zap.String("provider", g.Name()),
		zap.String("model", g.model),
		zap.Int64("input_tokens", out.InputTokens),
		zap.Int64("output_tokens", out.OutputTokens),
	)

	if out.Text == "" {
		return nil, ErrEmptyResponse
	}
	return out, nil
}

func classifyGeminiErr(err error) error {
	wrapped := eris.Wrap(err, "llm: gemini extract")

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return resilience.WrapStatus(wrapped, apiErr.Code)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return resilience.NewTransientError(wrapped, 0)
	}
	return wrapped
}
