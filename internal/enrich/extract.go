package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enricher/internal/llm"
	"github.com/sells-group/contact-enricher/internal/model"
)

var (
	errEmptyOutput   = eris.New("model returned no content")
	errNotJSONObject = eris.New("model output is not a JSON object")
)

// ExtractInput is what the dossier extractor sends to the model.
type ExtractInput struct {
	Email    string
	NameHint string
	Content  string
}

// ExtractDossier asks ext for a dossier over in.Content, truncated to
// opts.MaxContentChars characters, and parses the JSON answer. Array fields
// are clamped to their bounds.
func ExtractDossier(ctx context.Context, ext llm.Extractor, in ExtractInput, opts Options) (*model.ExtractedDossier, error) {
	if opts.ExtractTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.ExtractTimeout)
		defer cancel()
	}

	content := TruncateRunes(in.Content, opts.MaxContentChars)
	start := time.Now()
	resp, err := ext.Extract(ctx, llm.Request{
		System:      systemPrompt,
		User:        buildUserPrompt(in.Email, in.NameHint, content),
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		if errors.Is(err, llm.ErrEmptyResponse) {
			return nil, errEmptyOutput
		}
		return nil, eris.Wrapf(err, "extract: %s", ext.Name())
	}

	zap.L().Debug("extract: model answered",
		zap.String("provider", ext.Name()),
		zap.Int("content_chars", utf8.RuneCountInString(content)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return ParseDossier(resp.Text)
}

// ParseDossier decodes model output into a dossier. Code fences and text
// around the object are ignored. Missing keys decode to empty values.
func ParseDossier(text string) (*model.ExtractedDossier, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errEmptyOutput
	}
	cleaned := cleanJSON(text)
	if !strings.HasPrefix(cleaned, "{") {
		return nil, errNotJSONObject
	}

	var d model.ExtractedDossier
	if err := json.Unmarshal([]byte(cleaned), &d); err != nil {
		return nil, eris.Wrap(err, "parse model output")
	}
	d.Clamp()
	return &d, nil
}

// cleanJSON extracts a JSON object from text that may contain markdown code
// fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return strings.TrimSpace(text)
}

// TruncateRunes returns the first n characters of s. A non-positive n
// disables truncation.
func TruncateRunes(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
