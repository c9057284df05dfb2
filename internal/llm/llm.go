// Package llm adapts language model providers to the single-call JSON
// extraction used by the dossier extractor.
package llm

import (
	"context"

	"github.com/rotisserie/eris"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = eris.New("llm: empty response")

// Request is one extraction call.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int64
}

// Response carries the raw model text and token accounting.
type Response struct {
	Text         string
	Model        string
	InputTokens  int64
	OutputTokens int64
}

// Extractor sends a prompt to a language model and returns its text output.
type Extractor interface {
	Extract(ctx context.Context, req Request) (*Response, error)
	Name() string
}
