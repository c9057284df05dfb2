package scrape

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-enricher/internal/model"
	"github.com/sells-group/contact-enricher/pkg/jina"
)

// Pages shorter than this are treated as empty.
const minJinaContent = 100

// JinaAdapter wraps a Jina Reader client as a Scraper.
type JinaAdapter struct {
	client jina.Client
}

// NewJinaAdapter creates a JinaAdapter from a Jina client.
func NewJinaAdapter(client jina.Client) *JinaAdapter {
	return &JinaAdapter{client: client}
}

func (j *JinaAdapter) Name() string { return "jina" }

func (j *JinaAdapter) Supports(_ string) bool { return true }

// Scrape fetches a URL via Jina Reader and rejects empty or challenge pages.
// Jina exposes no image, so the metadata carries title and description only.
func (j *JinaAdapter) Scrape(ctx context.Context, targetURL string) (*model.PageFetchResult, error) {
	resp, err := j.client.Read(ctx, targetURL)
	if err != nil {
		return nil, err
	}
	if resp.Code != 0 && resp.Code != 200 {
		return nil, eris.Errorf("jina: upstream code %d", resp.Code)
	}

	content := strings.TrimSpace(resp.Data.Content)
	if len(content) < minJinaContent {
		content = ""
	}
	if content != "" && IsBlockedContent(content) {
		return nil, ErrBlocked
	}

	result := &model.PageFetchResult{
		URL:      targetURL,
		Markdown: content,
		Source:   j.Name(),
	}
	pm := &model.PageMetadata{
		Title:       strings.TrimSpace(resp.Data.Title),
		Description: strings.TrimSpace(resp.Data.Description),
	}
	if !pm.IsEmpty() {
		result.Metadata = pm
	}
	if content == "" && result.Metadata == nil {
		return nil, ErrEmptyPage
	}
	return result, nil
}
