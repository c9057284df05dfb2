package scrape

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-enricher/internal/model"
	"github.com/sells-group/contact-enricher/pkg/firecrawl"
)

// FirecrawlAdapter wraps a Firecrawl client as a Scraper.
type FirecrawlAdapter struct {
	client firecrawl.Client
}

// NewFirecrawlAdapter creates a FirecrawlAdapter from a Firecrawl client.
func NewFirecrawlAdapter(client firecrawl.Client) *FirecrawlAdapter {
	return &FirecrawlAdapter{client: client}
}

// Name implements Scraper.
func (f *FirecrawlAdapter) Name() string { return "firecrawl" }

// Supports implements Scraper. Firecrawl renders JavaScript, so any URL is fair game.
func (f *FirecrawlAdapter) Supports(_ string) bool { return true }

// Scrape requests the page as markdown and maps the document head to
// PageMetadata, preferring the plain values over OpenGraph ones. A page with
// head metadata but no body is returned with empty Markdown.
func (f *FirecrawlAdapter) Scrape(ctx context.Context, targetURL string) (*model.PageFetchResult, error) {
	resp, err := f.client.Scrape(ctx, firecrawl.ScrapeRequest{
		URL:     targetURL,
		Formats: []string{firecrawl.FormatMarkdown},
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, eris.Errorf("firecrawl: scrape not successful: %s", resp.Error)
	}

	md := strings.TrimSpace(resp.Data.Markdown)
	if md != "" && IsBlockedContent(md) {
		return nil, ErrBlocked
	}

	meta := resp.Data.Metadata
	result := &model.PageFetchResult{
		URL:      targetURL,
		Markdown: md,
		Source:   f.Name(),
	}
	pm := &model.PageMetadata{
		Title:       firstNonBlank(meta.Title, meta.OGTitle),
		Description: firstNonBlank(meta.Description, meta.OGDescription),
		Image:       meta.OGImage,
	}
	if !pm.IsEmpty() {
		result.Metadata = pm
	}
	if md == "" && result.Metadata == nil {
		return nil, ErrEmptyPage
	}
	return result, nil
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
