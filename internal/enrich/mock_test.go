package enrich

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/contact-enricher/internal/llm"
	"github.com/sells-group/contact-enricher/internal/model"
)

// --- Scraper Mock ---

type mockScraper struct {
	mock.Mock
}

func (m *mockScraper) Scrape(ctx context.Context, url string) (*model.PageFetchResult, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PageFetchResult), args.Error(1)
}

func (m *mockScraper) Name() string { return "mock" }

func (m *mockScraper) Supports(_ string) bool { return true }

// --- Extractor Mock ---

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, req llm.Request) (*llm.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}

func (m *mockExtractor) Name() string { return "mock-llm" }

func page(url, markdown string, meta *model.PageMetadata) *model.PageFetchResult {
	return &model.PageFetchResult{URL: url, Markdown: markdown, Metadata: meta}
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.ScrapeKey = "fc-key"
	opts.LLMKey = "llm-key"
	return opts
}
