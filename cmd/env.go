package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enricher/internal/config"
	"github.com/sells-group/contact-enricher/internal/enrich"
	"github.com/sells-group/contact-enricher/internal/llm"
	"github.com/sells-group/contact-enricher/internal/resilience"
	"github.com/sells-group/contact-enricher/internal/scrape"
	"github.com/sells-group/contact-enricher/internal/store"
	anthropicpkg "github.com/sells-group/contact-enricher/pkg/anthropic"
	"github.com/sells-group/contact-enricher/pkg/firecrawl"
	"github.com/sells-group/contact-enricher/pkg/jina"
	"github.com/sells-group/contact-enricher/pkg/notion"
)

// enrichEnv holds the enricher and the optional collaborators around it
// needed by the enrich/batch/serve commands.
type enrichEnv struct {
	Enricher *enrich.Enricher
	Store    store.ContactStore // may be nil
	Notion   notion.Client      // may be nil
}

// Close releases resources held by the environment.
func (e *enrichEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnricher validates the configuration for mode, builds the scraper
// chain and the extractor, and opens the store when withStore is set.
// Callers should defer env.Close().
func initEnricher(ctx context.Context, c *config.Config, mode string, withStore bool) (*enrichEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	ext, err := buildExtractor(ctx, c)
	if err != nil {
		return nil, err
	}

	e, err := enrich.New(buildScraper(c), ext, c.EnrichOptions())
	if err != nil {
		return nil, err
	}

	env := &enrichEnv{Enricher: e}

	if withStore {
		st, err := initStore(ctx, c)
		if err != nil {
			return nil, err
		}
		env.Store = st
	}

	if c.Notion.Token != "" && c.Notion.ContactDB != "" {
		env.Notion = notion.NewClient(c.Notion.Token)
	}

	return env, nil
}

// buildScraper assembles the fallback chain: Firecrawl, then Jina, then the
// local HTTP scraper when enabled. Backends without credentials are skipped.
func buildScraper(c *config.Config) *scrape.Chain {
	var scrapers []scrape.Scraper
	if c.Firecrawl.Key != "" {
		fc := firecrawl.NewClient(c.Firecrawl.Key,
			firecrawl.WithBaseURL(c.Firecrawl.BaseURL),
			firecrawl.WithRateLimit(c.Firecrawl.RatePerSec),
		)
		scrapers = append(scrapers, scrape.NewFirecrawlAdapter(fc))
	}
	if c.Jina.Key != "" {
		scrapers = append(scrapers, scrape.NewJinaAdapter(jina.NewClient(c.Jina.Key, jina.WithBaseURL(c.Jina.BaseURL))))
	}
	if c.Scrape.LocalFallback {
		scrapers = append(scrapers, scrape.NewLocalScraper())
	}

	breaker := resilience.FromCircuitConfig(c.Scrape.BreakerThreshold, c.Scrape.BreakerResetSecs)
	return scrape.NewChain(breaker, scrapers...)
}

// buildExtractor returns the language model backend selected by llm.provider.
func buildExtractor(ctx context.Context, c *config.Config) (llm.Extractor, error) {
	switch c.LLM.Provider {
	case config.ProviderGemini:
		g, err := llm.NewGemini(ctx, llm.GeminiConfig{
			APIKey:  c.Gemini.Key,
			Model:   c.Gemini.Model,
			BaseURL: c.Gemini.BaseURL,
			Schema:  llm.DossierSchema(),
		})
		if err != nil {
			return nil, eris.Wrap(err, "init gemini")
		}
		return g, nil
	case config.ProviderAnthropic, "":
		client := anthropicpkg.NewClient(c.Anthropic.Key)
		return llm.NewAnthropic(client, c.Anthropic.Model, c.Anthropic.MaxTokens), nil
	default:
		return nil, eris.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
}

// initStore opens and migrates the configured store. It returns nil when
// store.driver is "none".
func initStore(ctx context.Context, c *config.Config) (store.ContactStore, error) {
	st, err := store.Open(ctx, c.Store.Driver, c.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if st == nil {
		zap.L().Debug("store disabled")
		return nil, nil
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}
