package enrich

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/contact-enricher/internal/model"
	"github.com/sells-group/contact-enricher/internal/scrape"
)

// FetchSources scrapes urls one at a time, in order. A failed or empty page
// is logged and skipped; a page with metadata but no body is kept. Each fetch gets its own timeout when timeout > 0.
func FetchSources(ctx context.Context, s scrape.Scraper, urls []string, timeout time.Duration) []model.PageFetchResult {
	var pages []model.PageFetchResult
	for _, u := range urls {
		if ctx.Err() != nil {
			break
		}
		page, err := fetchOne(ctx, s, u, timeout)
		if err != nil {
			zap.L().Debug("enrich: fetch failed, skipping",
				zap.String("url", u),
				zap.String("scraper", s.Name()),
				zap.Error(err),
			)
			continue
		}
		if !page.HasBody() && (page == nil || page.Metadata.IsEmpty()) {
			zap.L().Debug("enrich: empty page, skipping", zap.String("url", u))
			continue
		}
		if page.URL == "" {
			page.URL = u
		}
		pages = append(pages, *page)
	}
	return pages
}

func fetchOne(ctx context.Context, s scrape.Scraper, url string, timeout time.Duration) (*model.PageFetchResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.Scrape(ctx, url)
}
