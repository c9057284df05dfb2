// Package scrape fetches a single page as markdown plus head metadata,
// falling back across scraping backends in a fixed order.
package scrape

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-enricher/internal/model"
)

// Scraper fetches a single URL and returns its content.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*model.PageFetchResult, error)
	Name() string
	Supports(url string) bool
}

var (
	// ErrEmptyPage is returned when a page yields no usable text.
	ErrEmptyPage = eris.New("scrape: empty page")
	// ErrBlocked is returned when a page is an anti-bot challenge.
	ErrBlocked = eris.New("scrape: blocked by anti-bot page")
)
