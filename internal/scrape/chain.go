package scrape

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enricher/internal/model"
	"github.com/sells-group/contact-enricher/internal/resilience"
)

// Chain tries scrapers in priority order and returns the first success.
// Each scraper sits behind its own circuit breaker so a failing backend is
// skipped without spending a request on it.
type Chain struct {
	scrapers []Scraper
	breakers *resilience.ServiceBreakers
}

// NewChain creates a Chain whose per-scraper breakers use cfg. Empty and
// blocked pages never trip a breaker unless cfg.ShouldTrip says otherwise.
func NewChain(cfg resilience.CircuitBreakerConfig, scrapers ...Scraper) *Chain {
	if cfg.ShouldTrip == nil {
		cfg.ShouldTrip = breakerTrips
	}
	return &Chain{scrapers: scrapers, breakers: resilience.NewServiceBreakers(cfg)}
}

// Backends returns the scraper names in fallback order.
func (c *Chain) Backends() []string {
	names := make([]string, len(c.scrapers))
	for i, s := range c.scrapers {
		names[i] = s.Name()
	}
	return names
}

// BreakerStates returns the circuit state of every scraper used so far.
func (c *Chain) BreakerStates() map[string]resilience.CircuitState {
	return c.breakers.States()
}

// Name implements Scraper.
func (c *Chain) Name() string { return "chain" }

// Supports implements Scraper.
func (c *Chain) Supports(url string) bool {
	for _, s := range c.scrapers {
		if s.Supports(url) {
			return true
		}
	}
	return false
}

// Scrape implements Scraper.
func (c *Chain) Scrape(ctx context.Context, targetURL string) (*model.PageFetchResult, error) {
	var (
		lastErr  error
		metaOnly *model.PageFetchResult
	)
	for _, s := range c.scrapers {
		if !s.Supports(targetURL) {
			continue
		}
		cb := c.breakers.Get(s.Name())

		result, err := resilience.ExecuteVal(ctx, cb, func(ctx context.Context) (*model.PageFetchResult, error) {
			return s.Scrape(ctx, targetURL)
		})
		if err == nil && result != nil {
			if result.HasBody() {
				if result.Metadata.IsEmpty() && metaOnly != nil {
					result.Metadata = metaOnly.Metadata
				}
				return result, nil
			}
			// Head metadata without a body; a later backend may render the text.
			if metaOnly == nil && !result.Metadata.IsEmpty() {
				metaOnly = result
			}
			err = ErrEmptyPage
		}
		if err == nil {
			err = ErrEmptyPage
		}

		zap.L().Debug("scrape: scraper failed, trying next",
			zap.String("scraper", s.Name()),
			zap.String("url", targetURL),
			zap.Error(err),
		)
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}
	if metaOnly != nil {
		return metaOnly, nil
	}
	if lastErr != nil {
		return nil, eris.Wrap(lastErr, "scrape: all scrapers failed")
	}
	return nil, eris.Errorf("scrape: no suitable scraper for url: %s", targetURL)
}

// breakerTrips reports whether err should count against a scraper's
// circuit breaker. Page-level outcomes say nothing about backend health.
func breakerTrips(err error) bool {
	return !errors.Is(err, ErrEmptyPage) && !errors.Is(err, ErrBlocked) && !errors.Is(err, context.Canceled)
}
