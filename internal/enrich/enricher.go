// Package enrich turns an email address into an enriched contact: it guesses
// a name, scrapes the domain's candidate pages, has a language model extract
// a dossier, reconciles social profiles and assembles the result.
package enrich

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/contact-enricher/internal/llm"
	"github.com/sells-group/contact-enricher/internal/model"
	"github.com/sells-group/contact-enricher/internal/scrape"
)

// Options configures an Enricher.
type Options struct {
	// ScrapeKey and LLMKey are the collaborator credentials. Both are required.
	ScrapeKey string
	LLMKey    string

	// Non-positive MaxContentChars and MaxURLs fall back to DefaultOptions.
	MaxContentChars int
	MaxURLs         int
	// Temperature is sent as given, so zero means deterministic sampling.
	// Build Options from DefaultOptions to get 0.2.
	Temperature float64
	MaxTokens   int64

	// FetchTimeout bounds each page fetch, ExtractTimeout the model call.
	FetchTimeout   time.Duration
	ExtractTimeout time.Duration
}

// DefaultOptions returns the defaults without credentials.
func DefaultOptions() Options {
	return Options{
		MaxContentChars: 15000,
		MaxURLs:         3,
		Temperature:     0.2,
		MaxTokens:       4096,
		FetchTimeout:    30 * time.Second,
		ExtractTimeout:  90 * time.Second,
	}
}

// Validate reports missing credentials as an ErrConfiguration error.
func (o Options) Validate() error {
	var missing []string
	if strings.TrimSpace(o.ScrapeKey) == "" {
		missing = append(missing, "scraping credential")
	}
	if strings.TrimSpace(o.LLMKey) == "" {
		missing = append(missing, "language model credential")
	}
	if len(missing) > 0 {
		return newError(ErrConfiguration, "", nil, "missing "+strings.Join(missing, ", "))
	}
	return nil
}

// State is a step of an enrichment run.
type State string

const (
	StateStarted     State = "started"
	StateFetching    State = "fetching"
	StateAggregated  State = "aggregated"
	StateExtracting  State = "extracting"
	StateExtracted   State = "extracted"
	StateReconciling State = "reconciling"
	StateAssembling  State = "assembling"
	StateCompleted   State = "completed"
	StateFailed      State = "failed"
)

// Enricher runs the enrichment pipeline. It holds no per-request state and
// is safe for concurrent use.
type Enricher struct {
	scraper    scrape.Scraper
	extractor  llm.Extractor
	reconciler *Reconciler
	opts       Options
	observe    func(State)
	now        func() time.Time
}

// Option customizes an Enricher.
type Option func(*Enricher)

// WithMatchers replaces the platform matchers used for reconciliation.
func WithMatchers(matchers ...PlatformMatcher) Option {
	return func(e *Enricher) {
		e.reconciler = NewReconciler(matchers...)
	}
}

// WithStateObserver registers fn to be called on every state transition.
func WithStateObserver(fn func(State)) Option {
	return func(e *Enricher) {
		e.observe = fn
	}
}

// New validates opts and returns an Enricher. Zero-valued size limits take
// their defaults; Temperature is kept as passed.
func New(s scrape.Scraper, ext llm.Extractor, opts Options, options ...Option) (*Enricher, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if s == nil || ext == nil {
		return nil, newError(ErrConfiguration, "", nil, "scraper and extractor are required")
	}
	def := DefaultOptions()
	if opts.MaxContentChars <= 0 {
		opts.MaxContentChars = def.MaxContentChars
	}
	if opts.MaxURLs <= 0 {
		opts.MaxURLs = def.MaxURLs
	}

	e := &Enricher{
		scraper:    s,
		extractor:  ext,
		reconciler: NewReconciler(),
		opts:       opts,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, o := range options {
		o(e)
	}
	return e, nil
}

// Options returns the effective options.
func (e *Enricher) Options() Options { return e.opts }

func (e *Enricher) transition(log *zap.Logger, s State, fields ...zap.Field) {
	log.Info("enrich: "+string(s), fields...)
	if e.observe != nil {
		e.observe(s)
	}
}

// Enrich runs the pipeline once for req. It returns either a complete
// contact or an *Error carrying req.ContactID, never both.
func (e *Enricher) Enrich(ctx context.Context, req model.EnrichmentRequest) (*model.EnrichedContact, error) {
	req.Email = strings.TrimSpace(req.Email)
	_, domain := SplitEmail(req.Email)
	log := zap.L().With(
		zap.String("email_domain", domain),
		zap.String("contact_id", req.ContactID),
	)
	start := time.Now()

	fail := func(err *Error) (*model.EnrichedContact, error) {
		e.transition(log, StateFailed,
			zap.String("kind", kindName(err.Kind)),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, err
	}

	if req.Email == "" {
		return nil, newError(ErrInvalidInput, req.ContactID, nil, "email is required")
	}
	if !ValidateEmail(req.Email) {
		return nil, newError(ErrInvalidInput, req.ContactID, nil, "invalid email")
	}

	e.transition(log, StateStarted)
	guessed := GuessName(req.Email)

	urls := attemptedURLs(domain, e.opts.MaxURLs)
	e.transition(log, StateFetching, zap.Strings("urls", urls))
	pages := FetchSources(ctx, e.scraper, urls, e.opts.FetchTimeout)
	if ctx.Err() != nil {
		return fail(newError(ErrCanceled, req.ContactID, ctx.Err(), "enrichment canceled"))
	}

	agg, ok := Aggregate(pages)
	if !ok {
		return fail(newError(ErrSourceUnavailable, req.ContactID, nil, MsgNoContent))
	}
	e.transition(log, StateAggregated,
		zap.Int("pages", len(agg.URLs)),
		zap.Int("content_len", len(agg.Text)),
	)

	e.transition(log, StateExtracting, zap.String("provider", e.extractor.Name()))
	dossier, err := ExtractDossier(ctx, e.extractor, ExtractInput{
		Email:    req.Email,
		NameHint: guessed,
		Content:  agg.Text,
	}, e.opts)
	if err != nil {
		if ctx.Err() != nil {
			return fail(newError(ErrCanceled, req.ContactID, err, "enrichment canceled"))
		}
		return fail(newError(ErrExtraction, req.ContactID, err, extractionMessage(err)))
	}
	e.transition(log, StateExtracted)

	e.transition(log, StateReconciling)
	profiles := e.reconciler.Reconcile(dossier, agg.Text)

	e.transition(log, StateAssembling, zap.Int("profiles", len(profiles)))
	contact := Assemble(AssembleInput{
		Request:     req,
		Domain:      domain,
		GuessedName: guessed,
		Dossier:     dossier,
		Metadata:    agg.Metadata,
		Profiles:    profiles,
		Now:         e.now(),
	})

	e.transition(log, StateCompleted, zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	return contact, nil
}

func extractionMessage(err error) string {
	switch {
	case errors.Is(err, errEmptyOutput):
		return "Language model returned no content"
	case errors.Is(err, errNotJSONObject):
		return "Language model output is not a JSON object"
	default:
		return "Failed to extract dossier"
	}
}

func kindName(k Kind) string {
	if k == nil {
		return ""
	}
	return k.Error()
}
