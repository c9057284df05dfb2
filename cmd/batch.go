package main

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/contact-enricher/internal/config"
	"github.com/sells-group/contact-enricher/internal/enrich"
	"github.com/sells-group/contact-enricher/internal/model"
	"github.com/sells-group/contact-enricher/internal/resilience"
	"github.com/sells-group/contact-enricher/internal/store"
	"github.com/sells-group/contact-enricher/pkg/notion"
)

var (
	batchLimit       int
	batchConcurrency int
	batchNotion      bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <file.csv>",
	Short: "Enrich every contact of a CSV file",
	Long: `Reads a CSV with an "email" column and an optional "contact_id" column
and enriches each row as an independent request. Transient upstream
failures are retried; every result, including failures, is saved to the
configured store.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		f, err := os.Open(args[0])
		if err != nil {
			return eris.Wrap(err, "batch: open csv")
		}
		defer f.Close() //nolint:errcheck

		reqs, err := parseBatchCSV(f)
		if err != nil {
			return err
		}
		if batchLimit > 0 && len(reqs) > batchLimit {
			reqs = reqs[:batchLimit]
		}

		env, err := initEnricher(ctx, cfg, config.ModeEnrich, true)
		if err != nil {
			return err
		}
		defer env.Close()

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrent
		}

		var exporter notion.Client
		if batchNotion {
			if env.Notion == nil {
				return eris.New("notion export requested but notion.token or notion.contact_db is not set")
			}
			exporter = env.Notion
		}

		sum, err := processBatch(ctx, reqs, batchOptions{
			Concurrency: concurrency,
			Retry:       resilience.FromRetryConfig(cfg.Batch.MaxAttempts, cfg.Batch.InitialBackoffMs),
			Store:       env.Store,
			Notion:      exporter,
			NotionDB:    cfg.Notion.ContactDB,
		}, env.Enricher.Enrich)
		if err != nil {
			return err
		}
		return writeOutput(os.Stdout, "json", sum)
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of rows to process (0 = all)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "concurrent enrichments (default from config)")
	batchCmd.Flags().BoolVar(&batchNotion, "notion", false, "upsert successful results into the Notion contact database")
	rootCmd.AddCommand(batchCmd)
}

// parseBatchCSV reads enrichment requests from a CSV with a header row. The
// email column is required; contact_id (or contactId) is optional. Rows with
// an empty email are skipped.
func parseBatchCSV(r io.Reader) ([]model.EnrichmentRequest, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, eris.New("batch: csv is empty")
	}
	if err != nil {
		return nil, eris.Wrap(err, "batch: read csv header")
	}

	emailCol, idCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "email":
			emailCol = i
		case "contact_id", "contactid", "id":
			idCol = i
		}
	}
	if emailCol < 0 {
		return nil, eris.New("batch: csv header has no email column")
	}

	var reqs []model.EnrichmentRequest
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "batch: read csv row")
		}
		req := model.EnrichmentRequest{Email: strings.TrimSpace(field(rec, emailCol))}
		if req.Email == "" {
			continue
		}
		req.ContactID = strings.TrimSpace(field(rec, idCol))
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// enrichFunc is the callback signature for running one enrichment.
type enrichFunc func(ctx context.Context, req model.EnrichmentRequest) (*model.EnrichedContact, error)

type batchOptions struct {
	Concurrency int
	Retry       resilience.RetryConfig
	Store       store.ContactStore // may be nil
	Notion      notion.Client      // may be nil
	NotionDB    string
}

// batchFailure is one failed row of a batch.
type batchFailure struct {
	Email     string `json:"email"`
	ContactID string `json:"contactId,omitempty"`
	Kind      string `json:"kind"`
	Error     string `json:"error"`
}

// batchSummary is printed when a batch finishes.
type batchSummary struct {
	Total     int            `json:"total"`
	Succeeded int64          `json:"succeeded"`
	Failed    int64          `json:"failed"`
	Failures  []batchFailure `json:"failures,omitempty"`
}

// processBatch enriches reqs concurrently. Each request is independent: a
// failed row is recorded and never aborts the batch.
func processBatch(ctx context.Context, reqs []model.EnrichmentRequest, opts batchOptions, fn enrichFunc) (*batchSummary, error) {
	sum := &batchSummary{Total: len(reqs)}
	if len(reqs) == 0 {
		zap.L().Info("no contacts to enrich")
		return sum, nil
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("contacts", len(reqs)),
		zap.Int("concurrency", opts.Concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	var succeeded, failed atomic.Int64
	failures := make([]*batchFailure, len(reqs))

	for i, req := range reqs {
		g.Go(func() error {
			_, domain := enrich.SplitEmail(req.Email)
			log := zap.L().With(zap.String("email_domain", domain), zap.String("contact_id", req.ContactID))

			retry := opts.Retry
			retry.OnRetry = resilience.RetryLogger("enrich", zap.String("email_domain", domain))
			contact, err := resilience.DoVal(gctx, retry, func(ctx context.Context) (*model.EnrichedContact, error) {
				return fn(ctx, req)
			})
			if err != nil {
				failed.Add(1)
				msg := enrich.Message(err)
				log.Error("enrichment failed", zap.Error(err))
				failures[i] = &batchFailure{
					Email:     req.Email,
					ContactID: req.ContactID,
					Kind:      kindLabel(err),
					Error:     msg,
				}
				if opts.Store != nil {
					if _, sErr := opts.Store.SaveFailure(gctx, store.FailureRecord(req, msg)); sErr != nil {
						log.Warn("failed to record failure", zap.Error(sErr))
					}
				}
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			if opts.Store != nil {
				if _, sErr := opts.Store.Save(gctx, contact); sErr != nil {
					log.Warn("failed to save contact", zap.Error(sErr))
				}
			}
			if opts.Notion != nil {
				if _, nErr := exportToNotion(gctx, opts.Notion, opts.NotionDB, contact); nErr != nil {
					log.Warn("failed to export contact to notion", zap.Error(nErr))
				}
			}
			log.Info("enrichment complete",
				zap.Int("profiles", len(contact.SocialProfiles)),
				zap.String("website", contact.Website),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "batch processing")
	}

	for _, f := range failures {
		if f != nil {
			sum.Failures = append(sum.Failures, *f)
		}
	}
	sum.Succeeded = succeeded.Load()
	sum.Failed = failed.Load()

	zap.L().Info("batch complete",
		zap.Int64("succeeded", sum.Succeeded),
		zap.Int64("failed", sum.Failed),
	)
	return sum, nil
}

func kindLabel(err error) string {
	if k := enrich.KindOf(err); k != nil {
		return k.Error()
	}
	return "UNKNOWN"
}
