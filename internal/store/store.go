// Package store persists enriched contacts and failure records.
package store

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-enricher/internal/model"
)

// ErrNotFound is returned by Get when no contact has the id.
var ErrNotFound = eris.New("contact not found")

// defaultListLimit caps List when the filter sets no limit.
const defaultListLimit = 100

// ContactStore is the storage collaborator of the enrichment service.
type ContactStore interface {
	// Save upserts c by contact id. A contact without an id gets a new UUID,
	// written back to c.ContactID and returned.
	Save(ctx context.Context, c *model.EnrichedContact) (string, error)
	// SaveFailure writes a failed stub. An existing enriched record with the
	// same id is left untouched; an earlier failure is replaced.
	SaveFailure(ctx context.Context, c *model.EnrichedContact) (string, error)
	Get(ctx context.Context, id string) (*model.EnrichedContact, error)
	// List returns matching contacts, most recently updated first.
	List(ctx context.Context, filter model.ContactFilter) ([]model.EnrichedContact, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open returns the store for driver. Driver "none" or "" returns a nil
// store and no error.
func Open(ctx context.Context, driver, dsn string) (ContactStore, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "none":
		return nil, nil
	case "sqlite":
		if dsn == "" {
			dsn = "enricher.db"
		}
		st, err := NewSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "postgres", "postgresql":
		st, err := NewPostgres(ctx, dsn, nil)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}

// FailureRecord builds the stub saved when an enrichment fails, so the
// caller can correlate the failure with its own record later.
func FailureRecord(req model.EnrichmentRequest, msg string) *model.EnrichedContact {
	return &model.EnrichedContact{
		ContactID: req.ContactID,
		Email:     strings.TrimSpace(req.Email),
		Status:    model.ContactStatusFailed,
		Error:     msg,
	}
}

// keepEnriched restricts the conflict update of a failure write to rows
// that do not already hold an enriched contact.
const keepEnriched = ` WHERE contacts.status <> 'enriched'`

func contactDomain(email string) string {
	return model.EnrichmentRequest{Email: email}.Domain()
}

func listLimit(f model.ContactFilter) int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}
