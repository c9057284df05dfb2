package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/contact-enricher/internal/model"
)

// SQLiteStore implements ContactStore using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// One connection keeps the pragmas in effect and serializes writers.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS contacts (
	id          TEXT PRIMARY KEY,
	email       TEXT NOT NULL,
	domain      TEXT NOT NULL,
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	data        TEXT NOT NULL,
	enriched_at DATETIME,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_contacts_status ON contacts(status);
CREATE INDEX IF NOT EXISTS idx_contacts_domain ON contacts(domain);
CREATE INDEX IF NOT EXISTS idx_contacts_updated_at ON contacts(updated_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, c *model.EnrichedContact) (string, error) {
	return s.upsert(ctx, c, "")
}

func (s *SQLiteStore) SaveFailure(ctx context.Context, c *model.EnrichedContact) (string, error) {
	return s.upsert(ctx, c, keepEnriched)
}

func (s *SQLiteStore) upsert(ctx context.Context, c *model.EnrichedContact, conflictWhere string) (string, error) {
	if c == nil {
		return "", eris.New("sqlite: save nil contact")
	}
	if c.ContactID == "" {
		c.ContactID = uuid.New().String()
	}

	data, err := json.Marshal(c)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal contact")
	}

	var enrichedAt any
	if !c.EnrichedAt.IsZero() {
		enrichedAt = c.EnrichedAt.UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contacts (id, email, domain, status, error, data, enriched_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			email = excluded.email,
			domain = excluded.domain,
			status = excluded.status,
			error = excluded.error,
			data = excluded.data,
			enriched_at = excluded.enriched_at,
			updated_at = excluded.updated_at`+conflictWhere,
		c.ContactID, c.Email, contactDomain(c.Email), string(c.Status), c.Error,
		string(data), enrichedAt, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: save contact %s", c.ContactID)
	}
	return c.ContactID, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.EnrichedContact, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM contacts WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get contact %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get contact %s", id)
	}
	return decodeContact([]byte(data))
}

func (s *SQLiteStore) List(ctx context.Context, filter model.ContactFilter) ([]model.EnrichedContact, error) {
	query := `SELECT data FROM contacts WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Domain != "" {
		query += ` AND domain = ?`
		args = append(args, filter.Domain)
	}
	query += ` ORDER BY updated_at DESC, id LIMIT ?`
	args = append(args, listLimit(filter))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list contacts")
	}
	defer rows.Close() //nolint:errcheck

	var contacts []model.EnrichedContact
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan contact")
		}
		c, err := decodeContact([]byte(data))
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, eris.Wrap(rows.Err(), "sqlite: list contacts iterate")
}

func decodeContact(data []byte) (*model.EnrichedContact, error) {
	var c model.EnrichedContact
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal contact")
	}
	return &c, nil
}
