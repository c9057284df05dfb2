package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-enricher/internal/model"
)

var _ ContactStore = (*SQLiteStore)(nil)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func sampleContact(id, email string) *model.EnrichedContact {
	return &model.EnrichedContact{
		ContactID: id,
		Email:     email,
		Name:      "Jane Doe",
		Website:   "https://acme.io",
		Company:   model.CompanyInfo{Name: "Acme Inc", Website: "https://acme.io"},
		SocialProfiles: []model.SocialProfile{
			{Platform: model.PlatformLinkedIn, URL: "https://linkedin.com/in/janedoe", Username: "janedoe", IsPrimary: true},
		},
		KnownTools: []string{"Go"},
		Status:     model.ContactStatusEnriched,
		EnrichedAt: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSQLite_SaveAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := st.Save(ctx, sampleContact("c-1", "jane@acme.io"))
	require.NoError(t, err)
	assert.Equal(t, "c-1", id)

	got, err := st.Get(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, "Acme Inc", got.Company.Name)
	require.Len(t, got.SocialProfiles, 1)
	assert.True(t, got.SocialProfiles[0].IsPrimary)
	assert.Equal(t, []string{"Go"}, got.KnownTools)
	assert.True(t, got.EnrichedAt.Equal(time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)))
}

func TestSQLite_SaveAssignsID(t *testing.T) {
	st := newTestSQLiteStore(t)
	c := sampleContact("", "jane@acme.io")

	id, err := st.Save(context.Background(), c)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, c.ContactID)

	got, err := st.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ContactID)
}

func TestSQLite_SaveUpserts(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.Save(ctx, FailureRecord(model.EnrichmentRequest{Email: "jane@acme.io", ContactID: "c-1"}, "boom"))
	require.NoError(t, err)

	got, err := st.Get(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, model.ContactStatusFailed, got.Status)
	assert.Equal(t, "boom", got.Error)

	_, err = st.Save(ctx, sampleContact("c-1", "jane@acme.io"))
	require.NoError(t, err)

	got, err = st.Get(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, model.ContactStatusEnriched, got.Status)
	assert.Empty(t, got.Error)

	all, err := st.List(ctx, model.ContactFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLite_SaveFailure(t *testing.T) {
	ctx := context.Background()
	req := model.EnrichmentRequest{Email: "jane@acme.io", ContactID: "c-1"}

	t.Run("inserts when absent", func(t *testing.T) {
		st := newTestSQLiteStore(t)
		id, err := st.SaveFailure(ctx, FailureRecord(req, "boom"))
		require.NoError(t, err)
		assert.Equal(t, "c-1", id)

		got, err := st.Get(ctx, "c-1")
		require.NoError(t, err)
		assert.Equal(t, model.ContactStatusFailed, got.Status)
		assert.Equal(t, "boom", got.Error)
	})

	t.Run("replaces earlier failure", func(t *testing.T) {
		st := newTestSQLiteStore(t)
		_, err := st.SaveFailure(ctx, FailureRecord(req, "first"))
		require.NoError(t, err)
		_, err = st.SaveFailure(ctx, FailureRecord(req, "second"))
		require.NoError(t, err)

		got, err := st.Get(ctx, "c-1")
		require.NoError(t, err)
		assert.Equal(t, "second", got.Error)
	})

	t.Run("keeps enriched record", func(t *testing.T) {
		st := newTestSQLiteStore(t)
		_, err := st.Save(ctx, sampleContact("c-1", "jane@acme.io"))
		require.NoError(t, err)

		_, err = st.SaveFailure(ctx, FailureRecord(req, "scrape outage"))
		require.NoError(t, err)

		got, err := st.Get(ctx, "c-1")
		require.NoError(t, err)
		assert.Equal(t, model.ContactStatusEnriched, got.Status)
		assert.Equal(t, "Jane Doe", got.Name)
		assert.Empty(t, got.Error)

		failed, err := st.List(ctx, model.ContactFilter{Status: model.ContactStatusFailed})
		require.NoError(t, err)
		assert.Empty(t, failed)
	})
}

func TestSQLite_GetNotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	_, err := st.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_SaveNil(t *testing.T) {
	st := newTestSQLiteStore(t)
	_, err := st.Save(context.Background(), nil)
	require.Error(t, err)
}

func TestSQLite_ListFilters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.Save(ctx, sampleContact("a", "a@acme.io"))
	require.NoError(t, err)
	_, err = st.Save(ctx, sampleContact("b", "b@Widgets.com"))
	require.NoError(t, err)
	_, err = st.Save(ctx, FailureRecord(model.EnrichmentRequest{Email: "c@acme.io", ContactID: "c"}, "no content"))
	require.NoError(t, err)

	byDomain, err := st.List(ctx, model.ContactFilter{Domain: "acme.io"})
	require.NoError(t, err)
	assert.Len(t, byDomain, 2)

	failed, err := st.List(ctx, model.ContactFilter{Status: model.ContactStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "c", failed[0].ContactID)

	widgets, err := st.List(ctx, model.ContactFilter{Domain: "widgets.com"})
	require.NoError(t, err)
	assert.Len(t, widgets, 1, "domain is stored lower-cased")

	page1, err := st.List(ctx, model.ContactFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page1, 2)

	page2, err := st.List(ctx, model.ContactFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, page2, 1)
}

func TestSQLite_ListEmpty(t *testing.T) {
	st := newTestSQLiteStore(t)
	got, err := st.List(context.Background(), model.ContactFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
}
