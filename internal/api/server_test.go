package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-enricher/internal/enrich"
	"github.com/sells-group/contact-enricher/internal/model"
	"github.com/sells-group/contact-enricher/internal/store"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func enrichedContact(id string) *model.EnrichedContact {
	return &model.EnrichedContact{
		ContactID:  id,
		Email:      "jane@acme.io",
		Name:       "Jane Doe",
		Website:    "https://acme.io",
		Status:     model.ContactStatusEnriched,
		EnrichedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestHealth(t *testing.T) {
	h := NewServer(nil).Handler()
	rec := doRequest(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestEnrich_Success(t *testing.T) {
	e := new(mockEnricher)
	e.On("Enrich", mock.Anything, model.EnrichmentRequest{Email: "jane@acme.io", ContactID: "c-1"}).
		Return(enrichedContact("c-1"), nil)

	h := NewServer(e).Handler()
	rec := doRequest(t, h, http.MethodPost, "/api/enrich", `{"email":"jane@acme.io","contactId":"c-1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decodeBody(t, rec)
	assert.Equal(t, "Jane Doe", body["name"])
	assert.Equal(t, "c-1", body["contactId"])
	assert.Equal(t, "enriched", body["status"])
	e.AssertExpectations(t)
}

func TestEnrich_SaveQueryPersists(t *testing.T) {
	st := newTestStore(t)
	e := new(mockEnricher)
	e.On("Enrich", mock.Anything, mock.Anything).Return(enrichedContact(""), nil)

	h := NewServer(e, WithStore(st)).Handler()
	rec := doRequest(t, h, http.MethodPost, "/api/enrich?save=true", `{"email":"jane@acme.io"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	id, ok := decodeBody(t, rec)["contactId"].(string)
	require.True(t, ok, "saved contact gets an id")
	require.NotEmpty(t, id)

	got, err := st.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Name)
}

func TestEnrich_WithoutSaveDoesNotPersist(t *testing.T) {
	st := newTestStore(t)
	e := new(mockEnricher)
	e.On("Enrich", mock.Anything, mock.Anything).Return(enrichedContact("c-1"), nil)

	h := NewServer(e, WithStore(st)).Handler()
	rec := doRequest(t, h, http.MethodPost, "/api/enrich", `{"email":"jane@acme.io","contactId":"c-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := st.Get(context.Background(), "c-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEnrich_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "invalid input",
			err:        &enrich.Error{Kind: enrich.ErrInvalidInput, ContactID: "c-1", Msg: "email is required"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "email is required",
		},
		{
			name:       "no content",
			err:        &enrich.Error{Kind: enrich.ErrSourceUnavailable, ContactID: "c-1", Msg: enrich.MsgNoContent},
			wantStatus: http.StatusNotFound,
			wantMsg:    enrich.MsgNoContent,
		},
		{
			name: "extraction",
			err: &enrich.Error{
				Kind:      enrich.ErrExtraction,
				ContactID: "c-1",
				Msg:       "Failed to extract dossier",
				Err:       eris.New("upstream 500"),
			},
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Failed to extract dossier",
		},
		{
			name:       "canceled",
			err:        &enrich.Error{Kind: enrich.ErrCanceled, ContactID: "c-1", Msg: "enrichment canceled"},
			wantStatus: http.StatusServiceUnavailable,
			wantMsg:    "enrichment canceled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := new(mockEnricher)
			e.On("Enrich", mock.Anything, mock.Anything).Return(nil, tt.err)

			h := NewServer(e).Handler()
			rec := doRequest(t, h, http.MethodPost, "/api/enrich", `{"email":"jane@acme.io","contactId":"c-1"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, tt.wantMsg, body["error"])
			assert.Equal(t, "c-1", body["contactId"])
			assert.Equal(t, "failed", body["status"])
		})
	}
}

func TestEnrich_FailureRecorded(t *testing.T) {
	st := newTestStore(t)
	e := new(mockEnricher)
	e.On("Enrich", mock.Anything, mock.Anything).
		Return(nil, &enrich.Error{Kind: enrich.ErrSourceUnavailable, ContactID: "c-9", Msg: enrich.MsgNoContent})

	h := NewServer(e, WithStore(st)).Handler()
	rec := doRequest(t, h, http.MethodPost, "/api/enrich?save=true", `{"email":"nobody@gone.example","contactId":"c-9"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	got, err := st.Get(context.Background(), "c-9")
	require.NoError(t, err)
	assert.Equal(t, model.ContactStatusFailed, got.Status)
	assert.Equal(t, enrich.MsgNoContent, got.Error)
	assert.Equal(t, "nobody@gone.example", got.Email)
}

func TestEnrich_FailureWithoutSaveNotRecorded(t *testing.T) {
	st := newTestStore(t)
	e := new(mockEnricher)
	e.On("Enrich", mock.Anything, mock.Anything).
		Return(nil, &enrich.Error{Kind: enrich.ErrSourceUnavailable, ContactID: "c-9", Msg: enrich.MsgNoContent})

	h := NewServer(e, WithStore(st)).Handler()
	rec := doRequest(t, h, http.MethodPost, "/api/enrich", `{"email":"nobody@gone.example","contactId":"c-9"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	_, err := st.Get(context.Background(), "c-9")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEnrich_FailureKeepsEnrichedRecord(t *testing.T) {
	st := newTestStore(t)
	_, err := st.Save(context.Background(), enrichedContact("c-9"))
	require.NoError(t, err)

	e := new(mockEnricher)
	e.On("Enrich", mock.Anything, mock.Anything).
		Return(nil, &enrich.Error{Kind: enrich.ErrSourceUnavailable, ContactID: "c-9", Msg: enrich.MsgNoContent})

	h := NewServer(e, WithStore(st)).Handler()
	rec := doRequest(t, h, http.MethodPost, "/api/enrich?save=true", `{"email":"jane@acme.io","contactId":"c-9"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	got, err := st.Get(context.Background(), "c-9")
	require.NoError(t, err)
	assert.Equal(t, model.ContactStatusEnriched, got.Status)
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, "https://acme.io", got.Website)
	assert.Empty(t, got.Error)
}

func TestEnrich_BadInputNotRecorded(t *testing.T) {
	st := newTestStore(t)
	e := new(mockEnricher)
	e.On("Enrich", mock.Anything, mock.Anything).
		Return(nil, &enrich.Error{Kind: enrich.ErrInvalidInput, ContactID: "c-2", Msg: "email is required"})

	h := NewServer(e, WithStore(st)).Handler()
	rec := doRequest(t, h, http.MethodPost, "/api/enrich?save=true", `{"email":"","contactId":"c-2"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	_, err := st.Get(context.Background(), "c-2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEnrich_InvalidBody(t *testing.T) {
	e := new(mockEnricher)
	h := NewServer(e).Handler()

	rec := doRequest(t, h, http.MethodPost, "/api/enrich", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "invalid request body", body["error"])
	assert.Equal(t, "failed", body["status"])
	e.AssertNotCalled(t, "Enrich", mock.Anything, mock.Anything)
}

func TestEnrich_NilEnricher(t *testing.T) {
	h := NewServer(nil).Handler()
	rec := doRequest(t, h, http.MethodPost, "/api/enrich", `{"email":"jane@acme.io"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "enricher is not configured", decodeBody(t, rec)["error"])
}

func TestEnrich_MethodNotAllowed(t *testing.T) {
	h := NewServer(new(mockEnricher)).Handler()

	rec := doRequest(t, h, http.MethodGet, "/api/enrich?contactId=c-3", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "method not allowed", body["error"])
	assert.Equal(t, "c-3", body["contactId"])
	assert.Equal(t, "failed", body["status"])

	rec = doRequest(t, h, http.MethodPut, "/api/enrich", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	_, hasID := decodeBody(t, rec)["contactId"]
	assert.False(t, hasID)
}

func TestGetContact(t *testing.T) {
	st := newTestStore(t)
	_, err := st.Save(context.Background(), enrichedContact("c-1"))
	require.NoError(t, err)

	h := NewServer(nil, WithStore(st)).Handler()

	rec := doRequest(t, h, http.MethodGet, "/api/contacts/c-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Jane Doe", decodeBody(t, rec)["name"])

	rec = doRequest(t, h, http.MethodGet, "/api/contacts/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetContact_NoStore(t *testing.T) {
	h := NewServer(nil).Handler()
	rec := doRequest(t, h, http.MethodGet, "/api/contacts/c-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	h := NewServer(new(mockEnricher), WithCORSOrigins("https://app.example.com")).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/enrich", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
