// Package api exposes the enrichment pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enricher/internal/enrich"
	"github.com/sells-group/contact-enricher/internal/model"
	"github.com/sells-group/contact-enricher/internal/store"
)

// maxBodyBytes bounds the enrichment request body.
const maxBodyBytes = 64 << 10

// Enricher runs one enrichment request.
type Enricher interface {
	Enrich(ctx context.Context, req model.EnrichmentRequest) (*model.EnrichedContact, error)
}

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	enricher    Enricher
	store       store.ContactStore
	corsOrigins []string
}

// Option configures a Server.
type Option func(*Server)

// WithStore enables persistence of results and failure records.
func WithStore(st store.ContactStore) Option {
	return func(s *Server) { s.store = st }
}

// WithCORSOrigins sets the allowed browser origins. Empty allows any origin.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// NewServer returns a Server. A nil enricher is accepted; its enrich
// endpoint then answers 500.
func NewServer(e Enricher, opts ...Option) *Server {
	s := &Server{enricher: e}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	origins := s.corsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.MethodNotAllowed(s.handleMethodNotAllowed)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/enrich", s.handleEnrich)
		r.Get("/contacts/{id}", s.handleGetContact)
	})
	return r
}

type enrichRequest struct {
	Email     string `json:"email"`
	ContactID string `json:"contactId,omitempty"`
}

type errorResponse struct {
	Error     string `json:"error"`
	ContactID string `json:"contactId,omitempty"`
	Status    string `json:"status"`
}

func failed(msg, contactID string) errorResponse {
	return errorResponse{Error: msg, ContactID: contactID, Status: string(model.ContactStatusFailed)}
}

func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	if s.enricher == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "enricher is not configured"})
		return
	}

	var body enrichRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, failed("invalid request body", ""))
		return
	}
	req := model.EnrichmentRequest{Email: body.Email, ContactID: body.ContactID}
	save, _ := strconv.ParseBool(r.URL.Query().Get("save"))

	contact, err := s.enricher.Enrich(r.Context(), req)
	if err != nil {
		status := enrich.HTTPStatus(err)
		msg := enrich.Message(err)
		if save && status != http.StatusBadRequest {
			s.recordFailure(r.Context(), req, msg)
		}
		writeJSON(w, status, failed(msg, req.ContactID))
		return
	}

	if save && s.store != nil {
		if _, err := s.store.Save(r.Context(), contact); err != nil {
			zap.L().Error("api: save contact failed",
				zap.String("contact_id", contact.ContactID),
				zap.Error(err),
			)
		}
	}
	writeJSON(w, http.StatusOK, contact)
}

// recordFailure stores a failed stub so the caller can correlate it later.
// Requests without a contact id have nothing to correlate and are skipped.
// A previously enriched record for the id is kept.
func (s *Server) recordFailure(ctx context.Context, req model.EnrichmentRequest, msg string) {
	if s.store == nil || req.ContactID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, err := s.store.SaveFailure(ctx, store.FailureRecord(req, msg)); err != nil {
		zap.L().Warn("api: record failure",
			zap.String("contact_id", req.ContactID),
			zap.Error(err),
		)
	}
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if s.store == nil {
		writeJSON(w, http.StatusNotFound, failed("storage is not configured", id))
		return
	}
	c, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, failed("contact not found", id))
			return
		}
		zap.L().Error("api: get contact", zap.String("contact_id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, failed("failed to load contact", id))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed,
		failed("method not allowed", r.URL.Query().Get("contactId")))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: write response", zap.Error(err))
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}
