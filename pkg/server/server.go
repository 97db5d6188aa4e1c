// Package server provides the figwire HTTP service.
//
// Endpoints:
//
//	POST   /v1/convert       decode the request body and re-encode it with
//	                         the engine/pretty selection from the query
//	                         string; results are cached by payload hash
//	PUT    /v1/figures/{id}  validate and store a figure document
//	GET    /v1/figures/{id}  serve a stored figure document (cache-backed)
//	DELETE /v1/figures/{id}  remove a stored figure document
//
// Errors are returned as JSON objects with "code" and "error" fields; the
// machine codes map onto HTTP status codes (invalid input and parse failures
// are 400s, unknown figures 404, an unlinked engine 501).
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/figwire/pkg/cache"
	fwerrors "github.com/matzehuels/figwire/pkg/errors"
	"github.com/matzehuels/figwire/pkg/figio"
	"github.com/matzehuels/figwire/pkg/observability"
	"github.com/matzehuels/figwire/pkg/store"
)

// maxBodyBytes bounds request bodies to keep canonicalization memory in check.
const maxBodyBytes = 32 << 20

// Config assembles the service dependencies.
type Config struct {
	// Cache holds conversion results. Defaults to the null cache.
	Cache cache.Cache

	// Store persists figure documents. Defaults to an in-memory store.
	Store store.Store

	// Engine is the default codec engine for requests that do not select
	// one. Empty means the process-wide default.
	Engine string

	// CacheTTL is the lifetime of cached conversion results.
	// Zero means no expiration.
	CacheTTL time.Duration

	// Logger receives request logs. Defaults to the package-level logger.
	Logger *log.Logger
}

// Server is the figwire HTTP service.
type Server struct {
	cfg Config
	log *log.Logger
}

// New creates a service from the config, filling in defaults.
func New(cfg Config) *Server {
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNullCache()
	}
	if cfg.Store == nil {
		cfg.Store = store.NewMemoryStore()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{cfg: cfg, log: logger}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/convert", s.handleConvert)
		r.Route("/figures/{id}", func(r chi.Router) {
			r.Put("/", s.handlePutFigure)
			r.Get("/", s.handleGetFigure)
			r.Delete("/", s.handleDeleteFigure)
		})
	})
	return r
}

// observe emits request/response events to the HTTP hooks and the logger.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), duration)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", duration)
	})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, fwerrors.Wrap(fwerrors.ErrCodeInvalidInput, err, "read request body"))
		return
	}

	engine := r.URL.Query().Get("engine")
	if engine == "" {
		engine = s.cfg.Engine
	}
	pretty, _ := strconv.ParseBool(r.URL.Query().Get("pretty"))

	ctx := r.Context()
	key := cache.ConvertKey(body, engine, pretty)
	if data, ok, err := s.cfg.Cache.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, "convert")
		s.writeJSON(w, http.StatusOK, data)
		return
	}
	observability.Cache().OnCacheMiss(ctx, "convert")

	fig, err := figio.FromJSON(body, figio.WithEngine(engine))
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts := []figio.Option{figio.WithEngine(engine)}
	if pretty {
		opts = append(opts, figio.WithPretty())
	}
	out, err := figio.ToJSON(fig, opts...)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.cfg.Cache.Set(ctx, key, []byte(out), s.cfg.CacheTTL); err != nil {
		s.log.Warn("cache conversion result", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "convert", len(out))
	}
	s.writeJSON(w, http.StatusOK, []byte(out))
}

func (s *Server) handlePutFigure(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, fwerrors.Wrap(fwerrors.ErrCodeInvalidInput, err, "read request body"))
		return
	}

	fig, err := figio.FromJSON(body, figio.WithEngine(s.cfg.Engine))
	if err != nil {
		s.writeError(w, err)
		return
	}
	encoded, err := figio.ToJSON(fig, figio.WithEngine(s.cfg.Engine))
	if err != nil {
		s.writeError(w, err)
		return
	}

	rec := store.Record{
		ID:        id,
		Body:      encoded,
		Engine:    s.cfg.Engine,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.cfg.Store.Put(r.Context(), rec); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.cfg.Cache.Delete(r.Context(), cache.FigureKey(id)); err != nil {
		s.log.Warn("drop cached figure", "id", id, "err", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetFigure(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	key := cache.FigureKey(id)
	if data, ok, err := s.cfg.Cache.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, "figure")
		s.writeJSON(w, http.StatusOK, data)
		return
	}
	observability.Cache().OnCacheMiss(ctx, "figure")

	rec, err := s.cfg.Store.Get(ctx, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.cfg.Cache.Set(ctx, key, []byte(rec.Body), s.cfg.CacheTTL); err != nil {
		s.log.Warn("cache figure", "id", id, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "figure", len(rec.Body))
	}
	s.writeJSON(w, http.StatusOK, []byte(rec.Body))
}

func (s *Server) handleDeleteFigure(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()
	if err := s.cfg.Store.Delete(ctx, id); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.cfg.Cache.Delete(ctx, cache.FigureKey(id)); err != nil {
		s.log.Warn("drop cached figure", "id", id, "err", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError maps machine codes to HTTP statuses and renders a JSON error
// body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch fwerrors.GetCode(err) {
	case fwerrors.ErrCodeInvalidInput, fwerrors.ErrCodeInvalidFigure,
		fwerrors.ErrCodeParse, fwerrors.ErrCodeUnsupportedEngine:
		status = http.StatusBadRequest
	case fwerrors.ErrCodeFigureNotFound, fwerrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case fwerrors.ErrCodeMissingDependency:
		status = http.StatusNotImplemented
	case fwerrors.ErrCodeEncoding:
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "err", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	payload := map[string]string{
		"code":  string(fwerrors.GetCode(err)),
		"error": fwerrors.UserMessage(err),
	}
	_ = json.NewEncoder(w).Encode(payload)
}
