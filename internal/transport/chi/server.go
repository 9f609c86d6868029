// Package chi wires the search, suggestion, and ping services onto the
// HTTP API.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/chatpal/chatpal-search/internal/domain"
	"github.com/chatpal/chatpal-search/internal/domain/params"
	logpkg "github.com/chatpal/chatpal-search/internal/logger"
	healthuc "github.com/chatpal/chatpal-search/internal/usecase/health"
	searchuc "github.com/chatpal/chatpal-search/internal/usecase/search"
	suggestuc "github.com/chatpal/chatpal-search/internal/usecase/suggest"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the search API over HTTP.
type Server struct {
	search        *searchuc.Service
	suggest       *suggestuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates the HTTP API server.
func NewServer(
	search *searchuc.Service,
	suggest *suggestuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:  search,
		suggest: suggest,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument"),
		sentinelHandler(domain.ErrEngineUnavailable, http.StatusBadGateway, "engine_unavailable"),
	}
	return s
}

// Register mounts the API routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/search", s.handleSearch)
	r.Post("/search", s.handleSearch)
	r.Get("/suggest", s.handleSuggest)
	r.Get("/ping", s.handlePing)
}

// handleSearch serves GET and POST /search. POST bodies use form
// encoding; query-string and form parameters are merged.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeParams(w, r)
	if !ok {
		return
	}

	result, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSuggest serves GET /suggest.
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeParams(w, r)
	if !ok {
		return
	}

	suggestions, err := s.suggest.Suggest(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestion": suggestions})
}

// handlePing serves GET /ping. stats defaults to off, config to on.
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeParams(w, r)
	if !ok {
		return
	}

	includeStats := boolParam(req, "stats", false)
	includeConfig := boolParam(req, "config", true)

	status, err := s.health.Ping(r.Context(), includeStats, includeConfig)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// decodeParams merges query-string and form parameters into one bag.
// Repeatable parameters keep both supported encodings intact for the
// services to decode.
func (s *Server) decodeParams(w http.ResponseWriter, r *http.Request) (params.Params, bool) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed request parameters")
		return nil, false
	}
	return params.Params(r.Form), true
}

func boolParam(p params.Params, name string, def bool) bool {
	v, ok := p.Lookup(name)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	// Prefer the request-scoped logger so failures carry the request id.
	logger := s.logger
	if l := logpkg.FromContext(r.Context()); l != nil {
		logger = l
	}
	logger.Warn("request failed", zap.Error(err))
	msg := safeMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

// safeMessage returns a sentinel error message for the client without
// exposing internals.
func safeMessage(err error) string {
	for _, sentinel := range []error{domain.ErrInvalidArgument, domain.ErrEngineUnavailable} {
		if errors.Is(err, sentinel) {
			return err.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
