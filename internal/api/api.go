// Package api exposes the layout pipeline over HTTP.
//
// The API is a thin shell around pipeline.Runner and store.RunStore: POST
// /v1/optimize computes a layout for a posted sheet and records the run,
// GET /v1/runs lists recent runs, and GET /v1/runs/{id} retrieves one.
// Errors carry the pipeline's error codes so clients can distinguish bad
// input from server failures.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/sheetpress/pkg/errors"
	"github.com/matzehuels/sheetpress/pkg/pipeline"
	"github.com/matzehuels/sheetpress/pkg/sheet"
	"github.com/matzehuels/sheetpress/pkg/store"
)

// defaultListLimit bounds GET /v1/runs when no limit is given.
const defaultListLimit = 20

// maxListLimit is the hard cap for GET /v1/runs.
const maxListLimit = 100

// Server handles API requests.
type Server struct {
	runner *pipeline.Runner
	runs   store.RunStore
	logger *log.Logger
}

// New builds the API router. A nil logger falls back to log.Default().
func New(runner *pipeline.Runner, runs store.RunStore, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, runs: runs, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/optimize", s.handleOptimize)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})

	return r
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// optimizeRequest is the body of POST /v1/optimize.
type optimizeRequest struct {
	Sheet   json.RawMessage `json:"sheet"`
	Columns int             `json:"columns,omitempty"`
	Refresh bool            `json:"refresh,omitempty"`
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "decode request: %v", err))
		return
	}

	if len(req.Sheet) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "missing sheet"))
		return
	}
	doc, err := sheet.UnmarshalSheet(req.Sheet)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		Sheet:   doc,
		Columns: req.Columns,
		Refresh: req.Refresh,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	run := store.Run{
		ID:        result.RunID,
		SheetHash: result.SheetHash,
		Layout:    result.Layout,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.runs.Put(r.Context(), run); err != nil {
		s.logger.Error("record run", "run_id", result.RunID, "err", err)
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.runs.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", raw))
			return
		}
		limit = min(n, maxListLimit)
	}

	runs, err := s.runs.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

// errorBody is the JSON shape of all error responses.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	var body errorBody
	body.Error.Code = string(code)
	if body.Error.Code == "" {
		body.Error.Code = string(errors.ErrCodeInternal)
	}
	body.Error.Message = errors.UserMessage(err)
	writeJSON(w, statusForCode(code), body)
}

func statusForCode(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidBounds,
		errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidLayout,
		errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeRunNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
