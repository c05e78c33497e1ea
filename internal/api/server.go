// Package api provides the HTTP server for questd.
// Routes live under /api/v1; the caller's identity comes from X-User-ID.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aimastery/questd/internal/app/engagement"
	"github.com/aimastery/questd/internal/app/evaluation"
	"github.com/aimastery/questd/internal/domain"
	"github.com/aimastery/questd/internal/health"
)

// UserIDHeader carries the caller's user id. Authentication happens upstream.
const UserIDHeader = "X-User-ID"

// Server is the questd HTTP API server.
type Server struct {
	svc            *engagement.Service
	evaluator      evaluation.Evaluator
	health         *health.Checker
	log            *zap.Logger
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(svc *engagement.Service, evaluator evaluation.Evaluator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if evaluator == nil {
		evaluator = evaluation.Stub{}
	}
	return &Server{svc: svc, evaluator: evaluator, log: logger.Named("api")}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealth sets the checker reported by /health.
func (s *Server) SetHealth(c *health.Checker) { s.health = c }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/users/{username}", s.handlePublicProfile)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/profile", s.handleProfile)
			r.Put("/profile", s.handleSetIdentity)
			r.Get("/badges", s.handleBadges)
			r.Get("/daily-challenge", s.handleDailyChallenge)
			r.Post("/quests/{questID}/start", s.handleStartQuest)
			r.Post("/quests/{questID}/submit", s.handleSubmitQuest)
		})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	status, code := "ok", http.StatusOK
	if !s.health.IsHealthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status": status,
		"checks": s.health.Statuses(),
	})
}

// ─── Middleware ─────────────────────────────────────────────────────────────

// requireUser rejects requests without X-User-ID.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(UserIDHeader) == "" {
			writeError(w, r, http.StatusBadRequest, codeBadRequest, "missing "+UserIDHeader+" header")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userID(r *http.Request) string {
	return r.Header.Get(UserIDHeader)
}

// requestLogger logs one line per request with zap.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// corsMiddleware adds CORS headers for browser clients.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+UserIDHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ─── Responses ──────────────────────────────────────────────────────────────

// Error codes in the response envelope.
const (
	codeBadRequest  = "bad_request"
	codeNotFound    = "not_found"
	codeConflict    = "conflict"
	codeUnavailable = "unavailable"
	codeInternal    = "internal"
)

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes the error envelope {"error": {"code", "message"}}.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, map[string]errorBody{
		"error": {Code: code, Message: msg, RequestID: middleware.GetReqID(r.Context())},
	})
}

// writeDomainError maps a sentinel error to its status and writes it.
// Internal errors are logged and returned without detail.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, codeBadRequest, err.Error())
	case errors.Is(err, domain.ErrQuestNotFound),
		errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrNoQuestsAvailable):
		writeError(w, r, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, domain.ErrUsernameTaken):
		writeError(w, r, http.StatusConflict, codeConflict, err.Error())
	case errors.Is(err, domain.ErrEvaluatorUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, codeUnavailable, err.Error())
	default:
		s.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeError(w, r, http.StatusInternalServerError, codeInternal, "internal error")
	}
}
