package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-editor/internal/analysis"
	"github.com/jonathan/resume-editor/internal/db"
	"github.com/jonathan/resume-editor/internal/editor"
	"github.com/jonathan/resume-editor/internal/extraction"
	"github.com/jonathan/resume-editor/internal/server/middleware"
	"github.com/jonathan/resume-editor/internal/server/ratelimit"
	"github.com/jonathan/resume-editor/internal/types"
)

// Ingester turns an upload plus targeting context into an analysis request.
type Ingester interface {
	Prepare(ctx context.Context, file extraction.File, actx types.AnalysisContext) (analysis.Request, error)
}

// Repository persists resumes and analyses. *db.DB implements it.
type Repository interface {
	Ping(ctx context.Context) error
	SaveResume(ctx context.Context, userID *uuid.UUID, fileName, parsedText string) (uuid.UUID, error)
	SaveAnalysis(ctx context.Context, userID, resumeID *uuid.UUID, actx types.AnalysisContext, result *types.AnalysisResult) (uuid.UUID, error)
	GetAnalysis(ctx context.Context, id uuid.UUID) (*db.StoredAnalysis, error)
	ListAnalyses(ctx context.Context, userID uuid.UUID, limit int) ([]db.AnalysisSummary, error)
}

// Config holds server configuration
type Config struct {
	Port           int
	AllowedOrigins []string // Empty allows any origin
	MaxUploadBytes int64
	RequireAuth    bool   // Reject anonymous requests to analysis endpoints
	TemplatePath   string // LaTeX export template; empty uses the embedded default
}

// Dependencies are the services the handlers call. Repo, Tokens and Limiter may be nil: without
// Repo, stored-analysis endpoints answer 503; without Tokens every request is anonymous;
// without Limiter one is built from the environment.
type Dependencies struct {
	Sessions *editor.Store
	Analyzer analysis.Analyzer
	Ingest   Ingester
	Repo     Repository
	Tokens   middleware.TokenValidator
	Limiter  *ratelimit.Limiter
}

// Server represents the HTTP server
type Server struct {
	cfg         Config
	httpServer  *http.Server
	handler     http.Handler
	sessions    *editor.Store
	analyzer    analysis.Analyzer
	ingest      Ingester
	repo        Repository
	tokens      middleware.TokenValidator
	rateLimiter *ratelimit.Limiter
}

// New creates a new server instance
func New(cfg Config, deps Dependencies) (*Server, error) {
	if deps.Sessions == nil || deps.Analyzer == nil || deps.Ingest == nil {
		return nil, fmt.Errorf("server needs a session store, an analyzer and an ingester")
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.RequireAuth && deps.Tokens == nil {
		return nil, fmt.Errorf("require_auth is set but no token validator is configured")
	}

	s := &Server{
		cfg:         cfg,
		sessions:    deps.Sessions,
		analyzer:    deps.Analyzer,
		ingest:      deps.Ingest,
		repo:        deps.Repo,
		tokens:      deps.Tokens,
		rateLimiter: deps.Limiter,
	}
	if s.rateLimiter == nil {
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Analyses
	mux.HandleFunc("POST /analyses", s.handleCreateAnalysis)
	mux.HandleFunc("POST /analyses/stream", s.handleCreateAnalysisStream)
	mux.HandleFunc("GET /analyses", s.handleListAnalyses)
	mux.HandleFunc("GET /analyses/{id}", s.handleGetAnalysis)

	// Editing sessions
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /sessions/{id}/sections", s.handleAddSection)
	mux.HandleFunc("PATCH /sessions/{id}/sections/{section_id}", s.handleUpdateSection)
	mux.HandleFunc("DELETE /sessions/{id}/sections/{section_id}", s.handleRemoveSection)
	mux.HandleFunc("POST /sessions/{id}/suggestions/{index}/apply", s.handleApplySuggestion)
	mux.HandleFunc("POST /sessions/{id}/improvements/{index}/apply", s.handleApplyImprovement)
	mux.HandleFunc("PUT /sessions/{id}/contact", s.handleUpdateContact)
	mux.HandleFunc("POST /sessions/{id}/reanalyze", s.handleReanalyze)

	// Export
	mux.HandleFunc("GET /sessions/{id}/text", s.handleSessionText)
	mux.HandleFunc("GET /sessions/{id}/export.txt", s.handleExportText)
	mux.HandleFunc("GET /sessions/{id}/export.tex", s.handleExportLaTeX)

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(middleware.OptionalAuth(s.tokens)(mux))))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second, // Model calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until SIGINT/SIGTERM or ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.Close()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Println("[server] shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.Close()
	log.Println("[server] stopped")
	return nil
}

// Close stops the background goroutines owned by the server.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.sessions.Stop()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case len(s.cfg.AllowedOrigins) == 0:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(s.cfg.AllowedOrigins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(extractClientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps SSE streaming working through the logging wrapper.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[%s] %s %d in %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok", "sessions": s.sessions.Len()}
	if s.repo != nil {
		if err := s.repo.Ping(r.Context()); err != nil {
			log.Printf("[server] database ping failed: %v", err)
			resp["database"] = "unreachable"
		} else {
			resp["database"] = "ok"
		}
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[server] error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to its status code. Internal errors are logged and not echoed.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		log.Printf("[server] request failed (%d): %v", status, err)
	}
	if status == http.StatusInternalServerError {
		s.errorResponse(w, status, "internal server error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// decodeJSON decodes a request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

// extractClientID uses the IP address from RemoteAddr. Forwarded headers are not trusted.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return strings.TrimSpace(ip)
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	log.Printf("[rate-limit] rate limit exceeded: limit=%d remaining=%d", info.Limit, info.Remaining)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
