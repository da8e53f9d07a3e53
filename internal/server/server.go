package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/jobtrack/internal/auth"
	"github.com/jonathan/jobtrack/internal/config"
	"github.com/jonathan/jobtrack/internal/form"
	"github.com/jonathan/jobtrack/internal/listing"
	"github.com/jonathan/jobtrack/internal/logging"
	"github.com/jonathan/jobtrack/internal/metrics"
	"github.com/jonathan/jobtrack/internal/server/middleware"
	"github.com/jonathan/jobtrack/internal/server/ratelimit"
	"github.com/jonathan/jobtrack/internal/store"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server. It owns the record store and the
// session registry; handlers reach state only through them.
type Server struct {
	httpServer  *http.Server
	store       *store.Store
	form        *form.Form
	auth        *auth.Service
	engine      *listing.Engine
	rateLimiter *ratelimit.Limiter
	metrics     *metrics.Metrics
	log         *logrus.Entry
}

// Config holds server configuration.
type Config struct {
	Port        int
	PageSize    int
	Locale      language.Tag
	SubmitDelay time.Duration
	LoginDelay  time.Duration

	// Store is the record store to serve. A new empty store is used when nil.
	Store *store.Store
	// JWT defaults to config.NewJWTConfig.
	JWT *config.JWTConfig
	// RateLimit defaults to ratelimit.LoadConfig.
	RateLimit *ratelimit.Config
	Logger    logrus.FieldLogger
	// Metrics defaults to a fresh registry.
	Metrics *metrics.Metrics
}

// New creates a new server instance.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		cfg.Store = store.New()
	}
	if cfg.JWT == nil {
		jwtConfig, err := config.NewJWTConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create JWT config: %w", err)
		}
		cfg.JWT = jwtConfig
	}
	if cfg.RateLimit == nil {
		rlConfig, err := ratelimit.LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limit config: %w", err)
		}
		cfg.RateLimit = rlConfig
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	if cfg.Locale == language.Und {
		cfg.Locale = language.English
	}

	s := &Server{
		store:       cfg.Store,
		engine:      listing.NewEngine(cfg.Locale),
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		metrics:     cfg.Metrics,
		log:         logging.Component(cfg.Logger, "server"),
	}
	s.form = form.New(cfg.Store,
		form.WithDelay(cfg.SubmitDelay),
		form.WithLogger(cfg.Logger),
	)
	s.auth = auth.NewService(
		auth.NewJWTService(cfg.JWT),
		auth.NewSessions(cfg.PageSize),
		auth.WithDelay(cfg.LoginDelay),
		auth.WithLogger(cfg.Logger),
	)
	s.metrics.SetRecords(s.store.Len())

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler returns the full middleware chain around the router.
func (s *Server) Handler() http.Handler {
	return s.withRateLimit(s.withLogging(s.withCORS(s.metrics.InstrumentHandler(s.routes()))))
}

func (s *Server) routes() *http.ServeMux {
	authed := middleware.AuthMiddleware(s.auth)
	optional := middleware.OptionalAuth(s.auth)

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", optional(http.HandlerFunc(s.handleHome)))
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Auth endpoints
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.Handle("POST /logout", authed(http.HandlerFunc(s.handleLogout)))

	mux.Handle("GET /dashboard", authed(http.HandlerFunc(s.handleDashboard)))

	// Applications
	mux.Handle("POST /add-application", authed(http.HandlerFunc(s.handleCreateApplication)))
	mux.Handle("POST /applications", authed(http.HandlerFunc(s.handleCreateApplication)))
	mux.Handle("GET /applications", authed(http.HandlerFunc(s.handleListApplications)))
	mux.Handle("POST /applications/sort", authed(http.HandlerFunc(s.handleToggleSort)))
	mux.Handle("POST /applications/reset", authed(http.HandlerFunc(s.handleResetView)))
	mux.Handle("GET /applications/{id}", authed(http.HandlerFunc(s.handleGetApplication)))
	mux.Handle("PATCH /applications/{id}", authed(http.HandlerFunc(s.handleUpdateApplication)))
	mux.Handle("PUT /applications/{id}", authed(http.HandlerFunc(s.handleUpdateApplication)))
	mux.Handle("DELETE /applications/{id}", authed(http.HandlerFunc(s.handleDeleteApplication)))

	mux.HandleFunc("/", s.handleNotFound)
	return mux
}

// Run listens on the configured port until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.WithField("addr", ln.Addr().String()).Info("server starting")
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		defer s.rateLimiter.Stop()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		s.log.Info("server stopped")
		return nil
	})

	return g.Wait()
}

// withCORS adds CORS headers.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging logs each request with a request id.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		entry := s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"remote":     r.RemoteAddr,
			"status":     rec.status,
			"duration":   time.Since(start).String(),
		})
		if rec.status >= http.StatusInternalServerError {
			entry.Warn("request failed")
		} else {
			entry.Info("request completed")
		}
	})
}

// withRateLimit adds rate limiting middleware.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, clientID, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientID extracts the client identifier from the request.
// X-Forwarded-For is not trusted; the service is not deployed behind a proxy.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, clientID string, info ratelimit.Info) {
	response := map[string]any{
		"error":   "rate_limit_exceeded",
		"message": "Rate limit exceeded. Please try again later.",
		"limit":   info.Limit,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		retry := int(info.RetryAfter.Round(time.Second).Seconds())
		response["retry_after"] = retry
		w.Header().Set("Retry-After", strconv.Itoa(retry))
	}

	s.log.WithFields(logrus.Fields{
		"client": clientID,
		"tier":   info.Tier,
		"limit":  info.Limit,
	}).Warn("rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.WithError(err).Error("encoding JSON response")
	}
}

// errorResponse writes err as a JSON error with the status HTTPStatus picks.
func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.log.WithError(err).Error("request failed")
	}
	s.jsonResponse(w, status, newErrorBody(err, status))
}

// decodeJSON decodes the request body into v. Unknown fields, such as an id
// in an update body, are ignored.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &ErrBadRequest{Message: fmt.Sprintf("invalid request body: %v", err)}
	}
	return nil
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
