package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"traguardi/internal/cache"
	"traguardi/internal/core"
	applog "traguardi/internal/log"
	"traguardi/internal/middleware/ratelimit"
	"traguardi/internal/middleware/security"
	"traguardi/internal/middleware/trace"
	"traguardi/internal/services"
)

const breakdownCacheTTL = 5 * time.Minute

// Server exposes the goal and entry operations as a JSON API.
type Server struct {
	http.Server

	goals  *services.GoalService
	policy core.StatusPolicy

	limiter *ratelimit.Limiter
	tracer  *trace.Middleware

	breakdownCache cache.Cache[services.Breakdown]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires the service behind the HTTP handlers and the
// middleware chain. The returned server is ready for ListenAndServe.
func NewServer(addr string, goals *services.GoalService, policy core.StatusPolicy) *Server {
	breakdowns := cache.NewLRUCache[services.Breakdown](8, breakdownCacheTTL)

	requestLogger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)

	s := &Server{
		goals:          goals,
		policy:         policy,
		limiter:        ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:         trace.NewMiddleware(clientIP, applog.NewStructuredLogger(requestLogger)),
		breakdownCache: breakdowns,
		cacheManager:   cache.NewManager(),
	}

	s.cacheManager.Register(breakdowns)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("POST /entries", s.handleCreateEntry)
	mux.HandleFunc("GET /entries", s.handleListEntries)
	mux.HandleFunc("GET /breakdown", s.handleBreakdown)
	mux.HandleFunc("POST /goals", s.handleCreateGoal)
	mux.HandleFunc("GET /goals", s.handleListGoals)
	mux.HandleFunc("GET /goals/{id}", s.handleGetGoal)
	mux.HandleFunc("POST /goals/{id}/contributions", s.handleAddContribution)
	mux.HandleFunc("GET /goals/{id}/contributions", s.handleListContributions)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	handler := s.tracer.Middleware(
		headers.Middleware(
			applog.Middleware(requestLogger)(s.limitWrites(mux))))

	s.Server = http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// limitWrites rate limits mutating requests per client IP. Reads pass
// through untouched.
func (s *Server) limitWrites(next http.Handler) http.Handler {
	limited := s.limiter.Middleware(clientIP, nil)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			limited.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP resolves the originating address, trusting proxy headers
// when present.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.Index(xff, ","); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		return strings.TrimSpace(rip)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops background workers before draining in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		slog.Info("http server shutting down",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, applog.OpShutdown)
		err = s.Server.Shutdown(ctx)
	})
	return err
}
