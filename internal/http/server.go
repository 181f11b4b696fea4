// Package http exposes the transaction, summary and advisory endpoints as a
// JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"smartsaku/internal/advisor"
	"smartsaku/internal/cache"
	"smartsaku/internal/core"
	"smartsaku/internal/middleware/ratelimit"
	"smartsaku/internal/middleware/security"
	"smartsaku/internal/middleware/trace"
	"smartsaku/internal/service"
)

// Options configures a Server. Zero values fall back to defaults.
type Options struct {
	Addr    string
	Service *service.TransactionService
	Advisor *advisor.Client

	RateLimit ratelimit.Config

	SummaryCacheSize int
	SummaryCacheTTL  time.Duration
}

type Server struct {
	http.Server

	service  *service.TransactionService
	advisor  *advisor.Client
	validate *validator.Validate

	summaryCache *cache.LRUCache[core.Summary]
	janitor      *cache.Janitor
	rateLimiter  *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	if opts.SummaryCacheSize <= 0 {
		opts.SummaryCacheSize = 1024
	}
	if opts.SummaryCacheTTL <= 0 {
		opts.SummaryCacheTTL = 30 * time.Second
	}

	s := &Server{
		service:      opts.Service,
		advisor:      opts.Advisor,
		validate:     validator.New(),
		summaryCache: cache.NewLRUCache[core.Summary](opts.SummaryCacheSize, opts.SummaryCacheTTL),
		janitor:      cache.NewJanitor(),
		rateLimiter:  ratelimit.NewLimiter(opts.RateLimit),
	}

	s.janitor.Register(s.summaryCache)
	s.janitor.Start(10 * time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/users/{userID}/summary", s.handleSummary)
	mux.HandleFunc("GET /api/users/{userID}/prediction", s.handlePrediction)
	mux.HandleFunc("POST /chat", s.handleChat)

	mux.HandleFunc("GET /api/users/{userID}/{kind}", s.handleListTransactions)
	mux.HandleFunc("POST /api/users/{userID}/{kind}", s.handleAddTransaction)
	mux.HandleFunc("PUT /api/users/{userID}/{kind}/{transactionID}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/users/{userID}/{kind}/{transactionID}", s.handleDeleteTransaction)

	handler := trace.Middleware(
		security.Middleware(security.DefaultHeadersConfig())(
			s.limitMutations(mux)))

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s
}

// limitMutations rate-limits writes; reads pass through unchecked.
func (s *Server) limitMutations(next http.Handler) http.Handler {
	limited := s.rateLimiter.Middleware(clientAddr)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			limited.ServeHTTP(w, r)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// Shutdown stops the background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.janitor.Stop()
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}
