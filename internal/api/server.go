package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"appointment/internal/models"
	"appointment/internal/validation"

	"github.com/rs/zerolog"
)

// Store is the part of the database the API reads from.
type Store interface {
	GetDoctor(ctx context.Context, id int64) (*models.Doctor, error)
	ListValidations(ctx context.Context, limit int) ([]models.ValidationRecord, error)
	PingContext(ctx context.Context) error
}

// Pinger reports dependency readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configure an HTTPServer.
type Options struct {
	Port           int
	APIKeys        []string
	RateLimitRPS   float64
	RateLimitBurst int
	// Cache is pinged by /readyz when set.
	Cache Pinger
}

// HTTPServer exposes timeslot validation over HTTP.
type HTTPServer struct {
	handler *validation.Handler
	db      Store
	cache   Pinger
	keys    map[string]bool
	limiter *keyLimiter
	logger  *zerolog.Logger
	server  *http.Server
}

// NewHTTPServer builds the server and its routes.
func NewHTTPServer(handler *validation.Handler, db Store, opts Options, logger *zerolog.Logger) *HTTPServer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	keys := make(map[string]bool, len(opts.APIKeys))
	for _, k := range opts.APIKeys {
		if k != "" {
			keys[k] = true
		}
	}

	s := &HTTPServer{
		handler: handler,
		db:      db,
		cache:   opts.Cache,
		keys:    keys,
		limiter: newKeyLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/v1/appointments/validate", s.protect(http.HandlerFunc(s.handleValidate)))
	mux.Handle("GET /api/v1/doctors/{id}", s.protect(http.HandlerFunc(s.handleDoctor)))
	mux.Handle("GET /api/v1/audit/validations.xlsx", s.protect(http.HandlerFunc(s.handleAuditExport)))
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           s.withRequestID(s.logRequests(mux)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the root handler, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctxShutdown)
	}()

	s.logger.Info().Str("addr", s.server.Addr).Msg("API server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// protect applies API key auth and rate limiting.
func (s *HTTPServer) protect(next http.Handler) http.Handler {
	return s.requireAPIKey(s.rateLimit(next))
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *HTTPServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctxPing, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()

	if err := s.db.PingContext(ctxPing); err != nil {
		http.Error(w, "db not ready", http.StatusServiceUnavailable)
		return
	}
	if s.cache != nil {
		if err := s.cache.Ping(ctxPing); err != nil {
			http.Error(w, "redis not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
