package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"appointment/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	headerAPIKey    = "X-Api-Key"
	headerRequestID = "X-Request-Id"
)

const (
	limiterIdleTTL    = 10 * time.Minute
	limiterMaxEntries = 10000
	// overflowKey is shared by every client seen after the table is full.
	overflowKey = "\x00overflow"
)

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// keyLimiter keeps one token bucket per API key (or client IP without keys).
// Buckets idle longer than idleTTL are dropped.
type keyLimiter struct {
	rps        rate.Limit
	burst      int
	idleTTL    time.Duration
	maxEntries int
	now        func() time.Time

	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	lastSweep time.Time
}

func newKeyLimiter(rps float64, burst int) *keyLimiter {
	if rps <= 0 {
		rps = 10
	}
	if burst <= 0 {
		burst = 20
	}
	return &keyLimiter{
		rps:        rate.Limit(rps),
		burst:      burst,
		idleTTL:    limiterIdleTTL,
		maxEntries: limiterMaxEntries,
		now:        time.Now,
		limiters:   make(map[string]*limiterEntry),
	}
}

func (l *keyLimiter) allow(key string) bool {
	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}
	e, ok := l.limiters[key]
	if !ok && len(l.limiters) >= l.maxEntries {
		l.sweep(now)
		if len(l.limiters) >= l.maxEntries {
			key = overflowKey
			e, ok = l.limiters[key]
		}
	}
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	l.mu.Unlock()
	return e.lim.AllowN(now, 1)
}

func (l *keyLimiter) sweep(now time.Time) {
	for k, e := range l.limiters {
		if now.Sub(e.lastSeen) > l.idleTTL {
			delete(l.limiters, k)
		}
	}
	l.lastSweep = now
}

func (l *keyLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (s *HTTPServer) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.keys) > 0 && !s.keys[r.Header.Get(headerAPIKey)] {
			writeError(w, http.StatusUnauthorized, "invalid or missing API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(s.clientKey(r)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey identifies the caller for rate limiting. The API key is used only
// when keys are configured, since requireAPIKey has vetted it by then.
func (s *HTTPServer) clientKey(r *http.Request) string {
	if len(s.keys) > 0 {
		if key := r.Header.Get(headerAPIKey); key != "" {
			return "key:" + key
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

func (s *HTTPServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(validation.WithRequestID(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *HTTPServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Str("request_id", validation.RequestID(r.Context())).
			Msg("http request")
	})
}
