package middleware

import (
	"net"
	"net/http"
	"sync"

	"github.com/cmlabs-hris/field-attendance/internal/handler/http/response"
	"golang.org/x/time/rate"
)

// ClientRateLimiter keeps one token bucket per client address.
type ClientRateLimiter struct {
	clients map[string]*rate.Limiter
	mu      sync.RWMutex
	r       rate.Limit
	b       int
}

func NewClientRateLimiter(r rate.Limit, b int) *ClientRateLimiter {
	if b < 1 {
		b = 1
	}
	return &ClientRateLimiter{
		clients: make(map[string]*rate.Limiter),
		r:       r,
		b:       b,
	}
}

// Limiter returns the bucket for addr, creating it on first use.
func (l *ClientRateLimiter) Limiter(addr string) *rate.Limiter {
	l.mu.RLock()
	limiter, ok := l.clients[addr]
	l.mu.RUnlock()
	if ok {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter, ok = l.clients[addr]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(l.r, l.b)
	l.clients[addr] = limiter
	return limiter
}

// Handler rejects requests over the per-client rate with 429.
func (l *ClientRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Limiter(clientAddr(r)).Allow() {
			response.TooManyRequests(w, "Too many location updates")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit builds a limiter and returns its middleware.
func RateLimit(perSecond float64, burst int) func(http.Handler) http.Handler {
	return NewClientRateLimiter(rate.Limit(perSecond), burst).Handler
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
