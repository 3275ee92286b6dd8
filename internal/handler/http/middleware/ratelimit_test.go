package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimit(t *testing.T) {
	handler := RateLimit(0.001, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/location", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:4000"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:4001"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:4002"))

	// Another client has its own bucket.
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2:4000"))
}

func TestClientRateLimiter_SameBucket(t *testing.T) {
	l := NewClientRateLimiter(1, 0)
	assert.Same(t, l.Limiter("a"), l.Limiter("a"))
	assert.NotSame(t, l.Limiter("a"), l.Limiter("b"))
}
