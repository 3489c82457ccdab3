package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/spacestar/internal/logging"
	"github.com/stretchr/testify/assert"
)

type stubLimiter struct {
	d    Decision
	err  error
	keys []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (Decision, error) {
	s.keys = append(s.keys, key)
	return s.d, s.err
}

func serve(l Limiter, req *http.Request) *httptest.ResponseRecorder {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	rejected := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) }

	rec := httptest.NewRecorder()
	Middleware("auth", l, logging.NewNopLogger(), rejected)(ok).ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_Allowed(t *testing.T) {
	l := &stubLimiter{d: Decision{Allowed: true, Limit: 60, Remaining: 59}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	rec := serve(l, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "59", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, []string{"ip:10.0.0.1"}, l.keys)
}

func TestMiddleware_Rejected(t *testing.T) {
	l := &stubLimiter{d: Decision{Limit: 60, RetryAfter: 1500 * time.Millisecond}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)

	rec := serve(l, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestMiddleware_BackendErrorPassesThrough(t *testing.T) {
	l := &stubLimiter{d: Decision{Allowed: true, Limit: 60, Remaining: 60}, err: errors.New("redis down")}
	req := httptest.NewRequest(http.MethodPost, "/auth/join", nil)

	rec := serve(l, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.7:1234"
	assert.Equal(t, "ip:192.168.1.7", ClientKey(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "ip:203.0.113.9", ClientKey(req))
}
