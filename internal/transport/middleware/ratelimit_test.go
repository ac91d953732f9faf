package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func limited(rl *RateLimiter, perMinute int) http.Handler {
	return rl.Limit(perMinute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func hit(h http.Handler, addr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", nil)
	req.RemoteAddr = addr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(time.Minute)
	defer rl.Stop()
	h := limited(rl, 5)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "1.2.3.4:1234").Code, "request %d", i)
	}
	rec := hit(h, "1.2.3.4:9999")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "port does not matter")
	assert.Equal(t, "13", rec.Header().Get("Retry-After"))
}

func TestRateLimiter_DifferentIPsIndependent(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(time.Minute)
	defer rl.Stop()
	h := limited(rl, 1)

	assert.Equal(t, http.StatusOK, hit(h, "1.1.1.1:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "1.1.1.1:1").Code)
	assert.Equal(t, http.StatusOK, hit(h, "2.2.2.2:1").Code)
	assert.Equal(t, 2, rl.Clients())
}

func TestRateLimiter_ForgetsIdleClients(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(time.Hour)
	defer rl.Stop()

	now := time.Now()
	rl.now = func() time.Time { return now }
	hit(limited(rl, 10), "1.1.1.1:1")

	now = now.Add(11 * time.Minute)
	rl.forget(10 * time.Minute)
	assert.Zero(t, rl.Clients())
}

func TestRateLimiter_StopTwice(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(time.Minute)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}
