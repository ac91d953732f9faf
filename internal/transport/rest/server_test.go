package rest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/heartmarshall/guildqueue/internal/transport/middleware"
)

func denyAll(http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
}

func newTestHandler(adminGuard middleware.Middleware) http.Handler {
	return NewHandler(discard(), Routes{
		Health: NewHealthHandler(map[string]Pinger{"database": &pingerMock{}}, "v"),
		Admin:  NewAdminHandler(&fakeBoard{}, &fakeScope{}, nil, discard()),
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		}),
		Webhook: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
		WebhookPath: "/telegram/webhook",
	}, Guards{Admin: adminGuard})
}

func TestNewHandler_Routes(t *testing.T) {
	t.Parallel()
	h := newTestHandler(nil)

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/live", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/admin/queues", http.StatusOK},
		{http.MethodPost, "/admin/scope/reload", http.StatusOK},
		{http.MethodPost, "/telegram/webhook", http.StatusOK},
		{http.MethodGet, "/telegram/webhook", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.want, rec.Code, "%s %s", tt.method, tt.path)
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"), "%s %s", tt.method, tt.path)
	}
}

func TestNewHandler_AdminGuarded(t *testing.T) {
	t.Parallel()
	h := newTestHandler(denyAll)

	for _, path := range []string{"/admin/queues", "/admin/audit"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "health stays public")
}

func TestNewHandler_WebhookOptional(t *testing.T) {
	t.Parallel()
	h := NewHandler(discard(), Routes{Health: NewHealthHandler(nil, "v")}, Guards{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
