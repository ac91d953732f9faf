package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerMock struct {
	err error
}

func (m *pingerMock) Ping(_ context.Context) error {
	return m.err
}

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestLive_Always200(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(map[string]Pinger{"database": &pingerMock{err: errors.New("down")}}, "test-version")
	rec := httptest.NewRecorder()
	h.Live(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeHealth(t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestReady(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		deps   map[string]Pinger
		code   int
		status string
	}{
		{
			name:   "all up",
			deps:   map[string]Pinger{"database": &pingerMock{}, "sheets": &pingerMock{}},
			code:   http.StatusOK,
			status: "ok",
		},
		{
			name:   "sheets down",
			deps:   map[string]Pinger{"database": &pingerMock{}, "sheets": &pingerMock{err: errors.New("quota")}},
			code:   http.StatusServiceUnavailable,
			status: "down",
		},
		{
			name:   "no deps",
			deps:   map[string]Pinger{},
			code:   http.StatusOK,
			status: "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			NewHealthHandler(tt.deps, "v").Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			require.Equal(t, tt.code, rec.Code)
			resp := decodeHealth(t, rec)
			assert.Equal(t, tt.status, resp.Status)
			assert.Empty(t, resp.Components, "ready does not expose components")
		})
	}
}

func TestHealth_Components(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(map[string]Pinger{
		"database": &pingerMock{},
		"sheets":   &pingerMock{err: errors.New("connection refused")},
	}, "1.2.3")
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decodeHealth(t, rec)
	assert.Equal(t, "down", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	require.Len(t, resp.Components, 2)
	assert.Equal(t, "ok", resp.Components["database"].Status)
	assert.NotEmpty(t, resp.Components["database"].Latency)
	assert.Equal(t, CompStatus{Status: "down"}, resp.Components["sheets"])
}
