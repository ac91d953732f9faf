package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Pinger is a dependency that can report its liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	deps    map[string]Pinger
	version string
	timeout time.Duration
}

// NewHealthHandler creates a HealthHandler over the named dependencies,
// e.g. "database" and "sheets".
func NewHealthHandler(deps map[string]Pinger, version string) *HealthHandler {
	return &HealthHandler{deps: deps, version: version, timeout: 3 * time.Second}
}

// HealthResponse is the JSON response for /health and /ready.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
}

// Live reports liveness. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Ready reports readiness: 200 if every dependency answers, 503 if not.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	components := h.check(r.Context())

	resp := HealthResponse{Status: overall(components), Timestamp: time.Now()}
	writeJSON(w, statusCode(resp.Status), resp)
}

// Health is the full health check with per-dependency latency and version.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	components := h.check(r.Context())

	resp := HealthResponse{
		Status:     overall(components),
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	}
	writeJSON(w, statusCode(resp.Status), resp)
}

// check pings every dependency concurrently.
func (h *HealthHandler) check(ctx context.Context) map[string]CompStatus {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var (
		mu  sync.Mutex
		out = make(map[string]CompStatus, len(h.deps))
	)

	var g errgroup.Group
	for name, dep := range h.deps {
		g.Go(func() error {
			start := time.Now()
			err := dep.Ping(ctx)
			st := CompStatus{Status: "ok", Latency: time.Since(start).String()}
			if err != nil {
				st = CompStatus{Status: "down"}
			}
			mu.Lock()
			out[name] = st
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func overall(components map[string]CompStatus) string {
	for _, c := range components {
		if c.Status != "ok" {
			return "down"
		}
	}
	return "ok"
}

func statusCode(status string) int {
	if status == "ok" {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
