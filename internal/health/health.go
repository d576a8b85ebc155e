// Package health serves the liveness, readiness and service-info endpoints.
//
//   - /healthz: liveness check; always 200.
//   - /readyz: 200 only when every registered [Checker] passes.
//   - /health: service name, version, uptime, analysis capacity and the
//     checker results. Always 200; a failing checker turns the status into
//     "degraded".
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// checkTimeout bounds a single check.
const checkTimeout = 5 * time.Second

// Checker is a named dependency check. Check returns nil when the dependency
// is usable.
type Checker struct {
	// Name is the key under which the result is reported (e.g. "stt").
	Name string

	// Check tests the dependency. It must respect context cancellation.
	Check func(ctx context.Context) error
}

// Capacity reports how many analyses are running against the configured
// limit.
type Capacity struct {
	InUse int `json:"in_use"`
	Max   int `json:"max"`
}

type result struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type info struct {
	Status        string            `json:"status"`
	Service       string            `json:"service"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Analyses      *Capacity         `json:"analyses,omitempty"`
	Checks        map[string]string `json:"checks,omitempty"`
}

// Handler serves the health endpoints. The checker list is fixed at
// construction.
type Handler struct {
	service  string
	version  string
	capacity func() Capacity
	checkers []Checker

	started time.Time
	now     func() time.Time
}

// Option configures a [Handler].
type Option func(*Handler)

// WithService sets the service name and version reported by /health.
func WithService(name, version string) Option {
	return func(h *Handler) {
		h.service = name
		h.version = version
	}
}

// WithCapacity reports the analysis slots in use on /health.
func WithCapacity(f func() Capacity) Option {
	return func(h *Handler) { h.capacity = f }
}

// WithCheckers registers readiness checks. They run concurrently on every
// /readyz and /health request.
func WithCheckers(checkers ...Checker) Option {
	return func(h *Handler) { h.checkers = append(h.checkers, checkers...) }
}

// WithClock overrides the time source used for uptime.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// New creates a [Handler].
func New(opts ...Option) *Handler {
	h := &Handler{service: "orator", version: "dev", now: time.Now}
	for _, o := range opts {
		o(h)
	}
	h.started = h.now()
	return h
}

// Healthz always returns 200 OK.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, result{Status: "ok"})
}

// Readyz returns 200 only when every [Checker] passes.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks, ok := h.run(r.Context())
	res := result{Status: "ok", Checks: checks}
	status := http.StatusOK
	if !ok {
		res.Status = "fail"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, res)
}

// Info reports the service identity and current load.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	checks, ok := h.run(r.Context())
	res := info{
		Status:        "ok",
		Service:       h.service,
		Version:       h.version,
		UptimeSeconds: int64(h.now().Sub(h.started) / time.Second),
		Checks:        checks,
	}
	if !ok {
		res.Status = "degraded"
	}
	if h.capacity != nil {
		c := h.capacity()
		res.Analyses = &c
	}
	writeJSON(w, http.StatusOK, res)
}

// Register adds the /healthz, /readyz and /health routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	mux.HandleFunc("GET /health", h.Info)
}

// run evaluates all checkers in parallel, each with its own deadline.
func (h *Handler) run(ctx context.Context) (map[string]string, bool) {
	if len(h.checkers) == 0 {
		return nil, true
	}
	errs := make([]error, len(h.checkers))
	var wg sync.WaitGroup
	for i, c := range h.checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()
			errs[i] = c.Check(cctx)
		}()
	}
	wg.Wait()

	checks := make(map[string]string, len(h.checkers))
	ok := true
	for i, c := range h.checkers {
		if errs[i] != nil {
			checks[c.Name] = "fail: " + errs[i].Error()
			ok = false
			continue
		}
		checks[c.Name] = "ok"
	}
	return checks, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("health: encode response", "err", err)
	}
}
