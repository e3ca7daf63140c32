// Package ops wires the per-service control surface: health, metrics and the chaos toggle.
package ops

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cafeteria-system/internal/common/apperr"
	"cafeteria-system/internal/common/chaos"
	"cafeteria-system/internal/common/httpx"
	"cafeteria-system/internal/common/logger"
	"cafeteria-system/internal/common/metrics"
)

const checkTimeout = 2 * time.Second

type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// ServiceContext is the state one service shares between its request handlers and its
// background loop. Chaos is nil for services without a fault-injection switch.
type ServiceContext struct {
	Service string
	Chaos   *chaos.Controller
	Metrics *metrics.Registry
	Log     *logger.Logger

	checks []Check
}

func NewServiceContext(service string, c *chaos.Controller, m *metrics.Registry, lg *logger.Logger) *ServiceContext {
	if m == nil {
		m = metrics.New()
	}
	return &ServiceContext{Service: service, Chaos: c, Metrics: m, Log: lg}
}

// AddCheck registers a dependency probed by /health. Not safe after Register.
func (s *ServiceContext) AddCheck(name string, ping func(ctx context.Context) error) {
	s.checks = append(s.checks, Check{Name: name, Ping: ping})
}

func (s *ServiceContext) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.Health)
	mux.HandleFunc("GET /metrics", s.MetricsHandler)
	if s.Chaos != nil {
		mux.HandleFunc("POST /chaos/fail", s.ChaosHandler)
	}
}

func (s *ServiceContext) Health(w http.ResponseWriter, r *http.Request) {
	if s.Chaos != nil && s.Chaos.Enabled() {
		httpx.WriteProblem(w, http.StatusServiceUnavailable, string(apperr.KindChaos), "chaos mode enabled")
		return
	}
	for _, c := range s.checks {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := c.Ping(ctx)
		cancel()
		if err != nil {
			s.Log.Warn("health_check_failed", err, map[string]any{"dependency": c.Name})
			httpx.WriteProblem(w, http.StatusServiceUnavailable, string(apperr.KindUpstream),
				fmt.Sprintf("%s unavailable", c.Name))
			return
		}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": s.Service})
}

func (s *ServiceContext) MetricsHandler(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, s.Metrics.Snapshot())
}

type chaosRequest struct {
	Enabled bool   `json:"enabled"`
	Mode    string `json:"mode"`
}

func (s *ServiceContext) ChaosHandler(w http.ResponseWriter, r *http.Request) {
	var req chaosRequest
	if err := httpx.DecodeJSON(r, &req, http.StatusUnprocessableEntity); err != nil {
		httpx.WriteError(w, err)
		return
	}
	st := s.Chaos.Set(req.Enabled, req.Mode)
	s.Log.Info("chaos_toggled", map[string]any{"enabled": st.Enabled, "mode": st.Mode})
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "chaos": st})
}
