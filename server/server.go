// Package server exposes a Toolkit over HTTP: execution, health, inventory,
// and optional Prometheus metrics. The serving layer is thin by design; all
// orchestration semantics live in the agent and workflow packages.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	tvara "github.com/tvarahq/tvara-go"
	"github.com/tvarahq/tvara-go/logging"
)

// Options configures the server.
type Options struct {
	// Addr is the listen address, defaulting to ":8080".
	Addr string

	// Logger receives request and lifecycle logs; defaults to a no-op.
	Logger logging.Logger

	// MetricsRegistry, when set, enables GET /metrics over the given
	// prometheus registry.
	MetricsRegistry *prometheus.Registry

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// Server wraps a Toolkit behind an HTTP API.
type Server struct {
	toolkit *tvara.Toolkit
	opts    Options
	router  chi.Router
}

// RunRequest is the POST /run body.
type RunRequest struct {
	// Target names a registered agent or workflow. Optional when the
	// toolkit holds exactly one entry.
	Target string `json:"target"`
	Input  string `json:"input"`
}

// RunResponse is the POST /run reply.
type RunResponse struct {
	Result        string `json:"result"`
	Status        string `json:"status"`
	ExecutionType string `json:"execution_type"`
	Success       bool   `json:"success"`
	AgentOutputs  any    `json:"agent_outputs,omitempty"`
	Error         string `json:"error,omitempty"`
	DurationMS    int64  `json:"duration_ms"`
	RunID         string `json:"run_id,omitempty"`
}

// New builds a Server over the toolkit.
func New(toolkit *tvara.Toolkit, optFns ...func(o *Options)) *Server {
	opts := Options{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	s := &Server{toolkit: toolkit, opts: opts}
	s.router = s.buildRouter()
	return s
}

// Handler returns the HTTP handler, usable directly with httptest.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.opts.Addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("server.start", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		s.opts.Logger.Info("server.shutdown")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Post("/run", s.handleRun)
	r.Post("/run/{target}", s.handleRun)
	r.Get("/health", s.handleHealth)
	r.Get("/info", s.handleInfo)

	if s.opts.MetricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(
			s.opts.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.opts.Logger.Info("server.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(started).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	if target := chi.URLParam(r, "target"); target != "" {
		req.Target = target
	}
	if req.Target == "" {
		target, err := s.soleTarget()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.Target = target
	}

	started := time.Now()

	if wf := s.toolkit.Workflow(req.Target); wf != nil {
		result := wf.Run(r.Context(), req.Input)
		status := "success"
		if !result.Success {
			status = "error"
		}
		writeJSON(w, http.StatusOK, RunResponse{
			Result:        result.FinalOutput,
			Status:        status,
			ExecutionType: "workflow",
			Success:       result.Success,
			AgentOutputs:  result.AgentOutputs,
			Error:         result.Error,
			DurationMS:    result.Duration.Milliseconds(),
			RunID:         result.RunID,
		})
		return
	}

	if a := s.toolkit.Agent(req.Target); a != nil {
		output, err := a.Run(r.Context(), req.Input)
		resp := RunResponse{
			Result:        output,
			Status:        "success",
			ExecutionType: "agent",
			Success:       err == nil,
			DurationMS:    time.Since(started).Milliseconds(),
		}
		if err != nil {
			resp.Status = "error"
			resp.Error = err.Error()
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	writeError(w, http.StatusNotFound, fmt.Sprintf("no agent or workflow named %q", req.Target))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.toolkit.Info())
}

// soleTarget resolves the implicit target when the toolkit holds exactly one
// runnable entry.
func (s *Server) soleTarget() (string, error) {
	agents := s.toolkit.Agents()
	workflows := s.toolkit.Workflows()

	switch {
	case len(workflows) == 1 && len(agents) == 0:
		return workflows[0], nil
	case len(agents) == 1 && len(workflows) == 0:
		return agents[0], nil
	default:
		return "", fmt.Errorf("target is required: toolkit has %d agent(s) and %d workflow(s)",
			len(agents), len(workflows))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"status": "error", "error": msg})
}
