// internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/charmingdata/stock-market-trading/internal/api/middleware"
	"github.com/charmingdata/stock-market-trading/internal/api/response"
	"github.com/charmingdata/stock-market-trading/internal/app"
	"github.com/charmingdata/stock-market-trading/internal/core"
	"github.com/charmingdata/stock-market-trading/internal/metrics"
)

// Runner is the simulation pipeline the handlers call. *app.App
// satisfies it.
type Runner interface {
	Simulate(ctx context.Context, ov app.Overrides) (*app.RunOutput, error)
	Outcomes(ctx context.Context, ov app.Overrides, typeFilter string) (*app.OutcomeOutput, error)
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	APIKey      string
	MetricsPath string
}

// Server exposes the simulation pipeline over HTTP.
type Server struct {
	httpServer *http.Server
	runner     Runner
	logger     *zap.Logger
	mux        *http.ServeMux
}

// NewServer creates the HTTP server with all routes registered.
func NewServer(cfg Config, runner Runner, reg *metrics.Registry, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		runner: runner,
		logger: logger,
		mux:    mux,
	}

	auth := middleware.APIKeyAuth(cfg.APIKey)
	chain := func(h http.Handler) http.Handler {
		h = auth(h)
		if reg != nil {
			h = metrics.HTTPMiddleware(reg)(h)
		}
		return metrics.LoggingMiddleware(logger)(h)
	}

	mux.Handle("/api/simulate", chain(http.HandlerFunc(s.handleSimulate)))
	mux.Handle("/api/outcomes", chain(http.HandlerFunc(s.handleOutcomes)))
	mux.HandleFunc("/api/health", s.handleHealth)

	if reg != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	return s
}

// Handler returns the route mux, used by tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// simulateRequest carries per-request parameter overrides.
type simulateRequest struct {
	Month      string  `json:"month"`
	WindowDays int     `json:"window_days"`
	Size       float64 `json:"size"`
}

// simulateResponse summarizes one run for API clients.
type simulateResponse struct {
	Setups          int                      `json:"setups"`
	SkippedRows     int                      `json:"skipped_rows"`
	PositionsOpened int                      `json:"positions_opened"`
	StopLossExits   int                      `json:"stop_loss_exits"`
	TargetExits     int                      `json:"target_exits"`
	OpenAtEnd       int                      `json:"open_at_end"`
	Trades          []core.StandardizedTrade `json:"trades"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		response.Error(w, http.StatusMethodNotAllowed,
			core.WrapError(core.ErrDataInvalid, fmt.Errorf("method %s not allowed", r.Method)))
		return
	}

	var req simulateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest,
				core.WrapError(core.ErrDataInvalid, fmt.Errorf("decoding request: %w", err)))
			return
		}
	}

	out, err := s.runner.Simulate(r.Context(), app.Overrides{
		Month:      req.Month,
		WindowDays: req.WindowDays,
		Size:       req.Size,
	})
	if err != nil {
		s.logger.Error("simulation failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	response.JSON(w, http.StatusOK, simulateResponse{
		Setups:          out.SetupCount,
		SkippedRows:     out.SkippedRows,
		PositionsOpened: out.Result.PositionsOpened,
		StopLossExits:   out.Result.StopLossExits,
		TargetExits:     out.Result.TargetExits,
		OpenAtEnd:       out.Result.OpenAtEnd,
		Trades:          out.Standardized,
	})
}

func (s *Server) handleOutcomes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		response.Error(w, http.StatusMethodNotAllowed,
			core.WrapError(core.ErrDataInvalid, fmt.Errorf("method %s not allowed", r.Method)))
		return
	}

	q := r.URL.Query()
	out, err := s.runner.Outcomes(r.Context(),
		app.Overrides{Month: q.Get("month")}, q.Get("type"))
	if err != nil {
		s.logger.Error("outcome attribution failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	response.JSON(w, http.StatusOK, out)
}
