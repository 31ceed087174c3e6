// Package httpapi exposes the probe harness over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/probecheck/internal/harness"
	apimw "github.com/hamed0406/probecheck/internal/httpapi/middleware"
	"github.com/hamed0406/probecheck/internal/probeset"
	"github.com/hamed0406/probecheck/internal/render"
)

// maxRunBody bounds POST /api/runs payloads.
const maxRunBody = 1 << 20

// Runner is the part of *harness.Harness the server needs.
type Runner interface {
	Run(ctx context.Context, baseURL string, probes []harness.Probe) (*harness.RunReport, error)
}

type Server struct {
	Logger        *zap.Logger
	Runner        Runner
	DefaultTarget string
	DefaultProbes []harness.Probe
}

func NewServer(l *zap.Logger, runner Runner, target string, probes []harness.Probe) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{Logger: l, Runner: runner, DefaultTarget: target, DefaultProbes: probes}
}

func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, pubRPM, pubBurst, admRPM, admBurst int) http.Handler {
	r := chi.NewRouter()
	r.Use(corsHandler(allowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.With(apimw.RateLimit(pubRPM, pubBurst), apimw.RequireAny(keys)).
			Get("/probes", s.handleListProbes)
		r.With(apimw.RateLimit(admRPM, admBurst), apimw.RequireAdmin(keys)).
			Post("/runs", s.handleRun)
	})

	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return cors.AllowAll().Handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	})
}

type probesResponse struct {
	Target string                `json:"target"`
	Probes []probeset.Definition `json:"probes"`
}

func (s *Server) handleListProbes(w http.ResponseWriter, r *http.Request) {
	defs := make([]probeset.Definition, 0, len(s.DefaultProbes))
	for _, p := range s.DefaultProbes {
		defs = append(defs, probeset.Define(p))
	}
	writeJSON(w, http.StatusOK, probesResponse{Target: s.DefaultTarget, Probes: defs})
}

type runResponse struct {
	render.ReportJSON
	Verdict bool `json:"verdict"`
}

type problemResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req probeset.File
	body := http.MaxBytesReader(w, r.Body, maxRunBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, problemResponse{Error: "bad payload"})
		return
	}

	target := strings.TrimSpace(req.BaseURL)
	if target == "" {
		target = s.DefaultTarget
	}
	probes := s.DefaultProbes
	if len(req.Probes) > 0 {
		if err := req.Validate(); err != nil {
			s.writeConfigError(w, err)
			return
		}
		converted, err := probeset.Convert(req.Probes)
		if err != nil {
			s.writeConfigError(w, err)
			return
		}
		probes = converted
	}

	report, err := s.Runner.Run(r.Context(), target, probes)
	if err != nil {
		if harness.IsConfigurationError(err) {
			s.writeConfigError(w, err)
			return
		}
		s.Logger.Warn("api_run_error", zap.String("target", target), zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, problemResponse{Error: "run interrupted"})
		return
	}

	s.Logger.Info("api_run",
		zap.String("target", report.Target),
		zap.Int("passed", report.PassedCount),
		zap.Int("total", report.TotalCount),
	)
	writeJSON(w, http.StatusOK, runResponse{
		ReportJSON: render.NewReportJSON(report),
		Verdict:    harness.Verdict(report),
	})
}

func (s *Server) writeConfigError(w http.ResponseWriter, err error) {
	resp := problemResponse{Error: "invalid configuration"}
	var ce *harness.ConfigurationError
	if errors.As(err, &ce) {
		for _, p := range ce.Problems {
			resp.Problems = append(resp.Problems, p.Error())
		}
	} else {
		resp.Problems = []string{err.Error()}
	}
	writeJSON(w, http.StatusBadRequest, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
