// Package httpapi exposes the daemon's control surface: service
// connectivity states, validation history, and an explicit revalidation
// trigger.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/nettield/portalwatch/internal/httpapi/middleware"
	"github.com/nettield/portalwatch/internal/monitor"
	"github.com/nettield/portalwatch/internal/service"
)

type Server struct {
	Logger   *zap.Logger
	Services *service.Registry
	RPM      int
	Burst    int
}

func NewServer(l *zap.Logger, reg *service.Registry, rpm, burst int) *Server {
	return &Server{Logger: l, Services: reg, RPM: rpm, Burst: burst}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Use(middleware.RateLimit(s.RPM, s.Burst))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/api/services", s.handleListServices)
	r.Get("/api/services/{name}", s.handleGetService)
	r.Post("/api/services/{name}/revalidate", s.handleRevalidate)
	r.Get("/api/services/{name}/log", s.handleValidationLog)

	return r
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	svcs := s.Services.List()
	out := make([]service.Status, 0, len(svcs))
	for _, svc := range svcs {
		out = append(out, svc.Status())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetService(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.Services.Get(chi.URLParam(r, "name"))
	if !ok {
		http.Error(w, "unknown service", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, svc.Status())
}

// handleRevalidate is the external-request entry point into the
// monitor: it maps straight onto the user-request validation reason.
func (s *Server) handleRevalidate(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.Services.Get(chi.URLParam(r, "name"))
	if !ok {
		http.Error(w, "unknown service", http.StatusNotFound)
		return
	}
	if !svc.RequestValidation(monitor.ReasonUserRequest) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"started": false,
			"error":   "validation cannot start (no network or no DNS servers)",
		})
		return
	}
	s.Logger.Info("revalidation_requested", zap.String("service", svc.Name()))
	writeJSON(w, http.StatusAccepted, map[string]any{"started": true})
}

func (s *Server) handleValidationLog(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.Services.Get(chi.URLParam(r, "name"))
	if !ok {
		http.Error(w, "unknown service", http.StatusNotFound)
		return
	}
	hist := svc.History()
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": hist.Entries(),
		"summary": hist.Summary(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
