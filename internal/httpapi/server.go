package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/statushistory/internal/domain"
	apimw "github.com/hamed0406/statushistory/internal/httpapi/middleware"
	"github.com/hamed0406/statushistory/internal/repo"
)

// Runner triggers one probe pass over services.
type Runner interface {
	Run(ctx context.Context, services []domain.ServiceConfig) error
}

type Server struct {
	Logger   *zap.Logger
	Store    repo.HistoryStore
	Services []domain.ServiceConfig
	Runner   Runner

	running sync.Mutex // one /api/run at a time
}

func NewServer(l *zap.Logger, store repo.HistoryStore, services []domain.ServiceConfig, runner Runner) *Server {
	return &Server{Logger: l, Store: store, Services: services, Runner: runner}
}

// Router wires the public read routes and the admin run route. Zero RPM
// disables the corresponding rate limit; no origins allows all.
func (s *Server) Router(keys apimw.Keys, origins []string, pubRPM, pubBurst, admRPM, admBurst int) http.Handler {
	r := chi.NewRouter()
	if len(origins) == 0 {
		r.Use(cors.AllowAll().Handler)
	} else {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(pubRPM, pubBurst))
		r.Use(apimw.RequireAny(keys))
		r.Get("/api/services", s.handleListServices)
		r.Get("/api/services/{slug}/history", s.handleHistory)
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(admRPM, admBurst))
		r.Use(apimw.RequireAdmin(keys))
		r.Post("/api/run", s.handleRun)
	})

	return r
}

type serviceView struct {
	Name    string         `json:"name"`
	Slug    string         `json:"slug"`
	URL     string         `json:"url"`
	Summary domain.Summary `json:"summary"`
	Error   string         `json:"error,omitempty"`
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	out := make([]serviceView, 0, len(s.Services))
	for _, svc := range s.Services {
		v := serviceView{Name: svc.Name, Slug: svc.Slug(), URL: svc.URL}
		h, err := s.Store.Load(r.Context(), svc.Name)
		if err != nil {
			s.Logger.Warn("history_load_error", zap.String("service", svc.Name), zap.Error(err))
			v.Error = "history unavailable"
		} else {
			v.Summary = h.Summarize()
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	svc, ok := s.lookup(slug)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown service"})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	h, err := s.Store.Load(r.Context(), svc.Name)
	if err != nil {
		s.Logger.Warn("history_load_error", zap.String("service", svc.Name), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "history unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service": svc.Name,
		"slug":    svc.Slug(),
		"records": h.Tail(limit),
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.Runner == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "runner not configured"})
		return
	}
	if !s.running.TryLock() {
		writeJSON(w, http.StatusConflict, map[string]any{"ok": false, "error": "a run is already in progress"})
		return
	}
	defer s.running.Unlock()

	if err := s.Runner.Run(r.Context(), s.Services); err != nil {
		s.Logger.Error("api_run_error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	s.Logger.Info("api_run", zap.Int("services", len(s.Services)))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "services": len(s.Services)})
}

func (s *Server) lookup(slug string) (domain.ServiceConfig, bool) {
	for _, svc := range s.Services {
		if svc.Slug() == slug {
			return svc, true
		}
	}
	return domain.ServiceConfig{}, false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
