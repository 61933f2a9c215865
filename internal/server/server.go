// Package server implements the HTTP transport layer for the llamadash proxy.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	llamadash "github.com/eugener/llamadash/internal"
	"github.com/eugener/llamadash/internal/app"
	"github.com/eugener/llamadash/internal/telemetry"
)

// DefaultPrefix is the namespace the data endpoints are mounted under.
const DefaultPrefix = "/defillama"

// ReadyChecker reports whether the system is ready to serve traffic.
type ReadyChecker func(ctx context.Context) error

// Deps holds all dependencies for the HTTP server.
type Deps struct {
	Endpoints      *app.EndpointService
	Table          []app.Endpoint     // nil = app.Endpoints
	Prefix         string             // "" = DefaultPrefix; "/" mounts at the root
	AllowedOrigins []string           // nil = no CORS headers
	ReadyCheck     ReadyChecker       // nil = always ready
	Metrics        *telemetry.Metrics // nil = no request metrics
	MetricsHandler http.Handler       // nil = no /metrics route
}

// New creates an http.Handler with all routes and middleware wired.
func New(deps Deps) http.Handler {
	if deps.Table == nil {
		deps.Table = app.Endpoints
	}
	switch deps.Prefix {
	case "":
		deps.Prefix = DefaultPrefix
	case "/":
		deps.Prefix = ""
	}
	s := &server{deps: deps}

	r := chi.NewRouter()

	r.Use(s.recovery)
	r.Use(s.requestID)
	r.Use(s.logging)
	if deps.Metrics != nil {
		r.Use(metricsMiddleware(deps.Metrics))
	}
	if len(deps.AllowedOrigins) > 0 {
		r.Use(cors(deps.AllowedOrigins))
	}

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// Dashboard manifest
	r.Get("/widgets.json", s.handleWidgets)
	r.Get("/apps.json", s.handleApps)

	mountData := func(r chi.Router) {
		for i := range s.deps.Table {
			e := &s.deps.Table[i]
			r.Get(e.Path, s.handleEndpoint(e))
		}
	}
	if deps.Prefix == "" {
		mountData(r)
	} else {
		r.Route(deps.Prefix, mountData)
	}
	// Propagates to the prefix subrouter.
	r.NotFound(handleNotFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse("method not allowed"))
	})

	return r
}

type server struct {
	deps Deps
}

// handleEndpoint serves one row of the endpoint table. Every failure answers
// the endpoint's fixed message and status; the cause is only logged.
func (s *server) handleEndpoint(e *app.Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := make(map[string]string, len(e.Params))
		for _, p := range e.Params {
			params[p.Name] = chi.URLParam(r, p.Name)
		}

		out, err := s.deps.Endpoints.Serve(r.Context(), e, params, r.URL.Query().Get("search"))
		if err != nil {
			slog.LogAttrs(r.Context(), slog.LevelWarn, "endpoint failed",
				slog.String("endpoint", e.Path),
				slog.String("error", err.Error()),
				slog.String("request_id", llamadash.RequestIDFromContext(r.Context())),
			)
			writeJSON(w, e.ErrorStatus(), errorResponse(e.Message))
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse("not found"))
}

func (s *server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusBody{Status: "ok"})
}

func (s *server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.deps.ReadyCheck != nil {
		if err := s.deps.ReadyCheck(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, statusBody{Status: "not ready", Error: err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, statusBody{Status: "ok"})
}

type statusBody struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
