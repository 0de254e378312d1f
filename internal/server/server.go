// Package server exposes the action catalog over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"accreditation-gateway/internal/common/config"
	apperrors "accreditation-gateway/internal/common/errors"
	"accreditation-gateway/internal/common/logger"
	"accreditation-gateway/internal/common/metrics"
	"accreditation-gateway/internal/common/observability"
	"accreditation-gateway/internal/gateway"
	"accreditation-gateway/internal/pending"
	"accreditation-gateway/pkg/registry"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// FormIDHeader names the header that scopes the pending guard to one form.
const FormIDHeader = "X-Form-ID"

// Catalog is the slice of actions.Catalog the server reads.
type Catalog interface {
	Get(name string) (gateway.Runner, bool)
	Runners() []gateway.Runner
}

// HealthCheck reports whether one backing dependency of /healthz is reachable.
type HealthCheck func(ctx context.Context) error

type Options struct {
	Catalog        Catalog
	Pending        pending.Tracker
	Observability  *observability.Observability
	Logger         logger.Logger
	Version        string
	MaxUploadBytes int64
	MetricsPath    string
	HealthChecks   map[string]HealthCheck
}

type Server struct {
	catalog   Catalog
	pending   pending.Tracker
	obs       *observability.Observability
	log       logger.Logger
	version   string
	maxUpload int64
	metrics   string
	checks    map[string]HealthCheck
}

func New(opts Options) (*Server, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	s := &Server{
		catalog:   opts.Catalog,
		pending:   opts.Pending,
		obs:       opts.Observability,
		log:       opts.Logger,
		version:   opts.Version,
		maxUpload: opts.MaxUploadBytes,
		metrics:   opts.MetricsPath,
		checks:    opts.HealthChecks,
	}
	if s.pending == nil {
		s.pending = pending.NewMemoryTracker()
	}
	if s.log == nil {
		s.log = logger.NewNoOpLogger()
	}
	if s.maxUpload <= 0 {
		s.maxUpload = 10 << 20
	}
	if s.metrics == "" {
		s.metrics = "/metrics"
	}
	return s, nil
}

// Routes returns the router serving actions, the registry, health and
// metrics.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle(s.metrics, promhttp.Handler())

	r.Route("/api/actions", func(r chi.Router) {
		r.Get("/", s.handleRegistry)
		r.Post("/{action}", s.handleAction)
	})
	return r
}

// NewHTTPServer applies the configured timeouts to handler.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: config.GetDuration(cfg.ReadTimeout),
		ReadTimeout:       config.GetDuration(cfg.ReadTimeout),
		WriteTimeout:      config.GetDuration(cfg.WriteTimeout),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	body := map[string]interface{}{
		"version": s.version,
		"actions": len(s.catalog.Runners()),
	}

	if len(s.checks) > 0 {
		results := make(map[string]string, len(s.checks))
		for name, check := range s.checks {
			if err := check(r.Context()); err != nil {
				s.log.Warn("health check failed", map[string]interface{}{"check": name, "error": err.Error()})
				results[name] = err.Error()
				status, code = "degraded", http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		body["checks"] = results
	}

	body["status"] = status
	writeJSON(w, code, body)
}

func (s *Server) handleRegistry(w http.ResponseWriter, r *http.Request) {
	reg := registry.Build(s.version, s.catalog.Runners())

	if r.URL.Query().Get("format") == registry.FormatYAML {
		w.Header().Set("Content-Type", "application/yaml")
		if err := reg.Write(w, registry.FormatYAML); err != nil {
			s.log.Error("registry encode failed", map[string]interface{}{"error": err.Error()})
		}
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "action")
	runner, ok := s.catalog.Get(name)
	if !ok {
		s.writeFailure(w, apperrors.NewActionNotFoundError(name))
		return
	}

	input, stdErr := s.readInput(w, r)
	if stdErr != nil {
		s.writeFailure(w, stdErr)
		return
	}

	if formID := r.Header.Get(FormIDHeader); formID != "" {
		key := pending.Key(name, formID)
		release, err := s.pending.Acquire(r.Context(), key)
		if errors.Is(err, pending.ErrAlreadyPending) {
			metrics.PendingRejections.WithLabelValues(name).Inc()
			s.writeFailure(w, apperrors.NewActionPendingError(key))
			return
		}
		if err != nil {
			s.log.Error("pending guard unavailable", map[string]interface{}{
				"action": name,
				"error":  err.Error(),
			})
			s.writeFailure(w, apperrors.Normalize(err))
			return
		}
		defer func() {
			if err := release(context.WithoutCancel(r.Context())); err != nil {
				s.log.Warn("pending release failed", map[string]interface{}{"key": key, "error": err.Error()})
			}
		}()
	}

	env := runner.Run(r.Context(), input)
	writeJSON(w, StatusFor(env.Code), env)
}

func (s *Server) writeFailure(w http.ResponseWriter, stdErr *apperrors.StandardError) {
	env := gateway.FailureEnvelope(stdErr)
	if stdErr.Code == apperrors.ErrCodeInputParsingFailed && stdErr.Details != "" {
		env.Error = fmt.Sprintf("%s: %s", stdErr.Message, stdErr.Details)
	}
	writeJSON(w, StatusFor(stdErr.Code), env)
}

// StatusFor maps an envelope error code onto an HTTP status.
func StatusFor(code apperrors.ErrorCode) int {
	switch code {
	case "":
		return http.StatusOK
	case apperrors.ErrCodeInputParsingFailed:
		return http.StatusBadRequest
	case apperrors.ErrCodeValidationFailed:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeActionNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeActionPending:
		return http.StatusConflict
	case apperrors.ErrCodeUploadTooLarge:
		return http.StatusRequestEntityTooLarge
	case apperrors.ErrCodeInvocationFailed, apperrors.ErrCodeOutputInvalid:
		return http.StatusBadGateway
	case apperrors.ErrCodeInvocationTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		if id := middleware.GetReqID(r.Context()); id != "" {
			ww.Header().Set(middleware.RequestIDHeader, id)
		}

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		action := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			action = rctx.URLParam("action")
		}
		elapsed := time.Since(start)

		if s.obs != nil {
			s.obs.RecordRequest(r.Context(), "http", action, status, elapsed)
		}

		fields := map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     status,
			"bytes":      ww.BytesWritten(),
			"durationMs": elapsed.Milliseconds(),
			"requestId":  middleware.GetReqID(r.Context()),
		}
		if action != "" {
			fields["action"] = action
		}
		if status >= http.StatusInternalServerError {
			s.log.Error("request failed", fields)
			return
		}
		s.log.Debug("request served", fields)
	})
}
