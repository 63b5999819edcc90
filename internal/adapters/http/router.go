package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/kirillkom/insurance-onboarding/internal/config"
	"github.com/kirillkom/insurance-onboarding/internal/core/ports"
	"github.com/kirillkom/insurance-onboarding/internal/observability/metrics"
)

const defaultUploadMaxBytes = 20 << 20

// Services groups the inbound ports served over HTTP.
type Services struct {
	Uploads  ports.IdentityUploader
	Chat     ports.ChatService
	Records  ports.RecordEditor
	Sessions ports.SessionService
}

type Router struct {
	cfg      config.Config
	services Services
	metrics  *metrics.HTTPServerMetrics
	logger   *slog.Logger
}

func NewRouter(cfg config.Config, services Services, httpMetrics *metrics.HTTPServerMetrics) *Router {
	if cfg.UploadMaxBytes <= 0 {
		cfg.UploadMaxBytes = defaultUploadMaxBytes
	}
	return &Router{
		cfg:      cfg,
		services: services,
		metrics:  httpMetrics,
		logger:   slog.Default(),
	}
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(requestIDMiddleware)
	r.Use(accessLogMiddleware)
	if rt.metrics != nil {
		r.Use(rt.metrics.Middleware)
	}

	r.Get("/healthz", rt.healthz)
	if rt.metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		if rt.cfg.APIRateLimitRPS > 0 {
			limiter := rate.NewLimiter(rate.Limit(rt.cfg.APIRateLimitRPS), max(rt.cfg.APIRateLimitBurst, 1))
			r.Use(func(next http.Handler) http.Handler {
				return rateLimitMiddleware(next, limiter)
			})
		}
		if rt.cfg.APIMaxInFlight > 0 {
			r.Use(func(next http.Handler) http.Handler {
				return backpressureMiddleware(next, rt.cfg.APIMaxInFlight, rt.cfg.APIBackpressureWait)
			})
		}

		r.Post("/chat", rt.chat)
		r.Get("/chat/{session_id}/messages", rt.chatHistory)

		r.Get("/sessions/{session_id}", rt.getSession)
		r.Get("/sessions/{session_id}/status", rt.sessionStatus)
		r.Put("/sessions/{session_id}/mobile", rt.saveMobile)
		r.Post("/sessions/{session_id}/emirates-id", rt.uploadEmiratesID)

		r.Patch("/records/{record_id}", rt.updateRecordField)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		rt.logger.Error("request failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	if status == http.StatusInternalServerError {
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
