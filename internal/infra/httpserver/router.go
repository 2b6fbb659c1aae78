package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/callprep/internal/application/analysis"
	appcustomers "github.com/bryanwahyu/callprep/internal/application/customers"
	appfiles "github.com/bryanwahyu/callprep/internal/application/files"
	"github.com/bryanwahyu/callprep/internal/application/transcription"
	"github.com/bryanwahyu/callprep/internal/domain/ai"
	"github.com/bryanwahyu/callprep/internal/domain/apperr"
	"github.com/bryanwahyu/callprep/internal/middleware"
)

// Services are the use-cases the HTTP surface exposes.
type Services struct {
	Customers     *appcustomers.Service
	Files         *appfiles.Service
	Transcription *transcription.Service
	Analysis      *analysis.Service
}

type Options struct {
	APIKeys       map[string]string
	TrustedHeader string
	CORSOrigins   []string
	// RateLimiter is optional.
	RateLimiter *middleware.RateLimiter
	Checkers    map[string]middleware.HealthChecker
	Logger      *slog.Logger
	// MaxUploadBytes bounds file upload bodies; zero means 50 MiB.
	MaxUploadBytes int64
}

type Router struct {
	svc       Services
	log       *slog.Logger
	maxUpload int64
}

func NewRouter(svc Services, opt Options) http.Handler {
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}
	maxUpload := opt.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 50 << 20
	}
	r := &Router{svc: svc, log: log, maxUpload: maxUpload}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestLogger(log))
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.MetricsMiddleware)
	if len(opt.CORSOrigins) > 0 {
		headers := []string{"Authorization", "Content-Type"}
		if opt.TrustedHeader != "" {
			headers = append(headers, opt.TrustedHeader)
		}
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: opt.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: headers,
			ExposedHeaders: []string{"Retry-After"},
			MaxAge:         300,
		}))
	}

	mux.Get("/health", middleware.HealthHandler(opt.Checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)

	mux.Group(func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(opt.APIKeys, opt.TrustedHeader))
		if opt.RateLimiter != nil {
			rt.Use(opt.RateLimiter.Middleware)
		}

		rt.Get("/metrics", middleware.MetricsHandler)

		rt.Route("/customers", func(rt chi.Router) {
			rt.Get("/", r.wrap(r.handleListCustomers))
			rt.Post("/", r.wrap(r.handleCreateCustomer))
			rt.Route("/{id}", func(rt chi.Router) {
				rt.Get("/", r.wrap(r.handleGetCustomer))
				rt.Get("/files", r.wrap(r.handleListFiles))
				rt.Post("/files", r.wrap(r.handleAddFile))
				rt.Get("/analyses", r.wrap(r.handleListAnalyses))
			})
		})

		rt.Post("/transcribe", r.wrap(r.handleTranscribe))
		rt.Post("/analyze", r.wrap(r.handleAnalyze))

		rt.Get("/analyses/{id}", r.wrap(r.handleGetAnalysis))
		rt.Post("/analyses/{id}/reparse", r.wrap(r.handleReparse))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		status := statusFor(err)
		if errors.Is(err, ai.ErrQuotaExceeded) {
			w.Header().Set("Retry-After", "60")
		}
		if status >= http.StatusInternalServerError {
			r.log.ErrorContext(req.Context(), "request failed",
				"method", req.Method,
				"path", req.URL.Path,
				"error", err,
			)
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrNoContent):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
