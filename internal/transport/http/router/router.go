package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type DocumentsHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type FunctionsHandler interface {
	SendOTPEmail(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health    HealthHandler
	Documents DocumentsHandler
	Functions FunctionsHandler

	// Metrics is mounted at /metrics when set.
	Metrics http.Handler

	RequestIDMW func(http.Handler) http.Handler
	AccessLogMW func(http.Handler) http.Handler
	MetricsMW   func(http.Handler) http.Handler
	IdentityMW  func(http.Handler) http.Handler

	// Global per-IP limit; zero disables it.
	IPLimit  int
	IPWindow time.Duration

	// optional per-route limiter for the OTP callable
	RLSendOTP func(http.Handler) http.Handler
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Documents == nil {
		return nil, fmt.Errorf("nil Documents handler")
	}
	if deps.Functions == nil {
		return nil, fmt.Errorf("nil Functions handler")
	}
	if deps.IdentityMW == nil {
		return nil, fmt.Errorf("nil Identity middleware")
	}

	r := chi.NewRouter()

	if deps.RequestIDMW != nil {
		r.Use(deps.RequestIDMW)
	}
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if deps.AccessLogMW != nil {
		r.Use(deps.AccessLogMW)
	}
	if deps.MetricsMW != nil {
		r.Use(deps.MetricsMW)
	}
	if deps.IPLimit > 0 {
		r.Use(httprate.LimitByIP(deps.IPLimit, deps.IPWindow))
	}

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(deps.IdentityMW)

		r.Get("/{collection}", deps.Documents.List)
		r.Post("/{collection}", deps.Documents.Create)
		r.Get("/{collection}/{id}", deps.Documents.Get)
		r.Put("/{collection}/{id}", deps.Documents.Create)
		r.Patch("/{collection}/{id}", deps.Documents.Update)
		r.Delete("/{collection}/{id}", deps.Documents.Delete)
	})

	r.Route("/functions/v1", func(r chi.Router) {
		r.With(optional(deps.RLSendOTP)).Post("/sendOTPEmail", deps.Functions.SendOTPEmail)
	})

	return r, nil
}

func optional(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}
