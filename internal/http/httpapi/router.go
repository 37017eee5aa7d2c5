package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/loryanstrant/azure-openai-sora-webserver/internal/http/handlers"
	"github.com/loryanstrant/azure-openai-sora-webserver/internal/infra"
	"github.com/loryanstrant/azure-openai-sora-webserver/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config, lookup middleware.CountryLookup) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Locale(cfg.DefaultLocale, cfg.SupportedLocales, lookup))
	r.Use(middleware.Logger(app.Logger))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	}

	r.Route("/api", func(r chi.Router) {
		limited := r
		if cfg.RateLimitPerMin > 0 {
			limited = r.With(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
		}
		limited.Post("/generate", app.Generate)
		limited.Get("/status/{video_id}", app.Status)
		limited.Post("/cleanup", app.Cleanup)
		r.Get("/health", app.Health)
	})

	// Health alias and metrics for operators.
	r.Get("/v1/healthz", app.Health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
