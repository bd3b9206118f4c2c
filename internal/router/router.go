package router

import (
	"net/http"

	"product-service/internal/config"
	"product-service/internal/handler"
	"product-service/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Options tunes the cross-cutting parts of the router.
type Options struct {
	// Registry receives the HTTP metrics and backs /metrics. When nil a new
	// registry with the Go and process collectors is created.
	Registry  *prometheus.Registry
	RateLimit config.RateLimitConfig
}

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	healthHandler *handler.HealthHandler,
	opts Options,
	logger zerolog.Logger,
) http.Handler {
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	metrics := middleware.NewMetrics(reg)

	r := chi.NewRouter()

	// Outermost first: every response, including 404/405 and recovered
	// panics, carries a request id and is logged and counted.
	r.Use(middleware.RequestID)
	r.Use(middleware.SpanRoute)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(metrics.Middleware)
	r.Use(middleware.CORS)
	r.Use(middleware.RateLimit(opts.RateLimit.RPS, opts.RateLimit.Burst, logger))

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", productHandler.List)
		r.Post("/", productHandler.Create)
		r.Get("/search", productHandler.Search)
		r.Get("/{id:[0-9]+}", productHandler.GetByID)
		r.Put("/{id:[0-9]+}", productHandler.Update)
		r.Delete("/{id:[0-9]+}", productHandler.Delete)
	})

	// Spans come from the global tracer provider, a no-op unless tracing is
	// enabled. They start named by method; SpanRoute adds the route pattern.
	return otelhttp.NewHandler(r, "http-server",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method
		}),
	)
}
