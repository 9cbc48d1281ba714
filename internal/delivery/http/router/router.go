package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/quiz-solver/internal/delivery/http/handler"
	"github.com/user/quiz-solver/internal/delivery/http/middleware"
	"github.com/user/quiz-solver/pkg/metrics"
)

// Options wires the router's cross-cutting dependencies.
type Options struct {
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	// RequestTimeout must leave room for a whole chain.
	RequestTimeout time.Duration
}

func New(h *handler.Handler, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(opts.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics(opts.Metrics))
	if opts.RequestTimeout > 0 {
		r.Use(chimw.Timeout(opts.RequestTimeout))
	}

	r.Post("/", h.HandleSolve)
	r.Post("/quiz", h.HandleSolve)
	r.Get("/api/health", h.HandleHealthCheck)

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}
