package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/quiz-solver/internal/adapter/chromedp_renderer"
	"github.com/user/quiz-solver/internal/adapter/httpclient"
	redis_adapter "github.com/user/quiz-solver/internal/adapter/redis"
	"github.com/user/quiz-solver/internal/classifier"
	"github.com/user/quiz-solver/internal/delivery/http/handler"
	"github.com/user/quiz-solver/internal/delivery/http/router"
	"github.com/user/quiz-solver/internal/fileresolver"
	"github.com/user/quiz-solver/internal/usecase"
	"github.com/user/quiz-solver/pkg/config"
	"github.com/user/quiz-solver/pkg/metrics"
)

// Chains are not preempted, so the last step may run past the deadline.
// Requests get this much extra time before the router gives up on them.
const requestTimeoutGrace = 2 * time.Minute

// App holds the long-lived components of the service.
type App struct {
	Config   *config.Config
	Solver   usecase.QuizSolver
	Renderer *chromedp_renderer.ChromedpRenderer
	Metrics  *metrics.Metrics
	logger   *zap.Logger
	redis    *redis.Client
}

// New wires every component from cfg. Close releases the browser and Redis.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*App, error) {
	m := metrics.New(reg)

	renderer, err := chromedp_renderer.NewChromedpRenderer(chromedp_renderer.Options{
		MaxConcurrency:  cfg.MaxConcurrency,
		PageLoadTimeout: cfg.PageLoadTimeout(),
		UserAgent:       cfg.UserAgent,
		ExecPath:        cfg.ChromePath,
	}, logger)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Renderer: renderer, Metrics: m, logger: logger}

	opts := []usecase.Option{usecase.WithDeadline(cfg.ChainDeadline())}
	if cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			// The guard fails open, so an unreachable Redis only loses duplicate detection.
			logger.Warn("Redis is unreachable, chain guard will fail open", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			logger.Info("Redis connection established", zap.String("addr", cfg.RedisAddr))
		}
		opts = append(opts, usecase.WithGuard(redis_adapter.NewChainGuard(a.redis)))
	}

	submitter := httpclient.NewSubmitter(cfg.SubmitTimeout(), cfg.UserAgent, logger)
	downloader := httpclient.NewDownloader(cfg.UserAgent, logger)
	resolver := fileresolver.NewResolver(downloader, logger)

	a.Solver = usecase.NewQuizSolver(renderer, submitter, resolver, classifier.New(logger), m, logger, opts...)
	return a, nil
}

// Handler builds the HTTP API on top of the solver.
func (a *App) Handler(gatherer prometheus.Gatherer) http.Handler {
	h := handler.NewHandler(a.Solver, a.Config.QuizSecret, a.logger)
	return router.New(h, router.Options{
		Logger:         a.logger,
		Metrics:        a.Metrics,
		Gatherer:       gatherer,
		RequestTimeout: a.RequestTimeout(),
	})
}

// RequestTimeout is the longest a solve request may take.
func (a *App) RequestTimeout() time.Duration {
	return a.Config.ChainDeadline() + requestTimeoutGrace
}

func (a *App) Close() error {
	a.Renderer.Close()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			return fmt.Errorf("failed to close redis client: %w", err)
		}
	}
	return nil
}
