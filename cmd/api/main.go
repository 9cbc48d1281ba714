package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/user/quiz-solver/internal/app"
	"github.com/user/quiz-solver/pkg/config"
	"github.com/user/quiz-solver/pkg/logger"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet.
		bootstrap, _ := zap.NewProduction()
		bootstrap.Fatal("Could not load config", zap.Error(err))
	}

	// --- Logger ---
	log, logCloser, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		bootstrap, _ := zap.NewProduction()
		bootstrap.Fatal("Could not initialize logger", zap.Error(err))
	}
	defer logCloser.Close()
	defer log.Sync()

	// --- Components ---
	ctx := context.Background()
	application, err := app.New(ctx, cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal("Could not start quiz solver", zap.Error(err))
	}
	defer application.Close()

	// --- HTTP Server ---
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           application.Handler(prometheus.DefaultGatherer),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      application.RequestTimeout() + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful Shutdown
	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Error("Could not listen on port", zap.String("port", cfg.ServerPort), zap.Error(err))
		return
	case sig := <-quit:
		log.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exiting")
}
