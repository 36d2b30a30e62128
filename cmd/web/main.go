package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hadith-similarity-search/internal/config"
	"github.com/hadith-similarity-search/internal/logging"
	"github.com/hadith-similarity-search/internal/metrics"
	"github.com/hadith-similarity-search/internal/repository/postgres"
	"github.com/hadith-similarity-search/internal/repository/remote"
	"github.com/hadith-similarity-search/internal/services"
	"github.com/hadith-similarity-search/internal/web"
	"github.com/hadith-similarity-search/pkg/schema/db"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := config.GetConfig()

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry, "web")

	ctx := context.Background()
	if err := db.InitPostgres(ctx); err != nil {
		logger.Fatal("failed to initialize PostgreSQL", zap.Error(err))
	}
	pgDB := db.GetPostgres()

	catalog := services.NewCatalogService(
		postgres.NewHadithRepository(pgDB),
		postgres.NewSourceRepository(pgDB),
	)
	ranked := remote.NewSearchRepository(remote.Config{
		BaseURL:         cfg.SearchServiceURL,
		Timeout:         cfg.SearchTimeout,
		MaxRetries:      cfg.SearchMaxRetries,
		RetryInterval:   cfg.SearchRetryInterval,
		BreakerFailures: cfg.SearchBreakerFailures,
		BreakerTimeout:  cfg.SearchBreakerTimeout,
	}, logger, collector)
	browse := services.NewBrowseService(catalog, ranked, cfg.KeywordFallback, logger)

	handler := web.NewHandler(browse, cfg.WebTitle, cfg.PageSize, collector, logger)
	e, err := web.NewServer(handler, web.ServerOptions{
		Logger:   logger,
		Recorder: collector,
		Metrics:  metrics.Handler(registry),
		DB:       pgDB,
	})
	if err != nil {
		logger.Fatal("failed to build web server", zap.Error(err))
	}

	go func() {
		addr := fmt.Sprintf(":%s", cfg.WebPort)
		logger.Info("starting web frontend",
			zap.String("addr", addr),
			zap.String("search_service", cfg.SearchServiceURL),
			zap.Bool("keyword_fallback", cfg.KeywordFallback))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down web frontend")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("error shutting down server", zap.Error(err))
	}

	if err := db.ClosePostgres(); err != nil {
		logger.Error("error closing PostgreSQL", zap.Error(err))
	}

	logger.Info("web frontend stopped")
}
