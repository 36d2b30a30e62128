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
	"github.com/hadith-similarity-search/internal/handlers"
	"github.com/hadith-similarity-search/internal/logging"
	"github.com/hadith-similarity-search/internal/metrics"
	"github.com/hadith-similarity-search/internal/middleware"
	"github.com/hadith-similarity-search/internal/repository"
	"github.com/hadith-similarity-search/internal/repository/postgres"
	"github.com/hadith-similarity-search/internal/repository/vertex"
	"github.com/hadith-similarity-search/internal/services"
	"github.com/hadith-similarity-search/internal/validation"
	"github.com/hadith-similarity-search/pkg/schema/db"
	pkgservices "github.com/hadith-similarity-search/pkg/schema/services"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
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
	collector := metrics.NewCollector(registry, "api")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.GetValidator()

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.Metrics(collector))
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	// Initialize PostgreSQL
	ctx := context.Background()
	if err := db.InitPostgres(ctx); err != nil {
		logger.Fatal("failed to initialize PostgreSQL", zap.Error(err))
	}
	logger.Info("database initialization complete")

	pgDB := db.GetPostgres()

	hadithRepo := postgres.NewHadithRepository(pgDB)
	sourceRepo := postgres.NewSourceRepository(pgDB)

	// Create vector search repository based on configuration
	var vectorRepo repository.VectorSearchRepository
	var vertexRepo *vertex.VectorSearchRepository // For cleanup

	switch cfg.VectorBackend {
	case "vertex":
		logger.Info("using Vertex AI Vector Search backend")
		vertexCfg := vertex.Config{
			ProjectID:            cfg.VertexProjectID,
			Location:             cfg.VertexLocation,
			IndexEndpointID:      cfg.VertexIndexEndpointID,
			DeployedIndexID:      cfg.VertexDeployedIndexID,
			PublicEndpointDomain: cfg.VertexPublicEndpointDomain,
		}
		vertexRepo, err = vertex.NewVectorSearchRepository(ctx, vertexCfg, pgDB)
		if err != nil {
			logger.Fatal("failed to create Vertex AI vector repository", zap.Error(err))
		}
		vectorRepo = vertexRepo
	default:
		logger.Info("using pgvector backend")
		vectorRepo = postgres.NewVectorSearchRepository(pgDB)
	}

	embeddingsSvc := pkgservices.GetEmbeddingsService()
	if err := pkgservices.GetInitError(); err != nil {
		logger.Fatal("failed to initialize embeddings service", zap.Error(err))
	}

	vectorSearchSvc := services.NewVectorSearchService(vectorRepo, embeddingsSvc)
	catalogSvc := services.NewCatalogService(hadithRepo, sourceRepo)

	api := e.Group(cfg.APIPrefix)

	handlers.NewHealthHandler(pgDB).RegisterRoutes(api)
	handlers.NewSearchHandler(vectorSearchSvc, logger).RegisterRoutes(api, middleware.RateLimiter(cfg.SearchRateLimit))
	handlers.NewHadithHandler(catalogSvc, logger).RegisterRoutes(api)

	e.GET("/metrics", echo.WrapHandler(metrics.Handler(registry)))
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"name":    cfg.APITitle,
			"version": cfg.APIVersion,
			"status":  "running",
		})
	})

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		logger.Info("starting server",
			zap.String("name", cfg.APITitle),
			zap.String("version", cfg.APIVersion),
			zap.String("addr", addr),
			zap.String("vector_backend", cfg.VectorBackend))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("error shutting down server", zap.Error(err))
	}

	if err := embeddingsSvc.Close(); err != nil {
		logger.Error("error closing embeddings client", zap.Error(err))
	}

	if err := db.ClosePostgres(); err != nil {
		logger.Error("error closing PostgreSQL", zap.Error(err))
	}

	if vertexRepo != nil {
		if err := vertexRepo.Close(); err != nil {
			logger.Error("error closing Vertex AI client", zap.Error(err))
		}
	}

	logger.Info("server stopped")
}
