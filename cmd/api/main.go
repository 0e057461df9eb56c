//	@title			News Ingestion API
//	@version		1.0
//	@description	Thin search façade: forwards queries to a grounding AI agent, a news-aggregation API or a local Kaggle dataset, extracts the text of every result article and persists it to blob storage.
//
//	@host		localhost:8080
//	@BasePath	/

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/savramidis/news-ingestion-api/internal/agent"
	"github.com/savramidis/news-ingestion-api/internal/article"
	"github.com/savramidis/news-ingestion-api/internal/blob"
	"github.com/savramidis/news-ingestion-api/internal/config"
	appMiddleware "github.com/savramidis/news-ingestion-api/internal/middleware"
	"github.com/savramidis/news-ingestion-api/internal/search"

	_ "github.com/savramidis/news-ingestion-api/docs/swagger"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg := config.Load()

	blobClient, err := blob.NewServiceClient(context.Background(), blob.Options{
		Driver:           cfg.BlobDriver,
		AccountURL:       cfg.BlobAccountURL,
		AccessKey:        cfg.BlobAccessKey,
		SecretKey:        cfg.BlobSecretKey,
		ConnectionString: cfg.BlobConnectionString,
		Container:        cfg.BlobContainer,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("blob storage init failed")
	}

	// Wire dependencies: extraction pipeline → providers → services → handler
	extractor := article.NewExtractor(nil, logger)
	storageMgr := article.NewStorageManager(blobClient, 0, logger)
	pipeline := article.NewPipeline(extractor, storageMgr, logger)

	connection := agent.NewConnection(cfg.BingConnection, cfg.BingSearchURL, cfg.BingSearchKey, nil, logger)
	agentClient := agent.NewClient(agent.Config{
		Endpoint:     cfg.ProjectEndpoint,
		APIKey:       cfg.AgentAPIKey,
		Name:         cfg.AgentName,
		Instructions: cfg.AgentInstructions,
		Model:        cfg.AgentModel,
	}, connection, logger)
	newsClient := search.NewNewsClient(cfg.NewsAPIURL, cfg.NewsAPIKey, nil, logger)

	agentSvc := search.NewAgentService(cfg, agentClient, pipeline, logger)
	newsSvc := search.NewNewsAPIService(cfg, newsClient, pipeline, logger)
	kaggleSvc := search.NewKaggleService(cfg, cfg.KaggleDatasetPath, pipeline, logger)
	handler := search.NewHandler(agentSvc, newsSvc, kaggleSvc)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Get("/", handler.Docs)
	r.Get("/bingsearch", handler.BingSearch)
	r.Get("/newsapi", handler.NewsSearch)
	r.Post("/kaggle", handler.Kaggle)

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// Searches fetch and store every result article before responding.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("server listening")
		logger.Info().Msgf("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-quit
	logger.Info().Msg("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("forced shutdown")
	}

	logger.Info().Msg("server stopped")
}
