package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"payflow/internal/approval"
	"payflow/internal/audit"
	"payflow/internal/chatapi"
	"payflow/internal/classify"
	"payflow/internal/config"
	"payflow/internal/db"
	"payflow/internal/extract"
	"payflow/internal/ingest"
	"payflow/internal/middleware"
	"payflow/internal/salary"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	configPath := os.Getenv("CONFIG_FILE")
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err), zap.String("path", configPath))
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("config invalid", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
	}

	auditSvc := audit.New(pool, logger)
	chatClient := chatapi.New(cfg.Chat.BaseURL, cfg.Chat.Token, &http.Client{Timeout: 10 * time.Second})

	classifier := classify.WithThreadInheritance(classify.NewGPTClassifier(
		cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.MaxTokens, cfg.OpenAI.Temperature, logger))
	extractor := extract.NewGPTExtractor(
		cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.MaxTokens, cfg.OpenAI.Temperature, logger)

	salaryService := salary.NewService(salary.NewStore(pool), extractor, logger)
	pipeline := ingest.NewPipeline(ingest.NewStore(pool), chatClient, classifier, salaryService, auditSvc, logger)

	approvalStore := approval.NewStore(pool)
	approvalService := approval.NewService(approvalStore, salary.NewNoticeWriter(cfg.NoticeDir), logger)

	processorCtx, stopProcessor := context.WithCancel(ctx)
	defer stopProcessor()
	approval.NewProcessor(approvalService, approvalStore, cfg.Processor.Interval, cfg.Processor.BatchSize, logger).
		Start(processorCtx)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	ingest.NewHandler(pipeline).RegisterRoutes(router)
	router.Route("/api/v1", func(r chi.Router) {
		approval.NewHandler(approvalService).RegisterRoutes(r)
	})

	logger.Info("payflow server listening", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
