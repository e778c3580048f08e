package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rs/zerolog"
	"github.com/studyvault/studyvault-backend/internal/config"
	"github.com/studyvault/studyvault-backend/internal/database"
	"github.com/studyvault/studyvault-backend/internal/generator"
	"github.com/studyvault/studyvault-backend/internal/handler"
	"github.com/studyvault/studyvault-backend/internal/logger"
	"github.com/studyvault/studyvault-backend/internal/repository"
	"github.com/studyvault/studyvault-backend/internal/router"
	"github.com/studyvault/studyvault-backend/internal/service"
	"github.com/studyvault/studyvault-backend/internal/storage"
	"github.com/studyvault/studyvault-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting StudyVault Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Connect to Object Storage ─────────────────────────────────────
	store, err := storage.NewMinioStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MinIO")
	}
	log.Info().Str("bucket", cfg.MinioBucket).Msg("Object storage ready")

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	folderRepo := repository.NewFolderRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	testRepo := repository.NewTestRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)

	// ─── Initialize Question Generators ────────────────────────────────
	// Without an API key the AI strategy is unavailable and every
	// generation request falls back to the synthetic factory.
	var aiGen service.QuestionGenerator
	if cfg.OpenAIAPIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
		if cfg.OpenAIBaseURL != "" {
			clientCfg.BaseURL = cfg.OpenAIBaseURL
		}
		client := openai.NewClientWithConfig(clientCfg)
		aiGen = generator.NewAIGenerator(client, cfg.OpenAIModel, cfg.OpenAIMaxOutputTokens, log)
		log.Info().Str("model", cfg.OpenAIModel).Msg("AI question generation enabled")
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set, AI question generation disabled")
	}
	fakeFactory := generator.NewFakeFactory(nil)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, userRepo, log)
	folderService := service.NewFolderService(folderRepo, log)
	documentService := service.NewDocumentService(cfg, folderRepo, documentRepo, chunkRepo, store, log)
	testService := service.NewTestService(folderRepo, documentRepo, chunkRepo, testRepo, attemptRepo, aiGen, fakeFactory, service.NewRedisCache(rdb), log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService, userRepo),
		Folder:   handler.NewFolderHandler(folderService),
		Document: handler.NewDocumentHandler(cfg, documentService),
		Test:     handler.NewTestHandler(testService),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
