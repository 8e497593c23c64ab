package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"

	_ "github.com/johnquangdev/interview-assistant/docs"
	"github.com/johnquangdev/interview-assistant/internal/adapter/handler"
	"github.com/johnquangdev/interview-assistant/internal/adapter/repository"
	"github.com/johnquangdev/interview-assistant/internal/infrastructure/cache"
	"github.com/johnquangdev/interview-assistant/internal/infrastructure/database"
	"github.com/johnquangdev/interview-assistant/internal/infrastructure/external/livekit"
	"github.com/johnquangdev/interview-assistant/internal/infrastructure/storage"
	"github.com/johnquangdev/interview-assistant/internal/usecase/interview"
	"github.com/johnquangdev/interview-assistant/pkg/ai"
	"github.com/johnquangdev/interview-assistant/pkg/config"
	"github.com/johnquangdev/interview-assistant/pkg/jwt"
	"github.com/johnquangdev/interview-assistant/pkg/logger"
	pkgvalidator "github.com/johnquangdev/interview-assistant/pkg/validator"
)

// @title           Interview Assistant API
// @version         1.0
// @description     Voice interview orchestration with live answer evaluation and canonical scoring

// @BasePath  /v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Server.LogJSON, cfg.Server.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx := context.Background()

	// Database
	db, err := database.NewPostgresDB(cfg, zlog)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.CloseDB(db); err != nil {
			zlog.Warn("failed to close database", zap.Error(err))
		}
	}()

	if cfg.Database.Migrate {
		n, err := database.Migrate(db, migrate.Up, 0)
		if err != nil {
			return err
		}
		zlog.Info("migrations applied", zap.Int("count", n))
	}

	// Redis
	redisClient, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// Object storage
	var archive interview.Archive
	if cfg.Storage.Enabled {
		minioClient, err := storage.NewMinIOClient(ctx, &cfg.Storage)
		if err != nil {
			return err
		}
		archive = minioClient
	} else {
		zlog.Warn("object storage disabled, reports are not archived")
	}

	// LiveKit
	livekitClient := livekit.NewClient(cfg.LiveKit.URL, cfg.LiveKit.APIKey, cfg.LiveKit.APISecret, cfg.LiveKit.Mock)
	if cfg.LiveKit.Mock {
		zlog.Warn("LiveKit running in mock mode")
	}

	// Scoring
	scorer := ai.NewScorer(newCompleter(cfg))
	var transcriber ai.RecordingTranscriber
	if cfg.Assembly.APIKey != "" {
		transcriber = ai.NewAssemblyAIClient(cfg.Assembly.APIKey)
	}

	bank, err := interview.LoadQuestionBank(cfg.Interview.QuestionBankPath)
	if err != nil {
		zlog.Warn("question bank not loaded, interviews must carry their questions",
			zap.String("path", cfg.Interview.QuestionBankPath), zap.Error(err))
	}

	tickets := jwt.NewManager(cfg.Stream.TicketSecret, cfg.Stream.TicketTTL)

	service := interview.NewService(interview.Dependencies{
		Sessions:        repository.NewInterviewSessionRepository(db),
		Transcripts:     repository.NewTranscriptRepository(db),
		LiveEvaluations: repository.NewLiveEvaluationRepository(db),
		Reports:         repository.NewReportRepository(db),
		Credentials:     interview.NewCredentialResolver(repository.NewCredentialRepository(db), cfg.Scoring.CredentialTTL),
		Scorer:          scorer,
		Transcriber:     transcriber,
		LiveKit:         livekitClient,
		Archive:         archive,
		Lock:            cache.NewCompletionLock(redisClient, cfg.Redis.LockTTL),
		Cache:           cache.NewEvaluationCache(redisClient, cfg.Redis.EvaluationTTL),
		Tickets:         tickets,
		Bank:            bank,
		Interview:       cfg.Interview,
		LiveKitCfg:      cfg.LiveKit,
		Storage:         cfg.Storage,
		Scoring:         cfg.Scoring,
		Logger:          zlog,
	})

	// HTTP
	e := newEcho(cfg)
	router := handler.NewRouter(cfg, tickets,
		handler.NewInterviewHandler(service, zlog),
		handler.NewStreamHandler(service, cfg.Server.AllowedOrigins, cfg.Stream.ReadLimit, zlog),
		handler.NewWebhookHandler(service, cfg.LiveKit.APIKey, cfg.LiveKit.APISecret, cfg.LiveKit.UnsignedWebhook, zlog),
	)
	router.Setup(e)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		zlog.Info("starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
			zap.String("scoring_provider", scorer.Provider()),
		)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}

	zlog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}
	if err := service.Shutdown(shutdownCtx); err != nil {
		zlog.Error("live sessions did not stop cleanly", zap.Error(err))
	}

	zlog.Info("server stopped gracefully")
	return nil
}

func newEcho(cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${id} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Server.ReadHeaderTimeout = 10 * time.Second
	return e
}

func newCompleter(cfg *config.Config) ai.Completer {
	if strings.EqualFold(cfg.Scoring.Provider, "gemini") {
		return ai.NewGeminiClient(cfg.Scoring.GeminiModel, "")
	}
	return ai.NewGroqClient(cfg.Scoring.GroqBaseURL, cfg.Scoring.GroqModel, cfg.Scoring.Timeout)
}
