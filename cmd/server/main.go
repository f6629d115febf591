package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edupro/proctor-backend/internal/config"
	"github.com/edupro/proctor-backend/internal/database"
	"github.com/edupro/proctor-backend/internal/generator"
	"github.com/edupro/proctor-backend/internal/handler"
	"github.com/edupro/proctor-backend/internal/logger"
	"github.com/edupro/proctor-backend/internal/repository"
	"github.com/edupro/proctor-backend/internal/router"
	"github.com/edupro/proctor-backend/internal/scoring"
	"github.com/edupro/proctor-backend/internal/service"
	"github.com/edupro/proctor-backend/internal/validator"
	"github.com/edupro/proctor-backend/internal/worker"
	"github.com/rs/zerolog"
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
		Msg("Starting EduPro Proctor Backend")

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

	// ─── Initialize Repositories ───────────────────────────────────────
	scheduleRepo := repository.NewScheduleRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	violationRepo := repository.NewViolationRepository(pool)
	guardianRepo := repository.NewGuardianRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)

	// ─── Question Generator ───────────────────────────────────────────
	gemini, err := generator.NewGeminiService(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize question generator")
	}
	defer gemini.Close()

	// ─── Initialize Services ──────────────────────────────────────────
	sinks := service.NewQueueSinks(rdb, log)
	finalizer := scoring.NewAdapter(sinks, sinks, log)

	authService := service.NewAuthService(cfg, rdb, studentRepo)
	scheduleService := service.NewScheduleService(scheduleRepo, resultRepo, rdb)
	attemptService := service.NewAttemptService(
		scheduleRepo, resultRepo,
		gemini, generator.Placeholder,
		sinks, finalizer,
		rdb, cfg.QuestionGenTimeout, log,
	)
	guardianService := service.NewGuardianService(guardianRepo)
	monitorService := service.NewMonitorService(violationRepo, resultRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Schedule: handler.NewScheduleHandler(scheduleService),
		Attempt:  handler.NewAttemptHandler(attemptService),
		Guardian: handler.NewGuardianHandler(guardianService),
		Monitor:  handler.NewMonitorHandler(rdb, monitorService, log),
		System:   handler.NewSystemHandler(pool, rdb),
		WS:       handler.NewWSHandler(attemptService, cfg, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	violationWorker := worker.NewViolationWorker(violationRepo, rdb, log)
	resultWorker := worker.NewResultWorker(resultRepo, rdb, log)
	notificationWorker := worker.NewNotificationWorker(guardianRepo, rdb, log)

	go violationWorker.Start(workerCtx)
	go resultWorker.Start(workerCtx)
	go notificationWorker.Start(workerCtx)

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

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
