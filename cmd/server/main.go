package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nevtik/eduvate-backend/internal/config"
	"github.com/nevtik/eduvate-backend/internal/database"
	"github.com/nevtik/eduvate-backend/internal/handler"
	"github.com/nevtik/eduvate-backend/internal/logger"
	"github.com/nevtik/eduvate-backend/internal/middleware"
	"github.com/nevtik/eduvate-backend/internal/repository"
	"github.com/nevtik/eduvate-backend/internal/router"
	"github.com/nevtik/eduvate-backend/internal/service"
	"github.com/nevtik/eduvate-backend/internal/validator"
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
		Msg("Starting Eduvate Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	db, err := database.NewPostgresDB(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, userRepo)
	userService := service.NewUserService(userRepo)
	storageService := service.NewStorageService(cfg)
	taskService := service.NewTaskService(taskRepo, submissionRepo, storageService, log)
	quizService := service.NewQuizService(quizRepo, attemptRepo, log)
	attemptService := service.NewAttemptService(attemptRepo, quizRepo, log)
	rankingService := service.NewRankingService(userRepo, submissionRepo, attemptRepo, settingRepo, log)
	attendanceService := service.NewAttendanceService(attendanceRepo, userRepo, cfg, log)
	materialService := service.NewMaterialService(materialRepo, storageService, log)
	statsService := service.NewStatsService(userRepo, taskRepo, quizRepo, materialRepo, submissionRepo, attemptRepo, attendanceRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		User:       handler.NewUserHandler(userService, storageService),
		Task:       handler.NewTaskHandler(taskService),
		Quiz:       handler.NewQuizHandler(quizService),
		Attempt:    handler.NewAttemptHandler(attemptService),
		Ranking:    handler.NewRankingHandler(rankingService),
		Attendance: handler.NewAttendanceHandler(attendanceService),
		Material:   handler.NewMaterialHandler(materialService),
		Stats:      handler.NewStatsHandler(statsService),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	respCache := middleware.NewResponseCache(rdb, cfg.ResponseCacheTTL, log)
	r := router.SetupRouter(authService, handlers, respCache, cfg)

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
