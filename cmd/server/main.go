package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"nodeacademy/internal/achievement"
	"nodeacademy/internal/catalog"
	"nodeacademy/internal/config"
	"nodeacademy/internal/database"
	"nodeacademy/internal/handlers"
	"nodeacademy/internal/logger"
	"nodeacademy/internal/repository"
	"nodeacademy/internal/security"
	"nodeacademy/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	logger.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.NewContext(ctx, log)

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	log.Info("database connection established", zap.String("type", cfg.DatabaseType))

	applied, err := db.RunMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("migrations completed", zap.Strings("applied", applied))

	lessons, err := catalog.Load(cfg.LessonsPath)
	if err != nil {
		return fmt.Errorf("failed to load lessons: %w", err)
	}
	log.Info("lesson catalog loaded", zap.Int("lessons", lessons.Count()))

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)

	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize email service: %w", err)
	}

	// Initialize services
	tokens := security.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(userRepo, tokens, emailService)
	evaluator := achievement.NewEvaluator(progressRepo, achievementRepo)
	progressService := service.NewProgressService(progressRepo, achievementRepo, userRepo, lessons, evaluator, emailService)

	proxies, err := security.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}
	limiter := security.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	go limiter.Run(ctx, 5*time.Minute)

	router := handlers.NewRouter(handlers.RouterConfig{
		Logger:      log,
		CORSOrigins: cfg.CORSOrigins,
		Middleware:  handlers.NewMiddleware(authService, limiter, proxies),
		Auth:        handlers.NewAuthHandler(authService),
		Users:       handlers.NewUserHandler(authService, progressService),
		Lessons:     handlers.NewLessonHandler(lessons, progressService),
		Health:      handlers.NewHealthHandler(db),
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}
