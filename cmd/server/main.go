package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shadow-TermDev/whats-links-backend/internal/config"
	"github.com/Shadow-TermDev/whats-links-backend/internal/handlers"
	"github.com/Shadow-TermDev/whats-links-backend/internal/repository"
	"github.com/Shadow-TermDev/whats-links-backend/internal/services"
	"github.com/Shadow-TermDev/whats-links-backend/internal/token"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func Run(ctx context.Context) error {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Setup Logger
	var handler slog.Handler
	if cfg.AppEnv == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// 3. Initialize Storage Engine
	engine, err := repository.NewEngine(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer engine.Close()

	if err := engine.Initialize(); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := engine.SeedAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	if err := engine.Persist(); err != nil {
		return fmt.Errorf("failed to persist store: %w", err)
	}

	// 4. Initialize Services
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is not set; every authenticated operation will fail")
	}
	tokens := token.NewManager(cfg.JWTSecret)
	directory := services.NewDirectoryService(engine, tokens, logger)
	rateLimiter := services.NewIPRateLimiter(5, 10, logger)

	// 5. Initialize Handler
	h := handlers.NewHandler(cfg, logger, directory, tokens)

	// 6. Setup Router
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := h.SetupRouter(rateLimiter)

	// 7. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	rateLimiter.StartCleanup(workerCtx, 10*time.Minute)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exiting")
	return nil
}
