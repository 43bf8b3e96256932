package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/team-task-board/internal/ai"
	"github.com/yukikurage/team-task-board/internal/config"
	"github.com/yukikurage/team-task-board/internal/database"
	"github.com/yukikurage/team-task-board/internal/logging"
	"github.com/yukikurage/team-task-board/internal/server"
	"github.com/yukikurage/team-task-board/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	store, err := server.NewSessionStore(cfg)
	if err != nil {
		logger.Error("failed to create session store", "store", cfg.SessionStore, "error", err)
		os.Exit(1)
	}

	// AI drafting is optional
	var drafter services.TaskDrafter
	if cfg.OpenAIAPIKey != "" {
		drafter = ai.NewDrafter(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	} else {
		logger.Warn("OPENAI_API_KEY is not set, task generation is disabled")
	}

	svc := server.NewServices(db, drafter)
	r := server.NewRouter(cfg, svc, store, db, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "addr", srv.Addr, "driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down gracefully, press Ctrl+C again to force")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("server exiting")
}
