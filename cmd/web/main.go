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

	"github.com/yukikurage/team-task-board/internal/client"
	"github.com/yukikurage/team-task-board/internal/config"
	"github.com/yukikurage/team-task-board/internal/logging"
	"github.com/yukikurage/team-task-board/internal/web"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	api := client.New(cfg.APIBaseURL, client.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}))
	store := web.NewCookieStore(cfg.CookiesPassword, cfg.IsProduction())
	r := web.NewRouter(api, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + cfg.WebPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("web UI starting", "addr", srv.Addr, "api", cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("web UI forced to shutdown", "error", err)
	}
	logger.Info("web UI exiting")
}
