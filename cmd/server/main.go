package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/adapters/trigger"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/app"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/config"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.AppEnv)

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start application")
	}
	defer a.Close()

	if cfg.SchedulerCron != "" {
		c, err := trigger.StartCron(cfg.SchedulerCron, a.Scheduler)
		if err != nil {
			logger.Fatal().Err(err).Str("spec", cfg.SchedulerCron).Msg("invalid SCHEDULER_CRON")
		}
		defer c.Stop()
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.Router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
}
