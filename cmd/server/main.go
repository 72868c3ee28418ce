package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/spivot-hq/spivot/backend-go/internal/api"
	"github.com/spivot-hq/spivot/backend-go/internal/app"
	"github.com/spivot-hq/spivot/backend-go/internal/config"
	"github.com/spivot-hq/spivot/backend-go/internal/scheduler"
	"github.com/spivot-hq/spivot/backend-go/pkg/logger"
)

var version = "dev"

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Log.Level)
	logger.SetFormat(cfg.Log.Format)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise application")
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to release resources")
		}
	}()

	sched := scheduler.New()
	if cfg.Scheduler.Enabled {
		err := sched.Register("liquidity-sweep", cfg.Scheduler.LiquiditySpec, func(ctx context.Context) error {
			report, err := application.Sweep.Run(ctx)
			if err != nil {
				return err
			}
			log.Info().
				Int("users", report.Users).
				Int("warnings", report.Warnings).
				Int("critical", report.Critical).
				Int("failed", report.Failed).
				Msg("Liquidity sweep finished")
			return nil
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule liquidity sweep")
		}
		sched.Start()
	}

	router := api.NewRouter(application.Services(), api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DefaultUserID:  cfg.App.DefaultUserID,
		Metrics:        application.Metrics,
		DB:             application.DB,
		Version:        version,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("version", version).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
