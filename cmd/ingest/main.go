package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/spivot-hq/spivot/backend-go/internal/app"
	"github.com/spivot-hq/spivot/backend-go/internal/config"
	"github.com/spivot-hq/spivot/backend-go/internal/drive"
	"github.com/spivot-hq/spivot/backend-go/internal/scheduler"
	"github.com/spivot-hq/spivot/backend-go/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.Log.Level)
	logger.SetFormat(cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	driveService, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Google Drive service")
	}

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise application")
	}
	defer application.Close()

	ingestService := drive.NewIngestService(driveService, application.Cashflow)
	watcher := drive.NewWatcher(driveService, ingestService)
	userID := cfg.App.DefaultUserID

	sched := scheduler.New()
	if cfg.Drive.SyncSpec != "" && cfg.Drive.FolderPath != "" {
		err := sched.Register("drive-sync", cfg.Drive.SyncSpec, func(ctx context.Context) error {
			results, err := watcher.Sync(ctx, userID, cfg.Drive.FolderPath)
			if err != nil {
				return err
			}
			log.Info().Int("files", len(results)).Str("folder", cfg.Drive.FolderPath).Msg("Drive sync finished")
			return nil
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule drive sync")
		}
		sched.Start()
	}

	r := mux.NewRouter()
	drive.NewHandler(driveService, ingestService, watcher, userID, cfg.Drive.FolderPath).RegisterRoutes(r)
	r.Handle("/metrics", application.Metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:         ":" + cfg.Drive.Port,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	go func() {
		log.Info().Str("port", cfg.Drive.Port).Msg("Ingest server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Ingest server failed")
		}
	}()

	<-ctx.Done()
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Ingest server forced to shutdown")
	}
}
