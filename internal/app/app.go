// Package app assembles the service graph shared by the binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/spivot-hq/spivot/backend-go/internal/api"
	"github.com/spivot-hq/spivot/backend-go/internal/cache"
	"github.com/spivot-hq/spivot/backend-go/internal/config"
	"github.com/spivot-hq/spivot/backend-go/internal/events"
	"github.com/spivot-hq/spivot/backend-go/internal/ocr"
	"github.com/spivot-hq/spivot/backend-go/internal/repository"
	"github.com/spivot-hq/spivot/backend-go/internal/repository/postgres"
	"github.com/spivot-hq/spivot/backend-go/internal/service"
	"github.com/spivot-hq/spivot/backend-go/internal/storage"
	"github.com/spivot-hq/spivot/backend-go/pkg/metrics"
)

// App owns every long-lived dependency.
type App struct {
	Config    *config.Config
	DB        *postgres.DB
	Store     *repository.Store
	Cache     cache.AnalysisCache
	Objects   storage.ObjectStorage
	Extractor ocr.Extractor
	Events    events.Publisher
	Metrics   *metrics.Recorder
	Engine    *service.Engine

	Cashflow  *service.CashflowService
	Inventory *service.InventoryService
	Forecast  *service.ForecastService
	Dashboard *service.DashboardService
	Users     *service.UserService
	Documents *service.DocumentService
	AgentLogs *service.AgentLogService
	Sweep     *service.LiquiditySweep

	closers []func() error
}

// New connects to Postgres, runs migrations and wires the services.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	a, err := Wire(ctx, cfg, postgres.NewStore(db))
	if err != nil {
		db.Close()
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, db.Close)
	return a, nil
}

// Wire builds the services on top of store. Optional backends fall back to
// their local or no-op variants when disabled in cfg.
func Wire(ctx context.Context, cfg *config.Config, store *repository.Store) (*App, error) {
	a := &App{Config: cfg, Store: store, Metrics: metrics.New()}

	analysisCache, err := cache.NewAnalysisCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("Analysis cache unavailable, continuing without it")
		analysisCache = cache.NewNoopAnalysisCache()
	}
	a.Cache = analysisCache
	if closer, ok := analysisCache.(io.Closer); ok {
		a.closers = append(a.closers, closer.Close)
	}

	if cfg.Storage.Enabled {
		client, err := storage.NewMinioClient(ctx, cfg.Storage)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("object storage: %w", err)
		}
		a.Objects = client
	} else {
		local, err := storage.NewLocalStorage(cfg.App.UploadDir)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("local storage: %w", err)
		}
		a.Objects = local
	}

	a.Extractor = ocr.NewDisabledExtractor()
	if cfg.OCR.Enabled {
		gemini, err := ocr.NewGeminiExtractor(ctx, cfg.OCR)
		if err != nil {
			log.Warn().Err(err).Msg("Document extraction unavailable, uploads will be marked failed")
		} else {
			a.Extractor = gemini
			a.closers = append(a.closers, gemini.Close)
		}
	}

	publisher, err := events.New(cfg.Kafka, a.Metrics)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("event publisher: %w", err)
	}
	a.Events = publisher
	a.closers = append(a.closers, publisher.Close)

	seed := cfg.Engine.ForecastSeed(time.Now())
	a.Engine = service.NewEngine(cfg.Engine, rand.NewPCG(seed, seed))

	a.AgentLogs = service.NewAgentLogService(store.AgentLogs, a.Metrics)
	a.Cashflow = service.NewCashflowService(store.Transactions, store.VendorPayments, a.Cache, a.Engine, a.Events, a.Metrics)
	a.Forecast = service.NewForecastService(store.Users, store.Transactions, a.Engine, a.Metrics)
	a.Inventory = service.NewInventoryService(store.Inventory, a.Cache, a.AgentLogs, a.Forecast, a.Engine, a.Events, a.Metrics)
	a.Users = service.NewUserService(store.Users)
	a.Dashboard = service.NewDashboardService(store.Users, store.Inventory, a.Cashflow, a.Cache, a.Metrics)
	a.Documents = service.NewDocumentService(store.Documents, a.Objects, a.Extractor, a.AgentLogs, a.Events, a.Metrics)
	a.Sweep = service.NewLiquiditySweep(store.Users, a.Cashflow, a.AgentLogs, a.Events)
	a.Sweep.SetWorkers(cfg.Scheduler.SweepWorkers)

	return a, nil
}

// Services exposes the HTTP-facing subset.
func (a *App) Services() *api.Services {
	return &api.Services{
		Cashflow:  a.Cashflow,
		Inventory: a.Inventory,
		Forecast:  a.Forecast,
		Dashboard: a.Dashboard,
		Documents: a.Documents,
		AgentLogs: a.AgentLogs,
		Engine:    a.Engine,
		Users:     a.Users,
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
