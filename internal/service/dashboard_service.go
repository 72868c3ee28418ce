package service

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/spivot-hq/spivot/backend-go/internal/cache"
	"github.com/spivot-hq/spivot/backend-go/internal/domain"
	"github.com/spivot-hq/spivot/backend-go/internal/repository"
	"github.com/spivot-hq/spivot/backend-go/pkg/metrics"
)

type DashboardService struct {
	users    repository.UserRepository
	items    repository.InventoryRepository
	cashflow *CashflowService
	cache    cache.AnalysisCache
	metrics  *metrics.Recorder
}

func NewDashboardService(
	users repository.UserRepository,
	items repository.InventoryRepository,
	cashflow *CashflowService,
	cacheImpl cache.AnalysisCache,
	rec *metrics.Recorder,
) *DashboardService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnalysisCache()
	}
	return &DashboardService{
		users:    users,
		items:    items,
		cashflow: cashflow,
		cache:    cacheImpl,
		metrics:  rec,
	}
}

// Metrics aggregates the headline numbers. Unknown users yield ErrNotFound.
func (s *DashboardService) Metrics(ctx context.Context, userID int64) (domain.DashboardMetrics, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return domain.DashboardMetrics{}, err
	}

	cached, ok, err := s.cache.GetDashboard(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("dashboard: cache get failed")
	}
	s.metrics.RecordCache("dashboard", ok)
	if ok {
		return *cached, nil
	}

	var (
		analysis domain.CashflowAnalysis
		score    domain.SpivotScore
		items    []domain.InventoryItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		analysis, err = s.cashflow.Analyze(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		score, err = s.cashflow.Score(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.items.ListItems(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.DashboardMetrics{}, err
	}

	m := domain.DashboardMetrics{
		CashRunwayDays: analysis.CashRunwayDays,
		SpivotScore:    score.Score,
		BurnRate:       analysis.BurnRate,
	}
	var value float64
	for _, item := range items {
		if item.CurrentStock < item.ReorderLevel {
			m.PendingOrders++
		}
		value += item.CurrentStock * item.UnitCost
	}
	m.TotalInventoryValue = domain.Round2(value)

	if err := s.cache.SetDashboard(ctx, userID, m); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("dashboard: cache set failed")
	}
	return m, nil
}

func (s *DashboardService) Cashflow(ctx context.Context, userID int64) (domain.CashflowAnalysis, error) {
	return s.cashflow.Analyze(ctx, userID)
}

func (s *DashboardService) ExpenseBreakdown(ctx context.Context, userID int64) ([]domain.ExpenseCategory, error) {
	return s.cashflow.ExpenseBreakdown(ctx, userID)
}
