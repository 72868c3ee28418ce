package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/spivot-hq/spivot/backend-go/internal/cache"
	"github.com/spivot-hq/spivot/backend-go/internal/domain"
	"github.com/spivot-hq/spivot/backend-go/internal/engine/forecast"
	"github.com/spivot-hq/spivot/backend-go/internal/events"
	"github.com/spivot-hq/spivot/backend-go/internal/repository"
	"github.com/spivot-hq/spivot/backend-go/pkg/metrics"
)

const (
	// reorder_level / 10 is taken as daily usage for the alerts listing.
	alertDemandDivisor = 10
	alertDemandDays    = 30

	// Plans with at least this many orders are logged as warnings.
	warningOrderCount = 3
)

// OptimizationResult is the reorder plan produced for a user.
type OptimizationResult struct {
	Orders             []domain.PurchaseOrderDraft `json:"orders"`
	TotalEstimatedCost float64                     `json:"total_estimated_cost"`
	ForecastTotal      float64                     `json:"forecast_total_demand"`
}

type InventoryService struct {
	items     repository.InventoryRepository
	cache     cache.AnalysisCache
	agentLogs *AgentLogService
	forecasts *ForecastService
	engine    *Engine
	events    events.Publisher
	metrics   *metrics.Recorder
}

func NewInventoryService(
	items repository.InventoryRepository,
	cacheImpl cache.AnalysisCache,
	agentLogs *AgentLogService,
	forecasts *ForecastService,
	engine *Engine,
	publisher events.Publisher,
	rec *metrics.Recorder,
) *InventoryService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnalysisCache()
	}
	if publisher == nil {
		publisher = events.NewLogPublisher(rec)
	}
	return &InventoryService{
		items:     items,
		cache:     cacheImpl,
		agentLogs: agentLogs,
		forecasts: forecasts,
		engine:    engine,
		events:    publisher,
		metrics:   rec,
	}
}

func (s *InventoryService) ListItems(ctx context.Context, userID int64) ([]domain.InventoryItem, error) {
	items, err := s.items.ListItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = make([]domain.InventoryItem, 0)
	}
	return items, nil
}

func (s *InventoryService) GetItem(ctx context.Context, userID, id int64) (*domain.InventoryItem, error) {
	return s.items.GetItem(ctx, userID, id)
}

// CreateItem inserts the item or replaces the existing row with the same SKU.
func (s *InventoryService) CreateItem(ctx context.Context, item *domain.InventoryItem) error {
	item.SKU = strings.TrimSpace(item.SKU)
	item.Name = strings.TrimSpace(item.Name)
	if err := validateItem(*item); err != nil {
		return err
	}
	if item.LastUpdated.IsZero() {
		item.LastUpdated = time.Now().UTC()
	}
	if err := s.items.CreateItem(ctx, item); err != nil {
		return err
	}
	s.invalidate(ctx, item.UserID)
	return nil
}

func (s *InventoryService) DeleteItem(ctx context.Context, userID, id int64) error {
	if err := s.items.DeleteItem(ctx, userID, id); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// invalidate drops cached dashboard figures that depend on stock levels.
func (s *InventoryService) invalidate(ctx context.Context, userID int64) {
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("inventory: cache invalidate failed")
	}
}

// Alerts lists items below their reorder point using a demand estimate
// derived from each item's reorder level.
func (s *InventoryService) Alerts(ctx context.Context, userID int64) ([]domain.InventoryAlert, error) {
	items, err := s.items.ListItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	demand := make(map[string]float64, len(items))
	for _, item := range items {
		demand[item.SKU] = item.ReorderLevel / alertDemandDivisor * alertDemandDays
	}

	start := time.Now()
	alerts, err := s.engine.Reorder.BatchAlerts(items, demand)
	s.metrics.ObserveEngine("reorder.alerts", start, err)
	if err != nil {
		return nil, fmt.Errorf("inventory alerts for user %d: %w", userID, err)
	}
	return alerts, nil
}

// Optimize forecasts demand for the user's business, splits it evenly
// across items and drafts purchase orders for every item that needs one.
func (s *InventoryService) Optimize(ctx context.Context, userID int64) (OptimizationResult, error) {
	items, err := s.items.ListItems(ctx, userID)
	if err != nil {
		return OptimizationResult{}, err
	}

	fc, err := s.forecasts.Demand(ctx, userID, s.engine.Reorder.Config().DefaultForecastDays)
	if err != nil {
		return OptimizationResult{}, err
	}
	total := forecast.TotalDemand(fc)

	demand := make(map[string]float64, len(items))
	if len(items) > 0 {
		share := total / float64(len(items))
		for _, item := range items {
			demand[item.SKU] = share
		}
	}

	start := time.Now()
	orders, err := s.engine.Reorder.BatchOptimize(items, demand)
	s.metrics.ObserveEngine("reorder.optimize", start, err)
	if err != nil {
		return OptimizationResult{}, fmt.Errorf("optimize inventory for user %d: %w", userID, err)
	}

	result := OptimizationResult{Orders: orders, ForecastTotal: domain.Round2(total)}
	for _, o := range orders {
		result.TotalEstimatedCost += o.EstimatedCost
	}
	result.TotalEstimatedCost = domain.Round2(result.TotalEstimatedCost)

	s.recordPlan(ctx, userID, result)
	return result, nil
}

// OptimizeDemand drafts orders for the SKUs named in demand, using the
// caller's demand figures instead of a forecast. Unknown SKUs are ignored.
func (s *InventoryService) OptimizeDemand(ctx context.Context, userID int64, demand map[string]float64) (OptimizationResult, error) {
	if len(demand) == 0 {
		return OptimizationResult{}, domain.InvalidInput("demand", "must name at least one sku")
	}
	skus := make([]string, 0, len(demand))
	var total float64
	for sku, qty := range demand {
		if qty < 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
			return OptimizationResult{}, domain.InvalidInput("demand", "sku %s must be non-negative, got %v", sku, qty)
		}
		skus = append(skus, sku)
		total += qty
	}
	sort.Strings(skus)

	items, err := s.items.GetItemsBySKU(ctx, userID, skus)
	if err != nil {
		return OptimizationResult{}, err
	}

	start := time.Now()
	orders, err := s.engine.Reorder.BatchOptimize(items, demand)
	s.metrics.ObserveEngine("reorder.optimize", start, err)
	if err != nil {
		return OptimizationResult{}, fmt.Errorf("optimize inventory for user %d: %w", userID, err)
	}

	result := OptimizationResult{Orders: orders, ForecastTotal: domain.Round2(total)}
	for _, o := range orders {
		result.TotalEstimatedCost += o.EstimatedCost
	}
	result.TotalEstimatedCost = domain.Round2(result.TotalEstimatedCost)

	s.recordPlan(ctx, userID, result)
	return result, nil
}

func (s *InventoryService) recordPlan(ctx context.Context, userID int64, result OptimizationResult) {
	severity := domain.SeverityInfo
	if len(result.Orders) >= warningOrderCount {
		severity = domain.SeverityWarning
	}

	skus := make([]string, 0, len(result.Orders))
	for _, o := range result.Orders {
		skus = append(skus, o.SKU)
	}
	extra, _ := json.Marshal(map[string]any{
		"skus":                 skus,
		"total_estimated_cost": result.TotalEstimatedCost,
	})

	msg := fmt.Sprintf("Drafted %d purchase orders worth %.2f", len(result.Orders), result.TotalEstimatedCost)
	entry := &domain.AgentLog{
		UserID:    &userID,
		AgentName: domain.AgentQuartermaster,
		Action:    "Optimized inventory reorder plan",
		Result:    &msg,
		Severity:  severity,
		ExtraData: extra,
	}
	if err := s.agentLogs.Record(ctx, entry); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("inventory: write agent log failed")
	}

	ev, err := events.NewEvent(events.TypeReorderPlan, userID, result)
	if err == nil {
		ev.AgentName = domain.AgentQuartermaster
		ev.Severity = severity.String()
		err = s.events.Publish(ctx, ev)
	}
	if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("inventory: publish reorder plan failed")
	}
}

func validateItem(item domain.InventoryItem) error {
	switch {
	case item.SKU == "":
		return domain.InvalidInput("sku", "is required")
	case item.Name == "":
		return domain.InvalidInput("name", "is required")
	case item.CurrentStock < 0 || math.IsNaN(item.CurrentStock):
		return domain.InvalidInput("current_stock", "must be non-negative, got %v", item.CurrentStock)
	case item.ReorderLevel < 0 || math.IsNaN(item.ReorderLevel):
		return domain.InvalidInput("reorder_level", "must be non-negative, got %v", item.ReorderLevel)
	case item.LeadTimeDays < 0:
		return domain.InvalidInput("lead_time_days", "must be non-negative, got %d", item.LeadTimeDays)
	case item.UnitCost < 0 || math.IsNaN(item.UnitCost):
		return domain.InvalidInput("unit_cost", "must be non-negative, got %v", item.UnitCost)
	}
	return nil
}
