// Package reorder decides when an item needs replenishment and drafts the
// purchase order.
package reorder

import (
	"math"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
)

// Config holds the reorder policy.
type Config struct {
	SafetyStockDays int
	// BufferDays is added on top of lead time and safety stock when sizing an order.
	BufferDays int
	// MinOrderDays is the minimum order size expressed in days of usage.
	MinOrderDays int
	// HighUrgencyDays and MediumUrgencyDays are exclusive upper bounds on days of stock.
	HighUrgencyDays     float64
	MediumUrgencyDays   float64
	DefaultForecastDays int
	// FallbackDemandRatio estimates demand as a share of current stock when
	// a SKU has no forecast.
	FallbackDemandRatio float64
}

func DefaultConfig() Config {
	return Config{
		SafetyStockDays:     3,
		BufferDays:          7,
		MinOrderDays:        7,
		HighUrgencyDays:     3,
		MediumUrgencyDays:   7,
		DefaultForecastDays: 30,
		FallbackDemandRatio: 0.5,
	}
}

// ItemIdentity carries the descriptive fields copied onto alerts and orders.
type ItemIdentity struct {
	SKU             string
	Name            string
	Unit            string
	UnitCost        float64
	SuggestedVendor *string
}

// Decision is the outcome for a single item. Alert and Order are set exactly
// when NeedsReorder is true.
type Decision struct {
	NeedsReorder bool
	DailyUsage   float64
	ReorderPoint float64
	Alert        *domain.InventoryAlert
	Order        *domain.PurchaseOrderDraft
}

// Optimizer is safe for concurrent use; it holds only configuration.
type Optimizer struct {
	cfg Config
}

func NewOptimizer(cfg Config) *Optimizer {
	if cfg.DefaultForecastDays <= 0 {
		cfg.DefaultForecastDays = 30
	}
	return &Optimizer{cfg: cfg}
}

func (o *Optimizer) Config() Config { return o.cfg }

// ReorderPoint = daily usage × lead time + daily usage × safety stock days.
// The result is unrounded; callers round only for display.
func (o *Optimizer) ReorderPoint(dailyUsage float64, leadTimeDays int) float64 {
	safetyStock := dailyUsage * float64(o.cfg.SafetyStockDays)
	return dailyUsage*float64(leadTimeDays) + safetyStock
}

// Optimize decides whether the item needs reordering. predictedDemand is the
// total demand expected over forecastDays.
func (o *Optimizer) Optimize(currentStock float64, leadTimeDays int, predictedDemand float64, forecastDays int, item ItemIdentity) (Decision, error) {
	switch {
	case currentStock < 0 || math.IsNaN(currentStock):
		return Decision{}, domain.InvalidInput("current_stock", "must be non-negative, got %v", currentStock)
	case leadTimeDays < 0:
		return Decision{}, domain.InvalidInput("lead_time_days", "must be non-negative, got %d", leadTimeDays)
	case predictedDemand < 0 || math.IsNaN(predictedDemand):
		return Decision{}, domain.InvalidInput("predicted_demand", "must be non-negative, got %v", predictedDemand)
	case forecastDays <= 0:
		return Decision{}, domain.InvalidInput("forecast_days", "must be positive, got %d", forecastDays)
	case item.UnitCost < 0:
		return Decision{}, domain.InvalidInput("unit_cost", "must be non-negative, got %v", item.UnitCost)
	}

	dailyUsage := predictedDemand / float64(forecastDays)
	reorderPoint := o.ReorderPoint(dailyUsage, leadTimeDays)

	decision := Decision{DailyUsage: dailyUsage, ReorderPoint: domain.Round2(reorderPoint)}
	if currentStock >= reorderPoint {
		return decision, nil
	}

	daysToCover := float64(leadTimeDays + o.cfg.SafetyStockDays + o.cfg.BufferDays)
	orderQty := math.Max(dailyUsage*daysToCover-currentStock, dailyUsage*float64(o.cfg.MinOrderDays))
	orderQty = domain.CeilQty(orderQty)
	urgency := o.urgency(currentStock, dailyUsage)

	decision.NeedsReorder = true
	decision.Alert = &domain.InventoryAlert{
		SKU:               item.SKU,
		Name:              item.Name,
		CurrentQty:        currentStock,
		ReorderPoint:      decision.ReorderPoint,
		SuggestedOrderQty: orderQty,
		Urgency:           urgency,
	}
	decision.Order = &domain.PurchaseOrderDraft{
		SKU:             item.SKU,
		ItemName:        item.Name,
		Quantity:        orderQty,
		Unit:            unitOrDefault(item.Unit),
		EstimatedCost:   domain.Round2(orderQty * item.UnitCost),
		Urgency:         urgency,
		SuggestedVendor: item.SuggestedVendor,
	}
	return decision, nil
}

// urgency tiers days of stock; zero usage means stock never runs out.
func (o *Optimizer) urgency(currentStock, dailyUsage float64) domain.Urgency {
	daysOfStock := math.Inf(1)
	if dailyUsage > 0 {
		daysOfStock = currentStock / dailyUsage
	}

	switch {
	case daysOfStock < o.cfg.HighUrgencyDays:
		return domain.UrgencyHigh
	case daysOfStock < o.cfg.MediumUrgencyDays:
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}

func unitOrDefault(unit string) string {
	if unit == "" {
		return "units"
	}
	return unit
}
