package reorder

import (
	"fmt"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
)

// BatchOptimize runs Optimize for every item and returns the drafts for the
// items that need reordering, in input order. SKUs missing from demandBySKU
// fall back to current stock × FallbackDemandRatio.
func (o *Optimizer) BatchOptimize(items []domain.InventoryItem, demandBySKU map[string]float64) ([]domain.PurchaseOrderDraft, error) {
	decisions, err := o.batch(items, demandBySKU)
	if err != nil {
		return nil, err
	}

	orders := make([]domain.PurchaseOrderDraft, 0, len(decisions))
	for _, d := range decisions {
		orders = append(orders, *d.Order)
	}
	return orders, nil
}

// BatchAlerts is BatchOptimize returning the alerts instead of the drafts.
func (o *Optimizer) BatchAlerts(items []domain.InventoryItem, demandBySKU map[string]float64) ([]domain.InventoryAlert, error) {
	decisions, err := o.batch(items, demandBySKU)
	if err != nil {
		return nil, err
	}

	alerts := make([]domain.InventoryAlert, 0, len(decisions))
	for _, d := range decisions {
		alerts = append(alerts, *d.Alert)
	}
	return alerts, nil
}

func (o *Optimizer) batch(items []domain.InventoryItem, demandBySKU map[string]float64) ([]Decision, error) {
	decisions := make([]Decision, 0, len(items))
	for _, item := range items {
		demand, ok := demandBySKU[item.SKU]
		if !ok {
			demand = item.CurrentStock * o.cfg.FallbackDemandRatio
		}

		d, err := o.Optimize(item.CurrentStock, item.LeadTimeDays, demand, o.cfg.DefaultForecastDays, ItemIdentity{
			SKU:             item.SKU,
			Name:            item.Name,
			Unit:            item.Unit,
			UnitCost:        item.UnitCost,
			SuggestedVendor: item.PreferredVendor,
		})
		if err != nil {
			return nil, fmt.Errorf("sku %s: %w", item.SKU, err)
		}
		if d.NeedsReorder {
			decisions = append(decisions, d)
		}
	}
	return decisions, nil
}
