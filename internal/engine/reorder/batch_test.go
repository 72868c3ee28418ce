package reorder_test

import (
	"testing"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchOptimize_Empty(t *testing.T) {
	orders, err := newOptimizer().BatchOptimize(nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestBatchOptimize_KeepsInputOrderAndSkipsHealthy(t *testing.T) {
	vendor := "Acme Mills"
	items := []domain.InventoryItem{
		{SKU: "C", Name: "Cumin", CurrentStock: 5, LeadTimeDays: 7, UnitCost: 2},
		{SKU: "B", Name: "Barley", CurrentStock: 500, LeadTimeDays: 7, UnitCost: 1},
		{SKU: "A", Name: "Atta", CurrentStock: 10, LeadTimeDays: 7, UnitCost: 3, PreferredVendor: &vendor},
	}
	demand := map[string]float64{"C": 300, "B": 300, "A": 300}

	orders, err := newOptimizer().BatchOptimize(items, demand)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, "C", orders[0].SKU)
	assert.Equal(t, "A", orders[1].SKU)
	require.NotNil(t, orders[1].SuggestedVendor)
	assert.Equal(t, vendor, *orders[1].SuggestedVendor)
	assert.Nil(t, orders[0].SuggestedVendor)
}

func TestBatchOptimize_FallbackDemand(t *testing.T) {
	// No forecast: demand = 60 × 0.5 = 30 over 30 days -> 1/day,
	// reorder point with a 60 day lead time = 63 > 60.
	items := []domain.InventoryItem{{SKU: "X", CurrentStock: 60, LeadTimeDays: 60}}

	orders, err := newOptimizer().BatchOptimize(items, map[string]float64{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 10.0, orders[0].Quantity) // 70 days × 1/day - 60
	assert.Equal(t, domain.UrgencyLow, orders[0].Urgency)
}

func TestBatchAlerts(t *testing.T) {
	items := []domain.InventoryItem{
		{SKU: "A", Name: "Atta", CurrentStock: 10, LeadTimeDays: 7},
		{SKU: "B", Name: "Barley", CurrentStock: 500, LeadTimeDays: 7},
	}
	alerts, err := newOptimizer().BatchAlerts(items, map[string]float64{"A": 300, "B": 300})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Atta", alerts[0].Name)
	assert.Equal(t, 100.0, alerts[0].ReorderPoint)
}

func TestBatchOptimize_PropagatesInvalidItem(t *testing.T) {
	items := []domain.InventoryItem{{SKU: "BAD", CurrentStock: -3, LeadTimeDays: 7}}

	_, err := newOptimizer().BatchOptimize(items, nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "sku BAD")
}
