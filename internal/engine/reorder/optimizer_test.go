package reorder_test

import (
	"testing"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
	"github.com/spivot-hq/spivot/backend-go/internal/engine/reorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOptimizer() *reorder.Optimizer {
	return reorder.NewOptimizer(reorder.DefaultConfig())
}

func TestOptimize_LowStockIsHighUrgency(t *testing.T) {
	d, err := newOptimizer().Optimize(10, 7, 300, 30, reorder.ItemIdentity{
		SKU: "RICE-25", Name: "Basmati rice 25kg", Unit: "bags", UnitCost: 12.5,
	})
	require.NoError(t, err)

	assert.True(t, d.NeedsReorder)
	assert.Equal(t, 10.0, d.DailyUsage)
	assert.Equal(t, 100.0, d.ReorderPoint)
	require.NotNil(t, d.Alert)
	require.NotNil(t, d.Order)

	assert.Equal(t, domain.UrgencyHigh, d.Alert.Urgency)
	// (7 + 3 + 7) days × 10/day - 10 on hand
	assert.Equal(t, 160.0, d.Order.Quantity)
	assert.Equal(t, 2000.0, d.Order.EstimatedCost)
	assert.Equal(t, "bags", d.Order.Unit)
	assert.Equal(t, d.Order.Quantity, d.Alert.SuggestedOrderQty)
}

func TestOptimize_HealthyStock(t *testing.T) {
	d, err := newOptimizer().Optimize(100, 7, 300, 30, reorder.ItemIdentity{SKU: "A"})
	require.NoError(t, err)

	assert.False(t, d.NeedsReorder)
	assert.Nil(t, d.Alert)
	assert.Nil(t, d.Order)
}

func TestOptimize_UrgencyTiers(t *testing.T) {
	tests := []struct {
		stock float64
		want  domain.Urgency
	}{
		{stock: 29, want: domain.UrgencyHigh},   // 2.9 days
		{stock: 30, want: domain.UrgencyMedium}, // 3 days
		{stock: 69, want: domain.UrgencyMedium},
		{stock: 70, want: domain.UrgencyLow},
		{stock: 99, want: domain.UrgencyLow},
	}
	for _, tt := range tests {
		d, err := newOptimizer().Optimize(tt.stock, 7, 300, 30, reorder.ItemIdentity{})
		require.NoError(t, err)
		require.True(t, d.NeedsReorder, "stock %v", tt.stock)
		assert.Equal(t, tt.want, d.Order.Urgency, "stock %v", tt.stock)
	}
}

func TestOptimize_MinimumOneWeekOrder(t *testing.T) {
	// Without a buffer the gap is 100 - 99 = 1 unit, well below a week of usage.
	cfg := reorder.DefaultConfig()
	cfg.BufferDays = 0
	d, err := reorder.NewOptimizer(cfg).Optimize(99, 7, 300, 30, reorder.ItemIdentity{})
	require.NoError(t, err)
	require.True(t, d.NeedsReorder)
	assert.Equal(t, 70.0, d.Order.Quantity)
}

func TestOptimize_OrderNeverBelowWeekOfUsage(t *testing.T) {
	o := newOptimizer()
	for _, demand := range []float64{1, 7, 13.37, 100, 333.33, 1000} {
		for _, stock := range []float64{0, 0.5, 3, 10, 42} {
			for _, lead := range []int{0, 1, 5, 14} {
				d, err := o.Optimize(stock, lead, demand, 30, reorder.ItemIdentity{})
				require.NoError(t, err)
				if !d.NeedsReorder {
					continue
				}
				require.NotNil(t, d.Order)
				assert.GreaterOrEqual(t, d.Order.Quantity, d.DailyUsage*7)
			}
		}
	}
}

func TestOptimize_ZeroUsageNeverReorders(t *testing.T) {
	d, err := newOptimizer().Optimize(0, 7, 0, 30, reorder.ItemIdentity{})
	require.NoError(t, err)
	assert.False(t, d.NeedsReorder)
	assert.Equal(t, 0.0, d.ReorderPoint)
}

func TestOptimize_ZeroLeadTime(t *testing.T) {
	d, err := newOptimizer().Optimize(5, 0, 300, 30, reorder.ItemIdentity{})
	require.NoError(t, err)
	assert.Equal(t, 30.0, d.ReorderPoint)
	assert.True(t, d.NeedsReorder)
}

func TestOptimize_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		stock  float64
		lead   int
		demand float64
		days   int
		cost   float64
		field  string
	}{
		{name: "negative stock", stock: -1, lead: 7, demand: 30, days: 30, field: "current_stock"},
		{name: "negative lead time", stock: 1, lead: -2, demand: 30, days: 30, field: "lead_time_days"},
		{name: "negative demand", stock: 1, lead: 7, demand: -30, days: 30, field: "predicted_demand"},
		{name: "zero forecast days", stock: 1, lead: 7, demand: 30, days: 0, field: "forecast_days"},
		{name: "negative cost", stock: 1, lead: 7, demand: 30, days: 30, cost: -1, field: "unit_cost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newOptimizer().Optimize(tt.stock, tt.lead, tt.demand, tt.days, reorder.ItemIdentity{UnitCost: tt.cost})
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			field, _ := domain.InvalidField(err)
			assert.Equal(t, tt.field, field)
		})
	}
}

func TestOptimize_ComparesAgainstUnroundedReorderPoint(t *testing.T) {
	// 0.9996/day over 7 + 3 days is 9.996, which rounds to 10.00 for display.
	d, err := newOptimizer().Optimize(9.999, 7, 0.9996*30, 30, reorder.ItemIdentity{SKU: "EDGE"})
	require.NoError(t, err)
	assert.False(t, d.NeedsReorder)
	assert.Equal(t, 10.0, d.ReorderPoint)

	d, err = newOptimizer().Optimize(9.99, 7, 0.9996*30, 30, reorder.ItemIdentity{SKU: "EDGE"})
	require.NoError(t, err)
	assert.True(t, d.NeedsReorder)
	require.NotNil(t, d.Alert)
	assert.Equal(t, 10.0, d.Alert.ReorderPoint)
}
