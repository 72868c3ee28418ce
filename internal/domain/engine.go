package domain

import "time"

// CashflowAnalysis is the liquidity summary over the trailing window.
type CashflowAnalysis struct {
	BurnRate       float64    `json:"burn_rate"`
	CashRunwayDays int        `json:"cash_runway_days"`
	CurrentBalance float64    `json:"current_balance"`
	AlertLevel     AlertLevel `json:"alert_level"`
	MonthlyInflow  float64    `json:"monthly_inflow"`
	MonthlyOutflow float64    `json:"monthly_outflow"`
}

// BalanceProjection is the projected balance for one future day.
type BalanceProjection struct {
	Day              int       `json:"day"`
	Date             time.Time `json:"date"`
	ProjectedBalance float64   `json:"projected_balance"`
}

// InventoryAlert is emitted only for items that need reordering.
type InventoryAlert struct {
	SKU               string  `json:"sku"`
	Name              string  `json:"name"`
	CurrentQty        float64 `json:"current_qty"`
	ReorderPoint      float64 `json:"reorder_point"`
	SuggestedOrderQty float64 `json:"suggested_order_qty"`
	Urgency           Urgency `json:"urgency"`
}

// PurchaseOrderDraft is a reorder recommendation, not a committed order.
type PurchaseOrderDraft struct {
	SKU             string  `json:"sku"`
	ItemName        string  `json:"item_name"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
	EstimatedCost   float64 `json:"estimated_cost"`
	Urgency         Urgency `json:"urgency"`
	SuggestedVendor *string `json:"suggested_vendor,omitempty"`
}

// SpivotScore is the composite credit score with its normalized components.
type SpivotScore struct {
	Score                int       `json:"score"`
	CashConsistency      float64   `json:"cash_consistency"`
	RevenueGrowth        float64   `json:"revenue_growth"`
	RevenueGrowthPct     float64   `json:"revenue_growth_pct"`
	VendorPaymentHistory float64   `json:"vendor_payment_history"`
	RiskLevel            RiskLevel `json:"risk_level"`
}

// DemandPoint is a historical or forecast demand observation.
type DemandPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Label string    `json:"label,omitempty"`
}

// DemandForecast is an N-day heuristic demand forecast.
type DemandForecast struct {
	ForecastPeriodDays int           `json:"forecast_period_days"`
	PredictedDemand    []DemandPoint `json:"predicted_demand"`
	MarketSentiment    float64       `json:"market_sentiment"`
	Confidence         float64       `json:"confidence"`
}
