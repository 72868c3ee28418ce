package domain

// DashboardMetrics aggregates the headline numbers for one business.
type DashboardMetrics struct {
	CashRunwayDays      int     `json:"cash_runway_days"`
	SpivotScore         int     `json:"spivot_score"`
	PendingOrders       int     `json:"pending_orders"`
	BurnRate            float64 `json:"burn_rate"`
	TotalInventoryValue float64 `json:"total_inventory_value"`
}

// ExpenseCategory is the DEBIT total for one category.
type ExpenseCategory struct {
	Category string  `json:"category" db:"category"`
	Amount   float64 `json:"amount" db:"total"`
}
