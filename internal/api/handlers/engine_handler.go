package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
	"github.com/spivot-hq/spivot/backend-go/internal/engine/credit"
	"github.com/spivot-hq/spivot/backend-go/internal/engine/forecast"
	"github.com/spivot-hq/spivot/backend-go/internal/engine/reorder"
	"github.com/spivot-hq/spivot/backend-go/internal/service"
	"github.com/spivot-hq/spivot/backend-go/pkg/metrics"
)

// EngineHandler exposes the decision engine on request-supplied values
// without touching the record store.
type EngineHandler struct {
	engine  *service.Engine
	metrics *metrics.Recorder
}

func NewEngineHandler(engine *service.Engine, rec *metrics.Recorder) *EngineHandler {
	return &EngineHandler{engine: engine, metrics: rec}
}

type engineTransaction struct {
	Date     Date                   `json:"date" validate:"required"`
	Amount   float64                `json:"amount"`
	Kind     domain.TransactionKind `json:"kind" validate:"required"`
	Category string                 `json:"category"`
}

func toTransactions(in []engineTransaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(in))
	for _, t := range in {
		out = append(out, domain.Transaction{Date: t.Date.Time, Amount: t.Amount, Kind: t.Kind, Category: t.Category})
	}
	return out
}

type cashflowRequest struct {
	Transactions   []engineTransaction `json:"transactions" validate:"dive"`
	CurrentBalance *float64            `json:"current_balance"`
}

type reorderRequest struct {
	CurrentStock    float64 `json:"current_stock"`
	LeadTimeDays    int     `json:"lead_time_days"`
	PredictedDemand float64 `json:"predicted_demand"`
	ForecastDays    int     `json:"forecast_days" default:"30"`
	SKU             string  `json:"sku"`
	Name            string  `json:"name"`
	Unit            string  `json:"unit"`
	UnitCost        float64 `json:"unit_cost"`
	SuggestedVendor *string `json:"suggested_vendor"`
}

type reorderResponse struct {
	NeedsReorder bool                       `json:"needs_reorder"`
	DailyUsage   float64                    `json:"daily_usage"`
	ReorderPoint float64                    `json:"reorder_point"`
	Alert        *domain.InventoryAlert     `json:"alert"`
	Order        *domain.PurchaseOrderDraft `json:"order"`
}

type batchItem struct {
	SKU             string  `json:"sku" validate:"required"`
	Name            string  `json:"name"`
	CurrentStock    float64 `json:"current_stock"`
	Unit            string  `json:"unit"`
	LeadTimeDays    int     `json:"lead_time_days"`
	UnitCost        float64 `json:"unit_cost"`
	PreferredVendor *string `json:"preferred_vendor"`
}

type batchRequest struct {
	Items  []batchItem        `json:"items" validate:"required,dive"`
	Demand map[string]float64 `json:"demand"`
}

type scoreRequest struct {
	CashConsistency      *float64 `json:"cash_consistency" validate:"required"`
	RevenueGrowthPct     *float64 `json:"revenue_growth_pct" validate:"required"`
	VendorPaymentHistory *float64 `json:"vendor_payment_history" validate:"required"`
}

type vendorPaymentRequest struct {
	Vendor   string  `json:"vendor"`
	Amount   float64 `json:"amount"`
	DueDate  Date    `json:"due_date" validate:"required"`
	PaidDate *Date   `json:"paid_date"`
	OnTime   *bool   `json:"on_time"`
}

type scoreTransactionsRequest struct {
	Transactions   []engineTransaction    `json:"transactions" validate:"dive"`
	VendorPayments []vendorPaymentRequest `json:"vendor_payments" validate:"dive"`
}

type historyPoint struct {
	Date  Date    `json:"date" validate:"required"`
	Value float64 `json:"value"`
}

type forecastRequest struct {
	History      []historyPoint      `json:"history" validate:"dive"`
	BusinessType domain.BusinessType `json:"business_type" validate:"required"`
	Days         int                 `json:"days" default:"30" validate:"gte=1,lte=365"`
}

func (h *EngineHandler) Cashflow(c *gin.Context) {
	var req cashflowRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	start := time.Now()
	analysis, err := h.engine.Liquidity.Analyze(toTransactions(req.Transactions), req.CurrentBalance)
	h.metrics.ObserveEngine("liquidity.analyze", start, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"analysis": analysis,
		"summary":  h.engine.Liquidity.Summary(analysis),
	})
}

func (h *EngineHandler) Reorder(c *gin.Context) {
	var req reorderRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	start := time.Now()
	d, err := h.engine.Reorder.Optimize(req.CurrentStock, req.LeadTimeDays, req.PredictedDemand, req.ForecastDays, reorder.ItemIdentity{
		SKU:             req.SKU,
		Name:            req.Name,
		Unit:            req.Unit,
		UnitCost:        req.UnitCost,
		SuggestedVendor: req.SuggestedVendor,
	})
	h.metrics.ObserveEngine("reorder.optimize", start, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reorderResponse{
		NeedsReorder: d.NeedsReorder,
		DailyUsage:   domain.Round2(d.DailyUsage),
		ReorderPoint: d.ReorderPoint,
		Alert:        d.Alert,
		Order:        d.Order,
	})
}

func (h *EngineHandler) ReorderBatch(c *gin.Context) {
	var req batchRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	items := make([]domain.InventoryItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.InventoryItem{
			SKU:             it.SKU,
			Name:            it.Name,
			CurrentStock:    it.CurrentStock,
			Unit:            it.Unit,
			LeadTimeDays:    it.LeadTimeDays,
			UnitCost:        it.UnitCost,
			PreferredVendor: it.PreferredVendor,
		})
	}

	start := time.Now()
	orders, err := h.engine.Reorder.BatchOptimize(items, req.Demand)
	var alerts []domain.InventoryAlert
	if err == nil {
		alerts, err = h.engine.Reorder.BatchAlerts(items, req.Demand)
	}
	h.metrics.ObserveEngine("reorder.batch", start, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "alerts": alerts})
}

func (h *EngineHandler) Score(c *gin.Context) {
	var req scoreRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	start := time.Now()
	score := h.engine.Credit.Calculate(*req.CashConsistency, *req.RevenueGrowthPct, *req.VendorPaymentHistory)
	h.metrics.ObserveEngine("credit.calculate", start, nil)
	c.JSON(http.StatusOK, gin.H{
		"score":          score,
		"interpretation": credit.Interpretation(score.Score),
	})
}

func (h *EngineHandler) ScoreTransactions(c *gin.Context) {
	var req scoreTransactionsRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	payments := make([]domain.VendorPayment, 0, len(req.VendorPayments))
	for _, p := range req.VendorPayments {
		vp := domain.VendorPayment{Vendor: p.Vendor, Amount: p.Amount, DueDate: p.DueDate.Time}
		if p.PaidDate != nil {
			paid := p.PaidDate.Time
			vp.PaidDate = &paid
		}
		if p.OnTime != nil {
			vp.OnTime = *p.OnTime
		} else {
			vp.OnTime = vp.PaidDate != nil && !vp.PaidDate.After(vp.DueDate)
		}
		payments = append(payments, vp)
	}

	start := time.Now()
	score, err := h.engine.Credit.FromTransactions(toTransactions(req.Transactions), payments)
	h.metrics.ObserveEngine("credit.score", start, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"score":          score,
		"interpretation": credit.Interpretation(score.Score),
	})
}

func (h *EngineHandler) Forecast(c *gin.Context) {
	var req forecastRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	history := make([]domain.DemandPoint, 0, len(req.History))
	for _, p := range req.History {
		history = append(history, domain.DemandPoint{Date: p.Date.Time, Value: p.Value})
	}

	start := time.Now()
	fc, err := h.engine.Forecast.Forecast(history, req.BusinessType, req.Days)
	h.metrics.ObserveEngine("forecast.demand", start, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"forecast": fc,
		"summary":  forecast.Summary(fc),
	})
}
