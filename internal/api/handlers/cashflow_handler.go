package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
	"github.com/spivot-hq/spivot/backend-go/internal/engine/credit"
	"github.com/spivot-hq/spivot/backend-go/internal/repository"
	"github.com/spivot-hq/spivot/backend-go/internal/service"
)

type CashflowHandler struct {
	service *service.CashflowService
	userScope
}

func NewCashflowHandler(svc *service.CashflowService, defaultUserID int64) *CashflowHandler {
	return &CashflowHandler{service: svc, userScope: userScope{defaultUserID: defaultUserID}}
}

type listTransactionsQuery struct {
	Days     int    `form:"days" validate:"gte=0,lte=3650"`
	Kind     string `form:"kind" validate:"omitempty,oneof=credit debit CREDIT DEBIT"`
	Category string `form:"category"`
	Limit    int    `form:"limit" default:"100" validate:"gte=1,lte=1000"`
}

type transactionRequest struct {
	Date        Date    `json:"date" validate:"required"`
	Amount      float64 `json:"amount" validate:"gte=0"`
	Kind        string  `json:"kind" validate:"required,oneof=credit debit CREDIT DEBIT"`
	Category    string  `json:"category" default:"Uncategorized" validate:"max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

func (r transactionRequest) toDomain(userID int64) (domain.Transaction, error) {
	kind, err := domain.ParseTransactionKind(r.Kind)
	if err != nil {
		return domain.Transaction{}, err
	}
	return domain.Transaction{
		UserID:      userID,
		Date:        r.Date.Time,
		Amount:      r.Amount,
		Kind:        kind,
		Category:    strings.TrimSpace(r.Category),
		Description: r.Description,
	}, nil
}

type vendorPaymentRequest struct {
	Vendor   string  `json:"vendor" validate:"required,max=200"`
	Amount   float64 `json:"amount" validate:"gte=0"`
	DueDate  Date    `json:"due_date" validate:"required"`
	PaidDate *Date   `json:"paid_date"`
	OnTime   *bool   `json:"on_time"`
}

type projectionQuery struct {
	Days int `form:"days" default:"30" validate:"gte=1,lte=365"`
}

// ListTransactions returns the user's transactions, oldest first.
func (h *CashflowHandler) ListTransactions(c *gin.Context) {
	userID, err := h.userID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var q listTransactionsQuery
	if err := bindQuery(c, &q); err != nil {
		respondError(c, err)
		return
	}

	filter := repository.TransactionFilter{Category: q.Category, Limit: q.Limit}
	if q.Days > 0 {
		since := time.Now().AddDate(0, 0, -q.Days)
		filter.Since = &since
	}
	if q.Kind != "" {
		kind, err := domain.ParseTransactionKind(q.Kind)
		if err != nil {
			respondError(c, err)
			return
		}
		filter.Kind = kind
	}

	txns, err := h.service.ListTransactions(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if txns == nil {
		txns = make([]domain.Transaction, 0)
	}

	c.JSON(http.StatusOK, gin.H{"transactions": txns, "count": len(txns)})
}

func (h *CashflowHandler) CreateTransaction(c *gin.Context) {
	userID, err := h.userID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req transactionRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	txn, err := req.toDomain(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.service.RecordTransaction(c.Request.Context(), &txn); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, txn)
}

func (h *CashflowHandler) GetAnalysis(c *gin.Context) {
	userID, err := h.userID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	analysis, err := h.service.Analyze(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (h *CashflowHandler) GetScore(c *gin.Context) {
	userID, err := h.userID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	score, err := h.service.Score(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"score":          score,
		"interpretation": credit.Interpretation(score.Score),
	})
}

func (h *CashflowHandler) GetProjection(c *gin.Context) {
	userID, err := h.userID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var q projectionQuery
	if err := bindQuery(c, &q); err != nil {
		respondError(c, err)
		return
	}

	projection, err := h.service.Project(c.Request.Context(), userID, q.Days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projection)
}

// CreateVendorPayment records a payable that feeds the payment-history part
// of the score.
func (h *CashflowHandler) CreateVendorPayment(c *gin.Context) {
	userID, err := h.userID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req vendorPaymentRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	payment := domain.VendorPayment{
		UserID:  userID,
		Vendor:  req.Vendor,
		Amount:  req.Amount,
		DueDate: req.DueDate.Time,
	}
	if req.PaidDate != nil {
		paid := req.PaidDate.Time
		payment.PaidDate = &paid
	}
	if req.OnTime != nil {
		payment.OnTime = *req.OnTime
	} else {
		payment.OnTime = payment.PaidDate != nil && !payment.PaidDate.After(payment.DueDate)
	}
	if err := h.service.RecordVendorPayment(c.Request.Context(), &payment); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}
