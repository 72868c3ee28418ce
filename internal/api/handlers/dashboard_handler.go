package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spivot-hq/spivot/backend-go/internal/service"
)

type DashboardHandler struct {
	service *service.DashboardService
	userScope
}

func NewDashboardHandler(svc *service.DashboardService, defaultUserID int64) *DashboardHandler {
	return &DashboardHandler{service: svc, userScope: userScope{defaultUserID: defaultUserID}}
}

func (h *DashboardHandler) GetMetrics(c *gin.Context) {
	userID, err := h.userID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics, err := h.service.Metrics(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

func (h *DashboardHandler) GetCashflow(c *gin.Context) {
	userID, err := h.userID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	analysis, err := h.service.Cashflow(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (h *DashboardHandler) GetExpenseBreakdown(c *gin.Context) {
	userID, err := h.userID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	breakdown, err := h.service.ExpenseBreakdown(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": breakdown})
}
