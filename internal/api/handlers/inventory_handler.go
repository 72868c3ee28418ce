package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
	"github.com/spivot-hq/spivot/backend-go/internal/service"
)

type InventoryHandler struct {
	service *service.InventoryService
	userScope
}

func NewInventoryHandler(svc *service.InventoryService, defaultUserID int64) *InventoryHandler {
	return &InventoryHandler{service: svc, userScope: userScope{defaultUserID: defaultUserID}}
}

type inventoryItemRequest struct {
	SKU             string  `json:"sku" validate:"required,max=64"`
	Name            string  `json:"name" validate:"required,max=200"`
	CurrentStock    float64 `json:"current_stock" validate:"gte=0"`
	Unit            string  `json:"unit" default:"units" validate:"max=32"`
	ReorderLevel    float64 `json:"reorder_level" validate:"gte=0"`
	LeadTimeDays    int     `json:"lead_time_days" default:"7" validate:"gte=0,lte=365"`
	UnitCost        float64 `json:"unit_cost" validate:"gte=0"`
	PreferredVendor *string `json:"preferred_vendor" validate:"omitempty,max=200"`
}

func (h *InventoryHandler) ListItems(c *gin.Context) {
	userID, err := h.userID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	items, err := h.service.ListItems(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *InventoryHandler) CreateItem(c *gin.Context) {
	userID, err := h.userID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req inventoryItemRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	item := domain.InventoryItem{
		UserID:          userID,
		SKU:             req.SKU,
		Name:            req.Name,
		CurrentStock:    req.CurrentStock,
		Unit:            req.Unit,
		ReorderLevel:    req.ReorderLevel,
		LeadTimeDays:    req.LeadTimeDays,
		UnitCost:        req.UnitCost,
		PreferredVendor: req.PreferredVendor,
	}
	if err := h.service.CreateItem(c.Request.Context(), &item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *InventoryHandler) GetItem(c *gin.Context) {
	userID, err := h.userID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	item, err := h.service.GetItem(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	userID, err := h.userID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.service.DeleteItem(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InventoryHandler) GetAlerts(c *gin.Context) {
	userID, err := h.userID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	alerts, err := h.service.Alerts(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

func (h *InventoryHandler) Optimize(c *gin.Context) {
	userID, err := h.userID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.service.Optimize(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type optimizeDemandRequest struct {
	Demand map[string]float64 `json:"demand" validate:"required,min=1,dive,keys,required,max=64,endkeys,gte=0"`
}

// OptimizeDemand drafts orders from caller-supplied demand per SKU.
func (h *InventoryHandler) OptimizeDemand(c *gin.Context) {
	userID, err := h.userID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req optimizeDemandRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.service.OptimizeDemand(c.Request.Context(), userID, req.Demand)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
