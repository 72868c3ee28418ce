package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spivot-hq/spivot/backend-go/internal/service"
)

type ForecastHandler struct {
	service *service.ForecastService
	userScope
}

func NewForecastHandler(svc *service.ForecastService, defaultUserID int64) *ForecastHandler {
	return &ForecastHandler{service: svc, userScope: userScope{defaultUserID: defaultUserID}}
}

type demandQuery struct {
	Days int `form:"days" default:"30" validate:"gte=1,lte=365"`
}

func (h *ForecastHandler) GetDemand(c *gin.Context) {
	userID, err := h.userID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var q demandQuery
	if err := bindQuery(c, &q); err != nil {
		respondError(c, err)
		return
	}

	fc, err := h.service.Demand(c.Request.Context(), userID, q.Days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fc)
}

func (h *ForecastHandler) GetSummary(c *gin.Context) {
	userID, err := h.userID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
