package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spivot-hq/spivot/backend-go/internal/service"
)

type AgentHandler struct {
	service *service.AgentLogService
}

func NewAgentHandler(svc *service.AgentLogService) *AgentHandler {
	return &AgentHandler{service: svc}
}

type agentLogsQuery struct {
	UserID *int64 `form:"user_id" validate:"omitempty,gt=0"`
	Limit  int    `form:"limit" default:"50" validate:"gte=1,lte=500"`
}

// ListLogs returns recent agent activity; without user_id every user is listed.
func (h *AgentHandler) ListLogs(c *gin.Context) {
	var q agentLogsQuery
	if err := bindQuery(c, &q); err != nil {
		respondError(c, err)
		return
	}

	logs, err := h.service.List(c.Request.Context(), q.UserID, q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}
