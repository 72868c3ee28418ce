package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/spivot-hq/spivot/backend-go/internal/api/handlers"
	"github.com/spivot-hq/spivot/backend-go/internal/api/middleware"
	"github.com/spivot-hq/spivot/backend-go/internal/service"
	"github.com/spivot-hq/spivot/backend-go/pkg/metrics"
)

// Services are the dependencies served over HTTP. Nil services leave their
// routes unregistered.
type Services struct {
	Cashflow  *service.CashflowService
	Inventory *service.InventoryService
	Forecast  *service.ForecastService
	Dashboard *service.DashboardService
	Documents *service.DocumentService
	AgentLogs *service.AgentLogService
	Engine    *service.Engine
	Users     *service.UserService
}

type Options struct {
	AllowedOrigins []string
	DefaultUserID  int64
	Metrics        *metrics.Recorder
	DB             handlers.Pinger
	Version        string
}

func NewRouter(services *Services, opts Options) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(opts.Metrics.GinMiddleware())
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	router.GET("/health", handlers.NewHealthHandler(opts.DB, opts.Version).Health)
	router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	if services == nil {
		return router
	}

	apiGroup := router.Group("/api/v1")
	userID := opts.DefaultUserID

	if services.Users != nil {
		h := handlers.NewUserHandler(services.Users)
		g := apiGroup.Group("/users")
		{
			g.POST("", h.Register)
			g.GET("/:id", h.Get)
		}
	}

	if services.Cashflow != nil {
		h := handlers.NewCashflowHandler(services.Cashflow, userID)
		g := apiGroup.Group("/cashflow")
		{
			g.GET("/transactions", h.ListTransactions)
			g.POST("/transactions", h.CreateTransaction)
			g.GET("/analysis", h.GetAnalysis)
			g.GET("/score", h.GetScore)
			g.GET("/projection", h.GetProjection)
			g.POST("/vendor-payments", h.CreateVendorPayment)
		}
	}

	if services.Inventory != nil {
		h := handlers.NewInventoryHandler(services.Inventory, userID)
		g := apiGroup.Group("/inventory")
		{
			g.GET("", h.ListItems)
			g.POST("", h.CreateItem)
			g.GET("/alerts", h.GetAlerts)
			g.GET("/optimize", h.Optimize)
			g.POST("/optimize", h.OptimizeDemand)
			g.GET("/:id", h.GetItem)
			g.DELETE("/:id", h.DeleteItem)
		}
	}

	if services.Forecast != nil {
		h := handlers.NewForecastHandler(services.Forecast, userID)
		g := apiGroup.Group("/forecast")
		{
			g.GET("/demand", h.GetDemand)
			g.GET("/summary", h.GetSummary)
		}
	}

	if services.Dashboard != nil {
		h := handlers.NewDashboardHandler(services.Dashboard, userID)
		g := apiGroup.Group("/dashboard")
		{
			g.GET("/metrics", h.GetMetrics)
			g.GET("/cashflow", h.GetCashflow)
			g.GET("/expense-breakdown", h.GetExpenseBreakdown)
		}
	}

	if services.Documents != nil {
		h := handlers.NewDocumentHandler(services.Documents, userID)
		g := apiGroup.Group("/documents")
		{
			g.POST("/upload", h.Upload)
			g.GET("", h.List)
			g.GET("/:id", h.Get)
		}
	}

	if services.AgentLogs != nil {
		h := handlers.NewAgentHandler(services.AgentLogs)
		apiGroup.GET("/agents/logs", h.ListLogs)
	}

	if services.Engine != nil {
		h := handlers.NewEngineHandler(services.Engine, opts.Metrics)
		g := apiGroup.Group("/engine")
		{
			g.POST("/cashflow", h.Cashflow)
			g.POST("/reorder", h.Reorder)
			g.POST("/reorder/batch", h.ReorderBatch)
			g.POST("/score", h.Score)
			g.POST("/score/transactions", h.ScoreTransactions)
			g.POST("/forecast", h.Forecast)
		}
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	cfg := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			cfg.AllowOrigins = nil
			cfg.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			cfg.AllowOrigins = normalizedOrigins
		}
	}
	return cfg
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
