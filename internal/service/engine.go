// Package service composes the record store with the decision engine.
package service

import (
	"math/rand/v2"
	"time"

	"github.com/spivot-hq/spivot/backend-go/internal/config"
	"github.com/spivot-hq/spivot/backend-go/internal/engine/credit"
	"github.com/spivot-hq/spivot/backend-go/internal/engine/forecast"
	"github.com/spivot-hq/spivot/backend-go/internal/engine/liquidity"
	"github.com/spivot-hq/spivot/backend-go/internal/engine/reorder"
)

// Engine bundles the four decision modules. Every module is safe for
// concurrent use, so a single Engine is shared by all services.
type Engine struct {
	Liquidity *liquidity.Analyzer
	Reorder   *reorder.Optimizer
	Credit    *credit.Scorer
	Forecast  *forecast.Forecaster
}

// NewEngine builds the modules from policy. src seeds the forecaster.
func NewEngine(cfg config.EngineConfig, src rand.Source) *Engine {
	return NewEngineWithClock(cfg, src, time.Now)
}

// NewEngineWithClock pins the reference time of the time-dependent modules.
func NewEngineWithClock(cfg config.EngineConfig, src rand.Source, now func() time.Time) *Engine {
	return &Engine{
		Liquidity: liquidity.NewAnalyzer(cfg.LiquidityConfig(), liquidity.WithClock(now)),
		Reorder:   reorder.NewOptimizer(cfg.ReorderConfig()),
		Credit:    credit.NewScorer(cfg.CreditConfig()),
		Forecast:  forecast.NewForecaster(cfg.ForecastConfig(), src, forecast.WithClock(now)),
	}
}
