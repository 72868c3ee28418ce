package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/spivot-hq/spivot/backend-go/internal/engine/credit"
	"github.com/spivot-hq/spivot/backend-go/internal/engine/forecast"
	"github.com/spivot-hq/spivot/backend-go/internal/engine/liquidity"
	"github.com/spivot-hq/spivot/backend-go/internal/engine/reorder"
)

// EngineConfig is the tunable decision policy. Zero fields never reach the
// engine: every value starts from the engine defaults and is only replaced by
// the policy file or the ENGINE_* environment variables.
type EngineConfig struct {
	Liquidity LiquidityPolicy `mapstructure:"liquidity"`
	Reorder   ReorderPolicy   `mapstructure:"reorder"`
	Credit    CreditPolicy    `mapstructure:"credit"`
	Forecast  ForecastPolicy  `mapstructure:"forecast"`
}

type LiquidityPolicy struct {
	CriticalRunwayDays int    `mapstructure:"critical_runway_days"`
	WarningRunwayDays  int    `mapstructure:"warning_runway_days"`
	WindowDays         int    `mapstructure:"window_days"`
	InfiniteRunwayDays int    `mapstructure:"infinite_runway_days"`
	CurrencySymbol     string `mapstructure:"currency_symbol"`
}

type ReorderPolicy struct {
	SafetyStockDays     int     `mapstructure:"safety_stock_days"`
	BufferDays          int     `mapstructure:"buffer_days"`
	MinOrderDays        int     `mapstructure:"min_order_days"`
	HighUrgencyDays     float64 `mapstructure:"high_urgency_days"`
	MediumUrgencyDays   float64 `mapstructure:"medium_urgency_days"`
	DefaultForecastDays int     `mapstructure:"default_forecast_days"`
	FallbackDemandRatio float64 `mapstructure:"fallback_demand_ratio"`
}

type CreditPolicy struct {
	CashConsistencyWeight float64 `mapstructure:"cash_consistency_weight"`
	RevenueGrowthWeight   float64 `mapstructure:"revenue_growth_weight"`
	VendorPaymentWeight   float64 `mapstructure:"vendor_payment_weight"`
	MinScore              int     `mapstructure:"min_score"`
	MaxScore              int     `mapstructure:"max_score"`
	LowRiskScore          int     `mapstructure:"low_risk_score"`
	MediumRiskScore       int     `mapstructure:"medium_risk_score"`
}

type ForecastPolicy struct {
	DefaultBaseline     float64 `mapstructure:"default_baseline"`
	DefaultTrend        float64 `mapstructure:"default_trend"`
	TrendWindow         int     `mapstructure:"trend_window"`
	DefaultForecastDays int     `mapstructure:"default_forecast_days"`
	MaxConfidence       float64 `mapstructure:"max_confidence"`
	// Seed fixes the random source; 0 seeds from the clock.
	Seed uint64 `mapstructure:"seed"`
}

// DefaultEngineConfig mirrors the engine package defaults.
func DefaultEngineConfig() EngineConfig {
	l := liquidity.DefaultConfig()
	r := reorder.DefaultConfig()
	c := credit.DefaultConfig()
	f := forecast.DefaultConfig()

	return EngineConfig{
		Liquidity: LiquidityPolicy{
			CriticalRunwayDays: l.CriticalRunwayDays,
			WarningRunwayDays:  l.WarningRunwayDays,
			WindowDays:         l.WindowDays,
			InfiniteRunwayDays: l.InfiniteRunwayDays,
			CurrencySymbol:     l.CurrencySymbol,
		},
		Reorder: ReorderPolicy{
			SafetyStockDays:     r.SafetyStockDays,
			BufferDays:          r.BufferDays,
			MinOrderDays:        r.MinOrderDays,
			HighUrgencyDays:     r.HighUrgencyDays,
			MediumUrgencyDays:   r.MediumUrgencyDays,
			DefaultForecastDays: r.DefaultForecastDays,
			FallbackDemandRatio: r.FallbackDemandRatio,
		},
		Credit: CreditPolicy{
			CashConsistencyWeight: c.Weights.CashConsistency,
			RevenueGrowthWeight:   c.Weights.RevenueGrowth,
			VendorPaymentWeight:   c.Weights.VendorPayment,
			MinScore:              c.MinScore,
			MaxScore:              c.MaxScore,
			LowRiskScore:          c.LowRiskScore,
			MediumRiskScore:       c.MediumRiskScore,
		},
		Forecast: ForecastPolicy{
			DefaultBaseline:     f.DefaultBaseline,
			DefaultTrend:        f.DefaultTrend,
			TrendWindow:         f.TrendWindow,
			DefaultForecastDays: f.DefaultForecastDays,
			MaxConfidence:       f.MaxConfidence,
		},
	}
}

func loadEngine(v *viper.Viper) (EngineConfig, error) {
	cfg := DefaultEngineConfig()

	if path := v.GetString("ENGINE_POLICY_FILE"); path != "" {
		pv := viper.New()
		pv.SetConfigFile(path)
		if err := pv.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("read engine policy %s: %w", path, err)
		}
		if err := pv.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("decode engine policy %s: %w", path, err)
		}
	}

	if v.IsSet("ENGINE_SAFETY_STOCK_DAYS") {
		cfg.Reorder.SafetyStockDays = v.GetInt("ENGINE_SAFETY_STOCK_DAYS")
	}
	if v.IsSet("ENGINE_CRITICAL_RUNWAY_DAYS") {
		cfg.Liquidity.CriticalRunwayDays = v.GetInt("ENGINE_CRITICAL_RUNWAY_DAYS")
	}
	if v.IsSet("ENGINE_WARNING_RUNWAY_DAYS") {
		cfg.Liquidity.WarningRunwayDays = v.GetInt("ENGINE_WARNING_RUNWAY_DAYS")
	}
	if seed := v.GetUint64("FORECAST_SEED"); seed != 0 {
		cfg.Forecast.Seed = seed
	}

	return cfg, cfg.validate()
}

func (e EngineConfig) validate() error {
	if e.Liquidity.CriticalRunwayDays > e.Liquidity.WarningRunwayDays {
		return fmt.Errorf("engine policy: critical_runway_days (%d) exceeds warning_runway_days (%d)",
			e.Liquidity.CriticalRunwayDays, e.Liquidity.WarningRunwayDays)
	}
	if e.Reorder.SafetyStockDays < 0 {
		return fmt.Errorf("engine policy: safety_stock_days must be non-negative")
	}
	if e.Credit.MinScore >= e.Credit.MaxScore {
		return fmt.Errorf("engine policy: min_score must be below max_score")
	}
	w := e.Credit.CashConsistencyWeight + e.Credit.RevenueGrowthWeight + e.Credit.VendorPaymentWeight
	if w < 0.999 || w > 1.001 {
		return fmt.Errorf("engine policy: credit weights sum to %.3f, want 1", w)
	}
	return nil
}

func (e EngineConfig) LiquidityConfig() liquidity.Config {
	return liquidity.Config{
		CriticalRunwayDays: e.Liquidity.CriticalRunwayDays,
		WarningRunwayDays:  e.Liquidity.WarningRunwayDays,
		WindowDays:         e.Liquidity.WindowDays,
		InfiniteRunwayDays: e.Liquidity.InfiniteRunwayDays,
		CurrencySymbol:     e.Liquidity.CurrencySymbol,
	}
}

func (e EngineConfig) ReorderConfig() reorder.Config {
	return reorder.Config{
		SafetyStockDays:     e.Reorder.SafetyStockDays,
		BufferDays:          e.Reorder.BufferDays,
		MinOrderDays:        e.Reorder.MinOrderDays,
		HighUrgencyDays:     e.Reorder.HighUrgencyDays,
		MediumUrgencyDays:   e.Reorder.MediumUrgencyDays,
		DefaultForecastDays: e.Reorder.DefaultForecastDays,
		FallbackDemandRatio: e.Reorder.FallbackDemandRatio,
	}
}

func (e EngineConfig) CreditConfig() credit.Config {
	cfg := credit.DefaultConfig()
	cfg.Weights = credit.Weights{
		CashConsistency: e.Credit.CashConsistencyWeight,
		RevenueGrowth:   e.Credit.RevenueGrowthWeight,
		VendorPayment:   e.Credit.VendorPaymentWeight,
	}
	cfg.MinScore = e.Credit.MinScore
	cfg.MaxScore = e.Credit.MaxScore
	cfg.LowRiskScore = e.Credit.LowRiskScore
	cfg.MediumRiskScore = e.Credit.MediumRiskScore
	return cfg
}

func (e EngineConfig) ForecastConfig() forecast.Config {
	cfg := forecast.DefaultConfig()
	cfg.DefaultBaseline = e.Forecast.DefaultBaseline
	cfg.DefaultTrend = e.Forecast.DefaultTrend
	cfg.TrendWindow = e.Forecast.TrendWindow
	cfg.DefaultForecastDays = e.Forecast.DefaultForecastDays
	cfg.MaxConfidence = e.Forecast.MaxConfidence
	return cfg
}

// ForecastSeed returns the configured seed, or one derived from now.
func (e EngineConfig) ForecastSeed(now time.Time) uint64 {
	if e.Forecast.Seed != 0 {
		return e.Forecast.Seed
	}
	return uint64(now.UnixNano())
}

// LoadEnginePolicy reads a policy file over the engine defaults. An empty
// path returns the defaults.
func LoadEnginePolicy(path string) (EngineConfig, error) {
	v := viper.New()
	v.Set("ENGINE_POLICY_FILE", path)
	return loadEngine(v)
}
