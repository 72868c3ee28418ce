// Package forecast produces short-horizon demand forecasts from a
// transparent heuristic: baseline, trend, seasonality and market sentiment.
package forecast

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
)

// Range is a closed interval for uniform draws.
type Range struct {
	Min float64
	Max float64
}

// Config holds the forecasting heuristics.
type Config struct {
	// DefaultBaseline and DefaultTrend apply when there is no history.
	DefaultBaseline float64
	DefaultTrend    float64
	// TrendWindow is how many trailing points form the recent average.
	TrendWindow int
	Sentiment   Range
	DailyJitter Range
	// TradingJitter is an extra one-off multiplier for trading businesses.
	TradingJitter Range
	// Seasonality applies to retail and trading, keyed by the current month.
	Seasonality         map[time.Month]float64
	BaseConfidence      float64
	ConfidencePer100    float64
	MaxConfidence       float64
	DefaultForecastDays int
}

func DefaultConfig() Config {
	return Config{
		DefaultBaseline:     1000,
		DefaultTrend:        0.02,
		TrendWindow:         7,
		Sentiment:           Range{Min: 0.8, Max: 1.2},
		DailyJitter:         Range{Min: 0.95, Max: 1.05},
		TradingJitter:       Range{Min: 0.9, Max: 1.1},
		Seasonality:         DefaultSeasonality(),
		BaseConfidence:      0.6,
		ConfidencePer100:    0.3,
		MaxConfidence:       0.95,
		DefaultForecastDays: 30,
	}
}

// DefaultSeasonality peaks in Q4 and troughs in Q1.
func DefaultSeasonality() map[time.Month]float64 {
	return map[time.Month]float64{
		time.January: 0.85, time.February: 0.88, time.March: 0.92,
		time.April: 0.95, time.May: 0.98, time.June: 1.0,
		time.July: 0.97, time.August: 0.95, time.September: 1.02,
		time.October: 1.08, time.November: 1.15, time.December: 1.20,
	}
}

// Forecaster draws sentiment and jitter from an injected random source.
// It is safe for concurrent use.
type Forecaster struct {
	cfg Config
	now func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Forecaster)

func WithClock(now func() time.Time) Option {
	return func(f *Forecaster) { f.now = now }
}

// NewForecaster uses src for every random draw; pass a seeded source for
// reproducible output.
func NewForecaster(cfg Config, src rand.Source, opts ...Option) *Forecaster {
	if cfg.Seasonality == nil {
		cfg.Seasonality = DefaultSeasonality()
	}
	if cfg.TrendWindow <= 0 {
		cfg.TrendWindow = 7
	}
	f := &Forecaster{cfg: cfg, now: time.Now, rng: rand.New(src)}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Forecaster) Config() Config { return f.cfg }

// Label names the forecast quantity for a business type.
func Label(bt domain.BusinessType) string {
	switch bt {
	case domain.BusinessRetail:
		return "Sales Volume"
	case domain.BusinessManufacturing:
		return "Raw Material Usage"
	case domain.BusinessTrading:
		return "Order Volume"
	case domain.BusinessService:
		return "Service Demand"
	}
	return ""
}

// Forecast predicts demand for each of the next days days.
func (f *Forecaster) Forecast(history []domain.DemandPoint, bt domain.BusinessType, days int) (domain.DemandForecast, error) {
	if !bt.Valid() {
		return domain.DemandForecast{}, domain.InvalidInput("business_type", "unknown business type %d", int(bt))
	}
	if days <= 0 {
		return domain.DemandForecast{}, domain.InvalidInput("forecast_days", "must be positive, got %d", days)
	}
	for i, p := range history {
		if p.Value < 0 || math.IsNaN(p.Value) {
			return domain.DemandForecast{}, domain.InvalidInput("historical_points", "point %d must be non-negative, got %v", i, p.Value)
		}
	}

	avg, trend := f.baseline(history)
	now := f.now()

	f.mu.Lock()
	defer f.mu.Unlock()

	sentiment := domain.Round2(f.uniform(f.cfg.Sentiment))
	seasonality := f.seasonality(bt, now.Month())

	label := Label(bt)
	points := make([]domain.DemandPoint, 0, days)
	for day := 1; day <= days; day++ {
		value := avg * (1 + trend*float64(day)/30) * seasonality * sentiment
		value *= f.uniform(f.cfg.DailyJitter)

		points = append(points, domain.DemandPoint{
			Date:  now.AddDate(0, 0, day),
			Value: domain.Round2(value),
			Label: label,
		})
	}

	confidence := math.Min(f.cfg.MaxConfidence, f.cfg.BaseConfidence+float64(len(history))/100*f.cfg.ConfidencePer100)

	return domain.DemandForecast{
		ForecastPeriodDays: days,
		PredictedDemand:    points,
		MarketSentiment:    sentiment,
		Confidence:         domain.Round2(confidence),
	}, nil
}

// baseline returns the historical mean and the relative lift of the recent
// window over it.
func (f *Forecaster) baseline(history []domain.DemandPoint) (avg, trend float64) {
	if len(history) == 0 {
		return f.cfg.DefaultBaseline, f.cfg.DefaultTrend
	}

	ordered := make([]domain.DemandPoint, len(history))
	copy(ordered, history)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date.Before(ordered[j].Date) })

	avg = mean(ordered)
	if avg <= 0 {
		return avg, 0
	}

	window := ordered[max(0, len(ordered)-f.cfg.TrendWindow):]
	return avg, (mean(window) - avg) / avg
}

// seasonality must be called with f.mu held.
func (f *Forecaster) seasonality(bt domain.BusinessType, month time.Month) float64 {
	switch bt {
	case domain.BusinessRetail:
		return f.monthFactor(month)
	case domain.BusinessTrading:
		return f.monthFactor(month) * f.uniform(f.cfg.TradingJitter)
	case domain.BusinessManufacturing, domain.BusinessService:
		return 1.0
	}
	panic(fmt.Sprintf("forecast: unhandled business type %d", int(bt)))
}

func (f *Forecaster) monthFactor(month time.Month) float64 {
	if factor, ok := f.cfg.Seasonality[month]; ok {
		return factor
	}
	return 1.0
}

func (f *Forecaster) uniform(r Range) float64 {
	return r.Min + f.rng.Float64()*(r.Max-r.Min)
}

func mean(points []domain.DemandPoint) float64 {
	var sum float64
	for _, p := range points {
		sum += p.Value
	}
	return sum / float64(len(points))
}

// TotalDemand sums the predicted values.
func TotalDemand(fc domain.DemandForecast) float64 {
	var total float64
	for _, p := range fc.PredictedDemand {
		total += p.Value
	}
	return total
}

// Summary renders a one-line description of the forecast.
func Summary(fc domain.DemandForecast) string {
	avgDaily := 0.0
	if len(fc.PredictedDemand) > 0 {
		avgDaily = TotalDemand(fc) / float64(len(fc.PredictedDemand))
	}

	sentiment := "neutral"
	switch {
	case fc.MarketSentiment > 1.1:
		sentiment = "bullish"
	case fc.MarketSentiment < 0.9:
		sentiment = "bearish"
	}

	return fmt.Sprintf("Forecast for %d days: Avg daily demand of %.0f units. Market sentiment is %s (%.2f). Confidence: %.0f%%",
		fc.ForecastPeriodDays, avgDaily, sentiment, fc.MarketSentiment, fc.Confidence*100)
}
