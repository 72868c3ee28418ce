package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
	"github.com/spivot-hq/spivot/backend-go/internal/engine/forecast"
	"github.com/spivot-hq/spivot/backend-go/internal/repository"
	"github.com/spivot-hq/spivot/backend-go/pkg/metrics"
)

const DefaultForecastDays = 30

// ForecastSummary pairs the forecast with its one-line description.
type ForecastSummary struct {
	Summary  string                `json:"summary"`
	Label    string                `json:"label"`
	Forecast domain.DemandForecast `json:"forecast"`
}

type ForecastService struct {
	users   repository.UserRepository
	txns    repository.TransactionRepository
	engine  *Engine
	metrics *metrics.Recorder
}

func NewForecastService(users repository.UserRepository, txns repository.TransactionRepository, engine *Engine, rec *metrics.Recorder) *ForecastService {
	return &ForecastService{users: users, txns: txns, engine: engine, metrics: rec}
}

// Demand forecasts days of demand using the user's income history as the
// demand proxy.
func (s *ForecastService) Demand(ctx context.Context, userID int64, days int) (domain.DemandForecast, error) {
	if days <= 0 {
		days = DefaultForecastDays
	}

	bt, err := s.businessType(ctx, userID)
	if err != nil {
		return domain.DemandForecast{}, err
	}
	return s.forecast(ctx, userID, bt, days)
}

func (s *ForecastService) forecast(ctx context.Context, userID int64, bt domain.BusinessType, days int) (domain.DemandForecast, error) {
	history, err := s.history(ctx, userID)
	if err != nil {
		return domain.DemandForecast{}, err
	}

	start := time.Now()
	fc, err := s.engine.Forecast.Forecast(history, bt, days)
	s.metrics.ObserveEngine("forecast.demand", start, err)
	if err != nil {
		return domain.DemandForecast{}, fmt.Errorf("forecast user %d: %w", userID, err)
	}
	return fc, nil
}

func (s *ForecastService) Summary(ctx context.Context, userID int64) (ForecastSummary, error) {
	bt, err := s.businessType(ctx, userID)
	if err != nil {
		return ForecastSummary{}, err
	}

	fc, err := s.forecast(ctx, userID, bt, DefaultForecastDays)
	if err != nil {
		return ForecastSummary{}, err
	}

	return ForecastSummary{
		Summary:  forecast.Summary(fc),
		Label:    forecast.Label(bt),
		Forecast: fc,
	}, nil
}

// businessType falls back to manufacturing for unknown users.
func (s *ForecastService) businessType(ctx context.Context, userID int64) (domain.BusinessType, error) {
	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.BusinessManufacturing, nil
	}
	if err != nil {
		return 0, err
	}
	if !user.BusinessType.Valid() {
		return domain.BusinessManufacturing, nil
	}
	return user.BusinessType, nil
}

func (s *ForecastService) history(ctx context.Context, userID int64) ([]domain.DemandPoint, error) {
	credits, err := s.txns.ListTransactions(ctx, userID, repository.TransactionFilter{Kind: domain.KindCredit})
	if err != nil {
		return nil, err
	}

	points := make([]domain.DemandPoint, 0, len(credits))
	for _, t := range credits {
		points = append(points, domain.DemandPoint{Date: t.Date, Value: t.Amount})
	}
	return points, nil
}
