package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
)

func TestDemandUsesOnlyIncome(t *testing.T) {
	s := newServices()
	s.addUser(1, domain.BusinessService)
	for d := 1; d <= 10; d++ {
		s.addTxn(1, day(time.March, d), domain.KindCredit, 500, "Sales")
		s.addTxn(1, day(time.March, d), domain.KindDebit, 1_000_000, "Payroll")
	}

	fc, err := s.forecast.Demand(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Len(t, fc.PredictedDemand, 7)
	assert.Equal(t, 0.63, fc.Confidence)
	for _, p := range fc.PredictedDemand {
		// Flat history, so values stay near 500 times sentiment.
		assert.InDelta(t, 500, p.Value, 500*0.3)
		assert.Equal(t, "Service Demand", p.Label)
	}
}

func TestDemandDefaults(t *testing.T) {
	s := newServices()

	fc, err := s.forecast.Demand(context.Background(), 42, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultForecastDays, fc.ForecastPeriodDays)
	assert.Equal(t, "Raw Material Usage", fc.PredictedDemand[0].Label)
	assert.Equal(t, 0.6, fc.Confidence)
}

func TestForecastSummary(t *testing.T) {
	s := newServices()
	s.addUser(3, domain.BusinessRetail)

	summary, err := s.forecast.Summary(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Sales Volume", summary.Label)
	assert.Len(t, summary.Forecast.PredictedDemand, DefaultForecastDays)
	assert.NotEmpty(t, summary.Summary)
}
