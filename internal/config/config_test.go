package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDefaults(t *testing.T) {
	cfg, err := build(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "spivot", cfg.Database.DBName)
	assert.False(t, cfg.Kafka.Enabled)
	assert.False(t, cfg.OCR.Enabled)
	assert.Equal(t, "0 6 * * *", cfg.Scheduler.LiquiditySpec)
	assert.Equal(t, DefaultEngineConfig(), cfg.Engine)

	assert.Equal(t, 20, cfg.Engine.LiquidityConfig().CriticalRunwayDays)
	assert.Equal(t, 3, cfg.Engine.ReorderConfig().SafetyStockDays)
	assert.Equal(t, 0.4, cfg.Engine.CreditConfig().Weights.CashConsistency)
	assert.Equal(t, 1000.0, cfg.Engine.ForecastConfig().DefaultBaseline)
}

func TestBuildEnvOverrides(t *testing.T) {
	t.Setenv("ENGINE_SAFETY_STOCK_DAYS", "5")
	t.Setenv("ENGINE_CRITICAL_RUNWAY_DAYS", "10")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("FORECAST_SEED", "99")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/spivot")

	cfg, err := build(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Engine.Reorder.SafetyStockDays)
	assert.Equal(t, 10, cfg.Engine.Liquidity.CriticalRunwayDays)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, uint64(99), cfg.Engine.ForecastSeed(time.Now()))
	assert.Equal(t, "postgres://u:p@db:5432/spivot", cfg.Database.DSN())
}

func TestEnginePolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	policy := []byte(`
liquidity:
  critical_runway_days: 30
  warning_runway_days: 60
credit:
  cash_consistency_weight: 0.5
  revenue_growth_weight: 0.25
  vendor_payment_weight: 0.25
`)
	require.NoError(t, os.WriteFile(path, policy, 0o600))
	t.Setenv("ENGINE_POLICY_FILE", path)

	cfg, err := build(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Engine.Liquidity.CriticalRunwayDays)
	assert.Equal(t, 60, cfg.Engine.Liquidity.WarningRunwayDays)
	assert.Equal(t, 0.5, cfg.Engine.CreditConfig().Weights.CashConsistency)
	// untouched keys keep their defaults
	assert.Equal(t, 30, cfg.Engine.Liquidity.WindowDays)
	assert.Equal(t, 3, cfg.Engine.Reorder.SafetyStockDays)
}

func TestEnginePolicyRejectsBadWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"credit":{"vendor_payment_weight":0.9}}`), 0o600))
	t.Setenv("ENGINE_POLICY_FILE", path)

	_, err := build(viper.New())
	assert.ErrorContains(t, err, "credit weights")
}
