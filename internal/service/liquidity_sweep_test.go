package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
)

func TestLiquiditySweepLogsOnlyAtRiskUsers(t *testing.T) {
	s := newServices()
	seedHealthyUser(s, 1)

	s.addUser(2, domain.BusinessTrading)
	s.addTxn(2, day(time.January, 10), domain.KindCredit, 3000, "Sales")
	s.addTxn(2, day(time.March, 20), domain.KindDebit, 1500, "Rent")

	s.addUser(3, domain.BusinessService)
	s.addTxn(3, day(time.March, 10), domain.KindCredit, 1000, "Sales")
	s.addTxn(3, day(time.March, 20), domain.KindDebit, 900, "Payroll")

	sweep := NewLiquiditySweep(s.mem.store().Users, s.cashflow, s.agentLogs, nil)
	report, err := sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepReport{Users: 3, Warnings: 1, Critical: 1}, report)

	require.Len(t, s.mem.logs, 2)
	byUser := map[int64]domain.AgentLog{}
	for _, l := range s.mem.logs {
		byUser[*l.UserID] = l
	}
	assert.Equal(t, domain.SeverityWarning, byUser[2].Severity)
	assert.Equal(t, domain.SeverityCritical, byUser[3].Severity)
	assert.Equal(t, domain.AgentTreasurer, byUser[3].AgentName)
	assert.Contains(t, *byUser[3].Result, "[CRITICAL]")
}

func TestLiquiditySweepCountsFailures(t *testing.T) {
	s := newServices()
	s.addUser(1, domain.BusinessRetail)
	s.addTxn(1, day(time.March, 20), domain.KindDebit, -5, "Broken")

	report, err := NewLiquiditySweep(s.mem.store().Users, s.cashflow, s.agentLogs, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Empty(t, s.mem.logs)
}

func TestAgentLogListClampsLimit(t *testing.T) {
	s := newServices()
	uid := int64(1)
	for range 3 {
		require.NoError(t, s.agentLogs.Record(context.Background(), &domain.AgentLog{UserID: &uid, AgentName: domain.AgentProphet, Action: "Forecast"}))
	}

	logs, err := s.agentLogs.List(context.Background(), &uid, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 3)
	assert.Equal(t, domain.SeverityInfo, logs[0].Severity)

	other := int64(2)
	logs, err = s.agentLogs.List(context.Background(), &other, 10)
	require.NoError(t, err)
	assert.NotNil(t, logs)
	assert.Empty(t, logs)
}

func TestLiquiditySweepSingleWorkerMatchesPool(t *testing.T) {
	s := newServices()
	for id := int64(1); id <= 6; id++ {
		s.addUser(id, domain.BusinessService)
		s.addTxn(id, day(time.March, 10), domain.KindCredit, 1000, "Sales")
		s.addTxn(id, day(time.March, 20), domain.KindDebit, 900, "Payroll")
	}

	sweep := NewLiquiditySweep(s.mem.store().Users, s.cashflow, s.agentLogs, nil)
	sweep.SetWorkers(0)
	report, err := sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepReport{Users: 6, Critical: 6}, report)
	assert.Len(t, s.mem.logs, 6)
}

func TestLiquiditySweepStopsOnCancel(t *testing.T) {
	s := newServices()
	seedHealthyUser(s, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewLiquiditySweep(s.mem.store().Users, s.cashflow, s.agentLogs, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, report.Users)
	assert.Empty(t, s.mem.logs)
}
