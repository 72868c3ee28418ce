package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
	"github.com/spivot-hq/spivot/backend-go/internal/events"
	"github.com/spivot-hq/spivot/backend-go/internal/repository"
)

// SweepReport summarises one liquidity sweep.
type SweepReport struct {
	Users    int `json:"users"`
	Warnings int `json:"warnings"`
	Critical int `json:"critical"`
	Failed   int `json:"failed"`
}

// LiquiditySweep re-analyses every user's cashflow and records an agent
// log plus an event for each user whose runway is not normal.
type LiquiditySweep struct {
	users     repository.UserRepository
	cashflow  *CashflowService
	agentLogs *AgentLogService
	events    events.Publisher
	workers   int
}

const defaultSweepWorkers = 4

func NewLiquiditySweep(users repository.UserRepository, cashflow *CashflowService, agentLogs *AgentLogService, publisher events.Publisher) *LiquiditySweep {
	if publisher == nil {
		publisher = events.NewLogPublisher(nil)
	}
	return &LiquiditySweep{users: users, cashflow: cashflow, agentLogs: agentLogs, events: publisher, workers: defaultSweepWorkers}
}

// SetWorkers bounds how many users are analysed concurrently.
func (s *LiquiditySweep) SetWorkers(n int) {
	s.workers = max(1, n)
}

// Run fans users out to a fixed worker pool. A failing user is logged and
// counted, never fatal to the sweep.
func (s *LiquiditySweep) Run(ctx context.Context) (SweepReport, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return SweepReport{}, err
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		report = SweepReport{Users: len(users)}
		jobs   = make(chan int64)
	)

	for range min(s.workers, max(1, len(users))) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for userID := range jobs {
				outcome := s.check(ctx, userID)
				mu.Lock()
				switch outcome {
				case sweepWarning:
					report.Warnings++
				case sweepCritical:
					report.Critical++
				case sweepFailed:
					report.Failed++
				}
				mu.Unlock()
			}
		}()
	}

	var runErr error
enqueue:
	for _, u := range users {
		if runErr = ctx.Err(); runErr != nil {
			break
		}
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break enqueue
		case jobs <- u.ID:
		}
	}
	close(jobs)
	wg.Wait()

	log.Info().
		Int("users", report.Users).
		Int("warnings", report.Warnings).
		Int("critical", report.Critical).
		Int("failed", report.Failed).
		Msg("Liquidity sweep finished")
	return report, runErr
}

type sweepOutcome int

const (
	sweepNormal sweepOutcome = iota
	sweepWarning
	sweepCritical
	sweepFailed
)

func (s *LiquiditySweep) check(ctx context.Context, userID int64) sweepOutcome {
	analysis, err := s.cashflow.Analyze(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("liquidity sweep: analysis failed")
		return sweepFailed
	}

	outcome := sweepNormal
	switch analysis.AlertLevel {
	case domain.AlertNormal:
		return sweepNormal
	case domain.AlertWarning:
		outcome = sweepWarning
	case domain.AlertCritical:
		outcome = sweepCritical
	}

	if err := s.record(ctx, userID, analysis); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("liquidity sweep: record alert failed")
		return sweepFailed
	}
	return outcome
}

func (s *LiquiditySweep) record(ctx context.Context, userID int64, analysis domain.CashflowAnalysis) error {
	severity := domain.SeverityForAlert(analysis.AlertLevel)
	summary := s.cashflow.engine.Liquidity.Summary(analysis)
	extra, err := json.Marshal(analysis)
	if err != nil {
		return err
	}

	entry := &domain.AgentLog{
		UserID:    &userID,
		AgentName: domain.AgentTreasurer,
		Action:    "Liquidity check",
		Result:    &summary,
		Severity:  severity,
		ExtraData: extra,
	}
	if err := s.agentLogs.Record(ctx, entry); err != nil {
		return err
	}

	ev, err := events.NewEvent(events.TypeLiquidityAlert, userID, analysis)
	if err != nil {
		return err
	}
	ev.AgentName = domain.AgentTreasurer
	ev.Severity = severity.String()
	return s.events.Publish(ctx, ev)
}
