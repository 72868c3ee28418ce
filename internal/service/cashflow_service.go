package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/spivot-hq/spivot/backend-go/internal/cache"
	"github.com/spivot-hq/spivot/backend-go/internal/domain"
	"github.com/spivot-hq/spivot/backend-go/internal/events"
	"github.com/spivot-hq/spivot/backend-go/internal/repository"
	"github.com/spivot-hq/spivot/backend-go/pkg/metrics"
)

// CashflowProjection is the current analysis plus the day-by-day balance outlook.
type CashflowProjection struct {
	Analysis   domain.CashflowAnalysis    `json:"analysis"`
	Projection []domain.BalanceProjection `json:"projection"`
	Summary    string                     `json:"summary"`
}

type CashflowService struct {
	txns     repository.TransactionRepository
	payments repository.VendorPaymentRepository
	cache    cache.AnalysisCache
	engine   *Engine
	events   events.Publisher
	metrics  *metrics.Recorder
}

func NewCashflowService(
	txns repository.TransactionRepository,
	payments repository.VendorPaymentRepository,
	cacheImpl cache.AnalysisCache,
	engine *Engine,
	publisher events.Publisher,
	rec *metrics.Recorder,
) *CashflowService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnalysisCache()
	}
	if publisher == nil {
		publisher = events.NewLogPublisher(rec)
	}
	return &CashflowService{
		txns:     txns,
		payments: payments,
		cache:    cacheImpl,
		engine:   engine,
		events:   publisher,
		metrics:  rec,
	}
}

func (s *CashflowService) ListTransactions(ctx context.Context, userID int64, filter repository.TransactionFilter) ([]domain.Transaction, error) {
	return s.txns.ListTransactions(ctx, userID, filter)
}

// RecordTransaction stores a single entry and drops the user's cached results.
func (s *CashflowService) RecordTransaction(ctx context.Context, txn *domain.Transaction) error {
	if err := validateTransaction(*txn); err != nil {
		return err
	}
	if err := s.txns.CreateTransaction(ctx, txn); err != nil {
		return err
	}

	s.afterWrite(ctx, txn.UserID, 1)
	return nil
}

// ImportTransactions bulk-inserts statement rows for a user.
func (s *CashflowService) ImportTransactions(ctx context.Context, userID int64, txns []domain.Transaction) (int, error) {
	for i, t := range txns {
		if err := validateTransaction(t); err != nil {
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	inserted, err := s.txns.CreateTransactions(ctx, userID, txns)
	if err != nil {
		return 0, err
	}
	if inserted > 0 {
		s.afterWrite(ctx, userID, inserted)
	}
	return inserted, nil
}

// RecordVendorPayment stores a payable and drops the user's cached score.
func (s *CashflowService) RecordVendorPayment(ctx context.Context, payment *domain.VendorPayment) error {
	payment.Vendor = strings.TrimSpace(payment.Vendor)
	switch {
	case payment.Vendor == "":
		return domain.InvalidInput("vendor", "is required")
	case payment.Amount < 0 || math.IsNaN(payment.Amount) || math.IsInf(payment.Amount, 0):
		return domain.InvalidInput("amount", "must be a non-negative number, got %v", payment.Amount)
	case payment.DueDate.IsZero():
		return domain.InvalidInput("due_date", "is required")
	}
	if err := s.payments.CreateVendorPayment(ctx, payment); err != nil {
		return err
	}
	if err := s.cache.InvalidateUser(ctx, payment.UserID); err != nil {
		log.Warn().Err(err).Int64("user_id", payment.UserID).Msg("cashflow: cache invalidate failed")
	}
	return nil
}

func (s *CashflowService) afterWrite(ctx context.Context, userID int64, count int) {
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("cashflow: cache invalidate failed")
	}

	ev, err := events.NewEvent(events.TypeTransactionsAdd, userID, map[string]int{"count": count})
	if err == nil {
		err = s.events.Publish(ctx, ev)
	}
	if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("cashflow: publish event failed")
	}
}

// Analyze runs the liquidity analyzer over every recorded transaction.
func (s *CashflowService) Analyze(ctx context.Context, userID int64) (domain.CashflowAnalysis, error) {
	cached, ok, err := s.cache.GetCashflow(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("cashflow: cache get analysis failed")
	}
	s.metrics.RecordCache("cashflow", ok)
	if ok {
		return *cached, nil
	}

	txns, err := s.txns.ListTransactions(ctx, userID, repository.TransactionFilter{})
	if err != nil {
		return domain.CashflowAnalysis{}, err
	}

	start := time.Now()
	analysis, err := s.engine.Liquidity.Analyze(txns, nil)
	s.metrics.ObserveEngine("liquidity.analyze", start, err)
	if err != nil {
		return domain.CashflowAnalysis{}, fmt.Errorf("analyze cashflow for user %d: %w", userID, err)
	}

	if err := s.cache.SetCashflow(ctx, userID, analysis); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("cashflow: cache set analysis failed")
	}
	return analysis, nil
}

// Score computes the Spivot Score from transactions and vendor payments.
func (s *CashflowService) Score(ctx context.Context, userID int64) (domain.SpivotScore, error) {
	cached, ok, err := s.cache.GetScore(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("cashflow: cache get score failed")
	}
	s.metrics.RecordCache("score", ok)
	if ok {
		return *cached, nil
	}

	txns, err := s.txns.ListTransactions(ctx, userID, repository.TransactionFilter{})
	if err != nil {
		return domain.SpivotScore{}, err
	}
	payments, err := s.payments.ListVendorPayments(ctx, userID)
	if err != nil {
		return domain.SpivotScore{}, err
	}

	start := time.Now()
	score, err := s.engine.Credit.FromTransactions(txns, payments)
	s.metrics.ObserveEngine("credit.score", start, err)
	if err != nil {
		return domain.SpivotScore{}, fmt.Errorf("score user %d: %w", userID, err)
	}

	if err := s.cache.SetScore(ctx, userID, score); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("cashflow: cache set score failed")
	}
	return score, nil
}

// Project extends the current analysis days into the future.
func (s *CashflowService) Project(ctx context.Context, userID int64, days int) (CashflowProjection, error) {
	analysis, err := s.Analyze(ctx, userID)
	if err != nil {
		return CashflowProjection{}, err
	}

	projection, err := s.engine.Liquidity.ProjectBalance(analysis.CurrentBalance, analysis.BurnRate, days)
	if err != nil {
		return CashflowProjection{}, err
	}

	return CashflowProjection{
		Analysis:   analysis,
		Projection: projection,
		Summary:    s.engine.Liquidity.Summary(analysis),
	}, nil
}

func (s *CashflowService) ExpenseBreakdown(ctx context.Context, userID int64) ([]domain.ExpenseCategory, error) {
	breakdown, err := s.txns.ExpenseBreakdown(ctx, userID)
	if err != nil {
		return nil, err
	}
	if breakdown == nil {
		breakdown = make([]domain.ExpenseCategory, 0)
	}
	return breakdown, nil
}

func validateTransaction(t domain.Transaction) error {
	switch {
	case t.Date.IsZero():
		return domain.InvalidInput("date", "is required")
	case t.Amount < 0 || math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0):
		return domain.InvalidInput("amount", "must be a non-negative number, got %v", t.Amount)
	case !t.Kind.Valid():
		return domain.InvalidInput("kind", "must be credit or debit")
	}
	return nil
}
