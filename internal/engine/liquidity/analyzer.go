// Package liquidity derives burn rate, runway and alert level from a
// transaction history.
package liquidity

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spivot-hq/spivot/backend-go/internal/domain"
)

// Config holds the liquidity thresholds.
type Config struct {
	// CriticalRunwayDays and WarningRunwayDays are exclusive upper bounds.
	CriticalRunwayDays int
	WarningRunwayDays  int
	// WindowDays is the trailing window used for flows and burn rate.
	WindowDays int
	// InfiniteRunwayDays is reported when nothing is being burned.
	InfiniteRunwayDays int
	CurrencySymbol     string
}

func DefaultConfig() Config {
	return Config{
		CriticalRunwayDays: 20,
		WarningRunwayDays:  45,
		WindowDays:         30,
		InfiniteRunwayDays: 999,
		CurrencySymbol:     "₹",
	}
}

// Analyzer is safe for concurrent use; it holds only configuration.
type Analyzer struct {
	cfg Config
	now func() time.Time
}

type Option func(*Analyzer)

// WithClock overrides the reference time for the trailing window.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

func NewAnalyzer(cfg Config, opts ...Option) *Analyzer {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 30
	}
	a := &Analyzer{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) Config() Config { return a.cfg }

// Analyze summarizes cashflow. When currentBalance is nil the balance is
// estimated as total credits minus total debits over the whole history,
// while flows and burn rate only use the trailing window.
// TODO: the two windows disagree; waiting on product review before aligning them.
func (a *Analyzer) Analyze(txns []domain.Transaction, currentBalance *float64) (domain.CashflowAnalysis, error) {
	if len(txns) == 0 {
		balance := 0.0
		if currentBalance != nil {
			balance = *currentBalance
		}
		return domain.CashflowAnalysis{
			CashRunwayDays: a.cfg.InfiniteRunwayDays,
			CurrentBalance: domain.Round2(balance),
			AlertLevel:     domain.AlertNormal,
		}, nil
	}

	windowStart := a.now().AddDate(0, 0, -a.cfg.WindowDays)

	var inflow, outflow, totalCredits, totalDebits float64
	for i, t := range txns {
		if err := validateTransaction(i, t); err != nil {
			return domain.CashflowAnalysis{}, err
		}

		recent := !t.Date.Before(windowStart)
		switch t.Kind {
		case domain.KindCredit:
			totalCredits += t.Amount
			if recent {
				inflow += t.Amount
			}
		case domain.KindDebit:
			totalDebits += t.Amount
			if recent {
				outflow += t.Amount
			}
		}
	}

	burnRate := outflow / float64(a.cfg.WindowDays)

	balance := totalCredits - totalDebits
	if currentBalance != nil {
		balance = *currentBalance
	}

	runway := a.cfg.InfiniteRunwayDays
	if burnRate > 0 {
		runway = a.runwayDays(balance / burnRate)
	}

	return domain.CashflowAnalysis{
		BurnRate:       domain.Round2(burnRate),
		CashRunwayDays: runway,
		CurrentBalance: domain.Round2(balance),
		AlertLevel:     a.classify(runway),
		MonthlyInflow:  domain.Round2(inflow),
		MonthlyOutflow: domain.Round2(outflow),
	}, nil
}

// maxRunwayDays bounds the float-to-int conversion of balance / burn rate.
const maxRunwayDays = math.MaxInt32

// runwayDays floors days of cover into [0, maxRunwayDays].
func (a *Analyzer) runwayDays(days float64) int {
	switch {
	case math.IsNaN(days) || days <= 0:
		return 0
	case days >= maxRunwayDays:
		return maxRunwayDays
	}
	return int(math.Floor(days))
}

func (a *Analyzer) classify(runway int) domain.AlertLevel {
	switch {
	case runway < a.cfg.CriticalRunwayDays:
		return domain.AlertCritical
	case runway < a.cfg.WarningRunwayDays:
		return domain.AlertWarning
	default:
		return domain.AlertNormal
	}
}

// ProjectBalance walks the balance forward by burnRate per day, floored at 0.
func (a *Analyzer) ProjectBalance(balance, burnRate float64, days int) ([]domain.BalanceProjection, error) {
	if days <= 0 {
		return nil, domain.InvalidInput("days", "must be positive, got %d", days)
	}
	if burnRate < 0 {
		return nil, domain.InvalidInput("burn_rate", "must be non-negative, got %v", burnRate)
	}

	base := a.now()
	projections := make([]domain.BalanceProjection, 0, days)
	for day := 1; day <= days; day++ {
		balance -= burnRate
		projections = append(projections, domain.BalanceProjection{
			Day:              day,
			Date:             base.AddDate(0, 0, day),
			ProjectedBalance: domain.Round2(math.Max(0, balance)),
		})
	}
	return projections, nil
}

// Summary renders a one-line description of the analysis.
func (a *Analyzer) Summary(analysis domain.CashflowAnalysis) string {
	var tag string
	switch analysis.AlertLevel {
	case domain.AlertCritical:
		tag = "[CRITICAL]"
	case domain.AlertWarning:
		tag = "[WARNING]"
	case domain.AlertNormal:
		tag = "[OK]"
	default:
		tag = "[UNKNOWN]"
	}

	return fmt.Sprintf("%s Cash Runway: %d days | Burn Rate: %s%s/day | Balance: %s%s",
		tag,
		analysis.CashRunwayDays,
		a.cfg.CurrencySymbol, commaAmount(analysis.BurnRate),
		a.cfg.CurrencySymbol, commaAmount(analysis.CurrentBalance),
	)
}

// commaAmount groups thousands; amounts beyond int64 fall back to big-float grouping.
func commaAmount(v float64) string {
	r := math.Round(v)
	if math.Abs(r) < math.MaxInt64/2 {
		return humanize.Comma(int64(r))
	}
	return humanize.Commaf(r)
}

func validateTransaction(i int, t domain.Transaction) error {
	if !t.Kind.Valid() {
		return domain.InvalidInput("kind", "transaction %d has unknown kind %d", i, int(t.Kind))
	}
	if t.Amount < 0 || math.IsNaN(t.Amount) {
		return domain.InvalidInput("amount", "transaction %d must be a non-negative magnitude, got %v", i, t.Amount)
	}
	return nil
}
