// Package credit computes the Spivot score, a 300–900 composite of cash
// consistency, revenue growth and vendor payment history.
package credit

import (
	"math"
	"sort"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
)

// Weights must sum to 1 for the composite to span the full score range.
type Weights struct {
	CashConsistency float64
	RevenueGrowth   float64
	VendorPayment   float64
}

// Config holds the scoring policy.
type Config struct {
	Weights  Weights
	MinScore int
	MaxScore int
	// LowRiskScore and MediumRiskScore are inclusive lower bounds.
	LowRiskScore    int
	MediumRiskScore int
	// GrowthOffset shifts growth so that -offset%..+offset% spans 0..100.
	GrowthOffset           float64
	DefaultCashConsistency float64
	DefaultVendorHistory   float64
}

func DefaultConfig() Config {
	return Config{
		Weights:                Weights{CashConsistency: 0.4, RevenueGrowth: 0.3, VendorPayment: 0.3},
		MinScore:               300,
		MaxScore:               900,
		LowRiskScore:           750,
		MediumRiskScore:        600,
		GrowthOffset:           50,
		DefaultCashConsistency: 50,
		DefaultVendorHistory:   80,
	}
}

// Scorer is safe for concurrent use; it holds only configuration.
type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

func (s *Scorer) Config() Config { return s.cfg }

// Calculate builds the score from pre-derived signals. Out-of-range inputs
// are clamped, so the result always lies in [MinScore, MaxScore].
func (s *Scorer) Calculate(cashConsistency, revenueGrowthPct, vendorPaymentHistory float64) domain.SpivotScore {
	cash := domain.Clamp(cashConsistency, 0, 100)
	growth := domain.Clamp(revenueGrowthPct+s.cfg.GrowthOffset, 0, 100)
	vendor := domain.Clamp(vendorPaymentHistory, 0, 100)

	w := s.cfg.Weights
	weightedRaw := cash*w.CashConsistency + growth*w.RevenueGrowth + vendor*w.VendorPayment

	span := float64(s.cfg.MaxScore - s.cfg.MinScore)
	score := int(math.Round(float64(s.cfg.MinScore) + weightedRaw/100*span))
	score = max(s.cfg.MinScore, min(s.cfg.MaxScore, score))

	growthPct := revenueGrowthPct
	if math.IsNaN(growthPct) || math.IsInf(growthPct, 0) {
		growthPct = 0
	}

	return domain.SpivotScore{
		Score:                score,
		CashConsistency:      domain.Round2(cash),
		RevenueGrowth:        domain.Round2(growth),
		RevenueGrowthPct:     domain.Round2(growthPct),
		VendorPaymentHistory: domain.Round2(vendor),
		RiskLevel:            s.risk(score),
	}
}

func (s *Scorer) risk(score int) domain.RiskLevel {
	switch {
	case score >= s.cfg.LowRiskScore:
		return domain.RiskLow
	case score >= s.cfg.MediumRiskScore:
		return domain.RiskMedium
	default:
		return domain.RiskHigh
	}
}

// FromTransactions derives the three signals from raw records and scores them.
func (s *Scorer) FromTransactions(txns []domain.Transaction, payments []domain.VendorPayment) (domain.SpivotScore, error) {
	for i, t := range txns {
		if !t.Kind.Valid() {
			return domain.SpivotScore{}, domain.InvalidInput("kind", "transaction %d has unknown kind %d", i, int(t.Kind))
		}
		if t.Amount < 0 || math.IsNaN(t.Amount) {
			return domain.SpivotScore{}, domain.InvalidInput("amount", "transaction %d must be a non-negative magnitude, got %v", i, t.Amount)
		}
	}

	ordered := make([]domain.Transaction, len(txns))
	copy(ordered, txns)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date.Before(ordered[j].Date) })

	return s.Calculate(
		s.cashConsistency(ordered),
		revenueGrowth(ordered),
		s.vendorHistory(payments),
	), nil
}

// cashConsistency is 100 minus the coefficient of variation of credit
// amounts, in percent.
func (s *Scorer) cashConsistency(txns []domain.Transaction) float64 {
	var credits []float64
	for _, t := range txns {
		if t.Kind == domain.KindCredit {
			credits = append(credits, t.Amount)
		}
	}
	if len(credits) < 2 {
		return s.cfg.DefaultCashConsistency
	}

	var sum float64
	for _, c := range credits {
		sum += c
	}
	mean := sum / float64(len(credits))
	if mean == 0 {
		return s.cfg.DefaultCashConsistency
	}

	var variance float64
	for _, c := range credits {
		variance += (c - mean) * (c - mean)
	}
	stdDev := math.Sqrt(variance / float64(len(credits)))

	return domain.Clamp(100-(stdDev/mean*100), 0, 100)
}

// revenueGrowth compares credit totals of the later half against the earlier half.
func revenueGrowth(txns []domain.Transaction) float64 {
	if len(txns) < 2 {
		return 0
	}

	mid := len(txns) / 2
	older := sumCredits(txns[:mid])
	recent := sumCredits(txns[mid:])
	if older == 0 {
		return 0
	}
	return (recent - older) / older * 100
}

func sumCredits(txns []domain.Transaction) float64 {
	var total float64
	for _, t := range txns {
		if t.Kind == domain.KindCredit {
			total += t.Amount
		}
	}
	return total
}

func (s *Scorer) vendorHistory(payments []domain.VendorPayment) float64 {
	if len(payments) == 0 {
		return s.cfg.DefaultVendorHistory
	}

	onTime := 0
	for _, p := range payments {
		if p.OnTime {
			onTime++
		}
	}
	return float64(onTime) / float64(len(payments)) * 100
}

// Interpretation describes what credit terms a score qualifies for.
func Interpretation(score int) string {
	switch {
	case score >= 800:
		return "Excellent - Premium credit terms available"
	case score >= 700:
		return "Good - Standard credit terms available"
	case score >= 600:
		return "Fair - Limited credit options"
	case score >= 500:
		return "Below Average - Higher rates may apply"
	default:
		return "Poor - Credit improvement needed"
	}
}
