// Package analytics derives financial aggregates from a snapshot. Every
// function here is pure and total: no I/O, no mutation of the input, and a
// valid zero result for empty or partially populated snapshots.
package analytics

import (
	"time"

	"crestfund-core/internal/domain"
)

// Metrics is the aggregate view over a (possibly company-scoped) snapshot.
type Metrics struct {
	TotalValue      float64   `json:"total_value"`
	TotalInvested   float64   `json:"total_invested"`
	TotalProfit     float64   `json:"total_profit"`
	TotalLoss       float64   `json:"total_loss"`
	NetProfit       float64   `json:"net_profit"`
	ROI             float64   `json:"roi"`
	InvestmentCount int       `json:"investment_count"`
	InvestorCount   int       `json:"investor_count"`
	CalculatedAt    time.Time `json:"calculated_at"`
}

// scopedInvestments filters investments by company scope. Empty scope means
// no filtering.
func scopedInvestments(snap domain.Snapshot, scopeID string) []domain.Investment {
	if scopeID == "" {
		return snap.Investments
	}
	out := make([]domain.Investment, 0, len(snap.Investments))
	for _, inv := range snap.Investments {
		if inv.CompanyID.String() == scopeID {
			out = append(out, inv)
		}
	}
	return out
}

// investmentIDSet indexes investments by id for membership checks.
func investmentIDSet(investments []domain.Investment) map[string]domain.Investment {
	set := make(map[string]domain.Investment, len(investments))
	for _, inv := range investments {
		set[inv.InvestmentID.String()] = inv
	}
	return set
}

// CalculateMetrics computes portfolio totals over the snapshot, restricted to
// the company scope when scopeID is non-empty. Holdings referencing
// investments outside the scope never contribute (only in-scope investment
// ids are matched), and ROI is zero-guarded.
func CalculateMetrics(snap domain.Snapshot, scopeID string) Metrics {
	investments := scopedInvestments(snap, scopeID)
	inScope := investmentIDSet(investments)

	m := Metrics{
		InvestmentCount: len(investments),
		CalculatedAt:    time.Now(),
	}
	for _, inv := range investments {
		m.TotalValue += inv.CurrentValue
	}

	investors := make(map[string]struct{})
	for _, h := range snap.InvestorInvestments {
		if _, ok := inScope[h.InvestmentID.String()]; !ok {
			continue
		}
		m.TotalInvested += h.Amount
		investors[h.InvestorID.String()] = struct{}{}
	}
	m.InvestorCount = len(investors)

	for _, rec := range snap.ProfitLossRecords {
		if !recordInScope(rec, inScope, snap) {
			continue
		}
		m.TotalProfit += rec.Profit
		m.TotalLoss += rec.Loss
	}
	m.NetProfit = m.TotalProfit - m.TotalLoss
	if m.TotalInvested > 0 {
		m.ROI = m.NetProfit / m.TotalInvested * 100
	}
	return m
}

// recordInScope matches a profit/loss record against the in-scope investment
// set, following a holding reference to its investment when needed. Records
// referencing nothing are skipped.
func recordInScope(rec domain.ProfitLossRecord, inScope map[string]domain.Investment, snap domain.Snapshot) bool {
	if rec.InvestmentID != nil {
		_, ok := inScope[rec.InvestmentID.String()]
		return ok
	}
	if rec.HoldingID != nil {
		for _, h := range snap.InvestorInvestments {
			if h.HoldingID == *rec.HoldingID {
				_, ok := inScope[h.InvestmentID.String()]
				return ok
			}
		}
	}
	return false
}

// CalculateTotalValue sums current value over scoped investments.
func CalculateTotalValue(snap domain.Snapshot, scopeID string) float64 {
	var total float64
	for _, inv := range scopedInvestments(snap, scopeID) {
		total += inv.CurrentValue
	}
	return total
}

// CalculateROI returns the percent gain of one investment over its baseline.
// The baseline prefers the initial amount, falls back to the minimum
// investment, and yields 0 when no positive baseline exists or the
// investment is unknown.
func CalculateROI(snap domain.Snapshot, investmentID string) float64 {
	inv, ok := snap.InvestmentByID(investmentID)
	if !ok {
		return 0
	}
	baseline := inv.InitialAmount
	if baseline <= 0 {
		baseline = inv.MinInvestment
	}
	if baseline <= 0 {
		return 0
	}
	return (inv.CurrentValue - baseline) / baseline * 100
}
