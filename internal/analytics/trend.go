package analytics

import (
	"fmt"
	"sort"
	"time"

	"crestfund-core/internal/domain"
)

// Granularity selects the trend bucket size. A single trend call uses one
// granularity consistently; period keys from different granularities are
// never compared against each other.
type Granularity string

const (
	ByMonth   Granularity = "month"
	ByQuarter Granularity = "quarter"
	ByYear    Granularity = "year"
)

// TrendPoint is one period bucket in a performance series.
type TrendPoint struct {
	Period          string  `json:"period"`
	TotalInvestment float64 `json:"total_investment"`
	InvestmentCount int     `json:"investment_count"`
	TotalReturn     float64 `json:"total_return"`
	ROI             float64 `json:"roi"`
}

// periodKey formats a timestamp into a zero-padded key (YYYY-MM, YYYY-Qn or
// YYYY) so ascending lexical order equals chronological order within one
// granularity.
func periodKey(t time.Time, g Granularity) string {
	switch g {
	case ByQuarter:
		q := (int(t.Month())-1)/3 + 1
		return fmt.Sprintf("%04d-Q%d", t.Year(), q)
	case ByYear:
		return fmt.Sprintf("%04d", t.Year())
	default:
		return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
	}
}

// CalculatePerformanceTrend buckets holdings by creation period and
// profit/loss records by recording period, joins the buckets by period key
// and returns them in ascending key order. ROI per bucket is zero-guarded.
func CalculatePerformanceTrend(snap domain.Snapshot, scopeID string, g Granularity) []TrendPoint {
	inScope := investmentIDSet(scopedInvestments(snap, scopeID))

	buckets := make(map[string]*TrendPoint)
	bucket := func(key string) *TrendPoint {
		if b, ok := buckets[key]; ok {
			return b
		}
		b := &TrendPoint{Period: key}
		buckets[key] = b
		return b
	}

	for _, h := range snap.InvestorInvestments {
		if _, ok := inScope[h.InvestmentID.String()]; !ok {
			continue
		}
		b := bucket(periodKey(h.CreatedAt, g))
		b.TotalInvestment += h.Amount
		b.InvestmentCount++
	}

	for _, rec := range snap.ProfitLossRecords {
		if !recordInScope(rec, inScope, snap) {
			continue
		}
		b := bucket(periodKey(rec.RecordedAt, g))
		b.TotalReturn += rec.Profit - rec.Loss
	}

	out := make([]TrendPoint, 0, len(buckets))
	for _, b := range buckets {
		if b.TotalInvestment > 0 {
			b.ROI = b.TotalReturn / b.TotalInvestment * 100
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}
