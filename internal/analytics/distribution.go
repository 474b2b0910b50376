package analytics

import (
	"sort"

	"crestfund-core/internal/domain"
)

// StatusSlice is one investment-status group in a distribution.
type StatusSlice struct {
	Status     domain.InvestmentStatus `json:"status"`
	Count      int                     `json:"count"`
	TotalValue float64                 `json:"total_value"`
	Percentage float64                 `json:"percentage"`
}

// CalculateInvestmentStatusDistribution groups scoped investments by lifecycle
// status with each group's share of total current value (zero-guarded).
func CalculateInvestmentStatusDistribution(snap domain.Snapshot, scopeID string) []StatusSlice {
	groups := make(map[domain.InvestmentStatus]*StatusSlice)
	var grandTotal float64
	for _, inv := range scopedInvestments(snap, scopeID) {
		g, ok := groups[inv.Status]
		if !ok {
			g = &StatusSlice{Status: inv.Status}
			groups[inv.Status] = g
		}
		g.Count++
		g.TotalValue += inv.CurrentValue
		grandTotal += inv.CurrentValue
	}

	out := make([]StatusSlice, 0, len(groups))
	for _, g := range groups {
		if grandTotal > 0 {
			g.Percentage = g.TotalValue / grandTotal * 100
		}
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out
}

// UnknownAsset is the bucket for holdings whose investment is not in the
// snapshot; they are surfaced, never dropped.
const UnknownAsset = "Unknown"

// AssetSlice is one asset-class group in an investor's portfolio.
type AssetSlice struct {
	AssetClass string  `json:"asset_class"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// CalculatePortfolioDistribution groups an investor's holdings by the
// referenced investment's asset class. Empty investorID considers every
// holding. Percentages are relative to the investor's total current value.
func CalculatePortfolioDistribution(snap domain.Snapshot, investorID string) []AssetSlice {
	byID := investmentIDSet(snap.Investments)

	groups := make(map[string]*AssetSlice)
	var total float64
	for _, h := range snap.InvestorInvestments {
		if investorID != "" && h.InvestorID.String() != investorID {
			continue
		}
		class := UnknownAsset
		if inv, ok := byID[h.InvestmentID.String()]; ok && inv.AssetClass != "" {
			class = inv.AssetClass
		}
		g, ok := groups[class]
		if !ok {
			g = &AssetSlice{AssetClass: class}
			groups[class] = g
		}
		g.Value += h.CurrentValue
		total += h.CurrentValue
	}

	out := make([]AssetSlice, 0, len(groups))
	for _, g := range groups {
		if total > 0 {
			g.Percentage = g.Value / total * 100
		}
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetClass < out[j].AssetClass })
	return out
}
