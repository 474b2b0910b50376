package consistency

import (
	"crestfund-core/internal/domain"
)

// Reconcile returns a snapshot where every Investment's derived fields
// (TotalInvested, TotalInvestors, CurrentROI) are recomputed from its
// holdings, using the same formula Validate checks against. The input is not
// mutated. Used right after an optimistic local mutation so views show
// self-consistent numbers until the next server fetch overwrites everything.
//
// Scope is deliberately limited to Investment-level fields: company-level
// aggregates are recomputed on read by the analytics layer instead.
func Reconcile(snap domain.Snapshot) domain.Snapshot {
	out := snap
	out.Investments = make([]domain.Investment, len(snap.Investments))
	copy(out.Investments, snap.Investments)

	expected := recomputeAggregates(snap.InvestorInvestments)
	for i := range out.Investments {
		inv := &out.Investments[i]
		agg := expected[inv.InvestmentID.String()]
		inv.TotalInvested = agg.totalInvested
		inv.TotalInvestors = agg.totalInvestors
		if agg.totalInvested > 0 {
			inv.CurrentROI = (inv.CurrentValue - agg.totalInvested) / agg.totalInvested * 100
		} else {
			inv.CurrentROI = 0
		}
	}
	return out
}
