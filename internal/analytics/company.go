package analytics

import (
	"crestfund-core/internal/domain"
)

// CompanyMetrics is a company's aggregates recomputed from the raw
// Investment/InvestorInvestment/ProfitLoss sets scoped to it. The stored
// Company fields are never trusted: company-level aggregates are not covered
// by the reconciler, so this read-time recomputation is how views get
// numbers that line up with the rest of the snapshot.
type CompanyMetrics struct {
	CompanyID        string  `json:"company_id"`
	Name             string  `json:"name"`
	TotalInvestments int     `json:"total_investments"`
	TotalInvestors   int     `json:"total_investors"`
	TotalValue       float64 `json:"total_value"`
	TotalInvested    float64 `json:"total_invested"`
	Profit           float64 `json:"profit"`
	Loss             float64 `json:"loss"`
	ROI              float64 `json:"roi"`
}

// CompanyOverview recomputes one company's aggregates from the snapshot.
// Unknown company ids yield a zero result with the id echoed back.
func CompanyOverview(snap domain.Snapshot, companyID string) CompanyMetrics {
	out := CompanyMetrics{CompanyID: companyID}
	for _, c := range snap.Companies {
		if c.CompanyID.String() == companyID {
			out.Name = c.Name
			break
		}
	}

	m := CalculateMetrics(snap, companyID)
	out.TotalInvestments = m.InvestmentCount
	out.TotalInvestors = m.InvestorCount
	out.TotalValue = m.TotalValue
	out.TotalInvested = m.TotalInvested
	out.Profit = m.TotalProfit
	out.Loss = m.TotalLoss
	out.ROI = m.ROI
	return out
}
