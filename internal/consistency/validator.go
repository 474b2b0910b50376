// Package consistency cross-checks referential and numeric invariants over a
// snapshot and recomputes derived aggregates. Validate detects and reports,
// Reconcile repairs the derived fields only; neither touches the input.
package consistency

import (
	"fmt"
	"math"

	"crestfund-core/internal/domain"
)

// Tolerance for comparing derived float amounts against recomputed ones.
const amountTolerance = 0.01

// Report is the outcome of a consistency run. Warnings never affect
// IsConsistent; only errors do.
type Report struct {
	IsConsistent bool     `json:"is_consistent"`
	Errors       []string `json:"errors"`
	Warnings     []string `json:"warnings"`
}

// aggregate is the recomputed derived state for one investment.
type aggregate struct {
	totalInvested  float64
	totalInvestors int
}

// recomputeAggregates derives totalInvested/totalInvestors per investment id
// from the holding set. Shared by Validate and Reconcile so both always agree.
func recomputeAggregates(holdings []domain.InvestorInvestment) map[string]aggregate {
	totals := make(map[string]aggregate)
	investors := make(map[string]map[string]struct{})
	for _, h := range holdings {
		id := h.InvestmentID.String()
		agg := totals[id]
		agg.totalInvested += h.Amount
		if investors[id] == nil {
			investors[id] = make(map[string]struct{})
		}
		investors[id][h.InvestorID.String()] = struct{}{}
		agg.totalInvestors = len(investors[id])
		totals[id] = agg
	}
	return totals
}

// Validate checks every invariant over the snapshot and reports violations
// without repairing anything. It is total: any missing optional field is
// treated as "not applicable", and no input shape makes it panic.
func Validate(snap domain.Snapshot) Report {
	r := Report{Errors: []string{}, Warnings: []string{}}

	expected := recomputeAggregates(snap.InvestorInvestments)

	// 1+2: derived aggregates on each investment, plus the sanity floor.
	for _, inv := range snap.Investments {
		id := inv.InvestmentID.String()
		agg := expected[id]
		if math.Abs(inv.TotalInvested-agg.totalInvested) > amountTolerance {
			r.Errors = append(r.Errors, fmt.Sprintf(
				"investment %s (%s): stored total_invested %.2f does not match computed %.2f",
				id, inv.Name, inv.TotalInvested, agg.totalInvested))
		}
		if inv.TotalInvestors != agg.totalInvestors {
			r.Errors = append(r.Errors, fmt.Sprintf(
				"investment %s (%s): stored total_investors %d does not match computed %d",
				id, inv.Name, inv.TotalInvestors, agg.totalInvestors))
		}
		if agg.totalInvested > 0 && inv.CurrentValue < 0.5*agg.totalInvested {
			r.Warnings = append(r.Warnings, fmt.Sprintf(
				"investment %s (%s): current value %.2f is below half of invested %.2f",
				id, inv.Name, inv.CurrentValue, agg.totalInvested))
		}
	}

	// Company aggregate drift is a known gap (not covered by Reconcile);
	// surfaced as warnings only.
	r.Warnings = append(r.Warnings, companyDrift(snap)...)

	// 3: role invariants.
	holdingsPerInvestor := make(map[string]int)
	for _, h := range snap.InvestorInvestments {
		holdingsPerInvestor[h.InvestorID.String()]++
	}
	for _, u := range snap.Users {
		id := u.UserID.String()
		switch {
		case !u.Role.Known():
			r.Errors = append(r.Errors, fmt.Sprintf("user %s (%s): unknown role %q", id, u.Email, u.Role))
		case u.Role == domain.RoleAdmin:
			if u.CompanyID == nil {
				r.Errors = append(r.Errors, fmt.Sprintf("user %s (%s): admin has no company scope", id, u.Email))
			}
		case u.Role == domain.RoleInvestor:
			if holdingsPerInvestor[id] == 0 {
				r.Warnings = append(r.Warnings, fmt.Sprintf("user %s (%s): investor has no holdings", id, u.Email))
			}
		case u.Role == domain.RoleSuperadmin:
			if u.CompanyID != nil {
				r.Warnings = append(r.Warnings, fmt.Sprintf("user %s (%s): superadmin carries a company scope", id, u.Email))
			}
		}
	}

	// 4: per-holding referential and bounds checks.
	for _, h := range snap.InvestorInvestments {
		hid := h.HoldingID.String()
		inv, invOK := snap.InvestmentByID(h.InvestmentID.String())
		if !invOK {
			r.Errors = append(r.Errors, fmt.Sprintf(
				"holding %s: references missing investment %s", hid, h.InvestmentID))
		}
		user, userOK := snap.UserByID(h.InvestorID.String())
		if !userOK {
			r.Errors = append(r.Errors, fmt.Sprintf(
				"holding %s: references missing user %s", hid, h.InvestorID))
		} else if user.Role != domain.RoleInvestor {
			r.Errors = append(r.Errors, fmt.Sprintf(
				"holding %s: user %s has role %q, expected investor", hid, h.InvestorID, user.Role))
		}
		if invOK && inv.HasBounds() {
			if inv.MinInvestment > 0 && h.Amount < inv.MinInvestment {
				r.Errors = append(r.Errors, fmt.Sprintf(
					"holding %s: amount %.2f below minimum investment %.2f of %s",
					hid, h.Amount, inv.MinInvestment, inv.InvestmentID))
			}
			if inv.MaxInvestment > 0 && h.Amount > inv.MaxInvestment {
				r.Errors = append(r.Errors, fmt.Sprintf(
					"holding %s: amount %.2f above maximum investment %.2f of %s",
					hid, h.Amount, inv.MaxInvestment, inv.InvestmentID))
			}
		}
		if h.Amount > 0 && h.CurrentValue < 0.3*h.Amount {
			r.Warnings = append(r.Warnings, fmt.Sprintf(
				"holding %s: current value %.2f is below 30%% of invested %.2f",
				hid, h.CurrentValue, h.Amount))
		}
	}

	r.IsConsistent = len(r.Errors) == 0
	return r
}

// companyDrift compares stored company aggregates against recomputed ones.
func companyDrift(snap domain.Snapshot) []string {
	var warnings []string
	for _, c := range snap.Companies {
		id := c.CompanyID.String()
		var count int
		var value float64
		for _, inv := range snap.Investments {
			if inv.CompanyID == c.CompanyID {
				count++
				value += inv.CurrentValue
			}
		}
		if c.TotalInvestments != count {
			warnings = append(warnings, fmt.Sprintf(
				"company %s (%s): stored total_investments %d does not match computed %d",
				id, c.Name, c.TotalInvestments, count))
		}
		if math.Abs(c.TotalValue-value) > amountTolerance {
			warnings = append(warnings, fmt.Sprintf(
				"company %s (%s): stored total_value %.2f does not match computed %.2f",
				id, c.Name, c.TotalValue, value))
		}
	}
	return warnings
}
