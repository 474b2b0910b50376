package domain

import "time"

// Snapshot is a value copy of every cached collection at a point in time.
// Consumers (analytics, consistency) receive it by value and must not write
// back into it; the cache store is the only owner of live collection state.
type Snapshot struct {
	Investments         []Investment
	InvestorInvestments []InvestorInvestment
	Users               []User
	Companies           []Company
	ProfitLossRecords   []ProfitLossRecord

	// FetchedAt maps a collection name to its last successful fetch time.
	// Zero time means the collection was never fetched.
	FetchedAt map[string]time.Time
}

// InvestmentByID returns the investment with the given id, if present.
func (s *Snapshot) InvestmentByID(id string) (Investment, bool) {
	for _, inv := range s.Investments {
		if inv.InvestmentID.String() == id {
			return inv, true
		}
	}
	return Investment{}, false
}

// UserByID returns the user with the given id, if present.
func (s *Snapshot) UserByID(id string) (User, bool) {
	for _, u := range s.Users {
		if u.UserID.String() == id {
			return u, true
		}
	}
	return User{}, false
}
