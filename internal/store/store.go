// Package store holds the last-fetched snapshot of each domain collection
// with per-collection loading, error and staleness state. It is the only
// owner of live cache state; every other component reads value-copied
// snapshots and never writes back.
package store

import (
	"time"

	"crestfund-core/internal/domain"
)

// Collection names used in snapshots, change events and refresh requests.
const (
	ColInvestments         = "investments"
	ColInvestorInvestments = "investor_investments"
	ColUsers               = "users"
	ColCompanies           = "companies"
	ColProfitLoss          = "profit_loss"
)

// AllCollections lists every collection name the store tracks.
var AllCollections = []string{
	ColInvestments,
	ColInvestorInvestments,
	ColUsers,
	ColCompanies,
	ColProfitLoss,
}

// Store owns one cached collection per domain type.
type Store struct {
	Investments         *Collection[domain.Investment]
	InvestorInvestments *Collection[domain.InvestorInvestment]
	Users               *Collection[domain.User]
	Companies           *Collection[domain.Company]
	ProfitLoss          *Collection[domain.ProfitLossRecord]
}

// New creates an empty store with all collections unfetched (stale).
func New() *Store {
	return &Store{
		Investments: NewCollection(ColInvestments, func(i domain.Investment) string {
			return i.InvestmentID.String()
		}),
		InvestorInvestments: NewCollection(ColInvestorInvestments, func(ii domain.InvestorInvestment) string {
			return ii.HoldingID.String()
		}),
		Users: NewCollection(ColUsers, func(u domain.User) string {
			return u.UserID.String()
		}),
		Companies: NewCollection(ColCompanies, func(c domain.Company) string {
			return c.CompanyID.String()
		}),
		ProfitLoss: NewCollection(ColProfitLoss, func(p domain.ProfitLossRecord) string {
			return p.RecordID.String()
		}),
	}
}

// Snapshot assembles a value copy of every collection for the analytics and
// consistency layers. Per-collection fetch times ride along so callers can
// surface data age next to derived numbers.
func (s *Store) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		Investments:         s.Investments.Get().Items,
		InvestorInvestments: s.InvestorInvestments.Get().Items,
		Users:               s.Users.Get().Items,
		Companies:           s.Companies.Get().Items,
		ProfitLossRecords:   s.ProfitLoss.Get().Items,
		FetchedAt: map[string]time.Time{
			ColInvestments:         s.Investments.LastFetchedAt(),
			ColInvestorInvestments: s.InvestorInvestments.LastFetchedAt(),
			ColUsers:               s.Users.LastFetchedAt(),
			ColCompanies:           s.Companies.LastFetchedAt(),
			ColProfitLoss:          s.ProfitLoss.LastFetchedAt(),
		},
	}
}

// ApplySnapshot overwrites the derived fields the Reconciler recomputed back
// into the live investments collection. Only investments present in the
// snapshot are touched; this is a local, non-persisted rewrite and the next
// server fetch is authoritative.
func (s *Store) ApplySnapshot(snap domain.Snapshot) {
	for _, inv := range snap.Investments {
		s.Investments.UpsertOne(inv)
	}
}
