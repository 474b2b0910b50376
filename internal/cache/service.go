// Package cache orchestrates the entity cache store against its fetch
// collaborator and the propagation bus: staleness-gated refresh, optimistic
// mutations with local reconciliation, and change-event wiring.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crestfund-core/internal/bus"
	"crestfund-core/internal/consistency"
	"crestfund-core/internal/domain"
	"crestfund-core/internal/fetch"
	"crestfund-core/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service mediates every read and mutation of the cached collections.
type Service struct {
	Store     *store.Store
	Repo      *fetch.Repository
	Bus       *bus.Bus
	Debounced *bus.Debounced
	MaxAge    time.Duration
}

// New wires a service over its collaborators. debounceWindow <= 0 uses the
// bus default.
func New(st *store.Store, repo *fetch.Repository, b *bus.Bus, maxAge, debounceWindow time.Duration) *Service {
	return &Service{
		Store:     st,
		Repo:      repo,
		Bus:       b,
		Debounced: bus.NewDebounced(b, debounceWindow),
		MaxAge:    maxAge,
	}
}

// EnsureFresh refreshes one collection by name unless it is fresh and force
// is false. Unknown names are an error.
func (s *Service) EnsureFresh(ctx context.Context, name string, force bool) error {
	switch name {
	case store.ColInvestments:
		return s.Store.Investments.EnsureFresh(ctx, s.MaxAge, force, s.Repo.FetchInvestments)
	case store.ColInvestorInvestments:
		return s.Store.InvestorInvestments.EnsureFresh(ctx, s.MaxAge, force, s.Repo.FetchInvestorInvestments)
	case store.ColUsers:
		return s.Store.Users.EnsureFresh(ctx, s.MaxAge, force, s.Repo.FetchUsers)
	case store.ColCompanies:
		return s.Store.Companies.EnsureFresh(ctx, s.MaxAge, force, s.Repo.FetchCompanies)
	case store.ColProfitLoss:
		return s.Store.ProfitLoss.EnsureFresh(ctx, s.MaxAge, force, s.Repo.FetchProfitLoss)
	}
	return fmt.Errorf("unknown collection %q", name)
}

// EnsureAll refreshes every collection. The first failure is returned but the
// remaining collections are still attempted: each collection fails
// independently and keeps its previous items.
func (s *Service) EnsureAll(ctx context.Context, force bool) error {
	var firstErr error
	for _, name := range store.AllCollections {
		if err := s.EnsureFresh(ctx, name, force); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RefreshForRole force-refreshes the collections a role's views depend on.
// Used as the polling fallback callback.
func (s *Service) RefreshForRole(role domain.Role) bus.RefreshFunc {
	var collections []string
	switch role {
	case domain.RoleInvestor:
		collections = []string{store.ColInvestments, store.ColInvestorInvestments, store.ColProfitLoss}
	case domain.RoleAdmin:
		collections = []string{store.ColInvestments, store.ColInvestorInvestments, store.ColUsers, store.ColProfitLoss}
	default:
		collections = store.AllCollections
	}
	return func(ctx context.Context) error {
		var firstErr error
		for _, name := range collections {
			if err := s.EnsureFresh(ctx, name, true); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
}

// eventFor maps a collection name to its change event.
func eventFor(name string) string {
	switch name {
	case store.ColInvestments:
		return bus.EventInvestmentsChanged
	case store.ColInvestorInvestments:
		return bus.EventHoldingsChanged
	case store.ColUsers:
		return bus.EventUsersChanged
	case store.ColCompanies:
		return bus.EventCompaniesChanged
	case store.ColProfitLoss:
		return bus.EventProfitLossChanged
	}
	return ""
}

// collectionFor maps a change event back to its collection name.
func collectionFor(event string) string {
	switch event {
	case bus.EventInvestmentsChanged:
		return store.ColInvestments
	case bus.EventHoldingsChanged:
		return store.ColInvestorInvestments
	case bus.EventUsersChanged:
		return store.ColUsers
	case bus.EventCompaniesChanged:
		return store.ColCompanies
	case bus.EventProfitLossChanged:
		return store.ColProfitLoss
	}
	return ""
}

// WireBus subscribes the service to every domain change event so any event,
// local or remote, force-refreshes the named collection. Returns the
// unsubscribe func.
func (s *Service) WireBus() func() {
	return s.Bus.Subscribe(func(ev bus.Event) {
		name := collectionFor(ev.Name)
		if name == "" {
			return
		}
		if err := s.EnsureFresh(context.Background(), name, true); err != nil {
			log.Warn().Str("event", ev.Name).Err(err).Msg("refresh on change event failed")
		}
	},
		bus.EventInvestmentsChanged,
		bus.EventHoldingsChanged,
		bus.EventUsersChanged,
		bus.EventCompaniesChanged,
		bus.EventProfitLossChanged,
	)
}

// reconcileLocal recomputes investment aggregates over the current snapshot
// and writes them back into the live collection, so views read numbers that
// match the optimistic change until the next fetch overwrites them.
func (s *Service) reconcileLocal() {
	s.Store.ApplySnapshot(consistency.Reconcile(s.Store.Snapshot()))
}

// notify publishes a debounced change event carrying the entity id.
func (s *Service) notify(collection string, id uuid.UUID) {
	payload, _ := json.Marshal(map[string]string{"id": id.String()})
	s.Debounced.Publish(eventFor(collection), payload)
}

// CreateInvestment persists, optimistically inserts, reconciles and notifies.
func (s *Service) CreateInvestment(ctx context.Context, inv domain.Investment) (domain.Investment, error) {
	created, err := s.Repo.CreateInvestment(ctx, inv)
	if err != nil {
		return domain.Investment{}, err
	}
	s.Store.Investments.UpsertOne(created)
	s.reconcileLocal()
	s.notify(store.ColInvestments, created.InvestmentID)
	return created, nil
}

// UpdateInvestment persists, optimistically replaces, reconciles and notifies.
func (s *Service) UpdateInvestment(ctx context.Context, inv domain.Investment) (domain.Investment, error) {
	updated, err := s.Repo.UpdateInvestment(ctx, inv)
	if err != nil {
		return domain.Investment{}, err
	}
	s.Store.Investments.UpsertOne(updated)
	s.reconcileLocal()
	s.notify(store.ColInvestments, updated.InvestmentID)
	return updated, nil
}

// DeleteInvestment persists the delete, removes locally and notifies.
func (s *Service) DeleteInvestment(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteInvestment(ctx, id); err != nil {
		return err
	}
	s.Store.Investments.RemoveOne(id.String())
	s.notify(store.ColInvestments, id)
	return nil
}

// CreateHolding persists a new investor investment, optimistically inserts
// it, reconciles investment aggregates and notifies.
func (s *Service) CreateHolding(ctx context.Context, h domain.InvestorInvestment) (domain.InvestorInvestment, error) {
	created, err := s.Repo.CreateInvestorInvestment(ctx, h)
	if err != nil {
		return domain.InvestorInvestment{}, err
	}
	s.Store.InvestorInvestments.UpsertOne(created)
	s.reconcileLocal()
	s.notify(store.ColInvestorInvestments, created.HoldingID)
	return created, nil
}

// DeleteHolding persists the delete, removes locally, reconciles and notifies.
func (s *Service) DeleteHolding(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteInvestorInvestment(ctx, id); err != nil {
		return err
	}
	s.Store.InvestorInvestments.RemoveOne(id.String())
	s.reconcileLocal()
	s.notify(store.ColInvestorInvestments, id)
	return nil
}
