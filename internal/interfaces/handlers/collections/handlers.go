package collections

import (
	"crestfund-core/internal/cache"
	"crestfund-core/internal/pkg/response"
	"crestfund-core/internal/store"

	"github.com/gofiber/fiber/v2"
)

// Handlers expose collection-level cache operations.
type Handlers struct {
	Cache *cache.Service
}

// POST /api/v1/collections/refresh?name=investments&force=true
// Empty name refreshes every collection. Per-collection failures are state
// (recorded on the collection) and reported, not thrown.
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	force := c.Query("force", "true") != "false"
	name := c.Query("name")

	var err error
	if name == "" {
		err = h.Cache.EnsureAll(c.Context(), force)
	} else {
		err = h.Cache.EnsureFresh(c.Context(), name, force)
	}
	meta := fiber.Map{"forced": force}
	if err != nil {
		meta["fetch_error"] = err.Error()
	}
	return response.Success(c, "Refresh completed", h.states(), meta)
}

// GET /api/v1/collections/state — loading/error/staleness per collection.
func (h *Handlers) State(c *fiber.Ctx) error {
	return response.Success(c, "Collection state", h.states(), nil)
}

type collectionView struct {
	Count         int    `json:"count"`
	Loading       bool   `json:"loading"`
	Error         string `json:"error,omitempty"`
	LastFetchedAt string `json:"last_fetched_at,omitempty"`
	Stale         bool   `json:"stale"`
}

func (h *Handlers) states() map[string]collectionView {
	st := h.Cache.Store
	out := make(map[string]collectionView, len(store.AllCollections))
	out[store.ColInvestments] = view(st.Investments.Get(), st.Investments.IsStale(h.Cache.MaxAge))
	out[store.ColInvestorInvestments] = view(st.InvestorInvestments.Get(), st.InvestorInvestments.IsStale(h.Cache.MaxAge))
	out[store.ColUsers] = view(st.Users.Get(), st.Users.IsStale(h.Cache.MaxAge))
	out[store.ColCompanies] = view(st.Companies.Get(), st.Companies.IsStale(h.Cache.MaxAge))
	out[store.ColProfitLoss] = view(st.ProfitLoss.Get(), st.ProfitLoss.IsStale(h.Cache.MaxAge))
	return out
}

func view[T any](s store.CollectionState[T], stale bool) collectionView {
	v := collectionView{
		Count:   len(s.Items),
		Loading: s.Loading,
		Error:   s.Err,
		Stale:   stale,
	}
	if !s.LastFetchedAt.IsZero() {
		v.LastFetchedAt = s.LastFetchedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return v
}
