package consistencyreport

import (
	"crestfund-core/internal/cache"
	"crestfund-core/internal/consistency"
	"crestfund-core/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers expose the consistency validator and the manual reconcile action.
type Handlers struct {
	Cache *cache.Service
}

// GET /api/v1/consistency/report — runs the validator over the current
// snapshot. Detected contradictions are data, not faults: this always
// returns 200 with the structured report.
func (h *Handlers) Report(c *fiber.Ctx) error {
	_ = h.Cache.EnsureAll(c.Context(), false)
	report := consistency.Validate(h.Cache.Store.Snapshot())
	return response.Success(c, "Consistency report generated", report, nil)
}

// POST /api/v1/consistency/reconcile — recomputes investment-level derived
// aggregates in the cached snapshot (local only; the next fetch from the
// source of truth overwrites it) and returns the post-reconcile report.
func (h *Handlers) Reconcile(c *fiber.Ctx) error {
	reconciled := consistency.Reconcile(h.Cache.Store.Snapshot())
	h.Cache.Store.ApplySnapshot(reconciled)
	report := consistency.Validate(h.Cache.Store.Snapshot())
	return response.Success(c, "Snapshot reconciled", report, nil)
}
