package dashboard

import (
	"crestfund-core/internal/analytics"
	"crestfund-core/internal/cache"
	"crestfund-core/internal/domain"
	"crestfund-core/internal/middleware"
	"crestfund-core/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers expose the derived-metrics views. Each handler ensures the needed
// collections are fresh (stale data with a fetch error still serves: the last
// good snapshot is always safe to derive from), then computes from a snapshot.
type Handlers struct {
	Cache *cache.Service
}

// ensure refreshes the collections a dashboard call derives from. A refresh
// failure is logged and surfaced as metadata, never a request failure.
func (h *Handlers) ensure(c *fiber.Ctx) map[string]interface{} {
	if err := h.Cache.EnsureAll(c.Context(), false); err != nil {
		log.Warn().Err(err).Msg("dashboard refresh failed; serving last snapshot")
		return map[string]interface{}{"fetch_error": err.Error()}
	}
	return nil
}

// GET /api/v1/dashboard/metrics — portfolio totals for the caller's scope.
func (h *Handlers) Metrics(c *fiber.Ctx) error {
	meta := h.ensure(c)
	snap := h.Cache.Store.Snapshot()
	m := analytics.CalculateMetrics(snap, middleware.EffectiveCompanyScope(c))
	return response.Success(c, "Metrics calculated successfully", m, meta)
}

// GET /api/v1/dashboard/trend?granularity=month|quarter|year
func (h *Handlers) Trend(c *fiber.Ctx) error {
	g := analytics.Granularity(c.Query("granularity", string(analytics.ByMonth)))
	switch g {
	case analytics.ByMonth, analytics.ByQuarter, analytics.ByYear:
	default:
		return response.Error(c, "granularity must be month, quarter or year", fiber.StatusBadRequest, nil)
	}
	meta := h.ensure(c)
	snap := h.Cache.Store.Snapshot()
	trend := analytics.CalculatePerformanceTrend(snap, middleware.EffectiveCompanyScope(c), g)
	return response.Success(c, "Performance trend calculated successfully", trend, meta)
}

// GET /api/v1/dashboard/status-distribution
func (h *Handlers) StatusDistribution(c *fiber.Ctx) error {
	meta := h.ensure(c)
	snap := h.Cache.Store.Snapshot()
	dist := analytics.CalculateInvestmentStatusDistribution(snap, middleware.EffectiveCompanyScope(c))
	return response.Success(c, "Status distribution calculated successfully", dist, meta)
}

// GET /api/v1/dashboard/portfolio-distribution — investors see their own
// portfolio; admins and superadmins may ask for any investor via query.
func (h *Handlers) PortfolioDistribution(c *fiber.Ctx) error {
	scope := middleware.GetScope(c)
	investorID := c.Query("investor_id")
	if scope.Role == domain.RoleInvestor {
		investorID = scope.UserID
	}
	meta := h.ensure(c)
	snap := h.Cache.Store.Snapshot()
	dist := analytics.CalculatePortfolioDistribution(snap, investorID)
	return response.Success(c, "Portfolio distribution calculated successfully", dist, meta)
}

// GET /api/v1/dashboard/investments/:id/roi
func (h *Handlers) InvestmentROI(c *fiber.Ctx) error {
	meta := h.ensure(c)
	snap := h.Cache.Store.Snapshot()
	roi := analytics.CalculateROI(snap, c.Params("id"))
	return response.Success(c, "ROI calculated successfully", fiber.Map{"investment_id": c.Params("id"), "roi": roi}, meta)
}

// GET /api/v1/dashboard/company-overview?company_id=... — admins are forced
// to their own company.
func (h *Handlers) CompanyOverview(c *fiber.Ctx) error {
	companyID := middleware.EffectiveCompanyScope(c)
	if companyID == "" {
		return response.Error(c, "company_id is required", fiber.StatusBadRequest, nil)
	}
	meta := h.ensure(c)
	snap := h.Cache.Store.Snapshot()
	overview := analytics.CompanyOverview(snap, companyID)
	return response.Success(c, "Company overview calculated successfully", overview, meta)
}
