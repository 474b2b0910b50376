package dashboard

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"crestfund-core/internal/bus"
	"crestfund-core/internal/cache"
	"crestfund-core/internal/domain"
	"crestfund-core/internal/fetch"
	"crestfund-core/internal/infrastructure/database"
	"crestfund-core/internal/middleware"
	"crestfund-core/internal/store"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDashboardTest(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	b := bus.New(nil, "events")
	t.Cleanup(b.Close)
	svc := cache.New(store.New(), &fetch.Repository{DB: db}, b, 5*time.Minute, 10*time.Millisecond)
	h := &Handlers{Cache: svc}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	grp := app.Group("/api/v1/dashboard", middleware.RoleScope())
	grp.Get("/metrics", h.Metrics)
	grp.Get("/trend", h.Trend)
	grp.Get("/status-distribution", h.StatusDistribution)
	grp.Get("/portfolio-distribution", h.PortfolioDistribution)
	grp.Get("/investments/:id/roi", h.InvestmentROI)
	grp.Get("/company-overview", h.CompanyOverview)
	return app, db
}

func seedScenario(t *testing.T, db *gorm.DB) (companyA, companyB uuid.UUID) {
	t.Helper()
	ca := domain.Company{Name: "Alpha"}
	cb := domain.Company{Name: "Beta"}
	require.NoError(t, db.Create(&ca).Error)
	require.NoError(t, db.Create(&cb).Error)

	investor := domain.User{Fullname: "Ann", Email: "ann@example.com", Role: domain.RoleInvestor}
	require.NoError(t, db.Create(&investor).Error)

	invA := domain.Investment{Name: "A", AssetClass: "equity", CurrentValue: 1000, CompanyID: ca.CompanyID, Status: domain.InvestmentActive}
	invB := domain.Investment{Name: "B", AssetClass: "bonds", CurrentValue: 2000, CompanyID: cb.CompanyID, Status: domain.InvestmentActive}
	require.NoError(t, db.Create(&invA).Error)
	require.NoError(t, db.Create(&invB).Error)

	require.NoError(t, db.Create(&domain.InvestorInvestment{
		InvestorID: investor.UserID, InvestmentID: invA.InvestmentID, Amount: 400, CurrentValue: 400, Status: domain.HoldingActive,
	}).Error)
	require.NoError(t, db.Create(&domain.InvestorInvestment{
		InvestorID: investor.UserID, InvestmentID: invB.InvestmentID, Amount: 600, CurrentValue: 600, Status: domain.HoldingActive,
	}).Error)
	return ca.CompanyID, cb.CompanyID
}

func decodeData(t *testing.T, resp io.Reader) map[string]interface{} {
	t.Helper()
	var body struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp).Decode(&body))
	return body.Data
}

func TestMetrics_MissingRoleIsUnauthorized(t *testing.T) {
	app, _ := setupDashboardTest(t)
	req := httptest.NewRequest("GET", "/api/v1/dashboard/metrics", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMetrics_SuperadminSeesEverything(t *testing.T) {
	app, db := setupDashboardTest(t)
	seedScenario(t, db)

	req := httptest.NewRequest("GET", "/api/v1/dashboard/metrics", nil)
	req.Header.Set("X-User-Role", "superadmin")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := decodeData(t, resp.Body)
	assert.Equal(t, 3000.0, data["total_value"])
	assert.Equal(t, 1000.0, data["total_invested"])
	assert.Equal(t, 2.0, data["investment_count"])
}

// Admin requests are forced to their own company scope regardless of query.
func TestMetrics_AdminForcedToOwnCompany(t *testing.T) {
	app, db := setupDashboardTest(t)
	companyA, companyB := seedScenario(t, db)

	req := httptest.NewRequest("GET", "/api/v1/dashboard/metrics?company_id="+companyB.String(), nil)
	req.Header.Set("X-User-Role", "admin")
	req.Header.Set("X-Company-Id", companyA.String())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := decodeData(t, resp.Body)
	assert.Equal(t, 1000.0, data["total_value"])
	assert.Equal(t, 400.0, data["total_invested"])
}

func TestMetrics_AdminWithoutCompanyScopeForbidden(t *testing.T) {
	app, _ := setupDashboardTest(t)
	req := httptest.NewRequest("GET", "/api/v1/dashboard/metrics", nil)
	req.Header.Set("X-User-Role", "admin")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestTrend_RejectsUnknownGranularity(t *testing.T) {
	app, _ := setupDashboardTest(t)
	req := httptest.NewRequest("GET", "/api/v1/dashboard/trend?granularity=fortnight", nil)
	req.Header.Set("X-User-Role", "superadmin")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCompanyOverview_RequiresCompanyID(t *testing.T) {
	app, _ := setupDashboardTest(t)
	req := httptest.NewRequest("GET", "/api/v1/dashboard/company-overview", nil)
	req.Header.Set("X-User-Role", "superadmin")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCompanyOverview_ComputesForScope(t *testing.T) {
	app, db := setupDashboardTest(t)
	companyA, _ := seedScenario(t, db)

	req := httptest.NewRequest("GET", "/api/v1/dashboard/company-overview?company_id="+companyA.String(), nil)
	req.Header.Set("X-User-Role", "superadmin")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := decodeData(t, resp.Body)
	assert.Equal(t, "Alpha", data["name"])
	assert.Equal(t, 1.0, data["total_investments"])
	assert.Equal(t, 400.0, data["total_invested"])
}
