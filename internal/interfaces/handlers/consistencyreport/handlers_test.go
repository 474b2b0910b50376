package consistencyreport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crestfund-core/internal/bus"
	"crestfund-core/internal/cache"
	"crestfund-core/internal/consistency"
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

func setupReportTest(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	b := bus.New(nil, "events")
	t.Cleanup(b.Close)
	svc := cache.New(store.New(), &fetch.Repository{DB: db}, b, 5*time.Minute, 10*time.Millisecond)
	h := &Handlers{Cache: svc}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	grp := app.Group("/api/v1/consistency", middleware.RoleScope())
	grp.Get("/report", h.Report)
	grp.Post("/reconcile", h.Reconcile)
	return app, db
}

// seedMismatch stores an investment whose persisted aggregates disagree with
// its holdings.
func seedMismatch(t *testing.T, db *gorm.DB) domain.Investment {
	t.Helper()
	investor := domain.User{Fullname: "Ann", Email: "ann@example.com", Role: domain.RoleInvestor}
	require.NoError(t, db.Create(&investor).Error)

	inv := domain.Investment{
		Name: "Fund", AssetClass: "equity", CompanyID: uuid.New(),
		CurrentValue: 1000, TotalInvested: 999, TotalInvestors: 7,
	}
	require.NoError(t, db.Create(&inv).Error)
	require.NoError(t, db.Create(&domain.InvestorInvestment{
		InvestorID: investor.UserID, InvestmentID: inv.InvestmentID,
		Amount: 500, CurrentValue: 500, Status: domain.HoldingActive,
	}).Error)
	return inv
}

func decodeReport(t *testing.T, resp *http.Response) consistency.Report {
	t.Helper()
	var body struct {
		Data consistency.Report `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Data
}

func TestReport_EmptySnapshotIsConsistent(t *testing.T) {
	app, _ := setupReportTest(t)

	req := httptest.NewRequest("GET", "/api/v1/consistency/report", nil)
	req.Header.Set("X-User-Role", "superadmin")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	report := decodeReport(t, resp)
	assert.True(t, report.IsConsistent)
	assert.Empty(t, report.Errors)
}

// Contradictions come back as data in a 200 response, never as a request
// failure.
func TestReport_MismatchIsReportedNotThrown(t *testing.T) {
	app, db := setupReportTest(t)
	seedMismatch(t, db)

	req := httptest.NewRequest("GET", "/api/v1/consistency/report", nil)
	req.Header.Set("X-User-Role", "superadmin")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	report := decodeReport(t, resp)
	assert.False(t, report.IsConsistent)
	assert.NotEmpty(t, report.Errors)
}

func TestReconcile_ClearsAggregateMismatches(t *testing.T) {
	app, db := setupReportTest(t)
	seedMismatch(t, db)

	// load the snapshot first so reconcile has something to rewrite
	warm := httptest.NewRequest("GET", "/api/v1/consistency/report", nil)
	warm.Header.Set("X-User-Role", "superadmin")
	_, err := app.Test(warm, -1)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/consistency/reconcile", nil)
	req.Header.Set("X-User-Role", "superadmin")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	report := decodeReport(t, resp)
	assert.True(t, report.IsConsistent)
	assert.Empty(t, report.Errors)

	// reconcile is local only: the stored row keeps its drifted aggregates
	var stored domain.Investment
	require.NoError(t, db.First(&stored).Error)
	assert.Equal(t, 999.0, stored.TotalInvested)
}
