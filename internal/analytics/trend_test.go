package analytics

import (
	"testing"
	"time"

	"crestfund-core/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodKey_Formats(t *testing.T) {
	ts := time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-11", periodKey(ts, ByMonth))
	assert.Equal(t, "2025-Q4", periodKey(ts, ByQuarter))
	assert.Equal(t, "2025", periodKey(ts, ByYear))

	jan := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-01", periodKey(jan, ByMonth), "month keys are zero padded")
	assert.Equal(t, "2025-Q1", periodKey(jan, ByQuarter))
}

func TestCalculatePerformanceTrend_EmptySnapshot(t *testing.T) {
	trend := CalculatePerformanceTrend(domain.Snapshot{}, "", ByMonth)
	assert.Empty(t, trend)
}

// Two holdings in the same month plus records netting +30 produce one bucket
// with totalInvestment=300, totalReturn=30, roi≈10.
func TestCalculatePerformanceTrend_SameMonthBucket(t *testing.T) {
	company := uuid.New()
	inv := newInvestment(company, 1000)
	invID := inv.InvestmentID
	march := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	h1 := newHolding(uuid.New(), invID, 100)
	h1.CreatedAt = march.AddDate(0, 0, 3)
	h2 := newHolding(uuid.New(), invID, 200)
	h2.CreatedAt = march.AddDate(0, 0, 20)

	snap := domain.Snapshot{
		Investments:         []domain.Investment{inv},
		InvestorInvestments: []domain.InvestorInvestment{h1, h2},
		ProfitLossRecords: []domain.ProfitLossRecord{
			{RecordID: uuid.New(), InvestmentID: &invID, Profit: 50, Loss: 10, RecordedAt: march.AddDate(0, 0, 10)},
			{RecordID: uuid.New(), InvestmentID: &invID, Loss: 10, RecordedAt: march.AddDate(0, 0, 25)},
		},
	}

	trend := CalculatePerformanceTrend(snap, "", ByMonth)
	require.Len(t, trend, 1)
	b := trend[0]
	assert.Equal(t, "2025-03", b.Period)
	assert.Equal(t, 300.0, b.TotalInvestment)
	assert.Equal(t, 2, b.InvestmentCount)
	assert.Equal(t, 30.0, b.TotalReturn)
	assert.InDelta(t, 10.0, b.ROI, 0.001)
}

func TestCalculatePerformanceTrend_SortedAscending(t *testing.T) {
	company := uuid.New()
	inv := newInvestment(company, 0)
	invID := inv.InvestmentID

	later := newHolding(uuid.New(), invID, 10)
	later.CreatedAt = time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	earlier := newHolding(uuid.New(), invID, 20)
	earlier.CreatedAt = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	snap := domain.Snapshot{
		Investments:         []domain.Investment{inv},
		InvestorInvestments: []domain.InvestorInvestment{later, earlier},
	}

	trend := CalculatePerformanceTrend(snap, "", ByMonth)
	require.Len(t, trend, 2)
	assert.Equal(t, "2024-02", trend[0].Period)
	assert.Equal(t, "2025-12", trend[1].Period)
}

// A bucket with returns but no invested amount stays at roi 0 (zero guard).
func TestCalculatePerformanceTrend_ReturnWithoutInvestment(t *testing.T) {
	company := uuid.New()
	inv := newInvestment(company, 0)
	invID := inv.InvestmentID

	snap := domain.Snapshot{
		Investments: []domain.Investment{inv},
		ProfitLossRecords: []domain.ProfitLossRecord{
			{RecordID: uuid.New(), InvestmentID: &invID, Profit: 40, RecordedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		},
	}

	trend := CalculatePerformanceTrend(snap, "", ByQuarter)
	require.Len(t, trend, 1)
	assert.Equal(t, "2025-Q2", trend[0].Period)
	assert.Equal(t, 40.0, trend[0].TotalReturn)
	assert.Zero(t, trend[0].ROI)
}
