package fetch

import (
	"context"
	"testing"

	"crestfund-core/internal/domain"
	"crestfund-core/internal/infrastructure/database"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return &Repository{DB: db}
}

func TestFetch_EmptyTablesReturnNonNilSlices(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	investments, err := repo.FetchInvestments(ctx)
	require.NoError(t, err)
	assert.NotNil(t, investments)
	assert.Empty(t, investments)

	holdings, err := repo.FetchInvestorInvestments(ctx)
	require.NoError(t, err)
	assert.NotNil(t, holdings)

	users, err := repo.FetchUsers(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)

	companies, err := repo.FetchCompanies(ctx)
	require.NoError(t, err)
	assert.NotNil(t, companies)

	records, err := repo.FetchProfitLoss(ctx)
	require.NoError(t, err)
	assert.NotNil(t, records)
}

func TestCreateInvestment_AssignsID(t *testing.T) {
	repo := setupRepo(t)

	created, err := repo.CreateInvestment(context.Background(), domain.Investment{
		Name: "Fund", AssetClass: "equity", CompanyID: uuid.New(),
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.InvestmentID)

	fetched, err := repo.FetchInvestments(context.Background())
	require.NoError(t, err)
	require.Len(t, fetched, 1)
	assert.Equal(t, created.InvestmentID, fetched[0].InvestmentID)
}

func TestUpdateInvestment_MissingRowIsNotFound(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.UpdateInvestment(context.Background(), domain.Investment{
		InvestmentID: uuid.New(), Name: "Ghost", AssetClass: "equity", CompanyID: uuid.New(),
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.UpdateInvestment(context.Background(), domain.Investment{Name: "NoID"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteInvestment_SoftDeleteHidesRow(t *testing.T) {
	repo := setupRepo(t)

	created, err := repo.CreateInvestment(context.Background(), domain.Investment{
		Name: "Fund", AssetClass: "equity", CompanyID: uuid.New(),
	})
	require.NoError(t, err)
	require.NoError(t, repo.DeleteInvestment(context.Background(), created.InvestmentID))

	fetched, err := repo.FetchInvestments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fetched)

	assert.ErrorIs(t, repo.DeleteInvestment(context.Background(), created.InvestmentID), ErrNotFound)
}

func TestCreateInvestorInvestment_DefaultsCurrentValueToAmount(t *testing.T) {
	repo := setupRepo(t)

	created, err := repo.CreateInvestorInvestment(context.Background(), domain.InvestorInvestment{
		InvestorID: uuid.New(), InvestmentID: uuid.New(),
		Amount: 750, Status: domain.HoldingActive,
	})
	require.NoError(t, err)
	assert.Equal(t, 750.0, created.CurrentValue)
}

func TestDeleteInvestorInvestment_MissingIsNotFound(t *testing.T) {
	repo := setupRepo(t)
	assert.ErrorIs(t, repo.DeleteInvestorInvestment(context.Background(), uuid.New()), ErrNotFound)
}
