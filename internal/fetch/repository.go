// Package fetch is the store's backing collaborator: it loads full domain
// collections from the database and applies entity mutations. Fetched rows
// are normalized here (non-nil slices, typed shapes) so downstream consumers
// never guard against missing data.
package fetch

import (
	"context"
	"errors"

	"crestfund-core/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned by mutations targeting a missing entity.
var ErrNotFound = errors.New("record not found")

// Repository loads and mutates domain collections.
type Repository struct {
	DB *gorm.DB
}

// FetchInvestments returns every investment (never nil).
func (r *Repository) FetchInvestments(ctx context.Context) ([]domain.Investment, error) {
	out := make([]domain.Investment, 0)
	if err := r.DB.WithContext(ctx).Order("created_at").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FetchInvestorInvestments returns every holding (never nil).
func (r *Repository) FetchInvestorInvestments(ctx context.Context) ([]domain.InvestorInvestment, error) {
	out := make([]domain.InvestorInvestment, 0)
	if err := r.DB.WithContext(ctx).Order("created_at").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FetchUsers returns every user (never nil).
func (r *Repository) FetchUsers(ctx context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0)
	if err := r.DB.WithContext(ctx).Order("created_at").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FetchCompanies returns every company (never nil).
func (r *Repository) FetchCompanies(ctx context.Context) ([]domain.Company, error) {
	out := make([]domain.Company, 0)
	if err := r.DB.WithContext(ctx).Order("created_at").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FetchProfitLoss returns every profit/loss record (never nil).
func (r *Repository) FetchProfitLoss(ctx context.Context) ([]domain.ProfitLossRecord, error) {
	out := make([]domain.ProfitLossRecord, 0)
	if err := r.DB.WithContext(ctx).Order("recorded_at").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CreateInvestment persists a new investment and returns it with ids set.
func (r *Repository) CreateInvestment(ctx context.Context, inv domain.Investment) (domain.Investment, error) {
	if err := r.DB.WithContext(ctx).Create(&inv).Error; err != nil {
		return domain.Investment{}, err
	}
	return inv, nil
}

// UpdateInvestment saves the full row for an existing investment.
func (r *Repository) UpdateInvestment(ctx context.Context, inv domain.Investment) (domain.Investment, error) {
	if inv.InvestmentID == uuid.Nil {
		return domain.Investment{}, ErrNotFound
	}
	res := r.DB.WithContext(ctx).Model(&domain.Investment{}).
		Where("investment_id = ?", inv.InvestmentID).
		Updates(&inv)
	if res.Error != nil {
		return domain.Investment{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Investment{}, ErrNotFound
	}
	return inv, nil
}

// DeleteInvestment soft-deletes an investment by id.
func (r *Repository) DeleteInvestment(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&domain.Investment{}, "investment_id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateInvestorInvestment persists a new holding.
func (r *Repository) CreateInvestorInvestment(ctx context.Context, h domain.InvestorInvestment) (domain.InvestorInvestment, error) {
	if h.CurrentValue == 0 {
		h.CurrentValue = h.Amount
	}
	if err := r.DB.WithContext(ctx).Create(&h).Error; err != nil {
		return domain.InvestorInvestment{}, err
	}
	return h, nil
}

// DeleteInvestorInvestment soft-deletes a holding by id.
func (r *Repository) DeleteInvestorInvestment(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&domain.InvestorInvestment{}, "holding_id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
