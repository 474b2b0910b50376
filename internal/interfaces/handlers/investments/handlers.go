package investments

import (
	"errors"

	"crestfund-core/internal/cache"
	"crestfund-core/internal/domain"
	"crestfund-core/internal/fetch"
	"crestfund-core/internal/middleware"
	"crestfund-core/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers expose investment mutations. Every successful mutation goes
// through the cache service so the snapshot is optimistically updated,
// reconciled and broadcast before the next full re-fetch.
type Handlers struct {
	Cache *cache.Service
}

type investmentBody struct {
	Name          string  `json:"name"`
	AssetClass    string  `json:"asset_class"`
	InitialAmount float64 `json:"initial_amount"`
	CurrentValue  float64 `json:"current_value"`
	MinInvestment float64 `json:"min_investment"`
	MaxInvestment float64 `json:"max_investment"`
	ExpectedROI   float64 `json:"expected_roi"`
	RiskLevel     string  `json:"risk_level"`
	Status        string  `json:"status"`
	CompanyID     string  `json:"company_id"`
}

func (b *investmentBody) toDomain(c *fiber.Ctx) (domain.Investment, error) {
	if b.Name == "" {
		return domain.Investment{}, errors.New("name is required")
	}
	companyID := b.CompanyID
	// Admins may only create investments inside their own company.
	scope := middleware.GetScope(c)
	if scope.Role == domain.RoleAdmin {
		companyID = scope.CompanyID
	}
	cid, err := uuid.Parse(companyID)
	if err != nil {
		return domain.Investment{}, errors.New("valid company_id is required")
	}
	inv := domain.Investment{
		Name:          b.Name,
		AssetClass:    b.AssetClass,
		InitialAmount: b.InitialAmount,
		CurrentValue:  b.CurrentValue,
		MinInvestment: b.MinInvestment,
		MaxInvestment: b.MaxInvestment,
		ExpectedROI:   b.ExpectedROI,
		RiskLevel:     domain.RiskLevel(b.RiskLevel),
		Status:        domain.InvestmentStatus(b.Status),
		CompanyID:     cid,
	}
	if inv.RiskLevel == "" {
		inv.RiskLevel = domain.RiskMedium
	}
	if inv.Status == "" {
		inv.Status = domain.InvestmentActive
	}
	return inv, nil
}

// POST /api/v1/investments
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body investmentBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	inv, err := body.toDomain(c)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	created, err := h.Cache.CreateInvestment(c.Context(), inv)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Investment created successfully", created, nil)
}

// PUT /api/v1/investments/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid investment id", fiber.StatusBadRequest, nil)
	}
	var body investmentBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	inv, err := body.toDomain(c)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	inv.InvestmentID = id
	updated, err := h.Cache.UpdateInvestment(c.Context(), inv)
	if err != nil {
		if errors.Is(err, fetch.ErrNotFound) {
			return response.Error(c, "Investment not found", fiber.StatusNotFound, nil)
		}
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Investment updated successfully", updated, nil)
}

// DELETE /api/v1/investments/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid investment id", fiber.StatusBadRequest, nil)
	}
	if err := h.Cache.DeleteInvestment(c.Context(), id); err != nil {
		if errors.Is(err, fetch.ErrNotFound) {
			return response.Error(c, "Investment not found", fiber.StatusNotFound, nil)
		}
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Investment removed successfully", fiber.Map{"investment_id": id}, nil)
}
