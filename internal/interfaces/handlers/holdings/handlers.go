package holdings

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

// Handlers expose investor-investment mutations.
type Handlers struct {
	Cache *cache.Service
}

type holdingBody struct {
	InvestorID   string  `json:"investor_id"`
	InvestmentID string  `json:"investment_id"`
	Amount       float64 `json:"amount"`
}

// POST /api/v1/holdings — investors invest as themselves; admins may invest
// on behalf of an investor by passing investor_id.
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body holdingBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	scope := middleware.GetScope(c)
	if scope.Role == domain.RoleInvestor {
		body.InvestorID = scope.UserID
	}
	investorID, err := uuid.Parse(body.InvestorID)
	if err != nil {
		return response.Error(c, "valid investor_id is required", fiber.StatusBadRequest, nil)
	}
	investmentID, err := uuid.Parse(body.InvestmentID)
	if err != nil {
		return response.Error(c, "valid investment_id is required", fiber.StatusBadRequest, nil)
	}
	if body.Amount <= 0 {
		return response.Error(c, "amount must be positive", fiber.StatusBadRequest, nil)
	}

	created, err := h.Cache.CreateHolding(c.Context(), domain.InvestorInvestment{
		InvestorID:   investorID,
		InvestmentID: investmentID,
		Amount:       body.Amount,
		Status:       domain.HoldingActive,
	})
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Investment recorded successfully", created, nil)
}

// DELETE /api/v1/holdings/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid holding id", fiber.StatusBadRequest, nil)
	}
	if err := h.Cache.DeleteHolding(c.Context(), id); err != nil {
		if errors.Is(err, fetch.ErrNotFound) {
			return response.Error(c, "Holding not found", fiber.StatusNotFound, nil)
		}
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Holding removed successfully", fiber.Map{"holding_id": id}, nil)
}
