package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InvestmentStatus is the lifecycle status of an Investment.
type InvestmentStatus string

const (
	InvestmentActive    InvestmentStatus = "Active"
	InvestmentCompleted InvestmentStatus = "Completed"
	InvestmentPaused    InvestmentStatus = "Paused"
)

// RiskLevel is an ordered risk classification (Low < Medium < High < VeryHigh).
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
)

// Rank returns the risk ordering (unknown levels rank lowest).
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	case RiskVeryHigh:
		return 4
	}
	return 0
}

// Investment is an offered investment product. TotalInvested, TotalInvestors
// and CurrentROI are derived, not authoritative: they must equal a function of
// the InvestorInvestment set referencing this Investment, and the Reconciler
// rewrites them in memory only.
type Investment struct {
	InvestmentID  uuid.UUID        `gorm:"column:investment_id;type:uuid;primaryKey" json:"investment_id"`
	Name          string           `gorm:"column:name;not null" json:"name"`
	AssetClass    string           `gorm:"column:asset_class;not null" json:"asset_class"`
	Tags          datatypes.JSON   `gorm:"column:tags;type:json" json:"tags"`
	InitialAmount float64          `gorm:"column:initial_amount;type:decimal(18,2)" json:"initial_amount"`
	CurrentValue  float64          `gorm:"column:current_value;type:decimal(18,2)" json:"current_value"`
	MinInvestment float64          `gorm:"column:min_investment;type:decimal(18,2)" json:"min_investment"`
	MaxInvestment float64          `gorm:"column:max_investment;type:decimal(18,2)" json:"max_investment"`
	ExpectedROI   float64          `gorm:"column:expected_roi;type:decimal(8,2)" json:"expected_roi"`
	RiskLevel     RiskLevel        `gorm:"column:risk_level;type:varchar(20);default:'medium'" json:"risk_level"`
	Status        InvestmentStatus `gorm:"column:status;type:varchar(20);default:'Active'" json:"status"`
	CompanyID     uuid.UUID        `gorm:"column:company_id;type:uuid;index" json:"company_id"`
	TotalInvested float64          `gorm:"column:total_invested;type:decimal(18,2)" json:"total_invested"`
	TotalInvestors int             `gorm:"column:total_investors" json:"total_investors"`
	CurrentROI    float64          `gorm:"column:current_roi;type:decimal(8,2)" json:"current_roi"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (Investment) TableName() string {
	return "Investments"
}

// BeforeCreate sets UUID if not set (for DBs without gen_random_uuid).
func (i *Investment) BeforeCreate(tx *gorm.DB) error {
	if i.InvestmentID == uuid.Nil {
		i.InvestmentID = uuid.New()
	}
	return nil
}

// HasBounds reports whether min/max investment limits are set (0 = unset).
func (i *Investment) HasBounds() bool {
	return i.MinInvestment > 0 || i.MaxInvestment > 0
}
