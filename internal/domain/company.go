package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is a sub-company that owns Investments. All Total*/Profit/Loss/ROI
// fields are derived from the Investment and InvestorInvestment sets scoped to
// it; the analytics layer recomputes them on read rather than trusting them.
type Company struct {
	CompanyID        uuid.UUID      `gorm:"column:company_id;type:uuid;primaryKey" json:"company_id"`
	Name             string         `gorm:"column:name;not null" json:"name"`
	TotalInvestments int            `gorm:"column:total_investments" json:"total_investments"`
	TotalInvestors   int            `gorm:"column:total_investors" json:"total_investors"`
	TotalValue       float64        `gorm:"column:total_value;type:decimal(18,2)" json:"total_value"`
	Profit           float64        `gorm:"column:profit;type:decimal(18,2)" json:"profit"`
	Loss             float64        `gorm:"column:loss;type:decimal(18,2)" json:"loss"`
	ROI              float64        `gorm:"column:roi;type:decimal(8,2)" json:"roi"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Company) TableName() string {
	return "Companies"
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.CompanyID == uuid.Nil {
		c.CompanyID = uuid.New()
	}
	return nil
}
