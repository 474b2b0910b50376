package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HoldingStatus is the status of an investor's position.
type HoldingStatus string

const (
	HoldingActive    HoldingStatus = "active"
	HoldingWithdrawn HoldingStatus = "withdrawn"
	HoldingCompleted HoldingStatus = "completed"
)

// InvestorInvestment links one investor (User) to one Investment.
// CurrentValue is derived: proportional to the Investment's value appreciation.
type InvestorInvestment struct {
	HoldingID    uuid.UUID      `gorm:"column:holding_id;type:uuid;primaryKey" json:"holding_id"`
	InvestorID   uuid.UUID      `gorm:"column:investor_id;type:uuid;not null;index" json:"investor_id"`
	InvestmentID uuid.UUID      `gorm:"column:investment_id;type:uuid;not null;index" json:"investment_id"`
	Amount       float64        `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Status       HoldingStatus  `gorm:"column:status;type:varchar(20);default:'active'" json:"status"`
	CurrentValue float64        `gorm:"column:current_value;type:decimal(18,2)" json:"current_value"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (InvestorInvestment) TableName() string {
	return "InvestorInvestments"
}

func (ii *InvestorInvestment) BeforeCreate(tx *gorm.DB) error {
	if ii.HoldingID == uuid.Nil {
		ii.HoldingID = uuid.New()
	}
	return nil
}
