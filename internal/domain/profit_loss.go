package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Period tags a ProfitLossRecord with its reporting period.
type Period string

const (
	PeriodDaily     Period = "daily"
	PeriodWeekly    Period = "weekly"
	PeriodMonthly   Period = "monthly"
	PeriodQuarterly Period = "quarterly"
	PeriodYearly    Period = "yearly"
)

// ProfitLossRecord is a realized profit/loss entry for an Investment or an
// individual holding. Exactly one of InvestmentID / HoldingID is expected to
// be set; records with neither are ignored by the analytics layer.
type ProfitLossRecord struct {
	RecordID      uuid.UUID      `gorm:"column:record_id;type:uuid;primaryKey" json:"record_id"`
	InvestmentID  *uuid.UUID     `gorm:"column:investment_id;type:uuid;index" json:"investment_id"`
	HoldingID     *uuid.UUID     `gorm:"column:holding_id;type:uuid;index" json:"holding_id"`
	Period        Period         `gorm:"column:period;type:varchar(20);default:'monthly'" json:"period"`
	Profit        float64        `gorm:"column:profit;type:decimal(18,2)" json:"profit"`
	Loss          float64        `gorm:"column:loss;type:decimal(18,2)" json:"loss"`
	Net           float64        `gorm:"column:net;type:decimal(18,2)" json:"net"`
	PercentChange float64        `gorm:"column:percent_change;type:decimal(8,2)" json:"percent_change"`
	RecordedAt    time.Time      `gorm:"column:recorded_at;not null" json:"recorded_at"`
	CreatedAt     time.Time      `json:"createdAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ProfitLossRecord) TableName() string {
	return "ProfitLossRecords"
}

func (p *ProfitLossRecord) BeforeCreate(tx *gorm.DB) error {
	if p.RecordID == uuid.Nil {
		p.RecordID = uuid.New()
	}
	return nil
}
