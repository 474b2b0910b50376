package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is a platform role. Admins carry exactly one company scope;
// superadmins and investors carry none.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleInvestor   Role = "investor"
)

// Known reports whether the role is one of the three platform roles.
func (r Role) Known() bool {
	return r == RoleSuperadmin || r == RoleAdmin || r == RoleInvestor
}

// User matches the platform Users table.
type User struct {
	UserID    uuid.UUID      `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Fullname  string         `gorm:"column:fullname;not null" json:"fullname"`
	Email     string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Role      Role           `gorm:"column:role;not null;default:investor" json:"role"`
	CompanyID *uuid.UUID     `gorm:"column:company_id;type:uuid" json:"company_id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "Users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}
