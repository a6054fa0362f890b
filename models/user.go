package models

import (
	"time"

	"gorm.io/gorm"
)

// Account roles. The role is stored explicitly on the record and comes from
// the identity provider's role claim at provisioning time; it is never
// inferred from the email address.
const (
	RoleAdmin      = "admin"
	RoleTechnician = "technician"
)

// User represents an authenticated account (admin or technician)
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Auth0ID      string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	Role         string         `gorm:"not null;default:'technician'" json:"role"`
	TechnicianID *string        `gorm:"index" json:"technician_id,omitempty"` // link into the technician directory
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
