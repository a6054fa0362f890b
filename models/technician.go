package models

import (
	"time"

	"gorm.io/gorm"
)

// Technician represents a field worker in the directory
type Technician struct {
	ID         string         `gorm:"primaryKey" json:"id"` // TECH### code
	Name       string         `gorm:"not null" json:"name"`
	Phone      string         `gorm:"not null" json:"phone"`
	Email      string         `gorm:"uniqueIndex;not null" json:"email"`
	JoinedDate time.Time      `json:"joined_date"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Technician model
func (Technician) TableName() string {
	return "technicians"
}
