package models

import (
	"time"

	"gorm.io/gorm"
)

// Order statuses. An order is created as pending, optionally moves through
// assigned/in-progress, is completed by a technician, and may be demoted by
// an admin to rework-required before being completed again.
const (
	StatusPending        = "pending"
	StatusInProgress     = "in-progress"
	StatusAssigned       = "assigned"
	StatusCompleted      = "completed"
	StatusReworkRequired = "rework-required"
)

// Service types offered by the company
const (
	ServiceCleaning     = "Cleaning"
	ServiceRepair       = "Repair"
	ServiceInstallation = "Installation"
)

// Order represents a service order in the system
type Order struct {
	ID                 string  `gorm:"primaryKey" json:"id"` // human-readable ORDER#### code
	CustomerName       string  `gorm:"not null" json:"customer_name"`
	Phone              string  `gorm:"not null" json:"phone"`
	Address            string  `gorm:"not null" json:"address"` // flattened single-line address
	ServiceType        string  `gorm:"not null" json:"service_type"`
	ProblemDescription string  `gorm:"type:text" json:"problem_description"`
	AdminNotes         string  `gorm:"type:text" json:"admin_notes"`
	QuotedPrice        float64 `gorm:"not null" json:"quoted_price"`

	// Assignment. The display name is copied from the directory at
	// assignment time and can drift from the technician's current name.
	AssignedTechnicianID string     `gorm:"not null;index" json:"assigned_technician_id"`
	AssignedTechnician   string     `gorm:"not null" json:"assigned_technician"`
	AssignedAt           *time.Time `json:"assigned_at,omitempty"` // target service date

	// Completion fields, only meaningful once status is completed.
	// FinalAmount is persisted at completion time, not recomputed on read.
	ExtraCharges  ExtraChargeList  `gorm:"type:text" json:"extra_charges"`
	FinalAmount   *float64         `json:"final_amount"`
	WorkDone      string           `gorm:"type:text" json:"work_done,omitempty"`
	Remarks       string           `gorm:"type:text" json:"remarks,omitempty"`
	UploadedFiles UploadedFileList `gorm:"type:text" json:"uploaded_files"`
	CompletedAt   *time.Time       `json:"completed_at,omitempty"`

	// Rework accounting. History is append-only; count and history are
	// always written in the same update so they cannot diverge.
	Status              string        `gorm:"not null;default:'pending'" json:"status"`
	ReworkHistory       ReworkHistory `gorm:"type:text" json:"rework_history"`
	ReworkCount         int           `gorm:"not null;default:0" json:"rework_count"`
	OriginalCompletedAt *time.Time    `json:"original_completed_at,omitempty"`

	// Version implements optimistic concurrency for admin edits. Callers
	// must send back the version they read; stale writes are rejected.
	Version int `gorm:"not null;default:1" json:"version"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// CanComplete reports whether the order is in a status a technician may
// complete from.
func (o *Order) CanComplete() bool {
	switch o.Status {
	case StatusPending, StatusAssigned, StatusInProgress, StatusReworkRequired:
		return true
	}
	return false
}

// IsRework reports whether a completion would close out a rework cycle.
func (o *Order) IsRework() bool {
	return o.Status == StatusReworkRequired
}

// ValidServiceType reports whether s is one of the offered service types.
func ValidServiceType(s string) bool {
	return s == ServiceCleaning || s == ServiceRepair || s == ServiceInstallation
}
