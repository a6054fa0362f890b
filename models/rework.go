package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ReworkEntry records a single demotion of a completed order. The admin
// fills date, reason and notes when demoting; the technician's notes are
// attached to the entry when the rework is completed.
type ReworkEntry struct {
	Date            time.Time `json:"date"`
	Reason          string    `json:"reason"`
	AdminNotes      string    `json:"admin_notes,omitempty"`
	TechnicianNotes string    `json:"technician_notes,omitempty"`
}

// ReworkHistory is the append-only list of rework entries on an order
type ReworkHistory []ReworkEntry

// Value serializes the history as JSON for storage
func (h ReworkHistory) Value() (driver.Value, error) {
	if h == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]ReworkEntry(h))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan reads the stored JSON history
func (h *ReworkHistory) Scan(value interface{}) error {
	if value == nil {
		*h = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported rework history column type %T", value)
	}

	if len(data) == 0 {
		*h = nil
		return nil
	}

	return json.Unmarshal(data, (*[]ReworkEntry)(h))
}
