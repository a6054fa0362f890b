package utils

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// MaxOrderIDAttempts bounds the regenerate-on-conflict loop when the random
// order code collides with an existing one
const MaxOrderIDAttempts = 10

// NewOrderID generates a human-readable order code: ORDER plus a 4-digit
// random number. Uniqueness is enforced by the primary key constraint, not
// here; callers retry on conflict.
func NewOrderID() string {
	return fmt.Sprintf("ORDER%d", 1000+rand.Intn(9000))
}

// IsDuplicateKeyError reports whether err is a unique/primary key violation.
// The string checks cover drivers that don't translate to gorm's sentinel
// (works with both PostgreSQL and SQLite).
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

// NextTechnicianID assigns the next sequential TECH### code by scanning the
// current maximum. Run it inside the same transaction as the insert so
// concurrent creators serialize on the unique constraint instead of both
// claiming the same number.
func NextTechnicianID(tx *gorm.DB) (string, error) {
	var lastID string
	err := tx.Table("technicians").
		Select("id").
		Order("id DESC").
		Limit(1).
		Scan(&lastID).Error
	if err != nil {
		return "", fmt.Errorf("failed to scan technician ids: %w", err)
	}

	if lastID == "" {
		return "TECH001", nil
	}

	numeric, err := strconv.Atoi(strings.TrimPrefix(lastID, "TECH"))
	if err != nil {
		return "", fmt.Errorf("malformed technician id %q: %w", lastID, err)
	}

	return fmt.Sprintf("TECH%03d", numeric+1), nil
}
