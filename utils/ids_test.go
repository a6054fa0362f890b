package utils

import (
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNewOrderID_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^ORDER[1-9]\d{3}$`)

	for i := 0; i < 100; i++ {
		id := NewOrderID()
		assert.True(t, pattern.MatchString(id), "unexpected order id %q", id)
	}
}

func TestIsDuplicateKeyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"Nil error", nil, false},
		{"Gorm sentinel", gorm.ErrDuplicatedKey, true},
		{"SQLite unique violation", errors.New("UNIQUE constraint failed: orders.id"), true},
		{"PostgreSQL duplicate key", errors.New(`duplicate key value violates unique constraint "orders_pkey"`), true},
		{"Unrelated error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDuplicateKeyError(tt.err))
		})
	}
}

func setupTechnicianTable(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.Exec("CREATE TABLE technicians (id TEXT PRIMARY KEY)").Error; err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	return db
}

func TestNextTechnicianID(t *testing.T) {
	db := setupTechnicianTable(t)

	// Empty directory starts the sequence
	id, err := NextTechnicianID(db)
	assert.NoError(t, err)
	assert.Equal(t, "TECH001", id)

	// Each insert advances the sequence from the current maximum
	for i := 1; i <= 12; i++ {
		assert.NoError(t, db.Exec("INSERT INTO technicians (id) VALUES (?)", fmt.Sprintf("TECH%03d", i)).Error)
	}
	id, err = NextTechnicianID(db)
	assert.NoError(t, err)
	assert.Equal(t, "TECH013", id)
}

func TestNextTechnicianID_MalformedID(t *testing.T) {
	db := setupTechnicianTable(t)
	assert.NoError(t, db.Exec("INSERT INTO technicians (id) VALUES ('TECHXYZ')").Error)

	_, err := NextTechnicianID(db)
	assert.Error(t, err)
}
