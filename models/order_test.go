package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrder_CanComplete(t *testing.T) {
	tests := []struct {
		status   string
		expected bool
	}{
		{StatusPending, true},
		{StatusAssigned, true},
		{StatusInProgress, true},
		{StatusReworkRequired, true},
		{StatusCompleted, false},
		{"cancelled", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			order := Order{Status: tt.status}
			assert.Equal(t, tt.expected, order.CanComplete())
		})
	}
}

func TestOrder_IsRework(t *testing.T) {
	assert.True(t, (&Order{Status: StatusReworkRequired}).IsRework())
	assert.False(t, (&Order{Status: StatusPending}).IsRework())
	assert.False(t, (&Order{Status: StatusCompleted}).IsRework())
}

func TestValidServiceType(t *testing.T) {
	assert.True(t, ValidServiceType(ServiceCleaning))
	assert.True(t, ValidServiceType(ServiceRepair))
	assert.True(t, ValidServiceType(ServiceInstallation))
	assert.False(t, ValidServiceType("cleaning")) // case matters
	assert.False(t, ValidServiceType("Demolition"))
	assert.False(t, ValidServiceType(""))
}

func TestReworkHistory_RoundTrip(t *testing.T) {
	history := ReworkHistory{
		{
			Date:       time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC),
			Reason:     "AC still leaking",
			AdminNotes: "Customer called back",
		},
	}

	value, err := history.Value()
	assert.NoError(t, err)

	var restored ReworkHistory
	assert.NoError(t, restored.Scan(value))
	if assert.Len(t, restored, 1) {
		assert.Equal(t, "AC still leaking", restored[0].Reason)
		assert.Equal(t, "Customer called back", restored[0].AdminNotes)
		assert.Empty(t, restored[0].TechnicianNotes)
		assert.True(t, restored[0].Date.Equal(history[0].Date))
	}

	var nilHistory ReworkHistory
	value, err = nilHistory.Value()
	assert.NoError(t, err)
	assert.Equal(t, "[]", value)
}
