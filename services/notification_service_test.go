package services

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sejuk-service/aircond-service-api/models"
	"github.com/stretchr/testify/assert"
)

func TestComposeCompletionMessage(t *testing.T) {
	completedAt := time.Date(2024, 5, 15, 14, 30, 0, 0, time.UTC)
	finalAmount := 200.0

	order := &models.Order{
		ID:                 "ORDER1234",
		CustomerName:       "Mrs. Lim",
		AssignedTechnician: "Ahmad Faizal",
		QuotedPrice:        150,
		FinalAmount:        &finalAmount,
		CompletedAt:        &completedAt,
		ExtraCharges: models.ExtraChargeList{
			{Reason: "Travel charges", Amount: 20},
			{Reason: "Replacement parts", Amount: 30},
		},
	}

	message := ComposeCompletionMessage(order)

	assert.Contains(t, message, "Hi Mrs. Lim, job ORDER1234 has been completed by Ahmad Faizal at 15/05/2024 14:30.")
	assert.Contains(t, message, "Final Amount: RM 200.00")
	assert.Contains(t, message, "Quoted Price: RM 150.00")
	assert.Contains(t, message, "- Travel charges: RM 20.00")
	assert.Contains(t, message, "- Replacement parts: RM 30.00")
	assert.Contains(t, message, "Sejuk Sejuk Service Sdn Bhd")
	assert.NotContains(t, message, "rework")
}

func TestComposeCompletionMessage_Rework(t *testing.T) {
	finalAmount := 150.0
	order := &models.Order{
		ID:                 "ORDER1234",
		CustomerName:       "Mrs. Lim",
		AssignedTechnician: "Ahmad Faizal",
		QuotedPrice:        150,
		FinalAmount:        &finalAmount,
		ReworkCount:        2,
	}

	message := ComposeCompletionMessage(order)

	assert.Contains(t, message, "has been reworked and completed by")
	assert.Contains(t, message, "(rework #2)")
}

func TestComposeCompletionMessage_FallsBackToQuote(t *testing.T) {
	// Records completed before final amounts were stored
	order := &models.Order{
		ID:                 "ORDER1234",
		CustomerName:       "Mr. Tan",
		AssignedTechnician: "Rizal Hakim",
		QuotedPrice:        88.5,
	}

	message := ComposeCompletionMessage(order)

	assert.Contains(t, message, "Final Amount: RM 88.50")
	assert.NotContains(t, message, "Extra Charges:")
	assert.NotContains(t, message, " at ") // no completion timestamp available
}

func TestWhatsAppLink(t *testing.T) {
	link, err := WhatsAppLink("+60 12-345 6789", "Hi Mrs. Lim, job done & dusted")
	assert.NoError(t, err)

	assert.True(t, strings.HasPrefix(link, "https://wa.me/60123456789?text="))
	// The message must survive a round trip through the URL
	parsed, err := url.Parse(link)
	assert.NoError(t, err)
	assert.Equal(t, "Hi Mrs. Lim, job done & dusted", parsed.Query().Get("text"))
}

func TestWhatsAppLink_RejectsShortNumbers(t *testing.T) {
	_, err := WhatsAppLink("123-456", "message")
	assert.Error(t, err)

	var notifErr *NotificationError
	if assert.ErrorAs(t, err, &notifErr) {
		assert.Equal(t, "INVALID_PHONE", notifErr.Code)
	}
}

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"+60 12-345 6789", "60123456789"},
		{"(012) 345 6789", "0123456789"},
		{"0123456789", "0123456789"},
		{"no digits here", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, SanitizePhone(tt.input), "input %q", tt.input)
	}
}
