package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sejuk-service/aircond-service-api/models"
)

const companySignature = "Sejuk Sejuk Service Sdn Bhd"

// MinPhoneDigits is the minimum digit count for a dialable customer number
const MinPhoneDigits = 10

// NotificationError represents a message composition error
type NotificationError struct {
	Code    string
	Message string
}

func (e *NotificationError) Error() string {
	return e.Message
}

// ComposeCompletionMessage formats the customer-facing summary for a
// completed order: pricing breakdown, itemized extra charges and a rework
// flag when the completion closed a rework cycle. Dispatch is manual and
// fire-and-forget; this function only builds the text.
func ComposeCompletionMessage(order *models.Order) string {
	finalAmount := order.QuotedPrice
	if order.FinalAmount != nil {
		finalAmount = *order.FinalAmount
	}

	completedText := "completed"
	if order.ReworkCount > 0 {
		completedText = "reworked and completed"
	}

	when := ""
	if order.CompletedAt != nil {
		when = " at " + order.CompletedAt.Format("02/01/2006 15:04")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s, job %s has been %s by %s%s.\n\n",
		order.CustomerName, order.ID, completedText, order.AssignedTechnician, when)
	fmt.Fprintf(&b, "Final Amount: RM %.2f\n", finalAmount)
	fmt.Fprintf(&b, "Quoted Price: RM %.2f", order.QuotedPrice)

	if len(order.ExtraCharges) > 0 {
		b.WriteString("\n\nExtra Charges:")
		for _, charge := range order.ExtraCharges {
			fmt.Fprintf(&b, "\n- %s: RM %.2f", charge.Reason, charge.Amount)
		}
	}

	if order.ReworkCount > 0 {
		fmt.Fprintf(&b, "\n\nThis was a rework job to address previous issues (rework #%d).", order.ReworkCount)
	}

	b.WriteString("\n\nPlease check and leave feedback. Thank you!\n\n- " + companySignature)
	return b.String()
}

// WhatsAppLink builds a wa.me deep link with the message pre-filled.
// The phone number is reduced to digits and rejected when too short.
func WhatsAppLink(phone, message string) (string, error) {
	digits := SanitizePhone(phone)
	if len(digits) < MinPhoneDigits {
		return "", &NotificationError{
			Code:    "INVALID_PHONE",
			Message: fmt.Sprintf("Phone number must have at least %d digits", MinPhoneDigits),
		}
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", digits, url.QueryEscape(message)), nil
}

// SanitizePhone strips everything but digits from a phone number
func SanitizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
