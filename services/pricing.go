package services

import (
	"github.com/sejuk-service/aircond-service-api/models"
	"github.com/shopspring/decimal"
)

// ComputeFinalAmount derives the final amount at completion time:
// quoted price plus the sum of extra charges, rounded to 2 decimal places.
func ComputeFinalAmount(quotedPrice float64, charges models.ExtraChargeList) float64 {
	total := decimal.NewFromFloat(quotedPrice).Add(charges.Total())
	return total.Round(2).InexactFloat64()
}

// OrderRevenue returns the amount an order contributes to revenue figures.
// The persisted final amount is authoritative for completed orders; the
// quoted price is the fallback for records completed before final amounts
// were stored.
func OrderRevenue(o *models.Order) decimal.Decimal {
	if o.FinalAmount != nil {
		return decimal.NewFromFloat(*o.FinalAmount)
	}
	return decimal.NewFromFloat(o.QuotedPrice)
}
