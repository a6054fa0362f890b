package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ExtraCharge is a single itemized charge added at completion time
type ExtraCharge struct {
	Reason string  `json:"reason"`
	Amount float64 `json:"amount"`
}

// ExtraChargeList holds an order's extra charges. Historical records stored
// the field as a single bare number; current records store an itemized list.
// Both shapes are accepted on read and normalized to the itemized form, so
// downstream logic only ever sees a list.
type ExtraChargeList []ExtraCharge

// LegacyChargeReason labels a legacy single-number charge after normalization
const LegacyChargeReason = "Extra charges"

// UnmarshalJSON accepts either the itemized list or the legacy bare number
func (l *ExtraChargeList) UnmarshalJSON(data []byte) error {
	var items []ExtraCharge
	if err := json.Unmarshal(data, &items); err == nil {
		*l = items
		return nil
	}

	var legacy float64
	if err := json.Unmarshal(data, &legacy); err == nil {
		if legacy == 0 {
			*l = nil
			return nil
		}
		*l = ExtraChargeList{{Reason: LegacyChargeReason, Amount: legacy}}
		return nil
	}

	// null clears the field
	var null interface{}
	if err := json.Unmarshal(data, &null); err == nil && null == nil {
		*l = nil
		return nil
	}

	return fmt.Errorf("extra charges must be a list of {reason, amount} or a number")
}

// Total sums the charge amounts using decimal arithmetic
func (l ExtraChargeList) Total() decimal.Decimal {
	total := decimal.Zero
	for _, c := range l {
		total = total.Add(decimal.NewFromFloat(c.Amount))
	}
	return total
}

// Value serializes the list as JSON for storage
func (l ExtraChargeList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]ExtraCharge(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan reads the stored JSON, accepting the legacy number format as well
func (l *ExtraChargeList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported extra charges column type %T", value)
	}

	if len(data) == 0 {
		*l = nil
		return nil
	}

	return l.UnmarshalJSON(data)
}
