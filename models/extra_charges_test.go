package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtraChargeList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected ExtraChargeList
		wantErr  bool
	}{
		{
			name:  "Itemized list",
			input: `[{"reason":"Travel charges","amount":20},{"reason":"Parts","amount":30.5}]`,
			expected: ExtraChargeList{
				{Reason: "Travel charges", Amount: 20},
				{Reason: "Parts", Amount: 30.5},
			},
		},
		{
			name:     "Legacy bare number",
			input:    `50`,
			expected: ExtraChargeList{{Reason: "Extra charges", Amount: 50}},
		},
		{
			name:     "Legacy zero means no charges",
			input:    `0`,
			expected: nil,
		},
		{
			name:     "Null clears the field",
			input:    `null`,
			expected: nil,
		},
		{
			name:     "Empty list",
			input:    `[]`,
			expected: ExtraChargeList{},
		},
		{
			name:    "Rejects other shapes",
			input:   `"twenty ringgit"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var list ExtraChargeList
			err := json.Unmarshal([]byte(tt.input), &list)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, list)
		})
	}
}

func TestExtraChargeList_ScanLegacyStoredValue(t *testing.T) {
	// Rows written before the schema change hold a bare number in the column
	var list ExtraChargeList
	err := list.Scan("75.5")
	assert.NoError(t, err)
	assert.Equal(t, ExtraChargeList{{Reason: "Extra charges", Amount: 75.5}}, list)

	// Current rows hold the itemized JSON
	var itemized ExtraChargeList
	err = itemized.Scan([]byte(`[{"reason":"Travel","amount":20}]`))
	assert.NoError(t, err)
	assert.Equal(t, ExtraChargeList{{Reason: "Travel", Amount: 20}}, itemized)

	// NULL and empty columns read as no charges
	var empty ExtraChargeList
	assert.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)
	assert.NoError(t, empty.Scan(""))
	assert.Nil(t, empty)
}

func TestExtraChargeList_Value(t *testing.T) {
	var nilList ExtraChargeList
	value, err := nilList.Value()
	assert.NoError(t, err)
	assert.Equal(t, "[]", value)

	list := ExtraChargeList{{Reason: "Travel", Amount: 20}}
	value, err = list.Value()
	assert.NoError(t, err)
	assert.JSONEq(t, `[{"reason":"Travel","amount":20}]`, value.(string))
}

func TestExtraChargeList_Total(t *testing.T) {
	list := ExtraChargeList{
		{Reason: "A", Amount: 0.1},
		{Reason: "B", Amount: 0.2},
	}
	assert.Equal(t, "0.3", list.Total().String())

	var empty ExtraChargeList
	assert.True(t, empty.Total().IsZero())
}
