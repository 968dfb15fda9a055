package money

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecimalPlaces(t *testing.T) {
	assert.Equal(t, int32(0), DecimalPlaces("JPY"))
	assert.Equal(t, int32(3), DecimalPlaces("KWD"))
	assert.Equal(t, int32(2), DecimalPlaces("USD"))
	assert.Equal(t, int32(0), DecimalPlaces("jpy"), "codes are case-insensitive")
	assert.Equal(t, int32(2), DecimalPlaces("XYZ"), "unknown codes default to two")
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		minor int64
		code  string
		want  string
	}{
		{123456, "USD", "$1,234.56"},
		{123456, "JPY", "¥123,456"},
		{123456, "KWD", "KWD 123.456"},
		{0, "USD", "$0.00"},
		{-250075, "EUR", "-€2,500.75"},
		{1000000000, "GBP", "£10,000,000.00"},
		{5, "USD", "$0.05"},
		{999, "SAR", "SAR 9.99"},
	}
	for _, tt := range tests {
		got := FormatCurrency(tt.minor, tt.code)
		assert.Equal(t, tt.want, got, "FormatCurrency(%d, %s)", tt.minor, tt.code)
	}

	usd := FormatCurrency(123456, "USD")
	assert.Contains(t, usd, "$")
	assert.Contains(t, usd, "1,234.56")
}

func TestCurrentDateString(t *testing.T) {
	fixed := time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-15", CurrentDateString(fixed))
}
