package money

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Currencies whose minor unit is not the usual two decimal places.
var decimalPlaceOverrides = map[string]int32{
	// zero-decimal
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "JPY": 0, "KMF": 0, "KRW": 0,
	"MGA": 0, "PYG": 0, "RWF": 0, "UGX": 0, "VND": 0, "VUV": 0, "XAF": 0,
	"XOF": 0, "XPF": 0,
	// three-decimal
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
}

var currencySymbols = map[string]string{
	"USD": "$",
	"AUD": "$",
	"CAD": "$",
	"HKD": "$",
	"SGD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "¥",
	"KRW": "₩",
	"INR": "₹",
	"PHP": "₱",
	"THB": "฿",
	"VND": "₫",
}

// DecimalPlaces returns the number of minor-unit digits for an ISO 4217
// currency code. Unknown codes get the common default of two.
func DecimalPlaces(code string) int32 {
	if places, ok := decimalPlaceOverrides[strings.ToUpper(code)]; ok {
		return places
	}
	return 2
}

// FormatCurrency renders a minor-unit amount as a display string:
// symbol, thousands separators, and the currency's decimal places.
// FormatCurrency(123456, "USD") == "$1,234.56".
func FormatCurrency(minor int64, code string) string {
	code = strings.ToUpper(code)
	places := DecimalPlaces(code)

	major := decimal.NewFromInt(minor).Shift(-places)

	symbol, ok := currencySymbols[code]
	if !ok {
		symbol = code + " "
	}

	sign := ""
	if major.IsNegative() {
		sign = "-"
		major = major.Abs()
	}

	return sign + symbol + groupThousands(major.StringFixed(places))
}

// groupThousands inserts comma separators into the integer part of an
// already-formatted decimal string.
func groupThousands(s string) string {
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	n := len(intPart)
	if n <= 3 {
		return intPart + fracPart
	}

	var b strings.Builder
	first := n % 3
	if first > 0 {
		b.WriteString(intPart[:first])
	}
	for i := first; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String() + fracPart
}

// CurrentDateString formats t as the dashboard's canonical YYYY-MM-DD.
func CurrentDateString(t time.Time) string {
	return t.Format("2006-01-02")
}
