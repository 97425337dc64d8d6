package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RateTable maps a currency code to the home-currency value of one unit of it.
type RateTable map[string]decimal.Decimal

// Lookup returns the value of one unit of code; the home currency is always 1.
func (t RateTable) Lookup(home string, code string) (decimal.Decimal, bool) {
	code = Normalize(code)
	if code == Normalize(home) {
		return decimal.NewFromInt(1), true
	}
	v, ok := t[code]
	if !ok || !v.IsPositive() {
		return decimal.Zero, false
	}
	return v, true
}

// staticRates are INR values used when the provider cannot be reached.
var staticRates = RateTable{
	"INR": decimal.NewFromInt(1),
	"USD": decimal.NewFromInt(83),
	"EUR": decimal.NewFromInt(90),
	"GBP": decimal.NewFromInt(105),
	"AUD": decimal.NewFromInt(55),
	"CAD": decimal.NewFromInt(61),
	"AED": decimal.RequireFromString("22.6"),
	"SGD": decimal.NewFromInt(62),
}

// StaticRates returns a copy of the fallback table.
func StaticRates() RateTable {
	out := make(RateTable, len(staticRates))
	for k, v := range staticRates {
		out[k] = v
	}
	return out
}

func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsSupported reports whether invoices may be raised in code.
func IsSupported(code string) bool {
	_, ok := staticRates[Normalize(code)]
	return ok
}

func SupportedCurrencies() []string {
	return []string{"INR", "USD", "EUR", "GBP", "AUD", "CAD", "AED", "SGD"}
}
