package output

import "github.com/rgehrsitz/nslv/pkg/money"

// FormatCurrency formats a monetary amount as USD currency with 2 decimals.
func FormatCurrency(amount money.Amount) string { return "$" + amount.String() }

// FormatPercentage formats a fraction (e.g. 0.123456) as a percentage
// with 2 decimals.
func FormatPercentage(fraction float64) string {
	return money.New(fraction * 100).String() + "%"
}
