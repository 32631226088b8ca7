package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders a decimal amount as a US dollar string with
// thousands separators, e.g. "$1,200.00"
func FormatAmount(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if negative {
		b.WriteString("-")
	}
	b.WriteString("$")

	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(",")
		}
		b.WriteRune(digit)
	}

	b.WriteString(".")
	b.WriteString(frac)
	return b.String()
}
