// Package currencyutils provides amount normalization for bank export values.
package currencyutils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a raw export amount into an exact decimal.
// thousandsSeparator, when set, is removed first; a comma is then read as the
// decimal separator ("1 234,50" with separator " " gives 1234.50).
func ParseAmount(raw, thousandsSeparator string) (decimal.Decimal, error) {
	standardized := StandardizeAmount(raw, thousandsSeparator)
	if standardized == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", raw, err)
	}
	return amount, nil
}

// StandardizeAmount trims the value, strips the thousands separator and turns a
// decimal comma into a dot.
func StandardizeAmount(raw, thousandsSeparator string) string {
	amount := strings.TrimSpace(raw)
	if thousandsSeparator != "" {
		amount = strings.ReplaceAll(amount, thousandsSeparator, "")
	}
	return strings.ReplaceAll(amount, ",", ".")
}

// ApplySign multiplies a magnitude by a debit/credit factor.
func ApplySign(amount, factor decimal.Decimal) decimal.Decimal {
	return amount.Mul(factor)
}
