// Package money converts between shopspring decimals, used for all
// arithmetic, and primitive.Decimal128, the storage form Mongo can $inc.
// Floats never touch an amount.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Zero128 is the Decimal128 zero value, used when seeding balances.
var Zero128, _ = primitive.ParseDecimal128("0")

// ToDecimal128 converts an arithmetic decimal to its storage form.
func ToDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	out, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("convert %s to decimal128: %w", d, err)
	}
	return out, nil
}

// FromDecimal128 converts a stored amount back to an arithmetic decimal.
func FromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	out, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("convert decimal128 %s: %w", d, err)
	}
	return out, nil
}

// ParseAmount parses a user-supplied amount string. Thousands separators
// are not accepted; the decimal point is ".".
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("amount is empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}
