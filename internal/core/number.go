package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// NumberMode selects how spreadsheet cells are turned into numbers.
type NumberMode int

const (
	// NumberAccounting reads "(123.45)" as -123.45 before stripping.
	NumberAccounting NumberMode = iota
	// NumberStrip only keeps digits, dots and minus signs.
	NumberStrip
)

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// ParseNumberMode accepts "accounting" or "strip".
func ParseNumberMode(s string) (NumberMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "accounting":
		return NumberAccounting, nil
	case "strip":
		return NumberStrip, nil
	default:
		return 0, fmt.Errorf("unknown number mode %q", s)
	}
}

func (m NumberMode) String() string {
	if m == NumberStrip {
		return "strip"
	}
	return "accounting"
}

// Decimal parses s leniently. Anything that does not reduce to a number is zero.
//
//	Decimal("1,234.50") -> 1234.50
//	Decimal("(500)")    -> -500 (accounting) or 500 (strip)
//	Decimal("")         -> 0
func (m NumberMode) Decimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	negative := false
	if m == NumberAccounting && len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' {
		negative = true
		s = s[1 : len(s)-1]
	}
	cleaned := nonNumeric.ReplaceAllString(s, "")
	switch cleaned {
	case "", ".", "-", "-.":
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		return d.Abs().Neg()
	}
	return d
}

// Round2 rounds half away from zero to two decimal places.
func Round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
