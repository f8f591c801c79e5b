package common

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/holdings/internal/models"
)

// IsKnownCurrency reports whether code is an ISO 4217 currency known to go-money.
func IsKnownCurrency(code string) bool {
	return code != "" && money.GetCurrency(code) != nil
}

// FormatMoney renders value in the given currency, e.g. "R$1.234,56".
// The value is rounded half away from zero to the currency's minor unit.
func FormatMoney(value decimal.Decimal, currency string) string {
	cur := *money.New(0, currency).Currency()
	minor := value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// ParseAmount parses a user-entered monetary string. It accepts an optional
// currency prefix or suffix, a single leading minus and either "," or "." as
// the decimal separator: "1234.56", "1,234.56", "1.234,56", "R$ 1.234,56".
// A lone separator followed by exactly three digits is a thousands separator
// ("1.000" and "1,000" are both 1000) unless the integer part is zero.
// Thousands groups must hold exactly three digits.
func ParseAmount(s string) (decimal.Decimal, error) {
	malformed := models.NewValidationError("amount", "malformed monetary value "+strconv.Quote(s))
	str := strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(str, "-") {
		negative = true
		str = str[1:]
	}

	// Strip currency symbols and codes around the number.
	str = strings.TrimFunc(str, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '-' && r != ',' && r != '.'
	})
	if strings.HasPrefix(str, "-") {
		if negative {
			return decimal.Zero, malformed
		}
		negative = true
		str = str[1:]
	}
	str = strings.ReplaceAll(str, " ", "")

	if str == "" {
		return decimal.Zero, malformed
	}
	for _, r := range str {
		if !unicode.IsDigit(r) && r != ',' && r != '.' {
			return decimal.Zero, malformed
		}
	}

	normalized, ok := normalizeSeparators(str)
	if !ok {
		return decimal.Zero, malformed
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, malformed
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// normalizeSeparators rewrites s to use "." as the only decimal separator
// and no grouping. It reports false when the grouping is malformed.
func normalizeSeparators(s string) (string, bool) {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		dec, group := ",", "."
		if lastDot > lastComma {
			dec, group = ".", ","
		}
		if strings.Count(s, dec) > 1 {
			return "", false
		}
		intPart, frac, _ := strings.Cut(s, dec)
		if strings.Contains(frac, group) || !validGroups(intPart, group) {
			return "", false
		}
		return strings.ReplaceAll(intPart, group, "") + "." + frac, true
	case lastComma >= 0:
		return normalizeSingle(s, ",", lastComma)
	case lastDot >= 0:
		return normalizeSingle(s, ".", lastDot)
	}
	return s, true
}

// normalizeSingle handles a string that uses only sep.
func normalizeSingle(s, sep string, last int) (string, bool) {
	if strings.Count(s, sep) > 1 {
		if !validGroups(s, sep) {
			return "", false
		}
		return strings.ReplaceAll(s, sep, ""), true
	}
	if isThousandsGroup(s, last) {
		return strings.Replace(s, sep, "", 1), true
	}
	if last == len(s)-1 {
		return "", false
	}
	return strings.Replace(s, sep, ".", 1), true
}

// isThousandsGroup reports whether the separator at idx is followed by
// exactly three digits and preceded by a non-zero integer part.
func isThousandsGroup(s string, idx int) bool {
	if len(s)-idx-1 != 3 || idx == 0 {
		return false
	}
	return strings.TrimLeft(s[:idx], "0") != ""
}

// validGroups reports whether s split on sep is a 1-3 digit lead group
// followed by groups of exactly three digits.
func validGroups(s, sep string) bool {
	groups := strings.Split(s, sep)
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

// ParseDate parses a calendar date ("2006-01-02") or an RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, models.NewValidationError("date", "date is required")
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, models.NewValidationError("date", "invalid date "+strconv.Quote(s))
}

// DayKey returns the UTC calendar day of t as "2006-01-02".
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
