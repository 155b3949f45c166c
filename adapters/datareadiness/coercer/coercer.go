package coercer

import (
	"math"
	"strconv"
	"strings"
)

// DefaultNumericThreshold is the share of non-blank cells that must parse
// before a column counts as numeric.
const DefaultNumericThreshold = 0.5

// ColumnKind is the classification of a raw column.
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindCategorical ColumnKind = "categorical"
)

// NumericPolicy decides which cells are numbers and which columns are numeric.
type NumericPolicy struct {
	Threshold float64 `json:"threshold"` // a column is numeric when its parse ratio is strictly greater
	// Lenient additionally accepts currency symbols, thousands separators,
	// trailing percent signs and accounting negatives such as "(12)".
	Lenient bool `json:"lenient"`
}

// DefaultNumericPolicy returns the strict policy with a 0.5 threshold.
func DefaultNumericPolicy() NumericPolicy {
	return NumericPolicy{Threshold: DefaultNumericThreshold}
}

// ColumnProfile counts how a column's cells coerce.
type ColumnProfile struct {
	Total    int        `json:"total"`
	NonBlank int        `json:"non_blank"`
	Numeric  int        `json:"numeric"`
	Ratio    float64    `json:"ratio"`
	Kind     ColumnKind `json:"kind"`
}

// Parse converts a single cell. Blank, non-numeric and non-finite cells are rejected.
func (p NumericPolicy) Parse(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if p.Lenient {
		s = cleanLenient(s)
	}
	if isHex(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Sample returns the parsed numeric cells of a column in their original order.
func (p NumericPolicy) Sample(values []string) []float64 {
	out := make([]float64, 0, len(values))
	for _, raw := range values {
		if v, ok := p.Parse(raw); ok {
			out = append(out, v)
		}
	}
	return out
}

// Profile classifies a column. An all-blank column is categorical.
func (p NumericPolicy) Profile(values []string) ColumnProfile {
	prof := ColumnProfile{Total: len(values), Kind: KindCategorical}
	for _, raw := range values {
		if IsBlank(raw) {
			continue
		}
		prof.NonBlank++
		if _, ok := p.Parse(raw); ok {
			prof.Numeric++
		}
	}
	if prof.NonBlank > 0 {
		prof.Ratio = float64(prof.Numeric) / float64(prof.NonBlank)
	}
	if prof.NonBlank > 0 && prof.Ratio > p.Threshold {
		prof.Kind = KindNumeric
	}
	return prof
}

// IsNumeric reports whether a column classifies as numeric.
func (p NumericPolicy) IsNumeric(values []string) bool {
	return p.Profile(values).Kind == KindNumeric
}

// isHex reports a 0x-prefixed literal, which ParseFloat would accept.
func isHex(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// IsBlank reports whether a cell is empty after trimming whitespace.
func IsBlank(raw string) bool {
	return strings.TrimSpace(raw) == ""
}

var currencySymbols = []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY"}

// cleanLenient strips formatting that spreadsheets commonly add to numbers.
func cleanLenient(s string) string {
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
		negative = true
	}
	for _, symbol := range currencySymbols {
		s = strings.ReplaceAll(s, symbol, "")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if negative {
		s = "-" + s
	}
	return s
}
