// Package utils provides formatting, date and ticker helpers shared by the
// CLI, the API and the providers.
package utils

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// trillionInMillions is the presentation threshold: caps at or above one
// million millions are shown in trillions.
const trillionInMillions = 1_000_000

// UnknownMarketCap is shown for a zero (unknown) capitalization.
const UnknownMarketCap = "Unknown"

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(trillionInMillions)
)

// FormatMarketCap renders a capitalization expressed in millions.
// e.g., 2_500_000 → "2.50 T", 950_000 → "950.00 B", 0 → "Unknown"
func FormatMarketCap(millions float64) string {
	if millions <= 0 {
		return UnknownMarketCap
	}
	m := decimal.NewFromFloat(millions)
	if millions >= trillionInMillions {
		return m.Div(million).StringFixed(2) + " T"
	}
	return m.Div(thousand).StringFixed(2) + " B"
}

// ParseAmount parses a loosely formatted number such as "$1,234.5".
// Blanks, dashes and "N/A" report false. Unit suffixes are not supported.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("$", "", "€", "", ",", "", "%", "", " ", "").Replace(s)
	if s == "" || strings.EqualFold(s, "n/a") || s == "-" || s == "--" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
