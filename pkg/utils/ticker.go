package utils

import (
	"strings"
)

// exchangeSuffixes are listing-venue suffixes that must survive class-suffix
// rewriting untouched (AI.PA stays AI.PA for every provider).
var exchangeSuffixes = map[string]bool{
	"PA": true, // Euronext Paris
	"AS": true, // Euronext Amsterdam
	"BR": true, // Euronext Brussels
	"LS": true, // Euronext Lisbon
	"MI": true, // Borsa Italiana
	"DE": true, // XETRA
	"F":  true, // Frankfurt
	"L":  true, // London
	"SW": true, // SIX Swiss
	"MC": true, // Madrid
	"VI": true, // Vienna
	"HE": true, // Helsinki
	"ST": true, // Stockholm
	"OL": true, // Oslo
	"CO": true, // Copenhagen
	"IR": true, // Dublin
	"TO": true, // Toronto
	"NS": true, // NSE India
	"BO": true, // BSE India
	"HK": true, // Hong Kong
	"T":  true, // Tokyo
	"AX": true, // ASX
}

// NormalizeTicker uppercases a user-supplied symbol, trims whitespace and
// strips a leading $ (common in pasted lists). It does not touch separators.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	return strings.TrimPrefix(ticker, "$")
}

// SplitExchangeSuffix splits "AI.PA" into ("AI", ".PA"). Symbols without a
// recognised venue suffix are returned whole with an empty suffix.
func SplitExchangeSuffix(ticker string) (base, suffix string) {
	i := strings.LastIndex(ticker, ".")
	if i <= 0 || i == len(ticker)-1 {
		return ticker, ""
	}
	if exchangeSuffixes[ticker[i+1:]] {
		return ticker[:i], ticker[i:]
	}
	return ticker, ""
}

// ToHyphenClass rewrites share-class separators to a hyphen (BRK.B → BRK-B),
// the form Yahoo Finance expects. Idempotent.
func ToHyphenClass(ticker string) string {
	return rewriteClass(ticker, ".", "-")
}

// ToDotClass rewrites share-class separators to a dot (BRK-B → BRK.B), the
// form Finnhub expects. Idempotent.
func ToDotClass(ticker string) string {
	return rewriteClass(ticker, "-", ".")
}

func rewriteClass(ticker, from, to string) string {
	ticker = NormalizeTicker(ticker)
	if ticker == "" || strings.HasPrefix(ticker, "^") {
		return ticker
	}
	base, suffix := SplitExchangeSuffix(ticker)
	return strings.ReplaceAll(base, from, to) + suffix
}
