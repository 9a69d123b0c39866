package resolver

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/tonywu212005-glitch/sp500-app/pkg/utils"
)

// DateProbe extracts candidate earnings dates from one known payload shape.
// Probes are pure and never panic on unexpected input.
type DateProbe func(payload any) []civil.Date

// CapProbe extracts a market capitalization, in millions, from one known
// payload shape.
type CapProbe func(payload any) (float64, bool)

// EarningsProbes is the ordered probe list; the first probe with a usable
// candidate wins.
var EarningsProbes = []DateProbe{
	probeTimestampField,
	probeDateField,
	probeCalendarEvents,
	probeSplitTable("earnings date"),
	probeColumnTable("earnings date"),
	probeRowList("earnings date"),
}

// CapProbes is the ordered market cap probe list.
var CapProbes = []CapProbe{
	probeMarketCapitalization,
	probeMarketCap,
	probeCapSplitTable,
}

// ProbeEarningsDate runs EarningsProbes over payload and returns the
// earliest candidate of the first probe that finds any.
func ProbeEarningsDate(payload any) (civil.Date, bool) {
	return ProbeEarningsDateIn(payload, civil.Date{}, civil.Date{})
}

// ProbeEarningsDateIn is ProbeEarningsDate restricted to [from, to]. A
// probe whose candidates all fall outside the window is skipped. Zero
// bounds are open.
func ProbeEarningsDateIn(payload any, from, to civil.Date) (civil.Date, bool) {
	for _, p := range EarningsProbes {
		if d, ok := earliestIn(p(payload), from, to); ok {
			return d, true
		}
	}
	return civil.Date{}, false
}

// ProbeMarketCap runs CapProbes over payload.
func ProbeMarketCap(payload any) (float64, bool) {
	for _, p := range CapProbes {
		if v, ok := p(payload); ok && v > 0 {
			return v, true
		}
	}
	return 0, false
}

func earliestIn(dates []civil.Date, from, to civil.Date) (civil.Date, bool) {
	var best civil.Date
	found := false
	for _, d := range dates {
		if d.IsZero() || (!from.IsZero() && d.Before(from)) || (!to.IsZero() && d.After(to)) {
			continue
		}
		if !found || d.Before(best) {
			best, found = d, true
		}
	}
	return best, found
}

// --- earnings probes ---

// probeTimestampField reads Yahoo's epoch fields. earningsTimestamp is
// often the last report, so the Start/End pair counts as well.
func probeTimestampField(payload any) []civil.Date {
	m, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	var out []civil.Date
	for _, key := range []string{"earningsTimestampStart", "earningsTimestampEnd", "earningsTimestamp"} {
		if sec, ok := asNumber(m[key]); ok {
			if d, ok := dateFromEpoch(sec); ok {
				out = append(out, d)
			}
		}
	}
	return out
}

func probeDateField(payload any) []civil.Date {
	m, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	var out []civil.Date
	for _, key := range []string{"Earnings Date", "earningsDate", "nextEarningsDate"} {
		out = append(out, asDates(m[key])...)
	}
	return out
}

// probeCalendarEvents reads calendarEvents.earnings.earningsDate.
func probeCalendarEvents(payload any) []civil.Date {
	return asDates(dig(payload, "calendarEvents", "earnings", "earningsDate"))
}

// probeSplitTable reads {index: [labels...], data: [[row]...]}.
func probeSplitTable(label string) DateProbe {
	return func(payload any) []civil.Date {
		row, ok := splitTableRow(payload, label)
		if !ok {
			return nil
		}
		return asDates(row)
	}
}

// probeColumnTable reads {columns: [labels...], data: [[cells]...]} and
// collects every date in the labelled column.
func probeColumnTable(label string) DateProbe {
	return func(payload any) []civil.Date {
		m, ok := payload.(map[string]any)
		if !ok {
			return nil
		}
		cols, ok1 := m["columns"].([]any)
		data, ok2 := m["data"].([]any)
		if !ok1 || !ok2 {
			return nil
		}
		col := indexOfLabel(cols, label)
		if col < 0 {
			return nil
		}
		var out []civil.Date
		for _, r := range data {
			if row, ok := r.([]any); ok && col < len(row) {
				out = append(out, asDates(row[col])...)
			}
		}
		return out
	}
}

// probeRowList reads [[label, value...], ...] or [{label|field|name, value}, ...].
func probeRowList(label string) DateProbe {
	return func(payload any) []civil.Date {
		rows, ok := payload.([]any)
		if !ok {
			return nil
		}
		var out []civil.Date
		for _, r := range rows {
			switch row := r.(type) {
			case []any:
				if len(row) > 1 && matchLabel(row[0], label) {
					out = append(out, asDates(row[1:])...)
				}
			case map[string]any:
				for _, k := range []string{"label", "field", "name"} {
					if matchLabel(row[k], label) {
						out = append(out, asDates(row["value"])...)
						break
					}
				}
			}
		}
		return out
	}
}

// --- market cap probes ---

// probeMarketCapitalization reads Finnhub's field, already in millions.
func probeMarketCapitalization(payload any) (float64, bool) {
	m, ok := payload.(map[string]any)
	if !ok {
		return 0, false
	}
	return positive(asNumber(m["marketCapitalization"]))
}

// probeMarketCap reads Yahoo's absolute marketCap and scales to millions.
func probeMarketCap(payload any) (float64, bool) {
	m, ok := payload.(map[string]any)
	if !ok {
		return 0, false
	}
	v, ok := positive(asNumber(m["marketCap"]))
	if !ok {
		return 0, false
	}
	return v / 1e6, true
}

// probeCapSplitTable reads the "Market Cap" row of a split table. Cells
// are absolute amounts, optionally with a T/B/M/K suffix.
func probeCapSplitTable(payload any) (float64, bool) {
	row, ok := splitTableRow(payload, "market cap")
	if !ok {
		return 0, false
	}
	if cells, ok := row.([]any); ok {
		for _, c := range cells {
			if v, ok := capAmount(c); ok {
				return v / 1e6, true
			}
		}
		return 0, false
	}
	v, ok := capAmount(row)
	if !ok {
		return 0, false
	}
	return v / 1e6, true
}

// --- value coercion ---

// asNumber accepts JSON numbers, numeric strings and {"raw": n} wrappers.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	case map[string]any:
		return asNumber(n["raw"])
	}
	return 0, false
}

func positive(v float64, ok bool) (float64, bool) {
	return v, ok && v > 0
}

// capAmount parses "3.1T", "950B", "1,234,567" into an absolute amount.
func capAmount(v any) (float64, bool) {
	if n, ok := asNumber(v); ok {
		return positive(n, true)
	}
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	s = strings.ToUpper(strings.TrimSpace(s))
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "T"):
		mult = 1e12
	case strings.HasSuffix(s, "B"):
		mult = 1e9
	case strings.HasSuffix(s, "M"):
		mult = 1e6
	case strings.HasSuffix(s, "K"):
		mult = 1e3
	}
	if mult != 1 {
		s = s[:len(s)-1]
	}
	n, ok := utils.ParseAmount(s)
	return positive(n*mult, ok)
}

// dateFromEpoch converts epoch seconds to the UTC day. Values above 1e11
// are taken as milliseconds.
func dateFromEpoch(v float64) (civil.Date, bool) {
	if v <= 0 {
		return civil.Date{}, false
	}
	sec := int64(v)
	if v > 1e11 {
		sec = int64(v / 1000)
	}
	return utils.DateFromUnix(sec), true
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// asDates accepts date strings, epoch numbers, {"raw": n, "fmt": s} wrappers
// and lists of any of those.
func asDates(v any) []civil.Date {
	if x, ok := v.([]any); ok {
		var out []civil.Date
		for _, e := range x {
			out = append(out, asDates(e)...)
		}
		return out
	}
	if d, ok := asDate(v); ok {
		return []civil.Date{d}
	}
	return nil
}

// asDate parses a single scalar or wrapper.
func asDate(v any) (civil.Date, bool) {
	switch x := v.(type) {
	case nil, []any:
		return civil.Date{}, false
	case map[string]any:
		if d, ok := asDate(x["raw"]); ok {
			return d, true
		}
		return asDate(x["fmt"])
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return civil.Date{}, false
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return dateFromEpoch(n)
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return civil.DateOf(t), true
			}
		}
		// "2026-02-10T00:00:00.000" and similar: the day prefix is enough.
		if len(s) > 10 {
			if d, err := civil.ParseDate(s[:10]); err == nil {
				return d, true
			}
		}
		return civil.Date{}, false
	}
	if n, ok := asNumber(v); ok {
		return dateFromEpoch(n)
	}
	return civil.Date{}, false
}

// --- table helpers ---

func splitTableRow(payload any, label string) (any, bool) {
	m, ok := payload.(map[string]any)
	if !ok {
		return nil, false
	}
	index, ok1 := m["index"].([]any)
	data, ok2 := m["data"].([]any)
	if !ok1 || !ok2 {
		return nil, false
	}
	i := indexOfLabel(index, label)
	if i < 0 || i >= len(data) {
		return nil, false
	}
	return data[i], true
}

func indexOfLabel(labels []any, label string) int {
	for i, l := range labels {
		if matchLabel(l, label) {
			return i
		}
	}
	return -1
}

// matchLabel compares labels ignoring case, spaces and underscores, so
// "Earnings Date", "earnings_date" and "earningsDate" all match.
func matchLabel(v any, label string) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	return squash(s) == squash(label)
}

func squash(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '_' || r == '-' {
			return -1
		}
		return r
	}, strings.ToLower(s))
}

func dig(v any, path ...string) any {
	for _, key := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[key]
	}
	return v
}
