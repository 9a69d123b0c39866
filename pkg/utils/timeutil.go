package utils

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Paris is the Euronext Paris location, used to compute "today" for the CAC 40 universe.
var Paris *time.Location

// NewYork is the NYSE/Nasdaq location, used for the S&P 500 universe.
var NewYork *time.Location

func init() {
	Paris = loadLocation("Europe/Paris", "CET", 1*60*60)
	NewYork = loadLocation("America/New_York", "EST", -5*60*60)
}

func loadLocation(name, abbr string, offset int) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		// No tz database in the image: fall back to the standard offset.
		return time.FixedZone(abbr, offset)
	}
	return loc
}

// MarketLocation returns the exchange time zone for a universe name.
func MarketLocation(universe string) *time.Location {
	if strings.EqualFold(universe, "sp500") {
		return NewYork
	}
	return Paris
}

// Today returns the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) civil.Date {
	if loc == nil {
		loc = time.UTC
	}
	return civil.DateOf(now.In(loc))
}

// DateFromUnix converts an epoch-seconds timestamp to its UTC calendar date.
func DateFromUnix(sec int64) civil.Date {
	return civil.DateOf(time.Unix(sec, 0).UTC())
}

// FormatDate renders a date as dd/mm/yyyy, or "--" when the date is absent.
func FormatDate(d civil.Date) string {
	if d.IsZero() {
		return "--"
	}
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

// DaysUntil returns the number of whole days from today to d (negative if d is past).
func DaysUntil(today, d civil.Date) int {
	return d.DaysSince(today)
}

// Countdown renders the distance to d for display.
func Countdown(today, d civil.Date) string {
	if d.IsZero() {
		return "--"
	}
	switch n := DaysUntil(today, d); {
	case n == 0:
		return "today"
	case n == 1:
		return "tomorrow"
	case n > 1:
		return fmt.Sprintf("in %d days", n)
	case n == -1:
		return "yesterday"
	default:
		return fmt.Sprintf("%d days ago", -n)
	}
}
