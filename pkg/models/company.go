// Package models defines the core data structures shared by the directory,
// the resolvers and the presentation layers.
package models

import "cloud.google.com/go/civil"

// Company is one row of a ticker directory snapshot.
type Company struct {
	Symbol string `json:"symbol"` // e.g., "AI.PA", "BRK.B"
	Name   string `json:"name"`   // e.g., "Air Liquide"
	Sector string `json:"sector"` // may be empty
}

// EarningsCalendarEntry is a single upcoming report returned by a calendar endpoint.
type EarningsCalendarEntry struct {
	Symbol          string     `json:"symbol"`
	Date            civil.Date `json:"date"`
	Hour            string     `json:"hour,omitempty"` // "bmo", "amc", "dmh" or empty
	Quarter         int        `json:"quarter,omitempty"`
	Year            int        `json:"year,omitempty"`
	EPSEstimate     *float64   `json:"eps_estimate,omitempty"`
	RevenueEstimate *float64   `json:"revenue_estimate,omitempty"`
}
