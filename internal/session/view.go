package session

import (
	"cloud.google.com/go/civil"

	"github.com/tonywu212005-glitch/sp500-app/pkg/models"
	"github.com/tonywu212005-glitch/sp500-app/pkg/utils"
)

// NotConfirmed is shown in place of a missing value.
const NotConfirmed = "not confirmed"

// EarningsView is an earnings resolution prepared for display.
type EarningsView struct {
	Resolution models.EarningsResolution `json:"resolution"`
	Display    string                    `json:"display"`              // dd/mm/yyyy or "not confirmed"
	Countdown  string                    `json:"countdown"`            // "in 12 days", "today", ...
	DaysUntil  *int                      `json:"days_until,omitempty"` // nil when no date
	Message    string                    `json:"message"`
}

// NewEarningsView renders r relative to today.
func NewEarningsView(r models.EarningsResolution, today civil.Date) EarningsView {
	v := EarningsView{
		Resolution: r,
		Display:    NotConfirmed,
		Countdown:  "--",
		Message:    r.Status.Message(),
	}
	if r.Detail != "" {
		v.Message = r.Detail
	}
	if r.HasDate() {
		n := utils.DaysUntil(today, r.Date)
		v.Display = utils.FormatDate(r.Date)
		v.Countdown = utils.Countdown(today, r.Date)
		v.DaysUntil = &n
	}
	return v
}

// CapView is a market cap resolution prepared for display.
type CapView struct {
	Resolution models.CapResolution `json:"resolution"`
	Display    string               `json:"display"` // "2.50 T", "950.00 B" or "Unknown"
	Message    string               `json:"message"`
}

// NewCapView renders r.
func NewCapView(r models.CapResolution) CapView {
	v := CapView{
		Resolution: r,
		Display:    utils.FormatMarketCap(r.MarketCapMillions),
		Message:    r.Status.Message(),
	}
	if r.Detail != "" {
		v.Message = r.Detail
	}
	return v
}
