package models

import (
	"encoding/json"

	"cloud.google.com/go/civil"
)

// Confidence tags the provenance of a resolved value.
type Confidence string

const (
	ConfidenceConfirmed Confidence = "confirmed"
	ConfidenceEstimated Confidence = "estimated" // synthetic placeholder, never financial truth
	ConfidenceAbsent    Confidence = "absent"
)

// Status is the machine-readable outcome of a resolution call.
type Status string

const (
	StatusOK                  Status = "ok"
	StatusNoData              Status = "no_data"
	StatusAuthError           Status = "auth_error"
	StatusQuotaExceeded       Status = "quota_exceeded"
	StatusProviderUnavailable Status = "provider_unavailable"
	StatusTransportError      Status = "transport_error"
)

// Severity orders statuses so the most actionable failure wins when several
// upstream attempts fail for different reasons.
func (s Status) Severity() int {
	switch s {
	case StatusAuthError:
		return 5
	case StatusQuotaExceeded:
		return 4
	case StatusProviderUnavailable:
		return 3
	case StatusTransportError:
		return 2
	case StatusNoData:
		return 1
	default:
		return 0
	}
}

// Usable reports whether the resolver as a whole is functional. Auth and
// quota failures mean no symbol can currently be resolved.
func (s Status) Usable() bool {
	return s != StatusAuthError && s != StatusQuotaExceeded
}

// Message returns the user-facing explanation for a status.
func (s Status) Message() string {
	switch s {
	case StatusOK:
		return "data confirmed by provider"
	case StatusNoData:
		return "no date announced yet"
	case StatusAuthError:
		return "API key rejected or not recognised"
	case StatusQuotaExceeded:
		return "rate limit reached, wait about a minute before retrying"
	case StatusProviderUnavailable:
		return "provider not configured or not registered"
	case StatusTransportError:
		return "provider unreachable or returned an unreadable response"
	default:
		return string(s)
	}
}

// EarningsResolution is the normalized answer to "when does this company
// report next". Date is the zero civil.Date exactly when Confidence is absent.
type EarningsResolution struct {
	Symbol     string     `json:"symbol"`
	Date       civil.Date `json:"date"`
	Confidence Confidence `json:"confidence"`
	Source     string     `json:"source"`
	Status     Status     `json:"status"`
	Detail     string     `json:"detail,omitempty"`
}

// HasDate reports whether a date was resolved.
func (r EarningsResolution) HasDate() bool {
	return !r.Date.IsZero()
}

// MarshalJSON encodes an absent date as null instead of "0000-00-00".
func (r EarningsResolution) MarshalJSON() ([]byte, error) {
	type alias EarningsResolution
	var date *civil.Date
	if r.HasDate() {
		d := r.Date
		date = &d
	}
	return json.Marshal(struct {
		alias
		Date *civil.Date `json:"date"`
	}{alias(r), date})
}

// UnmarshalJSON accepts the encoding produced by MarshalJSON.
func (r *EarningsResolution) UnmarshalJSON(b []byte) error {
	type alias EarningsResolution
	aux := struct {
		*alias
		Date *civil.Date `json:"date"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.Date = civil.Date{}
	if aux.Date != nil {
		r.Date = *aux.Date
	}
	return nil
}

// CapResolution is the normalized market capitalization of a company, in
// millions of the listing currency. Zero means unknown.
type CapResolution struct {
	Symbol            string     `json:"symbol"`
	MarketCapMillions float64    `json:"market_cap_millions"`
	Confidence        Confidence `json:"confidence"`
	Source            string     `json:"source"`
	Status            Status     `json:"status"`
	Detail            string     `json:"detail,omitempty"`
}

// Known reports whether the capitalization is a real upstream value.
func (r CapResolution) Known() bool {
	return r.MarketCapMillions > 0
}
