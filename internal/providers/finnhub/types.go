package finnhub

// --- Finnhub API response types ---

type fhEarningsCalendar struct {
	EarningsCalendar []fhEarningsEntry `json:"earningsCalendar"`
}

type fhEarningsEntry struct {
	Date            string   `json:"date"`
	Symbol          string   `json:"symbol"`
	Hour            string   `json:"hour"` // "bmo", "amc", "dmh" or ""
	Quarter         int      `json:"quarter"`
	Year            int      `json:"year"`
	EPSEstimate     *float64 `json:"epsEstimate"`
	EPSActual       *float64 `json:"epsActual"`
	RevenueEstimate *float64 `json:"revenueEstimate"`
	RevenueActual   *float64 `json:"revenueActual"`
}
