package provider

// ModelType names a data shape a Fetcher returns.
type ModelType string

const (
	// ModelCalendarEarnings returns []models.EarningsCalendarEntry for a
	// symbol and a [start_date, end_date] window.
	ModelCalendarEarnings ModelType = "CalendarEarnings"

	// ModelEquityProfile returns the raw decoded profile payload (any) for a
	// symbol. Callers run shape probes over it.
	ModelEquityProfile ModelType = "EquityProfile"
)

// AllModels returns every model type known to the framework.
func AllModels() []ModelType {
	return []ModelType{ModelCalendarEarnings, ModelEquityProfile}
}

// ModelCategory returns a display group for a model type.
func ModelCategory(m ModelType) string {
	switch m {
	case ModelCalendarEarnings:
		return "Calendar"
	case ModelEquityProfile:
		return "Profile"
	default:
		return "Other"
	}
}
