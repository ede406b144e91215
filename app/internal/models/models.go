package models

import "time"

// Observation statuses as they appear in the source data.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Report job states. A job moves Running -> Complete or Running -> Error
// and never changes again.
const (
	ReportRunning  = "Running"
	ReportComplete = "Complete"
	ReportError    = "Error"
)

// StatusObservation is a single timestamped poll of a store being
// active or inactive.
type StatusObservation struct {
	StoreID   int64
	Timestamp time.Time // UTC
	Status    string
}

// BusinessHoursRule is one open interval for one local day of the week.
// DayOfWeek is 0=Monday .. 6=Sunday, matching the source data. Times are
// local wall clock in "15:04:05" form; a rule never crosses midnight
// (an overnight interval is stored as two same-day rules).
type BusinessHoursRule struct {
	StoreID        int64
	DayOfWeek      int
	StartTimeLocal string
	EndTimeLocal   string
}

// ReportRow is one store's line in a finished report. All durations are
// decimal hours rounded to 2 places.
type ReportRow struct {
	StoreID          int64
	UptimeLastHour   float64
	UptimeLastDay    float64
	UptimeLastWeek   float64
	DowntimeLastHour float64
	DowntimeLastDay  float64
	DowntimeLastWeek float64
}
