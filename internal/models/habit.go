package models

import "time"

type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyRolling  Frequency = "rolling"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencySeasonal Frequency = "seasonal"
)

// IsValid reports whether f is one of the known frequency classes.
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyRolling, FrequencyWeekly, FrequencyMonthly, FrequencySeasonal:
		return true
	default:
		return false
	}
}

// Habit represents a recurring obligation with a frequency class and target count.
type Habit struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Frequency   Frequency `json:"frequency"`

	// IntervalDays is the rolling window size in days (rolling habits only).
	IntervalDays int `json:"interval_days,omitempty"`
	// WeeklyTarget is how many placements a weekly habit gets per week.
	WeeklyTarget int `json:"weekly_target,omitempty"`
	// MonthlyTarget is how many completions a monthly habit aims for per
	// calendar month. Placement stays once-per-month regardless.
	MonthlyTarget int `json:"monthly_target,omitempty"`
	// SeasonalTarget is how many completions a seasonal habit needs per season.
	// Zero means the habit falls back to the recent-completion gate.
	SeasonalTarget int `json:"seasonal_target,omitempty"`

	Active   bool `json:"active"`
	Optional bool `json:"optional"`
	// Locked habits cannot be deferred or skipped.
	Locked bool `json:"locked"`

	// Deadline is an optional time-of-day cutoff (HH:MM) used for reminders.
	Deadline string `json:"deadline,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}
