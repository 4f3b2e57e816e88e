package models

import "time"

// CompletionRule tags which rule decided a day's completion status.
type CompletionRule string

const (
	// RuleAnchorOnly applies during the first 7 days of a streak: only the
	// configured anchor habit needs to be done.
	RuleAnchorOnly CompletionRule = "anchor-only"
	// RuleAllRequired applies from day 8 onward: every required obligation
	// must be done.
	RuleAllRequired CompletionRule = "all-required"
)

// DayStats is the persisted per-day summary derived from habits, completions,
// deferrals, and ad-hoc tasks. It is a rebuildable cache keyed by day, not a
// source of truth.
type DayStats struct {
	Day               string         `json:"day"` // YYYY-MM-DD format
	TotalTasks        int            `json:"total_tasks"`
	CompletedTasks    int            `json:"completed_tasks"`
	RequiredTasks     int            `json:"required_tasks"`
	CompletedRequired int            `json:"completed_required"`
	DayCompleted      bool           `json:"day_completed"`
	StreakDay         int            `json:"streak_day"`
	InFirstWeek       bool           `json:"in_first_week"`
	CompletionPct     float64        `json:"completion_pct"`
	Rule              CompletionRule `json:"rule"`
	CalculatedAt      time.Time      `json:"calculated_at"`
}

// DayStatus is the computed classification returned to callers; DayStats is
// its persisted form.
type DayStatus struct {
	Day               string         `json:"day"`
	Completed         bool           `json:"completed"`
	RequiredTasks     int            `json:"required_tasks"`
	CompletedRequired int            `json:"completed_required"`
	TotalTasks        int            `json:"total_tasks"`
	CompletedTasks    int            `json:"completed_tasks"`
	StreakDay         int            `json:"streak_day"`
	InFirstWeek       bool           `json:"in_first_week"`
	Rule              CompletionRule `json:"rule"`
	Reminders         []string       `json:"reminders,omitempty"`
}
