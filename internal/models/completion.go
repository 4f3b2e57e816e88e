package models

import "time"

// Completion represents a single day's record that a habit was done.
// There is at most one live completion per (habit, day).
type Completion struct {
	ID        string     `json:"id"`
	HabitID   string     `json:"habit_id"`
	Day       string     `json:"day"` // YYYY-MM-DD format
	Note      string     `json:"note,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// AdHocTask is a one-off obligation for a single day, not tied to a habit.
// Ad-hoc tasks are always treated as required.
type AdHocTask struct {
	ID        string     `json:"id"`
	Day       string     `json:"day"` // YYYY-MM-DD format
	Name      string     `json:"name"`
	Done      bool       `json:"done"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
