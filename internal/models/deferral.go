package models

import "time"

// Deferral records that a habit's obligation originally due on OriginalDay
// has been moved to DeferredToDay. At most one open (not completed) deferral
// exists per (habit, original day); repeat moves increment TimesDeferred and
// overwrite the target day and reason.
type Deferral struct {
	ID            string    `json:"id"`
	HabitID       string    `json:"habit_id"`
	OriginalDay   string    `json:"original_day"`    // YYYY-MM-DD format
	DeferredToDay string    `json:"deferred_to_day"` // YYYY-MM-DD format
	TimesDeferred int       `json:"times_deferred"`
	Reason        string    `json:"reason,omitempty"`
	Completed     bool      `json:"completed"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DeferralInfo is a point-in-time snapshot of a habit's deferral budget,
// carried on scheduled entries for display.
type DeferralInfo struct {
	TimesDeferred int  `json:"times_deferred"`
	MaxDeferrals  int  `json:"max_deferrals"`
	CanStillDefer bool `json:"can_still_defer"`
}
