package models

// ScheduledHabit is one computed obligation on one day of a generated week.
// It is never persisted; schedules are recomputed from stored state on demand.
type ScheduledHabit struct {
	HabitID   string        `json:"habit_id"`
	Name      string        `json:"name"`
	Frequency Frequency     `json:"frequency"`
	Optional  bool          `json:"optional"`
	Locked    bool          `json:"locked"`
	Deadline  string        `json:"deadline,omitempty"`
	Priority  int           `json:"priority"`
	Reason    string        `json:"reason"`
	Completed bool          `json:"completed"`
	Deferral  *DeferralInfo `json:"deferral,omitempty"`
}

type DaySchedule struct {
	Day    string           `json:"day"` // YYYY-MM-DD format
	Habits []ScheduledHabit `json:"habits"`
}

type WeekSchedule struct {
	WeekStart string        `json:"week_start"` // Monday, YYYY-MM-DD format
	WeekEnd   string        `json:"week_end"`   // Sunday, YYYY-MM-DD format
	Days      []DaySchedule `json:"days"`
}

// Day returns the schedule for the given day, or nil if the day is outside
// the week window.
func (w *WeekSchedule) Day(day string) *DaySchedule {
	for i := range w.Days {
		if w.Days[i].Day == day {
			return &w.Days[i]
		}
	}
	return nil
}
