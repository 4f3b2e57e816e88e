package stats

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/storage"
	"github.com/julianstephens/weeklit/internal/utils"
)

// Store is the slice of the storage provider the stats engine needs.
type Store interface {
	GetSettings() (models.Settings, error)
	GetHabitByName(name string) (models.Habit, error)
	GetCompletion(habitID, day string) (models.Completion, error)
	GetAdHocTasksForDay(day string) ([]models.AdHocTask, error)
	GetDayStats(day string) (models.DayStats, error)
	UpsertDayStats(stats models.DayStats) error
}

// ScheduleSource produces the week grid a day's obligations are read from.
type ScheduleSource interface {
	GenerateWeekSchedule(weekStart string) (models.WeekSchedule, error)
}

// Engine classifies days as complete or not, maintains streak numbering, and
// persists the per-day summary rows.
type Engine struct {
	store     Store
	scheduler ScheduleSource
}

func New(store Store, scheduler ScheduleSource) *Engine {
	return &Engine{store: store, scheduler: scheduler}
}

// CurrentStreakLength counts the consecutive fully-completed days immediately
// preceding asOfDay, walking backward from asOfDay - 1 through stored day
// summaries and stopping at the first incomplete or missing day.
func (e *Engine) CurrentStreakLength(asOfDay string) (int, error) {
	day, err := utils.AddDays(asOfDay, -1)
	if err != nil {
		return 0, err
	}

	streak := 0
	for {
		st, err := e.store.GetDayStats(day)
		if errors.Is(err, storage.ErrNotFound) {
			break
		}
		if err != nil {
			return 0, err
		}
		if !st.DayCompleted {
			break
		}
		streak++
		day, err = utils.AddDays(day, -1)
		if err != nil {
			return 0, err
		}
	}

	return streak, nil
}

// CalculateDayStatus classifies a single day: it projects the day's schedule,
// merges completions and ad-hoc tasks, and applies the completion rule. For
// the first 7 days of a streak only the configured anchor habit has to be
// done; from day 8 every required obligation does.
func (e *Engine) CalculateDayStatus(day string) (models.DayStatus, error) {
	if _, err := utils.ParseDay(day); err != nil {
		return models.DayStatus{}, err
	}

	settings, err := e.store.GetSettings()
	if err != nil {
		return models.DayStatus{}, fmt.Errorf("failed to load settings: %w", err)
	}

	week, err := e.scheduler.GenerateWeekSchedule(day)
	if err != nil {
		return models.DayStatus{}, fmt.Errorf("failed to generate schedule: %w", err)
	}
	daySchedule := week.Day(day)
	if daySchedule == nil {
		return models.DayStatus{}, fmt.Errorf("day %s missing from its own week window", day)
	}

	adhoc, err := e.store.GetAdHocTasksForDay(day)
	if err != nil {
		return models.DayStatus{}, err
	}

	status := models.DayStatus{Day: day}
	for _, h := range daySchedule.Habits {
		status.TotalTasks++
		if h.Completed {
			status.CompletedTasks++
		}
		if !h.Optional {
			status.RequiredTasks++
			if h.Completed {
				status.CompletedRequired++
			}
		}
	}
	for _, t := range adhoc {
		status.TotalTasks++
		status.RequiredTasks++
		if t.Done {
			status.CompletedTasks++
			status.CompletedRequired++
		}
	}

	streak, err := e.CurrentStreakLength(day)
	if err != nil {
		return models.DayStatus{}, err
	}
	status.StreakDay = streak + 1
	status.InFirstWeek = status.StreakDay <= 7

	status.Rule = models.RuleAllRequired
	if status.InFirstWeek && settings.AnchorHabit != "" {
		done, ok, err := e.anchorCompleted(settings.AnchorHabit, day)
		if err != nil {
			return models.DayStatus{}, err
		}
		if ok {
			status.Rule = models.RuleAnchorOnly
			status.Completed = done
		}
	}
	if status.Rule == models.RuleAllRequired {
		status.Completed = status.CompletedRequired == status.RequiredTasks
	}

	status.Reminders = reminders(daySchedule.Habits)

	return status, nil
}

// anchorCompleted resolves the anchor habit by name and reports whether it
// was completed on the given day. The second return is false when no habit
// with the configured name exists, which drops the day back to the full rule.
func (e *Engine) anchorCompleted(name, day string) (bool, bool, error) {
	habit, err := e.store.GetHabitByName(name)
	if errors.Is(err, storage.ErrNotFound) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}

	_, err = e.store.GetCompletion(habit.ID, day)
	if errors.Is(err, storage.ErrNotFound) {
		return false, true, nil
	}
	if err != nil {
		return false, false, err
	}
	return true, true, nil
}

func reminders(scheduled []models.ScheduledHabit) []string {
	var out []string
	for _, h := range scheduled {
		if h.Completed || h.Optional || h.Deadline == "" {
			continue
		}
		out = append(out, fmt.Sprintf("%s is due by %s", h.Name, h.Deadline))
	}
	return out
}

// CalculateAndStoreDayStats classifies a day and upserts its summary row.
// Recomputing an already-stored day overwrites in place.
func (e *Engine) CalculateAndStoreDayStats(day string) (models.DayStats, error) {
	status, err := e.CalculateDayStatus(day)
	if err != nil {
		return models.DayStats{}, err
	}

	pct := 0.0
	if status.TotalTasks > 0 {
		pct = float64(status.CompletedTasks) / float64(status.TotalTasks) * 100
	}

	stats := models.DayStats{
		Day:               status.Day,
		TotalTasks:        status.TotalTasks,
		CompletedTasks:    status.CompletedTasks,
		RequiredTasks:     status.RequiredTasks,
		CompletedRequired: status.CompletedRequired,
		DayCompleted:      status.Completed,
		StreakDay:         status.StreakDay,
		InFirstWeek:       status.InFirstWeek,
		CompletionPct:     pct,
		Rule:              status.Rule,
		CalculatedAt:      time.Now(),
	}

	if err := e.store.UpsertDayStats(stats); err != nil {
		return models.DayStats{}, fmt.Errorf("failed to store stats for %s: %w", day, err)
	}

	return stats, nil
}

// RecalculateRange recomputes every day in [startDay, endDay] in ascending
// order. Order matters: each day's streak number depends on the stored flags
// of all prior days. A failure aborts the sweep but leaves already-written
// days intact; the count of days written so far is returned either way.
func (e *Engine) RecalculateRange(startDay, endDay string) (int, error) {
	start, err := utils.ParseDay(startDay)
	if err != nil {
		return 0, err
	}
	end, err := utils.ParseDay(endDay)
	if err != nil {
		return 0, err
	}
	if end.Before(start) {
		return 0, fmt.Errorf("invalid range: %s is after %s", startDay, endDay)
	}

	written := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if _, err := e.CalculateAndStoreDayStats(utils.FormatDay(day)); err != nil {
			return written, err
		}
		written++
	}

	return written, nil
}
