package scheduler

import (
	"fmt"

	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/storage"
)

// fakeStore is an in-memory Store for scheduler tests.
type fakeStore struct {
	settings    models.Settings
	habits      []models.Habit
	completions []models.Completion
	deferrals   []models.Deferral
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		settings: models.Settings{DefaultWeeklyTarget: 1},
	}
}

func (f *fakeStore) GetSettings() (models.Settings, error) {
	return f.settings, nil
}

func (f *fakeStore) GetHabit(id string) (models.Habit, error) {
	for _, h := range f.habits {
		if h.ID == id {
			return h, nil
		}
	}
	return models.Habit{}, fmt.Errorf("habit %s: %w", id, storage.ErrNotFound)
}

func (f *fakeStore) GetActiveHabits() ([]models.Habit, error) {
	var active []models.Habit
	for _, h := range f.habits {
		if h.Active {
			active = append(active, h)
		}
	}
	return active, nil
}

func (f *fakeStore) GetCompletionsForDay(day string) ([]models.Completion, error) {
	var out []models.Completion
	for _, c := range f.completions {
		if c.Day == day {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetCompletionsForHabit(habitID, startDay, endDay string) ([]models.Completion, error) {
	var out []models.Completion
	for _, c := range f.completions {
		if c.HabitID == habitID && c.Day >= startDay && c.Day <= endDay {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetLastCompletionDay(habitID string) (string, error) {
	last := ""
	for _, c := range f.completions {
		if c.HabitID == habitID && c.Day > last {
			last = c.Day
		}
	}
	if last == "" {
		return "", fmt.Errorf("no completions for habit %s: %w", habitID, storage.ErrNotFound)
	}
	return last, nil
}

func (f *fakeStore) GetOpenDeferral(habitID, originalDay string) (models.Deferral, error) {
	for _, d := range f.deferrals {
		if d.HabitID == habitID && d.OriginalDay == originalDay && !d.Completed {
			return d, nil
		}
	}
	return models.Deferral{}, fmt.Errorf("open deferral: %w", storage.ErrNotFound)
}

func (f *fakeStore) GetDeferralsByTarget(habitID, startDay, endDay string) ([]models.Deferral, error) {
	var out []models.Deferral
	for _, d := range f.deferrals {
		if d.HabitID == habitID && d.DeferredToDay >= startDay && d.DeferredToDay <= endDay {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeStore) GetOpenDeferralsInRange(startDay, endDay string) ([]models.Deferral, error) {
	var out []models.Deferral
	for _, d := range f.deferrals {
		if d.Completed {
			continue
		}
		inRange := (d.OriginalDay >= startDay && d.OriginalDay <= endDay) ||
			(d.DeferredToDay >= startDay && d.DeferredToDay <= endDay)
		if inRange {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeStore) SaveDeferral(deferral models.Deferral) error {
	for i, d := range f.deferrals {
		if d.ID == deferral.ID {
			f.deferrals[i] = deferral
			return nil
		}
	}
	f.deferrals = append(f.deferrals, deferral)
	return nil
}
