package job

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/scheduler"
	"github.com/julianstephens/weeklit/internal/storage"
	"github.com/julianstephens/weeklit/internal/utils"
)

type fakeJobStore struct {
	mu        sync.Mutex
	settings  models.Settings
	dayStats  map[string]models.DayStats
	deferrals map[string]models.Deferral // keyed by habitID|day
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{
		settings:  models.Settings{Timezone: "UTC", JobBackfillLimit: 30},
		dayStats:  make(map[string]models.DayStats),
		deferrals: make(map[string]models.Deferral),
	}
}

func (f *fakeJobStore) GetSettings() (models.Settings, error) {
	return f.settings, nil
}

func (f *fakeJobStore) GetDayStats(day string) (models.DayStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.dayStats[day]
	if !ok {
		return models.DayStats{}, fmt.Errorf("stats for %s: %w", day, storage.ErrNotFound)
	}
	return st, nil
}

func (f *fakeJobStore) GetOpenDeferral(habitID, originalDay string) (models.Deferral, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deferrals[habitID+"|"+originalDay]
	if !ok {
		return models.Deferral{}, fmt.Errorf("open deferral: %w", storage.ErrNotFound)
	}
	return d, nil
}

// fakeWeek serves a fixed set of placements on every day.
type fakeWeek struct {
	habits []models.ScheduledHabit
}

func (f *fakeWeek) GenerateWeekSchedule(weekStart string) (models.WeekSchedule, error) {
	monday, err := utils.WeekStartDay(weekStart)
	if err != nil {
		return models.WeekSchedule{}, err
	}
	week := models.WeekSchedule{WeekStart: monday}
	for i := 0; i < 7; i++ {
		day, _ := utils.AddDays(monday, i)
		week.Days = append(week.Days, models.DaySchedule{Day: day, Habits: f.habits})
	}
	week.WeekEnd = week.Days[6].Day
	return week, nil
}

type fakeDeferrer struct {
	store *fakeJobStore
	calls []string
	fail  bool
}

func (f *fakeDeferrer) SmartDefer(habitID, fromDay, reason string) (scheduler.DeferResult, error) {
	f.calls = append(f.calls, habitID+"|"+fromDay)
	if f.fail {
		return scheduler.DeferResult{Success: false, Message: "no open slot"}, nil
	}
	next, _ := utils.AddDays(fromDay, 1)
	f.store.mu.Lock()
	f.store.deferrals[habitID+"|"+fromDay] = models.Deferral{
		HabitID: habitID, OriginalDay: fromDay, DeferredToDay: next, TimesDeferred: 1,
	}
	f.store.mu.Unlock()
	return scheduler.DeferResult{Success: true, NewDueDay: next}, nil
}

type fakeStats struct {
	store *fakeJobStore
	calls []string
	err   error
}

func (f *fakeStats) CalculateAndStoreDayStats(day string) (models.DayStats, error) {
	if f.err != nil {
		return models.DayStats{}, f.err
	}
	f.calls = append(f.calls, day)
	st := models.DayStats{Day: day, DayCompleted: true}
	f.store.mu.Lock()
	f.store.dayStats[day] = st
	f.store.mu.Unlock()
	return st, nil
}

func newTestRunner(store *fakeJobStore, habits []models.ScheduledHabit) (*Runner, *fakeDeferrer, *fakeStats) {
	deferrer := &fakeDeferrer{store: store}
	stats := &fakeStats{store: store}
	r := NewRunner(store, &fakeWeek{habits: habits}, deferrer, stats)
	r.nowFunc = func() time.Time {
		return time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	}
	return r, deferrer, stats
}

func TestRunOnce_MovesOverdueTasks(t *testing.T) {
	store := newFakeJobStore()
	habits := []models.ScheduledHabit{
		{HabitID: "phone-lock", Name: "Phone Lock"},
		{HabitID: "done", Name: "Done", Completed: true},
		{HabitID: "optional", Name: "Optional", Optional: true},
		{HabitID: "locked", Name: "Locked", Locked: true},
	}
	r, deferrer, _ := newTestRunner(store, habits)

	if err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	if len(deferrer.calls) != 1 || deferrer.calls[0] != "phone-lock|2025-01-09" {
		t.Errorf("defer calls = %v, want only the incomplete required habit on yesterday", deferrer.calls)
	}
}

func TestRunOnce_IdempotentPerDay(t *testing.T) {
	store := newFakeJobStore()
	habits := []models.ScheduledHabit{{HabitID: "phone-lock", Name: "Phone Lock"}}
	r, deferrer, stats := newTestRunner(store, habits)

	if err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	firstDeferCalls := len(deferrer.calls)
	firstStatsCalls := len(stats.calls)

	if err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("second pass failed: %v", err)
	}

	if len(deferrer.calls) != firstDeferCalls {
		t.Errorf("second pass re-deferred: %v", deferrer.calls)
	}
	if len(stats.calls) != firstStatsCalls {
		t.Errorf("second pass recalculated stats: %v", stats.calls)
	}
	if r.LastRun() != "2025-01-10" {
		t.Errorf("LastRun = %s, want 2025-01-10", r.LastRun())
	}
}

func TestRunOnce_SkipsAlreadyMovedTasks(t *testing.T) {
	store := newFakeJobStore()
	store.deferrals["phone-lock|2025-01-09"] = models.Deferral{
		HabitID: "phone-lock", OriginalDay: "2025-01-09", DeferredToDay: "2025-01-10", TimesDeferred: 1,
	}
	habits := []models.ScheduledHabit{{HabitID: "phone-lock", Name: "Phone Lock"}}
	r, deferrer, _ := newTestRunner(store, habits)

	if err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if len(deferrer.calls) != 0 {
		t.Errorf("defer calls = %v, want none for an already-moved task", deferrer.calls)
	}
}

func TestRunOnce_BackfillsAscending(t *testing.T) {
	store := newFakeJobStore()
	store.settings.JobBackfillLimit = 5
	// Stats exist through the 6th; the 7th onward is missing.
	store.dayStats["2025-01-06"] = models.DayStats{Day: "2025-01-06", DayCompleted: true}
	r, _, stats := newTestRunner(store, nil)

	if err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	want := []string{"2025-01-07", "2025-01-08", "2025-01-09", "2025-01-10"}
	if len(stats.calls) != len(want) {
		t.Fatalf("stats calls = %v, want %v", stats.calls, want)
	}
	for i, day := range want {
		if stats.calls[i] != day {
			t.Errorf("call %d = %s, want %s (ascending order)", i, stats.calls[i], day)
		}
	}
}

func TestRunOnce_BackfillLimited(t *testing.T) {
	store := newFakeJobStore()
	store.settings.JobBackfillLimit = 3
	r, _, stats := newTestRunner(store, nil)

	if err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	// No stored stats at all: the sweep is capped at the limit.
	if len(stats.calls) != 4 {
		t.Errorf("stats calls = %v, want 4 days (limit 3 back plus today)", stats.calls)
	}
	if stats.calls[0] != "2025-01-07" {
		t.Errorf("first backfilled day = %s, want 2025-01-07", stats.calls[0])
	}
}

func TestRunOnce_SingleFlight(t *testing.T) {
	store := newFakeJobStore()
	r, _, _ := newTestRunner(store, nil)

	r.mu.Lock()
	r.running = true
	r.mu.Unlock()

	err := r.RunOnce(context.Background())
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("error = %v, want ErrAlreadyRunning", err)
	}
}

func TestRunOnce_StatsFailureDoesNotMarkDay(t *testing.T) {
	store := newFakeJobStore()
	r, _, stats := newTestRunner(store, nil)
	stats.err = errors.New("db unavailable")

	if err := r.RunOnce(context.Background()); err == nil {
		t.Fatal("expected the failure to surface")
	}
	if r.LastRun() != "" {
		t.Errorf("LastRun = %s, want empty after a failed pass", r.LastRun())
	}
}

func TestRunOnce_UnsuccessfulDeferDoesNotAbort(t *testing.T) {
	store := newFakeJobStore()
	habits := []models.ScheduledHabit{{HabitID: "phone-lock", Name: "Phone Lock"}}
	r, deferrer, _ := newTestRunner(store, habits)
	deferrer.fail = true

	if err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if r.LastRun() != "2025-01-10" {
		t.Error("a policy-level defer failure should not fail the pass")
	}
}
