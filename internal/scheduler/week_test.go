package scheduler

import (
	"reflect"
	"testing"

	"github.com/julianstephens/weeklit/internal/models"
)

func habitOnDay(week models.WeekSchedule, day, habitID string) *models.ScheduledHabit {
	d := week.Day(day)
	if d == nil {
		return nil
	}
	for i := range d.Habits {
		if d.Habits[i].HabitID == habitID {
			return &d.Habits[i]
		}
	}
	return nil
}

func countPlacements(week models.WeekSchedule, habitID string) int {
	n := 0
	for _, d := range week.Days {
		for _, h := range d.Habits {
			if h.HabitID == habitID {
				n++
			}
		}
	}
	return n
}

func TestGenerateWeekSchedule_ExampleScenario(t *testing.T) {
	store := newFakeStore()
	store.habits = []models.Habit{
		{ID: "phone-lock", Name: "Phone Lock", Frequency: models.FrequencyDaily, Active: true},
		{ID: "gym", Name: "Gym", Frequency: models.FrequencyWeekly, WeeklyTarget: 4, Active: true},
	}

	week, err := New(store).GenerateWeekSchedule("2025-01-06")
	if err != nil {
		t.Fatalf("GenerateWeekSchedule failed: %v", err)
	}

	if week.WeekStart != "2025-01-06" || week.WeekEnd != "2025-01-12" {
		t.Errorf("week window = %s..%s, want 2025-01-06..2025-01-12", week.WeekStart, week.WeekEnd)
	}

	for _, d := range week.Days {
		if habitOnDay(week, d.Day, "phone-lock") == nil {
			t.Errorf("daily habit missing on %s", d.Day)
		}
	}

	if got := countPlacements(week, "gym"); got != 4 {
		t.Fatalf("gym placements = %d, want 4", got)
	}
	// With uniform load, the least-loaded order is plain day order.
	for _, day := range []string{"2025-01-06", "2025-01-07", "2025-01-08", "2025-01-09"} {
		if habitOnDay(week, day, "gym") == nil {
			t.Errorf("gym missing on %s", day)
		}
	}
}

func TestGenerateWeekSchedule_Idempotent(t *testing.T) {
	store := newFakeStore()
	store.habits = []models.Habit{
		{ID: "phone-lock", Name: "Phone Lock", Frequency: models.FrequencyDaily, Active: true},
		{ID: "dishes", Name: "Dishes", Frequency: models.FrequencyRolling, IntervalDays: 2, Active: true},
		{ID: "gym", Name: "Gym", Frequency: models.FrequencyWeekly, WeeklyTarget: 4, Active: true},
		{ID: "filters", Name: "Change Filters", Frequency: models.FrequencyMonthly, Active: true},
	}
	store.completions = []models.Completion{
		{ID: "c1", HabitID: "dishes", Day: "2025-01-05"},
	}
	store.deferrals = []models.Deferral{
		{ID: "d1", HabitID: "phone-lock", OriginalDay: "2025-01-07", DeferredToDay: "2025-01-09", TimesDeferred: 1},
	}

	s := New(store)
	first, err := s.GenerateWeekSchedule("2025-01-06")
	if err != nil {
		t.Fatalf("first generation failed: %v", err)
	}
	second, err := s.GenerateWeekSchedule("2025-01-06")
	if err != nil {
		t.Fatalf("second generation failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("two generations over unchanged state differ")
	}
	if len(store.deferrals) != 1 {
		t.Errorf("generation wrote deferrals: have %d records, want 1", len(store.deferrals))
	}
}

func TestGenerateWeekSchedule_NormalizesToMonday(t *testing.T) {
	store := newFakeStore()

	week, err := New(store).GenerateWeekSchedule("2025-01-09") // a Thursday
	if err != nil {
		t.Fatalf("GenerateWeekSchedule failed: %v", err)
	}
	if week.WeekStart != "2025-01-06" {
		t.Errorf("WeekStart = %s, want 2025-01-06", week.WeekStart)
	}
	if len(week.Days) != 7 {
		t.Errorf("len(Days) = %d, want 7", len(week.Days))
	}
}

func TestGenerateWeekSchedule_RollingSinglePlacement(t *testing.T) {
	store := newFakeStore()
	store.habits = []models.Habit{
		{ID: "dishes", Name: "Dishes", Frequency: models.FrequencyRolling, IntervalDays: 2, Active: true},
	}
	store.completions = []models.Completion{
		{ID: "c1", HabitID: "dishes", Day: "2025-01-05"},
	}

	week, err := New(store).GenerateWeekSchedule("2025-01-06")
	if err != nil {
		t.Fatalf("GenerateWeekSchedule failed: %v", err)
	}

	if got := countPlacements(week, "dishes"); got != 1 {
		t.Fatalf("rolling placements = %d, want 1", got)
	}
	// Monday is only 1 day after the last completion; Wednesday is the
	// first candidate satisfying the 2-day window.
	if habitOnDay(week, "2025-01-08", "dishes") == nil {
		t.Error("rolling habit should land on Wednesday")
	}
}

func TestGenerateWeekSchedule_RollingNeverCompleted(t *testing.T) {
	store := newFakeStore()
	store.habits = []models.Habit{
		{ID: "dishes", Name: "Dishes", Frequency: models.FrequencyRolling, IntervalDays: 3, Active: true},
	}

	week, err := New(store).GenerateWeekSchedule("2025-01-06")
	if err != nil {
		t.Fatalf("GenerateWeekSchedule failed: %v", err)
	}

	if habitOnDay(week, "2025-01-06", "dishes") == nil {
		t.Error("never-completed rolling habit should land on the first candidate day")
	}
	if got := countPlacements(week, "dishes"); got != 1 {
		t.Errorf("rolling placements = %d, want 1", got)
	}
}

func TestGenerateWeekSchedule_DeferralReconciliation(t *testing.T) {
	store := newFakeStore()
	store.habits = []models.Habit{
		{ID: "phone-lock", Name: "Phone Lock", Frequency: models.FrequencyDaily, Active: true},
	}
	store.deferrals = []models.Deferral{
		{ID: "d1", HabitID: "phone-lock", OriginalDay: "2025-01-07", DeferredToDay: "2025-01-09", TimesDeferred: 1, Reason: "busy day"},
	}

	week, err := New(store).GenerateWeekSchedule("2025-01-06")
	if err != nil {
		t.Fatalf("GenerateWeekSchedule failed: %v", err)
	}

	if habitOnDay(week, "2025-01-07", "phone-lock") != nil {
		t.Error("habit should be absent from its original day")
	}

	moved := habitOnDay(week, "2025-01-09", "phone-lock")
	if moved == nil {
		t.Fatal("habit missing from its deferred-to day")
	}
	if got := countPlacements(week, "phone-lock"); got != 6 {
		t.Errorf("habit placed %d times across the week, want 6 (one day moved onto another)", got)
	}
	if moved.Deferral == nil {
		t.Fatal("moved placement should carry a deferral snapshot")
	}
	if moved.Deferral.TimesDeferred != 1 || moved.Deferral.MaxDeferrals != 2 {
		t.Errorf("snapshot = %+v, want used 1 of 2", moved.Deferral)
	}
	if !moved.Deferral.CanStillDefer {
		t.Error("one move of two used should still be deferrable")
	}
	if moved.Reason != "Moved from 2025-01-07: busy day" {
		t.Errorf("reason = %q", moved.Reason)
	}
}

func TestGenerateWeekSchedule_ChainedDeferralSkipsIntermediateDay(t *testing.T) {
	store := newFakeStore()
	store.habits = []models.Habit{
		{ID: "phone-lock", Name: "Phone Lock", Frequency: models.FrequencyDaily, Active: true},
	}
	// Two open records from a chain of moves: the obligation went
	// 01-07 -> 01-09 -> 01-11 and must only surface on its final day.
	store.deferrals = []models.Deferral{
		{ID: "d1", HabitID: "phone-lock", OriginalDay: "2025-01-07", DeferredToDay: "2025-01-09", TimesDeferred: 1},
		{ID: "d2", HabitID: "phone-lock", OriginalDay: "2025-01-09", DeferredToDay: "2025-01-11", TimesDeferred: 2},
	}

	week, err := New(store).GenerateWeekSchedule("2025-01-06")
	if err != nil {
		t.Fatalf("GenerateWeekSchedule failed: %v", err)
	}

	if habitOnDay(week, "2025-01-07", "phone-lock") != nil {
		t.Error("habit should be absent from the day it was first moved off")
	}
	if habitOnDay(week, "2025-01-09", "phone-lock") != nil {
		t.Error("habit still scheduled on the intermediate day of a chained move")
	}
	if habitOnDay(week, "2025-01-11", "phone-lock") == nil {
		t.Error("habit missing from the final day of the chain")
	}
	if got := countPlacements(week, "phone-lock"); got != 5 {
		t.Errorf("habit placed %d times across the week, want 5 (two days vacated, one landing shared)", got)
	}
}

func TestGenerateWeekSchedule_InactiveHabitNotReinserted(t *testing.T) {
	store := newFakeStore()
	store.habits = []models.Habit{
		{ID: "phone-lock", Name: "Phone Lock", Frequency: models.FrequencyDaily, Active: false},
	}
	store.deferrals = []models.Deferral{
		{ID: "d1", HabitID: "phone-lock", OriginalDay: "2025-01-07", DeferredToDay: "2025-01-09", TimesDeferred: 1},
	}

	week, err := New(store).GenerateWeekSchedule("2025-01-06")
	if err != nil {
		t.Fatalf("GenerateWeekSchedule failed: %v", err)
	}

	if got := countPlacements(week, "phone-lock"); got != 0 {
		t.Errorf("inactive habit placed %d times, want 0", got)
	}
}

func TestGenerateWeekSchedule_MonthlySkipsWhenDone(t *testing.T) {
	store := newFakeStore()
	store.habits = []models.Habit{
		{ID: "filters", Name: "Change Filters", Frequency: models.FrequencyMonthly, Active: true},
	}
	store.completions = []models.Completion{
		{ID: "c1", HabitID: "filters", Day: "2025-01-02"},
	}

	week, err := New(store).GenerateWeekSchedule("2025-01-06")
	if err != nil {
		t.Fatalf("GenerateWeekSchedule failed: %v", err)
	}
	if got := countPlacements(week, "filters"); got != 0 {
		t.Errorf("monthly habit placed %d times despite a completion this month", got)
	}
}

func TestGenerateWeekSchedule_MonthlyPlacedOnce(t *testing.T) {
	store := newFakeStore()
	store.habits = []models.Habit{
		{ID: "phone-lock", Name: "Phone Lock", Frequency: models.FrequencyDaily, Active: true},
		{ID: "filters", Name: "Change Filters", Frequency: models.FrequencyMonthly, Active: true},
	}

	week, err := New(store).GenerateWeekSchedule("2025-01-06")
	if err != nil {
		t.Fatalf("GenerateWeekSchedule failed: %v", err)
	}
	if got := countPlacements(week, "filters"); got != 1 {
		t.Errorf("monthly habit placed %d times, want 1", got)
	}
}

func TestGenerateWeekSchedule_SeasonalTargetHeuristic(t *testing.T) {
	store := newFakeStore()
	store.habits = []models.Habit{
		{ID: "gutters", Name: "Clean Gutters", Frequency: models.FrequencySeasonal, SeasonalTarget: 2, Active: true},
	}

	s := New(store)

	// Mid-season with two targets outstanding and many weeks left: no
	// placement is forced yet.
	week, err := s.GenerateWeekSchedule("2025-06-02")
	if err != nil {
		t.Fatalf("GenerateWeekSchedule failed: %v", err)
	}
	if got := countPlacements(week, "gutters"); got != 0 {
		t.Errorf("mid-season placements = %d, want 0", got)
	}

	// Two weeks from season end with both still outstanding: must place.
	week, err = s.GenerateWeekSchedule("2025-10-20")
	if err != nil {
		t.Fatalf("GenerateWeekSchedule failed: %v", err)
	}
	if got := countPlacements(week, "gutters"); got != 1 {
		t.Errorf("season-end placements = %d, want 1", got)
	}

	// Target met: nothing to place even at season end.
	store.completions = []models.Completion{
		{ID: "c1", HabitID: "gutters", Day: "2025-04-12"},
		{ID: "c2", HabitID: "gutters", Day: "2025-08-03"},
	}
	week, err = s.GenerateWeekSchedule("2025-10-20")
	if err != nil {
		t.Fatalf("GenerateWeekSchedule failed: %v", err)
	}
	if got := countPlacements(week, "gutters"); got != 0 {
		t.Errorf("placements with target met = %d, want 0", got)
	}
}

func TestGenerateWeekSchedule_SeasonalFallbackGate(t *testing.T) {
	store := newFakeStore()
	store.habits = []models.Habit{
		{ID: "windows", Name: "Wash Windows", Frequency: models.FrequencySeasonal, Active: true},
	}

	s := New(store)

	// Never completed: the 4-month gate is open.
	week, err := s.GenerateWeekSchedule("2025-06-02")
	if err != nil {
		t.Fatalf("GenerateWeekSchedule failed: %v", err)
	}
	if got := countPlacements(week, "windows"); got != 1 {
		t.Errorf("placements = %d, want 1", got)
	}

	// Completed two months ago: gate closed.
	store.completions = []models.Completion{
		{ID: "c1", HabitID: "windows", Day: "2025-04-10"},
	}
	week, err = s.GenerateWeekSchedule("2025-06-02")
	if err != nil {
		t.Fatalf("GenerateWeekSchedule failed: %v", err)
	}
	if got := countPlacements(week, "windows"); got != 0 {
		t.Errorf("placements = %d, want 0 after a recent completion", got)
	}
}

func TestGenerateWeekSchedule_MarksCompletions(t *testing.T) {
	store := newFakeStore()
	store.habits = []models.Habit{
		{ID: "phone-lock", Name: "Phone Lock", Frequency: models.FrequencyDaily, Active: true},
	}
	store.completions = []models.Completion{
		{ID: "c1", HabitID: "phone-lock", Day: "2025-01-06"},
	}

	week, err := New(store).GenerateWeekSchedule("2025-01-06")
	if err != nil {
		t.Fatalf("GenerateWeekSchedule failed: %v", err)
	}

	if got := habitOnDay(week, "2025-01-06", "phone-lock"); got == nil || !got.Completed {
		t.Error("Monday's placement should be marked completed")
	}
	if got := habitOnDay(week, "2025-01-07", "phone-lock"); got == nil || got.Completed {
		t.Error("Tuesday's placement should not be marked completed")
	}
}
