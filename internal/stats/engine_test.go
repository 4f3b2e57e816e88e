package stats

import (
	"fmt"
	"testing"

	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/storage"
)

// fakeStore backs the engine with in-memory state.
type fakeStore struct {
	settings    models.Settings
	habits      []models.Habit
	completions []models.Completion
	adhoc       []models.AdHocTask
	dayStats    map[string]models.DayStats
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		settings: models.Settings{AnchorHabit: "Phone Lock"},
		dayStats: make(map[string]models.DayStats),
	}
}

func (f *fakeStore) GetSettings() (models.Settings, error) {
	return f.settings, nil
}

func (f *fakeStore) GetHabitByName(name string) (models.Habit, error) {
	for _, h := range f.habits {
		if h.Name == name {
			return h, nil
		}
	}
	return models.Habit{}, fmt.Errorf("habit %q: %w", name, storage.ErrNotFound)
}

func (f *fakeStore) GetCompletion(habitID, day string) (models.Completion, error) {
	for _, c := range f.completions {
		if c.HabitID == habitID && c.Day == day {
			return c, nil
		}
	}
	return models.Completion{}, fmt.Errorf("completion: %w", storage.ErrNotFound)
}

func (f *fakeStore) GetAdHocTasksForDay(day string) ([]models.AdHocTask, error) {
	var out []models.AdHocTask
	for _, t := range f.adhoc {
		if t.Day == day {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) GetDayStats(day string) (models.DayStats, error) {
	st, ok := f.dayStats[day]
	if !ok {
		return models.DayStats{}, fmt.Errorf("stats for %s: %w", day, storage.ErrNotFound)
	}
	return st, nil
}

func (f *fakeStore) UpsertDayStats(stats models.DayStats) error {
	f.dayStats[stats.Day] = stats
	return nil
}

// markCompletedDays stores completed summary rows for the given days.
func (f *fakeStore) markCompletedDays(days ...string) {
	for _, d := range days {
		f.dayStats[d] = models.DayStats{Day: d, DayCompleted: true}
	}
}

// fakeScheduler serves a fixed week and flags placements as completed from
// the store's completion records.
type fakeScheduler struct {
	store  *fakeStore
	habits []models.Habit
}

func (s *fakeScheduler) GenerateWeekSchedule(weekStart string) (models.WeekSchedule, error) {
	// Tests always ask inside the 2025-01-06 week.
	week := models.WeekSchedule{WeekStart: "2025-01-06", WeekEnd: "2025-01-12"}
	for i := 0; i < 7; i++ {
		day := fmt.Sprintf("2025-01-%02d", 6+i)
		ds := models.DaySchedule{Day: day}
		for _, h := range s.habits {
			sh := models.ScheduledHabit{
				HabitID:   h.ID,
				Name:      h.Name,
				Frequency: h.Frequency,
				Optional:  h.Optional,
				Deadline:  h.Deadline,
			}
			if _, err := s.store.GetCompletion(h.ID, day); err == nil {
				sh.Completed = true
			}
			ds.Habits = append(ds.Habits, sh)
		}
		week.Days = append(week.Days, ds)
	}
	return week, nil
}

func newTestEngine(habits []models.Habit) (*Engine, *fakeStore) {
	store := newFakeStore()
	store.habits = habits
	return New(store, &fakeScheduler{store: store, habits: habits}), store
}

var testHabits = []models.Habit{
	{ID: "phone-lock", Name: "Phone Lock", Frequency: models.FrequencyDaily, Active: true},
	{ID: "gym", Name: "Gym", Frequency: models.FrequencyWeekly, Active: true},
	{ID: "stretch", Name: "Stretch", Frequency: models.FrequencyDaily, Active: true, Optional: true},
}

func TestCurrentStreakLength(t *testing.T) {
	engine, store := newTestEngine(testHabits)
	// Completed on date-1..date-3, gap at date-4.
	store.markCompletedDays("2025-01-09", "2025-01-08", "2025-01-07")
	store.dayStats["2025-01-06"] = models.DayStats{Day: "2025-01-06", DayCompleted: false}

	streak, err := engine.CurrentStreakLength("2025-01-10")
	if err != nil {
		t.Fatalf("CurrentStreakLength failed: %v", err)
	}
	if streak != 3 {
		t.Errorf("streak = %d, want 3", streak)
	}
}

func TestCurrentStreakLength_NoHistory(t *testing.T) {
	engine, _ := newTestEngine(testHabits)

	streak, err := engine.CurrentStreakLength("2025-01-10")
	if err != nil {
		t.Fatalf("CurrentStreakLength failed: %v", err)
	}
	if streak != 0 {
		t.Errorf("streak = %d, want 0 with no stored days", streak)
	}
}

func TestCalculateDayStatus_FirstWeekLeniency(t *testing.T) {
	engine, store := newTestEngine(testHabits)
	// Two completed days behind us puts 2025-01-08 at streak day 3.
	store.markCompletedDays("2025-01-06", "2025-01-07")
	// Only the anchor habit is done.
	store.completions = []models.Completion{
		{ID: "c1", HabitID: "phone-lock", Day: "2025-01-08"},
	}

	status, err := engine.CalculateDayStatus("2025-01-08")
	if err != nil {
		t.Fatalf("CalculateDayStatus failed: %v", err)
	}

	if status.StreakDay != 3 {
		t.Errorf("StreakDay = %d, want 3", status.StreakDay)
	}
	if !status.InFirstWeek {
		t.Error("day 3 should be flagged in first week")
	}
	if status.Rule != models.RuleAnchorOnly {
		t.Errorf("Rule = %s, want %s", status.Rule, models.RuleAnchorOnly)
	}
	if !status.Completed {
		t.Error("anchor done on streak day 3 should complete the day despite other misses")
	}
}

func TestCalculateDayStatus_LeniencyEndsAtDay8(t *testing.T) {
	engine, store := newTestEngine(testHabits)
	// Seven completed days behind us puts 2025-01-10 at streak day 8.
	store.markCompletedDays("2025-01-03", "2025-01-04", "2025-01-05", "2025-01-06",
		"2025-01-07", "2025-01-08", "2025-01-09")
	store.completions = []models.Completion{
		{ID: "c1", HabitID: "phone-lock", Day: "2025-01-10"},
	}

	status, err := engine.CalculateDayStatus("2025-01-10")
	if err != nil {
		t.Fatalf("CalculateDayStatus failed: %v", err)
	}

	if status.StreakDay != 8 {
		t.Fatalf("StreakDay = %d, want 8", status.StreakDay)
	}
	if status.InFirstWeek {
		t.Error("streak day 8 is past the leniency window")
	}
	if status.Rule != models.RuleAllRequired {
		t.Errorf("Rule = %s, want %s", status.Rule, models.RuleAllRequired)
	}
	if status.Completed {
		t.Error("anchor alone must not complete the day once leniency ends")
	}
}

func TestCalculateDayStatus_FullRuleCounts(t *testing.T) {
	engine, store := newTestEngine(testHabits)
	store.settings.AnchorHabit = ""
	store.completions = []models.Completion{
		{ID: "c1", HabitID: "phone-lock", Day: "2025-01-06"},
		{ID: "c2", HabitID: "gym", Day: "2025-01-06"},
	}
	store.adhoc = []models.AdHocTask{
		{ID: "a1", Day: "2025-01-06", Name: "Call plumber", Done: false},
	}

	status, err := engine.CalculateDayStatus("2025-01-06")
	if err != nil {
		t.Fatalf("CalculateDayStatus failed: %v", err)
	}

	// 3 scheduled habits (one optional) + 1 ad-hoc task.
	if status.TotalTasks != 4 {
		t.Errorf("TotalTasks = %d, want 4", status.TotalTasks)
	}
	if status.RequiredTasks != 3 {
		t.Errorf("RequiredTasks = %d, want 3 (optional habit excluded, ad-hoc included)", status.RequiredTasks)
	}
	if status.CompletedRequired != 2 {
		t.Errorf("CompletedRequired = %d, want 2", status.CompletedRequired)
	}
	if status.Completed {
		t.Error("open ad-hoc task should keep the day incomplete")
	}
}

func TestCalculateDayStatus_EmptyAnchorUsesFullRule(t *testing.T) {
	engine, store := newTestEngine(testHabits)
	store.settings.AnchorHabit = ""
	store.completions = []models.Completion{
		{ID: "c1", HabitID: "phone-lock", Day: "2025-01-06"},
	}

	status, err := engine.CalculateDayStatus("2025-01-06")
	if err != nil {
		t.Fatalf("CalculateDayStatus failed: %v", err)
	}
	if status.Rule != models.RuleAllRequired {
		t.Errorf("Rule = %s, want %s when no anchor habit is configured", status.Rule, models.RuleAllRequired)
	}
	if status.Completed {
		t.Error("missing required habit should leave the day incomplete")
	}
}

func TestCalculateDayStatus_Reminders(t *testing.T) {
	habits := []models.Habit{
		{ID: "phone-lock", Name: "Phone Lock", Frequency: models.FrequencyDaily, Active: true, Deadline: "21:00"},
		{ID: "gym", Name: "Gym", Frequency: models.FrequencyWeekly, Active: true},
	}
	engine, store := newTestEngine(habits)
	store.settings.AnchorHabit = ""

	status, err := engine.CalculateDayStatus("2025-01-06")
	if err != nil {
		t.Fatalf("CalculateDayStatus failed: %v", err)
	}
	if len(status.Reminders) != 1 {
		t.Fatalf("reminders = %v, want one entry for the deadlined habit", status.Reminders)
	}
	if status.Reminders[0] != "Phone Lock is due by 21:00" {
		t.Errorf("reminder = %q", status.Reminders[0])
	}
}

func TestCalculateDayStatus_InvalidDate(t *testing.T) {
	engine, _ := newTestEngine(testHabits)

	if _, err := engine.CalculateDayStatus("06-01-2025"); err == nil {
		t.Error("malformed date should be rejected")
	}
}

func TestCalculateAndStoreDayStats_Upsert(t *testing.T) {
	engine, store := newTestEngine(testHabits)
	store.settings.AnchorHabit = ""

	first, err := engine.CalculateAndStoreDayStats("2025-01-06")
	if err != nil {
		t.Fatalf("CalculateAndStoreDayStats failed: %v", err)
	}

	store.completions = []models.Completion{
		{ID: "c1", HabitID: "phone-lock", Day: "2025-01-06"},
	}
	second, err := engine.CalculateAndStoreDayStats("2025-01-06")
	if err != nil {
		t.Fatalf("recalculation failed: %v", err)
	}

	if len(store.dayStats) != 1 {
		t.Errorf("stored rows = %d, want 1 (upsert, not append)", len(store.dayStats))
	}
	if first.CompletedTasks != 0 || second.CompletedTasks != 1 {
		t.Errorf("completed tasks %d -> %d, want 0 -> 1", first.CompletedTasks, second.CompletedTasks)
	}
}

func TestRecalculateRange_AscendingStreaks(t *testing.T) {
	engine, store := newTestEngine(testHabits)
	store.settings.AnchorHabit = ""
	// Complete every required task on three consecutive days.
	for _, day := range []string{"2025-01-06", "2025-01-07", "2025-01-08"} {
		store.completions = append(store.completions,
			models.Completion{ID: "c-pl-" + day, HabitID: "phone-lock", Day: day},
			models.Completion{ID: "c-gym-" + day, HabitID: "gym", Day: day},
		)
	}

	written, err := engine.RecalculateRange("2025-01-06", "2025-01-08")
	if err != nil {
		t.Fatalf("RecalculateRange failed: %v", err)
	}
	if written != 3 {
		t.Errorf("written = %d, want 3", written)
	}

	// Each later day's streak number should build on the earlier writes.
	for i, day := range []string{"2025-01-06", "2025-01-07", "2025-01-08"} {
		st := store.dayStats[day]
		if !st.DayCompleted {
			t.Errorf("%s should be completed", day)
		}
		if st.StreakDay != i+1 {
			t.Errorf("%s streak day = %d, want %d", day, st.StreakDay, i+1)
		}
	}
}

func TestRecalculateRange_InvalidRange(t *testing.T) {
	engine, _ := newTestEngine(testHabits)

	if _, err := engine.RecalculateRange("2025-01-08", "2025-01-06"); err == nil {
		t.Error("reversed range should be rejected")
	}
}
