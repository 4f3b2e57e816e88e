package scheduler

import (
	"errors"
	"testing"

	"github.com/julianstephens/weeklit/internal/models"
)

func TestLedger_CanDefer(t *testing.T) {
	store := newFakeStore()
	store.habits = []models.Habit{
		{ID: "phone-lock", Name: "Phone Lock", Frequency: models.FrequencyDaily, Active: true},
		{ID: "meds", Name: "Meds", Frequency: models.FrequencyDaily, Active: true, Locked: true},
	}
	ledger := NewLedger(store)

	ok, err := ledger.CanDefer("phone-lock", "2025-01-06")
	if err != nil {
		t.Fatalf("CanDefer failed: %v", err)
	}
	if !ok {
		t.Error("habit with no deferral history should be deferrable")
	}

	ok, err = ledger.CanDefer("meds", "2025-01-06")
	if err != nil {
		t.Fatalf("CanDefer failed: %v", err)
	}
	if ok {
		t.Error("locked habit should never be deferrable")
	}
}

func TestLedger_DeferCreatesAndIncrements(t *testing.T) {
	store := newFakeStore()
	store.habits = []models.Habit{
		{ID: "phone-lock", Name: "Phone Lock", Frequency: models.FrequencyDaily, Active: true},
	}
	ledger := NewLedger(store)

	first, err := ledger.Defer("phone-lock", "2025-01-06", "2025-01-07", "tired")
	if err != nil {
		t.Fatalf("first Defer failed: %v", err)
	}
	if first.TimesDeferred != 1 {
		t.Errorf("TimesDeferred = %d, want 1", first.TimesDeferred)
	}

	second, err := ledger.Defer("phone-lock", "2025-01-06", "2025-01-08", "still tired")
	if err != nil {
		t.Fatalf("second Defer failed: %v", err)
	}
	if second.ID != first.ID {
		t.Error("repeat defer should reuse the open record, not create a new one")
	}
	if second.TimesDeferred != 2 {
		t.Errorf("TimesDeferred = %d, want 2", second.TimesDeferred)
	}
	if second.DeferredToDay != "2025-01-08" || second.Reason != "still tired" {
		t.Errorf("target/reason not overwritten: %+v", second)
	}
	if len(store.deferrals) != 1 {
		t.Errorf("deferral records = %d, want 1", len(store.deferrals))
	}
}

func TestLedger_DeferFromTargetDayContinuesChain(t *testing.T) {
	store := newFakeStore()
	store.habits = []models.Habit{
		{ID: "phone-lock", Name: "Phone Lock", Frequency: models.FrequencyDaily, Active: true},
	}
	ledger := NewLedger(store)

	first, err := ledger.Defer("phone-lock", "2025-01-06", "2025-01-07", "tired")
	if err != nil {
		t.Fatalf("first Defer failed: %v", err)
	}

	// Deferring again from the day the obligation landed on must move the
	// same record forward, not open a second one still targeting 01-07.
	second, err := ledger.Defer("phone-lock", "2025-01-07", "2025-01-08", "still tired")
	if err != nil {
		t.Fatalf("chained Defer failed: %v", err)
	}
	if second.ID != first.ID {
		t.Error("chained defer should reuse the open record, not create a new one")
	}
	if second.OriginalDay != "2025-01-06" {
		t.Errorf("OriginalDay = %q, want the chain's first day 2025-01-06", second.OriginalDay)
	}
	if second.DeferredToDay != "2025-01-08" {
		t.Errorf("DeferredToDay = %q, want 2025-01-08", second.DeferredToDay)
	}
	if second.TimesDeferred != 2 {
		t.Errorf("TimesDeferred = %d, want 2 across the chain", second.TimesDeferred)
	}
	if len(store.deferrals) != 1 {
		t.Errorf("deferral records = %d, want 1", len(store.deferrals))
	}

	// The budget accumulates along the chain: a daily habit is out of moves.
	if _, err := ledger.Defer("phone-lock", "2025-01-08", "2025-01-09", "again"); err == nil {
		t.Error("third chained defer should exhaust the daily budget")
	}
}

func TestLedger_ResolveCompletionClosesDeferral(t *testing.T) {
	store := newFakeStore()
	store.habits = []models.Habit{
		{ID: "phone-lock", Name: "Phone Lock", Frequency: models.FrequencyDaily, Active: true},
	}
	ledger := NewLedger(store)

	if _, err := ledger.Defer("phone-lock", "2025-01-06", "2025-01-08", "tired"); err != nil {
		t.Fatalf("Defer failed: %v", err)
	}

	if err := ledger.ResolveCompletion("phone-lock", "2025-01-08"); err != nil {
		t.Fatalf("ResolveCompletion failed: %v", err)
	}
	if !store.deferrals[0].Completed {
		t.Error("completing on the target day should close the deferral")
	}

	// The closed record no longer feeds schedule reconciliation.
	week, err := New(store).GenerateWeekSchedule("2025-01-06")
	if err != nil {
		t.Fatalf("GenerateWeekSchedule failed: %v", err)
	}
	if habitOnDay(week, "2025-01-06", "phone-lock") == nil {
		t.Error("habit should return to its original day once the move is settled")
	}

	// Days without an open move are a no-op.
	if err := ledger.ResolveCompletion("phone-lock", "2025-01-10"); err != nil {
		t.Fatalf("ResolveCompletion on a plain day failed: %v", err)
	}
}

func TestLedger_DeferFailsAtBudget(t *testing.T) {
	store := newFakeStore()
	store.habits = []models.Habit{
		{ID: "phone-lock", Name: "Phone Lock", Frequency: models.FrequencyDaily, Active: true},
	}
	store.deferrals = []models.Deferral{
		{ID: "d1", HabitID: "phone-lock", OriginalDay: "2025-01-06", DeferredToDay: "2025-01-08", TimesDeferred: 2},
	}
	ledger := NewLedger(store)

	_, err := ledger.Defer("phone-lock", "2025-01-06", "2025-01-09", "again")
	var deferErr *DeferError
	if !errors.As(err, &deferErr) {
		t.Fatalf("error = %v, want *DeferError", err)
	}
	if store.deferrals[0].TimesDeferred != 2 {
		t.Error("failed defer must not mutate the stored record")
	}
}

func TestLedger_FindNextOpenSlot(t *testing.T) {
	store := newFakeStore()
	habit := models.Habit{ID: "phone-lock", Name: "Phone Lock", Frequency: models.FrequencyDaily, Active: true}
	store.habits = []models.Habit{habit}
	store.deferrals = []models.Deferral{
		{ID: "d1", HabitID: "phone-lock", OriginalDay: "2025-01-04", DeferredToDay: "2025-01-07", TimesDeferred: 1},
		{ID: "d2", HabitID: "phone-lock", OriginalDay: "2025-01-05", DeferredToDay: "2025-01-08", TimesDeferred: 1},
	}
	ledger := NewLedger(store)

	slot, err := ledger.FindNextOpenSlot(habit, "2025-01-06")
	if err != nil {
		t.Fatalf("FindNextOpenSlot failed: %v", err)
	}
	if slot != "2025-01-09" {
		t.Errorf("slot = %s, want 2025-01-09 (first day not already targeted)", slot)
	}
}

func TestLedger_FindNextOpenSlotAllTaken(t *testing.T) {
	store := newFakeStore()
	habit := models.Habit{ID: "phone-lock", Name: "Phone Lock", Frequency: models.FrequencyDaily, Active: true}
	store.habits = []models.Habit{habit}
	// Every candidate day after 2025-01-06 already has a move targeting it.
	for _, day := range []string{"2025-01-07", "2025-01-08", "2025-01-09", "2025-01-10", "2025-01-11", "2025-01-12", "2025-01-13"} {
		store.deferrals = append(store.deferrals, models.Deferral{
			ID: "d-" + day, HabitID: "phone-lock", OriginalDay: "2025-01-01", DeferredToDay: day, TimesDeferred: 1,
		})
	}
	ledger := NewLedger(store)

	slot, err := ledger.FindNextOpenSlot(habit, "2025-01-06")
	if err != nil {
		t.Fatalf("FindNextOpenSlot failed: %v", err)
	}
	if slot != "" {
		t.Errorf("slot = %s, want none when all 7 days are taken", slot)
	}
}

func TestLedger_SmartDefer(t *testing.T) {
	store := newFakeStore()
	store.habits = []models.Habit{
		{ID: "gym", Name: "Gym", Frequency: models.FrequencyWeekly, WeeklyTarget: 4, Active: true},
	}
	ledger := NewLedger(store)

	result, err := ledger.SmartDefer("gym", "2025-01-06", "sore")
	if err != nil {
		t.Fatalf("SmartDefer failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("SmartDefer unsuccessful: %s", result.Message)
	}
	if result.NewDueDay != "2025-01-07" {
		t.Errorf("NewDueDay = %s, want 2025-01-07", result.NewDueDay)
	}
	if result.DeferralsUsed != 1 || result.RemainingDeferrals != 2 {
		t.Errorf("budget = %d used / %d remaining, want 1/2", result.DeferralsUsed, result.RemainingDeferrals)
	}
}

func TestLedger_SmartDeferBudgetExhausted(t *testing.T) {
	store := newFakeStore()
	store.habits = []models.Habit{
		{ID: "gym", Name: "Gym", Frequency: models.FrequencyWeekly, Active: true},
	}
	store.deferrals = []models.Deferral{
		{ID: "d1", HabitID: "gym", OriginalDay: "2025-01-06", DeferredToDay: "2025-01-08", TimesDeferred: 3},
	}
	ledger := NewLedger(store)

	result, err := ledger.SmartDefer("gym", "2025-01-06", "sore")
	if err != nil {
		t.Fatalf("SmartDefer failed: %v", err)
	}
	if result.Success {
		t.Fatal("SmartDefer should fail once budget is exhausted")
	}
	if result.Message == "" {
		t.Error("unsuccessful result needs a readable message")
	}
	if store.deferrals[0].TimesDeferred != 3 {
		t.Error("exhausted defer must not mutate the stored record")
	}
}
