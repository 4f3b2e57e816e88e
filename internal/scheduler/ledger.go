package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/storage"
	"github.com/julianstephens/weeklit/internal/utils"
)

// maxDeferrals is the per-frequency deferral budget. A habit's obligation on
// a given day can be pushed forward at most this many times.
var maxDeferrals = map[models.Frequency]int{
	models.FrequencyDaily:    2,
	models.FrequencyRolling:  2,
	models.FrequencyWeekly:   3,
	models.FrequencyMonthly:  5,
	models.FrequencySeasonal: 10,
}

// MaxDeferrals returns the deferral budget for a frequency class.
func MaxDeferrals(freq models.Frequency) int {
	return maxDeferrals[freq]
}

// DeferError is a policy violation: the requested move is not allowed under
// the habit's deferral budget or slot availability. It is an expected,
// user-facing condition, not a system failure.
type DeferError struct {
	HabitName string
	Msg       string
}

func (e *DeferError) Error() string {
	return fmt.Sprintf("cannot defer %q: %s", e.HabitName, e.Msg)
}

// DeferResult describes the outcome of a smart defer.
type DeferResult struct {
	Success            bool   `json:"success"`
	Message            string `json:"message"`
	NewDueDay          string `json:"new_due_day,omitempty"`
	DeferralsUsed      int    `json:"deferrals_used"`
	RemainingDeferrals int    `json:"remaining_deferrals"`
}

// Ledger tracks how many times each (habit, original day) obligation has been
// pushed forward and enforces the per-frequency budget.
type Ledger struct {
	store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// openRecord finds the open deferral governing the habit's obligation on
// day: the record deferred away from day if one exists, otherwise the record
// whose target is day (the obligation arrived there by an earlier move).
// Chained moves must keep updating the one record, or reconciliation would
// see two open deferrals and place the habit on an intermediate day.
func (l *Ledger) openRecord(habitID, day string) (models.Deferral, error) {
	deferral, err := l.store.GetOpenDeferral(habitID, day)
	if err == nil {
		return deferral, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return models.Deferral{}, err
	}

	targeted, err := l.store.GetDeferralsByTarget(habitID, day, day)
	if err != nil {
		return models.Deferral{}, err
	}
	for _, d := range targeted {
		if !d.Completed {
			return d, nil
		}
	}

	return models.Deferral{}, fmt.Errorf("open deferral: %w", storage.ErrNotFound)
}

// CanDefer reports whether the habit's obligation on fromDay has budget left.
// Locked habits can never be deferred.
func (l *Ledger) CanDefer(habitID, fromDay string) (bool, error) {
	habit, err := l.store.GetHabit(habitID)
	if err != nil {
		return false, err
	}
	if habit.Locked || !habit.Active {
		return false, nil
	}

	max := MaxDeferrals(habit.Frequency)
	if max == 0 {
		return false, nil
	}

	deferral, err := l.openRecord(habitID, fromDay)
	if errors.Is(err, storage.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	return deferral.TimesDeferred < max, nil
}

// Info returns the budget snapshot for the habit's obligation on originalDay.
func (l *Ledger) Info(habit models.Habit, originalDay string) (models.DeferralInfo, error) {
	max := MaxDeferrals(habit.Frequency)
	info := models.DeferralInfo{MaxDeferrals: max}

	deferral, err := l.openRecord(habit.ID, originalDay)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return models.DeferralInfo{}, err
	}
	if err == nil {
		info.TimesDeferred = deferral.TimesDeferred
	}

	info.CanStillDefer = !habit.Locked && info.TimesDeferred < max
	return info, nil
}

// Defer moves the habit's obligation on fromDay to toDay. If an open deferral
// already governs the obligation (keyed by original day, or targeting fromDay
// after an earlier move) its counter is incremented and its target and reason
// overwritten; otherwise a new record is created with one use. Returns a
// *DeferError when the budget is exhausted.
func (l *Ledger) Defer(habitID, fromDay, toDay, reason string) (models.Deferral, error) {
	habit, err := l.store.GetHabit(habitID)
	if err != nil {
		return models.Deferral{}, err
	}

	ok, err := l.CanDefer(habitID, fromDay)
	if err != nil {
		return models.Deferral{}, err
	}
	if !ok {
		if habit.Locked {
			return models.Deferral{}, &DeferError{HabitName: habit.Name, Msg: "this habit is locked and cannot be moved"}
		}
		return models.Deferral{}, &DeferError{
			HabitName: habit.Name,
			Msg:       fmt.Sprintf("already moved %d times, the limit for %s habits", MaxDeferrals(habit.Frequency), habit.Frequency),
		}
	}

	now := time.Now()
	deferral, err := l.openRecord(habitID, fromDay)
	if errors.Is(err, storage.ErrNotFound) {
		deferral = models.Deferral{
			ID:            uuid.NewString(),
			HabitID:       habitID,
			OriginalDay:   fromDay,
			TimesDeferred: 0,
			CreatedAt:     now,
		}
	} else if err != nil {
		return models.Deferral{}, err
	}

	deferral.DeferredToDay = toDay
	deferral.TimesDeferred++
	deferral.Reason = reason
	deferral.UpdatedAt = now

	if err := l.store.SaveDeferral(deferral); err != nil {
		return models.Deferral{}, fmt.Errorf("failed to save deferral: %w", err)
	}

	return deferral, nil
}

// FindNextOpenSlot scans forward up to seven days starting the day after
// fromDay and returns the first day no existing deferral of this habit
// already targets. Returns "" when every candidate day is taken.
func (l *Ledger) FindNextOpenSlot(habit models.Habit, fromDay string) (string, error) {
	first, err := utils.AddDays(fromDay, 1)
	if err != nil {
		return "", err
	}
	last, err := utils.AddDays(fromDay, 7)
	if err != nil {
		return "", err
	}

	targeted, err := l.store.GetDeferralsByTarget(habit.ID, first, last)
	if err != nil {
		return "", err
	}

	taken := make(map[string]bool, len(targeted))
	for _, d := range targeted {
		taken[d.DeferredToDay] = true
	}

	for i := 1; i <= 7; i++ {
		candidate, err := utils.AddDays(fromDay, i)
		if err != nil {
			return "", err
		}
		if !taken[candidate] {
			return candidate, nil
		}
	}

	return "", nil
}

// SmartDefer moves a habit's obligation on fromDay to the next open slot.
// Policy violations come back as an unsuccessful result with a readable
// message rather than an error; errors are reserved for storage failures.
func (l *Ledger) SmartDefer(habitID, fromDay, reason string) (DeferResult, error) {
	habit, err := l.store.GetHabit(habitID)
	if err != nil {
		return DeferResult{}, err
	}

	info, err := l.Info(habit, fromDay)
	if err != nil {
		return DeferResult{}, err
	}

	slot, err := l.FindNextOpenSlot(habit, fromDay)
	if err != nil {
		return DeferResult{}, err
	}
	if slot == "" {
		return DeferResult{
			Success:            false,
			Message:            noSlotMessage(habit),
			DeferralsUsed:      info.TimesDeferred,
			RemainingDeferrals: info.MaxDeferrals - info.TimesDeferred,
		}, nil
	}

	deferral, err := l.Defer(habitID, fromDay, slot, reason)
	if err != nil {
		var deferErr *DeferError
		if errors.As(err, &deferErr) {
			return DeferResult{
				Success:            false,
				Message:            deferErr.Error(),
				DeferralsUsed:      info.TimesDeferred,
				RemainingDeferrals: max(info.MaxDeferrals-info.TimesDeferred, 0),
			}, nil
		}
		return DeferResult{}, err
	}

	return DeferResult{
		Success:            true,
		Message:            fmt.Sprintf("Moved %q to %s", habit.Name, slot),
		NewDueDay:          slot,
		DeferralsUsed:      deferral.TimesDeferred,
		RemainingDeferrals: MaxDeferrals(habit.Frequency) - deferral.TimesDeferred,
	}, nil
}

// ResolveCompletion closes any open deferral that moved the habit's
// obligation onto day. Completing on the target day settles the move, so the
// record stops feeding schedule reconciliation.
func (l *Ledger) ResolveCompletion(habitID, day string) error {
	targeted, err := l.store.GetDeferralsByTarget(habitID, day, day)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, d := range targeted {
		if d.Completed {
			continue
		}
		d.Completed = true
		d.UpdatedAt = now
		if err := l.store.SaveDeferral(d); err != nil {
			return fmt.Errorf("failed to close deferral: %w", err)
		}
	}

	return nil
}

func noSlotMessage(habit models.Habit) string {
	switch habit.Frequency {
	case models.FrequencyDaily:
		return fmt.Sprintf("Every day in the next week already has %q moved onto it. Complete one of those first.", habit.Name)
	case models.FrequencyRolling:
		return fmt.Sprintf("No open day in the next week for %q. Its rolling window is already full of moved tasks.", habit.Name)
	default:
		return fmt.Sprintf("No open day in the next week for %q. Complete or clear an earlier move first.", habit.Name)
	}
}
