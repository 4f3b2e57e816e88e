package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/weeklit/internal/constants"
	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/storage"
	"github.com/julianstephens/weeklit/internal/utils"
)

// Placement priorities, lower sorts first within a day.
const (
	priorityDaily = iota + 1
	priorityRolling
	priorityWeekly
	priorityMonthly
	prioritySeasonal
)

// neverCompleted is the days-since value used for habits with no completion
// history, large enough to satisfy any rolling window.
const neverCompleted = 999

// rollingOffsets are the weekday indices (Monday = 0) a rolling habit may
// land on. One placement per habit per week.
var rollingOffsets = []int{0, 2, 4, 6}

type Scheduler struct {
	store  Store
	ledger *Ledger
}

func New(store Store) *Scheduler {
	return &Scheduler{store: store, ledger: NewLedger(store)}
}

// Ledger exposes the deferral ledger backing this scheduler.
func (s *Scheduler) Ledger() *Ledger {
	return s.ledger
}

// GenerateWeekSchedule produces the 7-day obligation grid for the week
// containing weekStart (normalized to its Monday). It is a pure projection
// of stored state: calling it twice without intervening writes yields an
// identical schedule, and it never writes anything itself.
func (s *Scheduler) GenerateWeekSchedule(weekStart string) (models.WeekSchedule, error) {
	monday, err := utils.WeekStartDay(weekStart)
	if err != nil {
		return models.WeekSchedule{}, err
	}
	weekEnd, err := utils.AddDays(monday, constants.DaysPerWeek-1)
	if err != nil {
		return models.WeekSchedule{}, err
	}

	week := models.WeekSchedule{
		WeekStart: monday,
		WeekEnd:   weekEnd,
		Days:      make([]models.DaySchedule, constants.DaysPerWeek),
	}
	for i := range week.Days {
		day, err := utils.AddDays(monday, i)
		if err != nil {
			return models.WeekSchedule{}, err
		}
		week.Days[i] = models.DaySchedule{Day: day, Habits: []models.ScheduledHabit{}}
	}

	settings, err := s.store.GetSettings()
	if err != nil {
		return models.WeekSchedule{}, fmt.Errorf("failed to load settings: %w", err)
	}

	habits, err := s.store.GetActiveHabits()
	if err != nil {
		return models.WeekSchedule{}, fmt.Errorf("failed to load habits: %w", err)
	}

	deferrals, err := s.store.GetOpenDeferralsInRange(monday, weekEnd)
	if err != nil {
		return models.WeekSchedule{}, fmt.Errorf("failed to load deferrals: %w", err)
	}

	// A day is excluded for a habit when an open deferral moves the habit
	// away from it, or when a deferral already targets it (reconciliation
	// will insert there; placing too would duplicate).
	excluded := make(map[string]map[string]bool)
	markExcluded := func(habitID, day string) {
		if excluded[habitID] == nil {
			excluded[habitID] = make(map[string]bool)
		}
		excluded[habitID][day] = true
	}
	for _, d := range deferrals {
		markExcluded(d.HabitID, d.OriginalDay)
		markExcluded(d.HabitID, d.DeferredToDay)
	}

	for _, habit := range habits {
		switch habit.Frequency {
		case models.FrequencyDaily:
			s.placeDaily(&week, habit, excluded[habit.ID])
		case models.FrequencyRolling:
			if err := s.placeRolling(&week, habit, excluded[habit.ID]); err != nil {
				return models.WeekSchedule{}, err
			}
		case models.FrequencyWeekly:
			s.placeWeekly(&week, habit, settings, excluded[habit.ID])
		case models.FrequencyMonthly:
			if err := s.placeMonthly(&week, habit, deferrals, excluded[habit.ID]); err != nil {
				return models.WeekSchedule{}, err
			}
		case models.FrequencySeasonal:
			if err := s.placeSeasonal(&week, habit, deferrals, excluded[habit.ID]); err != nil {
				return models.WeekSchedule{}, err
			}
		}
	}

	// Reconciling deferrals runs last so it can undo any earlier placement.
	if err := s.reconcileDeferrals(&week, habits, deferrals); err != nil {
		return models.WeekSchedule{}, err
	}

	if err := s.markCompletions(&week); err != nil {
		return models.WeekSchedule{}, err
	}

	return week, nil
}

func (s *Scheduler) placeDaily(week *models.WeekSchedule, habit models.Habit, excluded map[string]bool) {
	for i := range week.Days {
		if excluded[week.Days[i].Day] {
			continue
		}
		addPlacement(&week.Days[i], habit, priorityDaily, "Due every day")
	}
}

func (s *Scheduler) placeRolling(week *models.WeekSchedule, habit models.Habit, excluded map[string]bool) error {
	interval := habit.IntervalDays
	if interval <= 0 {
		interval = 2
	}

	lastDone, err := s.store.GetLastCompletionDay(habit.ID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	for _, offset := range rollingOffsets {
		day := &week.Days[offset]
		if excluded[day.Day] {
			continue
		}

		daysSince := neverCompleted
		if lastDone != "" {
			daysSince, err = utils.DaysBetween(lastDone, day.Day)
			if err != nil {
				return err
			}
		}
		if daysSince < interval {
			continue
		}

		addPlacement(day, habit, priorityRolling, fmt.Sprintf("Due every %d days", interval))
		break
	}

	return nil
}

func (s *Scheduler) placeWeekly(week *models.WeekSchedule, habit models.Habit, settings models.Settings, excluded map[string]bool) {
	target := habit.WeeklyTarget
	if target <= 0 {
		target = settings.DefaultWeeklyTarget
	}
	if target <= 0 {
		target = constants.DefaultWeeklyTargetValue
	}

	placed := 0
	for _, i := range leastLoadedOrder(week) {
		if placed >= target {
			break
		}
		if excluded[week.Days[i].Day] {
			continue
		}
		addPlacement(&week.Days[i], habit, priorityWeekly, fmt.Sprintf("Weekly goal: %d per week", target))
		placed++
	}
}

func (s *Scheduler) placeMonthly(week *models.WeekSchedule, habit models.Habit, deferrals []models.Deferral, excluded map[string]bool) error {
	start, err := utils.ParseDay(week.WeekStart)
	if err != nil {
		return err
	}
	monthStart := utils.FormatDay(time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location()))
	monthEnd := utils.FormatDay(time.Date(start.Year(), start.Month()+1, 0, 0, 0, 0, 0, start.Location()))

	completions, err := s.store.GetCompletionsForHabit(habit.ID, monthStart, monthEnd)
	if err != nil {
		return err
	}
	if len(completions) > 0 {
		return nil
	}

	if deferralTargetsWeek(habit.ID, week, deferrals) {
		return nil
	}

	s.placeLeastLoaded(week, habit, priorityMonthly, "Not yet done this month", excluded)
	return nil
}

func (s *Scheduler) placeSeasonal(week *models.WeekSchedule, habit models.Habit, deferrals []models.Deferral, excluded map[string]bool) error {
	start, err := utils.ParseDay(week.WeekStart)
	if err != nil {
		return err
	}

	var reason string
	if habit.SeasonalTarget > 0 {
		if !utils.InSeason(start) {
			return nil
		}
		seasonStart, seasonEnd := utils.SeasonBounds(start)
		completions, err := s.store.GetCompletionsForHabit(habit.ID, utils.FormatDay(seasonStart), utils.FormatDay(seasonEnd))
		if err != nil {
			return err
		}
		remaining := habit.SeasonalTarget - len(completions)
		if remaining <= 0 {
			return nil
		}
		// Only force a placement when the remaining weeks of the season
		// can no longer absorb a skipped one.
		if remaining < utils.WeeksRemainingInSeason(start) {
			return nil
		}
		reason = fmt.Sprintf("Season goal: %d of %d done", habit.SeasonalTarget-remaining, habit.SeasonalTarget)
	} else {
		lastDone, err := s.store.GetLastCompletionDay(habit.ID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		fourMonthsAgo := utils.FormatDay(start.AddDate(0, -4, 0))
		if lastDone != "" && lastDone >= fourMonthsAgo {
			return nil
		}
		reason = "Not done in the last 4 months"
	}

	if deferralTargetsWeek(habit.ID, week, deferrals) {
		return nil
	}

	s.placeLeastLoaded(week, habit, prioritySeasonal, reason, excluded)
	return nil
}

// placeLeastLoaded drops a single placement on the emptiest eligible day.
func (s *Scheduler) placeLeastLoaded(week *models.WeekSchedule, habit models.Habit, priority int, reason string, excluded map[string]bool) {
	for _, i := range leastLoadedOrder(week) {
		if excluded[week.Days[i].Day] {
			continue
		}
		addPlacement(&week.Days[i], habit, priority, reason)
		return
	}
}

// reconcileDeferrals applies open deferrals to the generated grid: habits are
// removed from their original day and inserted on their target day with a
// budget snapshot. Runs after all placement passes.
func (s *Scheduler) reconcileDeferrals(week *models.WeekSchedule, habits []models.Habit, deferrals []models.Deferral) error {
	byID := make(map[string]models.Habit, len(habits))
	for _, h := range habits {
		byID[h.ID] = h
	}

	movedAway := make(map[string]bool, len(deferrals))
	for _, d := range deferrals {
		movedAway[d.HabitID+":"+d.OriginalDay] = true
		if day := week.Day(d.OriginalDay); day != nil {
			removePlacement(day, d.HabitID)
		}
	}

	for _, d := range deferrals {
		day := week.Day(d.DeferredToDay)
		if day == nil {
			continue
		}
		habit, ok := byID[d.HabitID]
		if !ok {
			continue // habit no longer active
		}
		// Another open deferral moved the habit off this day again, so the
		// obligation now lives further down the chain.
		if movedAway[d.HabitID+":"+d.DeferredToDay] {
			continue
		}
		if hasPlacement(day, d.HabitID) {
			continue
		}

		max := MaxDeferrals(habit.Frequency)
		reason := fmt.Sprintf("Moved from %s", d.OriginalDay)
		if d.Reason != "" {
			reason += ": " + d.Reason
		}

		sh := newPlacement(habit, frequencyPriority(habit.Frequency), reason)
		sh.Deferral = &models.DeferralInfo{
			TimesDeferred: d.TimesDeferred,
			MaxDeferrals:  max,
			CanStillDefer: !habit.Locked && d.TimesDeferred < max,
		}
		day.Habits = append(day.Habits, sh)
	}

	return nil
}

func (s *Scheduler) markCompletions(week *models.WeekSchedule) error {
	for i := range week.Days {
		day := &week.Days[i]
		completions, err := s.store.GetCompletionsForDay(day.Day)
		if err != nil {
			return err
		}
		done := make(map[string]bool, len(completions))
		for _, c := range completions {
			done[c.HabitID] = true
		}
		for j := range day.Habits {
			if done[day.Habits[j].HabitID] {
				day.Habits[j].Completed = true
			}
		}
	}
	return nil
}

func newPlacement(habit models.Habit, priority int, reason string) models.ScheduledHabit {
	return models.ScheduledHabit{
		HabitID:   habit.ID,
		Name:      habit.Name,
		Frequency: habit.Frequency,
		Optional:  habit.Optional,
		Locked:    habit.Locked,
		Deadline:  habit.Deadline,
		Priority:  priority,
		Reason:    reason,
	}
}

func addPlacement(day *models.DaySchedule, habit models.Habit, priority int, reason string) {
	if hasPlacement(day, habit.ID) {
		return
	}
	day.Habits = append(day.Habits, newPlacement(habit, priority, reason))
}

func removePlacement(day *models.DaySchedule, habitID string) {
	kept := day.Habits[:0]
	for _, h := range day.Habits {
		if h.HabitID != habitID {
			kept = append(kept, h)
		}
	}
	day.Habits = kept
}

func hasPlacement(day *models.DaySchedule, habitID string) bool {
	for _, h := range day.Habits {
		if h.HabitID == habitID {
			return true
		}
	}
	return false
}

func deferralTargetsWeek(habitID string, week *models.WeekSchedule, deferrals []models.Deferral) bool {
	for _, d := range deferrals {
		if d.HabitID == habitID && week.Day(d.DeferredToDay) != nil {
			return true
		}
	}
	return false
}

// leastLoadedOrder returns day indices sorted by current placement count,
// index order breaking ties.
func leastLoadedOrder(week *models.WeekSchedule) []int {
	order := make([]int, len(week.Days))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(week.Days[order[a]].Habits) < len(week.Days[order[b]].Habits)
	})
	return order
}

func frequencyPriority(freq models.Frequency) int {
	switch freq {
	case models.FrequencyDaily:
		return priorityDaily
	case models.FrequencyRolling:
		return priorityRolling
	case models.FrequencyWeekly:
		return priorityWeekly
	case models.FrequencyMonthly:
		return priorityMonthly
	default:
		return prioritySeasonal
	}
}
