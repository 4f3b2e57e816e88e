package job

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/weeklit/internal/logger"
	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/scheduler"
	"github.com/julianstephens/weeklit/internal/storage"
	"github.com/julianstephens/weeklit/internal/utils"
)

// ErrAlreadyRunning is returned when a pass is requested while another is in
// flight. Overlapping passes could double-increment deferral counters.
var ErrAlreadyRunning = errors.New("job pass already in progress")

// Store is the slice of the storage provider the runner reads directly.
type Store interface {
	GetSettings() (models.Settings, error)
	GetDayStats(day string) (models.DayStats, error)
	GetOpenDeferral(habitID, originalDay string) (models.Deferral, error)
}

// ScheduleSource projects the week grid overdue work is detected from.
type ScheduleSource interface {
	GenerateWeekSchedule(weekStart string) (models.WeekSchedule, error)
}

// Deferrer moves an overdue obligation to its next open day.
type Deferrer interface {
	SmartDefer(habitID, fromDay, reason string) (scheduler.DeferResult, error)
}

// StatsCalculator writes a day's summary row.
type StatsCalculator interface {
	CalculateAndStoreDayStats(day string) (models.DayStats, error)
}

// Runner is the daily maintenance job: it moves yesterday's unfinished
// required tasks forward and backfills missing day summaries. Only one pass
// runs at a time, and a pass is idempotent per calendar day.
type Runner struct {
	store     Store
	scheduler ScheduleSource
	deferrer  Deferrer
	stats     StatsCalculator
	nowFunc   func() time.Time

	mu      sync.Mutex
	running bool
	lastRun string // day the last successful pass covered
}

func NewRunner(store Store, sched ScheduleSource, deferrer Deferrer, stats StatsCalculator) *Runner {
	return &Runner{
		store:     store,
		scheduler: sched,
		deferrer:  deferrer,
		stats:     stats,
		nowFunc:   time.Now,
	}
}

// LastRun returns the day the last successful pass covered, or "" if none
// has completed yet.
func (r *Runner) LastRun() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRun
}

// Run executes passes until ctx is cancelled. A failed pass is retried after
// the configured backoff instead of the normal interval; failures never
// escape the loop.
func (r *Runner) Run(ctx context.Context) {
	for {
		delay, err := r.delayAfterPass(ctx)
		if err != nil {
			logger.Error("job pass failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func (r *Runner) delayAfterPass(ctx context.Context) (time.Duration, error) {
	settings, err := r.store.GetSettings()
	if err != nil {
		return time.Minute, err
	}

	interval := time.Duration(settings.JobIntervalMin) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}
	backoff := time.Duration(settings.JobBackoffMin) * time.Minute
	if backoff <= 0 {
		backoff = 5 * time.Minute
	}

	if err := r.RunOnce(ctx); err != nil && !errors.Is(err, ErrAlreadyRunning) {
		return backoff, err
	}
	return interval, nil
}

// RunOnce performs a single pass. It returns ErrAlreadyRunning if another
// pass holds the flag, and returns immediately when today's pass has already
// completed. Re-running for the same day creates no duplicate deferrals or
// stats rows.
func (r *Runner) RunOnce(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	settings, err := r.store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return err
	}
	today := utils.FormatDay(r.nowFunc().In(loc))

	r.mu.Lock()
	done := r.lastRun == today
	r.mu.Unlock()
	if done {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	yesterday, err := utils.AddDays(today, -1)
	if err != nil {
		return err
	}

	moved, err := r.moveOverdue(yesterday)
	if err != nil {
		return err
	}
	if moved > 0 {
		logger.Info("moved overdue tasks forward", "day", yesterday, "count", moved)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.backfillStats(today, settings.JobBackfillLimit); err != nil {
		return err
	}

	r.mu.Lock()
	r.lastRun = today
	r.mu.Unlock()

	return nil
}

// moveOverdue defers every required, unlocked habit that was scheduled on
// day but not completed. Habits whose obligation was already moved are
// skipped, which is what makes re-running the pass safe.
func (r *Runner) moveOverdue(day string) (int, error) {
	week, err := r.scheduler.GenerateWeekSchedule(day)
	if err != nil {
		return 0, err
	}
	daySchedule := week.Day(day)
	if daySchedule == nil {
		return 0, fmt.Errorf("day %s missing from its own week window", day)
	}

	moved := 0
	for _, h := range daySchedule.Habits {
		if h.Completed || h.Optional || h.Locked {
			continue
		}

		_, err := r.store.GetOpenDeferral(h.HabitID, day)
		if err == nil {
			continue // already moved
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return moved, err
		}

		result, err := r.deferrer.SmartDefer(h.HabitID, day, "not completed on time")
		if err != nil {
			return moved, err
		}
		if !result.Success {
			logger.Warn("could not move overdue task", "habit", h.Name, "day", day, "reason", result.Message)
			continue
		}
		moved++
	}

	return moved, nil
}

// backfillStats recomputes day summaries from the oldest missing day (capped
// by limit) through today, ascending so each day's streak number builds on
// the previous write.
func (r *Runner) backfillStats(today string, limit int) error {
	if limit <= 0 {
		limit = 1
	}

	start := today
	for i := 0; i < limit; i++ {
		prev, err := utils.AddDays(start, -1)
		if err != nil {
			return err
		}
		_, err = r.store.GetDayStats(prev)
		if err == nil {
			break
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		start = prev
	}

	day := start
	for day <= today {
		if _, err := r.stats.CalculateAndStoreDayStats(day); err != nil {
			return err
		}
		next, err := utils.AddDays(day, 1)
		if err != nil {
			return err
		}
		day = next
	}

	return nil
}
