package cli

import (
	"fmt"

	"github.com/julianstephens/weeklit/internal/backup"
	"github.com/julianstephens/weeklit/internal/logger"
	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/scheduler"
	"github.com/julianstephens/weeklit/internal/stats"
	"github.com/julianstephens/weeklit/internal/storage"
	"github.com/julianstephens/weeklit/internal/utils"
)

type Context struct {
	Store     storage.Provider
	Scheduler *scheduler.Scheduler
	Stats     *stats.Engine
	Debug     bool
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ResolveDay normalizes a --day flag value: empty means today in the
// configured timezone, anything else must be YYYY-MM-DD.
func (c *Context) ResolveDay(day string) (string, error) {
	if day == "" {
		settings, err := c.Store.GetSettings()
		if err != nil {
			return "", fmt.Errorf("failed to get settings: %w", err)
		}
		return utils.GetTodayFromSettings(settings)
	}
	if _, err := utils.ParseDay(day); err != nil {
		return "", err
	}
	return day, nil
}

// ResolveHabit finds a habit by id or, failing that, by exact name.
func (c *Context) ResolveHabit(ref string) (models.Habit, error) {
	habit, err := c.Store.GetHabit(ref)
	if err == nil {
		return habit, nil
	}
	habit, err = c.Store.GetHabitByName(ref)
	if err != nil {
		return models.Habit{}, fmt.Errorf("no habit with id or name %q", ref)
	}
	return habit, nil
}

// FormatFrequency renders a habit's recurrence rule for listings.
func FormatFrequency(habit models.Habit) string {
	switch habit.Frequency {
	case models.FrequencyDaily:
		return "daily"
	case models.FrequencyRolling:
		interval := habit.IntervalDays
		if interval <= 0 {
			interval = 2
		}
		return fmt.Sprintf("every %d days", interval)
	case models.FrequencyWeekly:
		if habit.WeeklyTarget > 1 {
			return fmt.Sprintf("weekly x%d", habit.WeeklyTarget)
		}
		return "weekly"
	case models.FrequencyMonthly:
		if habit.MonthlyTarget > 1 {
			return fmt.Sprintf("monthly x%d", habit.MonthlyTarget)
		}
		return "monthly"
	case models.FrequencySeasonal:
		if habit.SeasonalTarget > 0 {
			return fmt.Sprintf("seasonal x%d", habit.SeasonalTarget)
		}
		return "seasonal"
	default:
		return "unknown"
	}
}
