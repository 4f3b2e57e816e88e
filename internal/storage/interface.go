package storage

import (
	"errors"

	"github.com/julianstephens/weeklit/internal/models"
)

// ErrNotFound is returned by lookups when the requested row does not exist
// (or is soft-deleted). Callers distinguish it from storage failures with
// errors.Is.
var ErrNotFound = errors.New("not found")

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Habits
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitByName(name string) (models.Habit, error)
	GetAllHabits(includeArchived, includeDeleted bool) ([]models.Habit, error)
	// GetActiveHabits returns habits that are active, not archived, and not
	// deleted, which is the set the scheduler places.
	GetActiveHabits() ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	ArchiveHabit(id string) error
	UnarchiveHabit(id string) error
	DeleteHabit(id string) error
	RestoreHabit(id string) error

	// Completions
	AddCompletion(models.Completion) error
	GetCompletion(habitID, day string) (models.Completion, error)
	GetCompletionsForDay(day string) ([]models.Completion, error)
	GetCompletionsForHabit(habitID, startDay, endDay string) ([]models.Completion, error)
	// GetLastCompletionDay returns the most recent completion day for the
	// habit, or ErrNotFound if the habit has never been completed.
	GetLastCompletionDay(habitID string) (string, error)
	// GetAllCompletions returns every completion row, including soft-deleted
	// ones. Used for store-to-store migration.
	GetAllCompletions() ([]models.Completion, error)
	DeleteCompletion(id string) error

	// Deferrals
	// GetOpenDeferral returns the single open (not completed) deferral for
	// (habit, original day), or ErrNotFound.
	GetOpenDeferral(habitID, originalDay string) (models.Deferral, error)
	// GetDeferralsByTarget returns all deferrals (open and completed) for the
	// habit whose target day falls in [startDay, endDay].
	GetDeferralsByTarget(habitID, startDay, endDay string) ([]models.Deferral, error)
	// GetOpenDeferralsInRange returns open deferrals whose original day or
	// target day falls in [startDay, endDay].
	GetOpenDeferralsInRange(startDay, endDay string) ([]models.Deferral, error)
	// GetAllDeferrals returns every deferral row, open and completed. Used
	// for store-to-store migration.
	GetAllDeferrals() ([]models.Deferral, error)
	SaveDeferral(models.Deferral) error

	// Ad-hoc tasks
	AddAdHocTask(models.AdHocTask) error
	GetAdHocTasksForDay(day string) ([]models.AdHocTask, error)
	// GetAllAdHocTasks returns every ad-hoc task row, including soft-deleted
	// ones. Used for store-to-store migration.
	GetAllAdHocTasks() ([]models.AdHocTask, error)
	UpdateAdHocTask(models.AdHocTask) error
	DeleteAdHocTask(id string) error

	// Day stats
	UpsertDayStats(models.DayStats) error
	GetDayStats(day string) (models.DayStats, error)
	GetDayStatsRange(startDay, endDay string) ([]models.DayStats, error)
	// GetAllDayStats returns every stored day-stats row. Used for
	// store-to-store migration.
	GetAllDayStats() ([]models.DayStats, error)

	// Utils
	GetConfigPath() string
}
