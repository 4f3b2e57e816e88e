package scheduler

import "github.com/julianstephens/weeklit/internal/models"

// Store is the slice of the storage provider the scheduler reads from and
// writes deferrals through. Declared here so tests can substitute a fake.
type Store interface {
	GetSettings() (models.Settings, error)

	GetHabit(id string) (models.Habit, error)
	GetActiveHabits() ([]models.Habit, error)

	GetCompletionsForDay(day string) ([]models.Completion, error)
	GetCompletionsForHabit(habitID, startDay, endDay string) ([]models.Completion, error)
	GetLastCompletionDay(habitID string) (string, error)

	GetOpenDeferral(habitID, originalDay string) (models.Deferral, error)
	GetDeferralsByTarget(habitID, startDay, endDay string) ([]models.Deferral, error)
	GetOpenDeferralsInRange(startDay, endDay string) ([]models.Deferral, error)
	SaveDeferral(deferral models.Deferral) error
}
