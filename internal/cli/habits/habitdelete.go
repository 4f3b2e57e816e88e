package habits

import (
	"fmt"

	"github.com/julianstephens/weeklit/internal/cli"
)

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()

	if err := ctx.Store.DeleteHabit(habit.ID); err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	fmt.Printf("Deleted habit: %s (restore with 'weeklit habit restore %s')\n", habit.Name, habit.ID)
	return nil
}

type HabitRestoreCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (c *HabitRestoreCmd) Run(ctx *cli.Context) error {
	// Deleted habits are invisible to the normal lookups, so search the full
	// set including soft-deleted rows.
	habits, err := ctx.Store.GetAllHabits(true, true)
	if err != nil {
		return fmt.Errorf("failed to get habits: %w", err)
	}

	for _, habit := range habits {
		if habit.ID != c.Habit && habit.Name != c.Habit {
			continue
		}
		if habit.DeletedAt == nil {
			return fmt.Errorf("habit %q is not deleted", habit.Name)
		}
		if err := ctx.Store.RestoreHabit(habit.ID); err != nil {
			return fmt.Errorf("failed to restore habit: %w", err)
		}
		fmt.Printf("Restored habit: %s\n", habit.Name)
		return nil
	}

	return fmt.Errorf("no habit with id or name %q", c.Habit)
}
