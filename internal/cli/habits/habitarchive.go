package habits

import (
	"fmt"

	"github.com/julianstephens/weeklit/internal/cli"
)

type HabitArchiveCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (c *HabitArchiveCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	if err := ctx.Store.ArchiveHabit(habit.ID); err != nil {
		return fmt.Errorf("failed to archive habit: %w", err)
	}

	fmt.Printf("Archived habit: %s\n", habit.Name)
	return nil
}

type HabitUnarchiveCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (c *HabitUnarchiveCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	if err := ctx.Store.UnarchiveHabit(habit.ID); err != nil {
		return fmt.Errorf("failed to unarchive habit: %w", err)
	}

	fmt.Printf("Unarchived habit: %s\n", habit.Name)
	return nil
}
