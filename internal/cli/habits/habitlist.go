package habits

import (
	"fmt"

	"github.com/julianstephens/weeklit/internal/cli"
)

type HabitListCmd struct {
	All     bool `help:"Include archived habits."`
	Deleted bool `help:"Include soft-deleted habits."`
	ShowIDs bool `help:"Show habit IDs." name:"show-ids"`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits(c.All, c.Deleted)
	if err != nil {
		return fmt.Errorf("failed to get habits: %w", err)
	}
	if len(habits) == 0 {
		fmt.Println("No habits found")
		return nil
	}

	fmt.Println("Habits:")
	for _, habit := range habits {
		status := "active"
		switch {
		case habit.DeletedAt != nil:
			status = "deleted"
		case habit.ArchivedAt != nil:
			status = "archived"
		case !habit.Active:
			status = "inactive"
		}

		idStr := ""
		if c.ShowIDs {
			idStr = fmt.Sprintf(" (ID: %s)", habit.ID)
		}

		flags := ""
		if habit.Optional {
			flags += " [optional]"
		}
		if habit.Locked {
			flags += " [locked]"
		}

		fmt.Printf("  [%s] %s%s - %s%s\n", status, habit.Name, idStr, cli.FormatFrequency(habit), flags)
		if habit.Deadline != "" {
			fmt.Printf("      Deadline: %s\n", habit.Deadline)
		}
	}

	return nil
}
