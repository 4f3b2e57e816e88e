package weeks

import (
	"fmt"

	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/models"
)

type DayCmd struct {
	Day string `arg:"" optional:"" help:"Day to show (YYYY-MM-DD). Defaults to today."`
}

func (c *DayCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDay(c.Day)
	if err != nil {
		return err
	}

	week, err := ctx.Scheduler.GenerateWeekSchedule(day)
	if err != nil {
		return fmt.Errorf("failed to generate week schedule: %w", err)
	}

	daySchedule := week.Day(day)
	if daySchedule == nil {
		return fmt.Errorf("day %s is outside the generated week", day)
	}

	fmt.Printf("Schedule for %s\n", day)
	if len(daySchedule.Habits) == 0 {
		fmt.Println("  (nothing scheduled)")
	}
	for _, sh := range daySchedule.Habits {
		fmt.Printf("  %s\n", FormatScheduledHabit(sh))
	}

	adhoc, err := ctx.Store.GetAdHocTasksForDay(day)
	if err != nil {
		return fmt.Errorf("failed to get ad-hoc tasks: %w", err)
	}
	if len(adhoc) > 0 {
		fmt.Println("\nAd-hoc tasks:")
		for _, task := range adhoc {
			mark := "[ ]"
			if task.Done {
				mark = "[x]"
			}
			fmt.Printf("  %s %s (ID: %s)\n", mark, task.Name, task.ID)
		}
	}

	status, err := ctx.Stats.CalculateDayStatus(day)
	if err != nil {
		return fmt.Errorf("failed to calculate day status: %w", err)
	}

	fmt.Println()
	if status.Completed {
		fmt.Printf("✓ Day complete (streak day %d, %d/%d required done)\n",
			status.StreakDay, status.CompletedRequired, status.RequiredTasks)
	} else {
		fmt.Printf("Day incomplete: %d/%d required done\n",
			status.CompletedRequired, status.RequiredTasks)
	}
	if status.InFirstWeek && status.Rule == models.RuleAnchorOnly {
		fmt.Println("First-week leniency applies: only the anchor habit is required.")
	}
	for _, reminder := range status.Reminders {
		fmt.Printf("  ⏰ %s\n", reminder)
	}

	return nil
}
