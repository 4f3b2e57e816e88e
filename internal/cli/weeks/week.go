package weeks

import (
	"fmt"

	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/utils"
)

type WeekCmd struct {
	Day  string `help:"Any day in the week to show (YYYY-MM-DD). Defaults to today."`
	Next bool   `help:"Show next week instead."`
}

func (c *WeekCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDay(c.Day)
	if err != nil {
		return err
	}
	if c.Next {
		day, err = utils.AddDays(day, 7)
		if err != nil {
			return err
		}
	}

	week, err := ctx.Scheduler.GenerateWeekSchedule(day)
	if err != nil {
		return fmt.Errorf("failed to generate week schedule: %w", err)
	}

	fmt.Printf("Week of %s - %s\n", week.WeekStart, week.WeekEnd)
	for _, daySchedule := range week.Days {
		printDaySchedule(daySchedule)
	}

	return nil
}

func printDaySchedule(day models.DaySchedule) {
	t, err := utils.ParseDay(day.Day)
	if err != nil {
		return
	}
	fmt.Printf("\n%s %s\n", t.Weekday().String()[:3], day.Day)

	if len(day.Habits) == 0 {
		fmt.Println("  (nothing scheduled)")
		return
	}

	for _, sh := range day.Habits {
		fmt.Printf("  %s\n", FormatScheduledHabit(sh))
	}
}

// FormatScheduledHabit renders one scheduled entry as a single listing line.
func FormatScheduledHabit(sh models.ScheduledHabit) string {
	mark := "[ ]"
	if sh.Completed {
		mark = "[x]"
	}

	line := fmt.Sprintf("%s %s", mark, sh.Name)
	if sh.Optional {
		line += " (optional)"
	}
	if sh.Locked {
		line += " (locked)"
	}
	if sh.Deadline != "" {
		line += fmt.Sprintf(" [due %s]", sh.Deadline)
	}
	if sh.Deferral != nil {
		line += fmt.Sprintf(" [deferred %d/%d]", sh.Deferral.TimesDeferred, sh.Deferral.MaxDeferrals)
	}
	if sh.Reason != "" {
		line += " (" + sh.Reason + ")"
	}
	return line
}
