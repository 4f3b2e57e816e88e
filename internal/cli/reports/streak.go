package reports

import (
	"fmt"

	"github.com/julianstephens/weeklit/internal/cli"
)

type StreakCmd struct {
	Day string `arg:"" optional:"" help:"Day to evaluate as-of (YYYY-MM-DD). Defaults to today."`
}

func (c *StreakCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDay(c.Day)
	if err != nil {
		return err
	}

	streak, err := ctx.Stats.CurrentStreakLength(day)
	if err != nil {
		return fmt.Errorf("failed to calculate streak: %w", err)
	}

	status, err := ctx.Stats.CalculateDayStatus(day)
	if err != nil {
		return fmt.Errorf("failed to calculate day status: %w", err)
	}

	switch {
	case status.Completed:
		fmt.Printf("🔥 Streak: %d day(s), including %s\n", status.StreakDay, day)
	case streak > 0:
		fmt.Printf("🔥 Streak: %d day(s). Complete %s to make it %d.\n", streak, day, streak+1)
	default:
		fmt.Printf("No active streak. Complete %s to start one.\n", day)
	}

	if status.InFirstWeek {
		fmt.Println("First-week leniency is active.")
	}

	return nil
}
