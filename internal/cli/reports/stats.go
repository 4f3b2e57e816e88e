package reports

import (
	"errors"
	"fmt"

	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/storage"
	"github.com/julianstephens/weeklit/internal/utils"
)

type StatsCmd struct {
	Day  string `arg:"" optional:"" help:"Day to show (YYYY-MM-DD). Defaults to today."`
	Week bool   `help:"Show the whole week containing the day."`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDay(c.Day)
	if err != nil {
		return err
	}

	if c.Week {
		weekStart, err := utils.WeekStartDay(day)
		if err != nil {
			return err
		}
		weekEnd, err := utils.AddDays(weekStart, 6)
		if err != nil {
			return err
		}

		statsRange, err := ctx.Store.GetDayStatsRange(weekStart, weekEnd)
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}
		if len(statsRange) == 0 {
			fmt.Printf("No stats stored for week of %s. Run 'weeklit recalc' first.\n", weekStart)
			return nil
		}

		fmt.Printf("Stats for week of %s:\n", weekStart)
		for _, st := range statsRange {
			printDayStats(st)
		}
		return nil
	}

	st, err := ctx.Store.GetDayStats(day)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fmt.Printf("No stats stored for %s. Run 'weeklit recalc' first.\n", day)
			return nil
		}
		return fmt.Errorf("failed to get stats: %w", err)
	}

	printDayStats(st)
	return nil
}

func printDayStats(st models.DayStats) {
	mark := " "
	if st.DayCompleted {
		mark = "✓"
	}
	fmt.Printf("  %s %s  %d/%d required (%d/%d total, %.0f%%)  streak day %d  [%s]\n",
		mark, st.Day, st.CompletedRequired, st.RequiredTasks,
		st.CompletedTasks, st.TotalTasks, st.CompletionPct, st.StreakDay, st.Rule)
}
