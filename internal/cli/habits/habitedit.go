package habits

import (
	"fmt"

	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/utils"
)

type HabitEditCmd struct {
	Habit          string  `arg:"" help:"Habit ID or name."`
	Name           *string `help:"New habit name."`
	Description    *string `help:"New description."`
	Frequency      *string `short:"f" help:"New frequency class (daily|rolling|weekly|monthly|seasonal)."`
	Interval       *int    `short:"i" help:"New rolling window size in days."`
	WeeklyTarget   *int    `short:"t" help:"New placements per week."`
	MonthlyTarget  *int    `help:"New completions per month."`
	SeasonalTarget *int    `help:"New completions per season."`
	Deadline       *string `short:"d" help:"New time-of-day cutoff (HH:MM, empty to clear)."`
	Optional       *bool   `help:"Set optional status."`
	Locked         *bool   `help:"Set locked status."`
	Active         *bool   `help:"Set active status."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Store.GetHabit(c.Habit)
	if err != nil {
		habit, err = ctx.Store.GetHabitByName(c.Habit)
		if err != nil {
			return fmt.Errorf("failed to find habit: %w", err)
		}
	}

	if c.Name != nil {
		habit.Name = *c.Name
	}
	if c.Description != nil {
		habit.Description = *c.Description
	}
	if c.Frequency != nil {
		freq := models.Frequency(*c.Frequency)
		if !freq.IsValid() {
			return fmt.Errorf("invalid frequency: %s", *c.Frequency)
		}
		habit.Frequency = freq
	}
	if c.Interval != nil {
		if *c.Interval < 1 {
			return fmt.Errorf("interval must be at least 1")
		}
		habit.IntervalDays = *c.Interval
	}
	if c.WeeklyTarget != nil {
		if *c.WeeklyTarget < 0 || *c.WeeklyTarget > 7 {
			return fmt.Errorf("weekly target must be between 0 and 7")
		}
		habit.WeeklyTarget = *c.WeeklyTarget
	}
	if c.MonthlyTarget != nil {
		if *c.MonthlyTarget < 0 {
			return fmt.Errorf("monthly target cannot be negative")
		}
		habit.MonthlyTarget = *c.MonthlyTarget
	}
	if c.SeasonalTarget != nil {
		if *c.SeasonalTarget < 0 {
			return fmt.Errorf("seasonal target cannot be negative")
		}
		habit.SeasonalTarget = *c.SeasonalTarget
	}
	if c.Deadline != nil {
		if *c.Deadline != "" {
			if _, err := utils.ParseTime(*c.Deadline); err != nil {
				return fmt.Errorf("invalid deadline format (expected HH:MM): %w", err)
			}
		}
		habit.Deadline = *c.Deadline
	}
	if c.Optional != nil {
		habit.Optional = *c.Optional
	}
	if c.Locked != nil {
		habit.Locked = *c.Locked
	}
	if c.Active != nil {
		habit.Active = *c.Active
	}

	if habit.Optional && habit.Locked {
		return fmt.Errorf("a habit cannot be both optional and locked")
	}

	if err := ctx.Store.UpdateHabit(habit); err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}

	fmt.Printf("Habit updated: %s\n", habit.Name)
	return nil
}
