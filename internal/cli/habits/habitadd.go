package habits

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/utils"
)

type HabitAddCmd struct {
	Name           string `arg:"" help:"Habit name."`
	Description    string `help:"Optional description."`
	Frequency      string `short:"f" help:"Frequency class (daily|rolling|weekly|monthly|seasonal)." default:"daily"`
	Interval       int    `short:"i" help:"Rolling window size in days (rolling habits only)." default:"2"`
	WeeklyTarget   int    `short:"t" help:"Placements per week (weekly habits only)."`
	MonthlyTarget  int    `help:"Completions per month (monthly habits only)."`
	SeasonalTarget int    `help:"Completions per season (seasonal habits only)."`
	Deadline       string `short:"d" help:"Time-of-day cutoff for reminders (HH:MM)."`
	Optional       bool   `help:"Optional habits never block day completion."`
	Locked         bool   `help:"Locked habits cannot be deferred."`
}

func (c *HabitAddCmd) Validate() error {
	freq := models.Frequency(c.Frequency)
	if !freq.IsValid() {
		return fmt.Errorf("invalid frequency: %s (expected daily|rolling|weekly|monthly|seasonal)", c.Frequency)
	}

	if freq == models.FrequencyRolling && c.Interval < 1 {
		return fmt.Errorf("interval must be at least 1 for rolling habits")
	}
	if c.WeeklyTarget < 0 || c.WeeklyTarget > 7 {
		return fmt.Errorf("weekly target must be between 0 and 7")
	}
	if c.MonthlyTarget < 0 {
		return fmt.Errorf("monthly target cannot be negative")
	}
	if c.SeasonalTarget < 0 {
		return fmt.Errorf("seasonal target cannot be negative")
	}

	if c.Deadline != "" {
		if _, err := utils.ParseTime(c.Deadline); err != nil {
			return fmt.Errorf("invalid deadline format (expected HH:MM): %w", err)
		}
	}

	if c.Optional && c.Locked {
		return fmt.Errorf("a habit cannot be both optional and locked")
	}

	return nil
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	habit := models.Habit{
		ID:          uuid.NewString(),
		Name:        c.Name,
		Description: c.Description,
		Frequency:   models.Frequency(c.Frequency),
		Active:      true,
		Optional:    c.Optional,
		Locked:      c.Locked,
		Deadline:    c.Deadline,
		CreatedAt:   time.Now(),
	}

	switch habit.Frequency {
	case models.FrequencyRolling:
		habit.IntervalDays = c.Interval
	case models.FrequencyWeekly:
		habit.WeeklyTarget = c.WeeklyTarget
	case models.FrequencyMonthly:
		habit.MonthlyTarget = c.MonthlyTarget
	case models.FrequencySeasonal:
		habit.SeasonalTarget = c.SeasonalTarget
	}

	if _, err := ctx.Store.GetHabitByName(c.Name); err == nil {
		return fmt.Errorf("a habit named %q already exists", c.Name)
	}

	if err := ctx.Store.AddHabit(habit); err != nil {
		return err
	}

	fmt.Printf("Added habit: %s (%s, ID: %s)\n", habit.Name, cli.FormatFrequency(habit), habit.ID)
	return nil
}
