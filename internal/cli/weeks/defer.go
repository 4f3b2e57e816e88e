package weeks

import (
	"errors"
	"fmt"

	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/scheduler"
	"github.com/julianstephens/weeklit/internal/utils"
)

type DeferCmd struct {
	Habit  string `arg:"" help:"Habit ID or name."`
	Day    string `help:"Day the obligation was due (YYYY-MM-DD). Defaults to today."`
	To     string `help:"Target day (YYYY-MM-DD). Defaults to the next open slot."`
	Reason string `short:"r" help:"Why the obligation is being moved." default:"Deferred manually"`
}

func (c *DeferCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	day, err := ctx.ResolveDay(c.Day)
	if err != nil {
		return err
	}

	ledger := ctx.Scheduler.Ledger()

	if c.To != "" {
		if _, err := utils.ParseDay(c.To); err != nil {
			return err
		}
		if c.To <= day {
			return fmt.Errorf("target day must be after %s", day)
		}
		deferral, err := ledger.Defer(habit.ID, day, c.To, c.Reason)
		if err != nil {
			var deferErr *scheduler.DeferError
			if errors.As(err, &deferErr) {
				return deferErr
			}
			return fmt.Errorf("failed to defer: %w", err)
		}
		remaining := scheduler.MaxDeferrals(habit.Frequency) - deferral.TimesDeferred
		fmt.Printf("Moved %s from %s to %s (%d deferral(s) remaining)\n",
			habit.Name, day, c.To, remaining)
		return nil
	}

	result, err := ledger.SmartDefer(habit.ID, day, c.Reason)
	if err != nil {
		return fmt.Errorf("failed to defer: %w", err)
	}

	if !result.Success {
		fmt.Printf("❌ %s\n", result.Message)
		return nil
	}

	fmt.Printf("Moved %s from %s to %s (%d/%d deferrals used)\n",
		habit.Name, day, result.NewDueDay, result.DeferralsUsed,
		result.DeferralsUsed+result.RemainingDeferrals)
	return nil
}
