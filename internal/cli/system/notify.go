package system

import (
	"fmt"

	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/notifier"
	"github.com/julianstephens/weeklit/internal/utils"
)

type NotifyCmd struct {
	DryRun bool `help:"Print notifications to stdout instead of sending them."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if !settings.NotificationsEnabled {
		if c.DryRun {
			fmt.Println("Notifications are disabled in settings.")
		}
		return nil
	}

	now, err := utils.NowInTimezone(settings.Timezone)
	if err != nil {
		return err
	}
	today := utils.FormatDay(now)
	currentMinutes := now.Hour()*60 + now.Minute()

	week, err := ctx.Scheduler.GenerateWeekSchedule(today)
	if err != nil {
		return fmt.Errorf("failed to generate week schedule: %w", err)
	}

	daySchedule := week.Day(today)
	if daySchedule == nil {
		return nil
	}

	n := notifier.New()

	for _, sh := range daySchedule.Habits {
		// Only deadline-bearing required obligations that are still open
		if sh.Completed || sh.Optional || sh.Deadline == "" {
			continue
		}

		deadlineMinutes, err := utils.ParseTimeToMinutes(sh.Deadline)
		if err != nil {
			continue
		}

		// Fires on the exact trigger minute; the watch loop (or a cron
		// entry) is expected to call this every minute.
		triggerTime := deadlineMinutes - settings.DeadlineOffsetMin
		if currentMinutes != triggerTime {
			continue
		}

		var msg string
		if settings.DeadlineOffsetMin == 0 {
			msg = fmt.Sprintf("Due now: %s (%s)", sh.Name, sh.Deadline)
		} else {
			msg = fmt.Sprintf("Upcoming: %s is due in %d min (%s)", sh.Name, settings.DeadlineOffsetMin, sh.Deadline)
		}

		if c.DryRun {
			fmt.Println("[DryRun] " + msg)
		} else {
			if err := n.Notify(msg); err != nil {
				// Keep checking the other obligations
				fmt.Printf("Failed to send notification: %v\n", err)
			}
		}
	}

	return nil
}
