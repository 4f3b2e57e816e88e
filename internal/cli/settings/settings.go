package settings

import (
	"fmt"

	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	AnchorHabit          *string `help:"Habit name the first-week leniency rule keys on (empty to disable)."`
	Timezone             *string `help:"IANA timezone name, or 'Local' for the system timezone."`
	DefaultWeeklyTarget  *int    `help:"Weekly target assigned to weekly habits without one."`
	NotificationsEnabled *bool   `help:"Enable or disable deadline reminders."`
	DeadlineOffsetMin    *int    `help:"Minutes before a deadline to remind."`
	JobIntervalMin       *int    `help:"Minutes between background job passes."`
	JobBackoffMin        *int    `help:"Minutes to wait before retrying a failed job pass."`
	JobBackfillLimit     *int    `help:"Maximum days of stats backfill per job pass."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		anchor := settings.AnchorHabit
		if anchor == "" {
			anchor = "(none)"
		}
		fmt.Println("Current Settings:")
		fmt.Printf("  Anchor Habit:          %s\n", anchor)
		fmt.Printf("  Timezone:              %s\n", settings.Timezone)
		fmt.Printf("  Default Weekly Target: %d\n", settings.DefaultWeeklyTarget)
		fmt.Println("\nNotification Settings:")
		fmt.Printf("  Notifications Enabled: %v\n", settings.NotificationsEnabled)
		fmt.Printf("  Deadline Offset:       %d min\n", settings.DeadlineOffsetMin)
		fmt.Println("\nBackground Job Settings:")
		fmt.Printf("  Job Interval:          %d min\n", settings.JobIntervalMin)
		fmt.Printf("  Job Backoff:           %d min\n", settings.JobBackoffMin)
		fmt.Printf("  Job Backfill Limit:    %d days\n", settings.JobBackfillLimit)
		return nil
	}

	updated := false
	if c.AnchorHabit != nil {
		if *c.AnchorHabit != "" {
			if _, err := ctx.Store.GetHabitByName(*c.AnchorHabit); err != nil {
				return fmt.Errorf("no habit named %q", *c.AnchorHabit)
			}
		}
		settings.AnchorHabit = *c.AnchorHabit
		updated = true
	}
	if c.Timezone != nil {
		if _, err := utils.LoadLocation(*c.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", *c.Timezone, err)
		}
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.DefaultWeeklyTarget != nil {
		if *c.DefaultWeeklyTarget < 1 || *c.DefaultWeeklyTarget > 7 {
			return fmt.Errorf("default weekly target must be between 1 and 7")
		}
		settings.DefaultWeeklyTarget = *c.DefaultWeeklyTarget
		updated = true
	}
	if c.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *c.NotificationsEnabled
		updated = true
	}
	if c.DeadlineOffsetMin != nil {
		if *c.DeadlineOffsetMin < 0 {
			return fmt.Errorf("deadline offset cannot be negative")
		}
		settings.DeadlineOffsetMin = *c.DeadlineOffsetMin
		updated = true
	}
	if c.JobIntervalMin != nil {
		if *c.JobIntervalMin < 1 {
			return fmt.Errorf("job interval must be at least 1 minute")
		}
		settings.JobIntervalMin = *c.JobIntervalMin
		updated = true
	}
	if c.JobBackoffMin != nil {
		if *c.JobBackoffMin < 1 {
			return fmt.Errorf("job backoff must be at least 1 minute")
		}
		settings.JobBackoffMin = *c.JobBackoffMin
		updated = true
	}
	if c.JobBackfillLimit != nil {
		if *c.JobBackfillLimit < 1 {
			return fmt.Errorf("job backfill limit must be at least 1 day")
		}
		settings.JobBackfillLimit = *c.JobBackfillLimit
		updated = true
	}

	if updated {
		if err := ctx.Store.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		fmt.Println("Settings updated successfully.")
	} else {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
	}

	return nil
}
