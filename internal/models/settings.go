package models

// Settings represents application-wide settings
type Settings struct {
	AnchorHabit          string `json:"anchor_habit"`           // name of the habit the first-week leniency rule keys on
	Timezone             string `json:"timezone"`               // IANA timezone name, or "Local" for system timezone
	DefaultWeeklyTarget  int    `json:"default_weekly_target"`  // weekly target assigned to new weekly habits
	NotificationsEnabled bool   `json:"notifications_enabled"`  // whether deadline reminders are sent
	DeadlineOffsetMin    int    `json:"deadline_offset_min"`    // how many minutes before a deadline to remind
	JobIntervalMin       int    `json:"job_interval_min"`       // how often the background job wakes up
	JobBackoffMin        int    `json:"job_backoff_min"`        // delay before retrying a failed job pass
	JobBackfillLimit     int    `json:"job_backfill_limit"`     // max days of stats backfill per pass
}
