package constants

const (
	// General Settings
	SettingAnchorHabit          = "anchor_habit"
	SettingTimezone             = "timezone"
	SettingDefaultWeeklyTarget  = "default_weekly_target"
	SettingNotificationsEnabled = "notifications_enabled"
	SettingDeadlineOffsetMin    = "deadline_offset_min"

	// Job Settings
	SettingJobIntervalMin   = "job_interval_min"
	SettingJobBackoffMin    = "job_backoff_min"
	SettingJobBackfillLimit = "job_backfill_limit"

	// Default Settings Values
	DefaultAnchorHabit          = ""
	DefaultTimezone             = "Local" // Use system local timezone by default
	DefaultWeeklyTargetValue    = 1
	DefaultNotificationsEnabled = false
	DefaultDeadlineOffsetMin    = 30
	DefaultJobIntervalMin       = 60
	DefaultJobBackoffMin        = 5
	DefaultJobBackfillLimit     = 30
)
