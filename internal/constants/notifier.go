package constants

const (
	// NotifierLockfileName is the lockfile written by the tray companion app
	NotifierLockfileName = "notifier.lock"

	// NotifierTrayAppName is the process name of the tray companion app
	NotifierTrayAppName = "weeklit-tray"

	// NotificationDurationMs is how long a notification stays on screen
	NotificationDurationMs uint32 = 8000

	// TrayAppIdentifier is the tray companion app's config directory name
	TrayAppIdentifier = "com.julianstephens.weeklit"
)
