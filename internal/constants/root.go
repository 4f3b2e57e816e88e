package constants

const (
	AppName            = "weeklit"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/weeklit/weeklit.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// DaysPerWeek is the length of a generated schedule window
	DaysPerWeek = 7
)
