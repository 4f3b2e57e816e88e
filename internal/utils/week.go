package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/weeklit/internal/constants"
)

// ParseDay parses a date string in the standard format (YYYY-MM-DD).
func ParseDay(day string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", day)
	}
	return t, nil
}

// FormatDay formats a time as a date string (YYYY-MM-DD).
func FormatDay(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// WeekStart returns the Monday of the week containing t. All week windows
// are Monday–Sunday.
func WeekStart(t time.Time) time.Time {
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday belongs to the week that started the previous Monday
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, -offset)
}

// WeekStartDay returns the Monday (YYYY-MM-DD) of the week containing day.
func WeekStartDay(day string) (string, error) {
	t, err := ParseDay(day)
	if err != nil {
		return "", err
	}
	return FormatDay(WeekStart(t)), nil
}

// AddDays returns day shifted by n calendar days.
func AddDays(day string, n int) (string, error) {
	t, err := ParseDay(day)
	if err != nil {
		return "", err
	}
	return FormatDay(t.AddDate(0, 0, n)), nil
}

// DaysBetween returns the number of calendar days from a to b (b - a).
func DaysBetween(a, b string) (int, error) {
	ta, err := ParseDay(a)
	if err != nil {
		return 0, err
	}
	tb, err := ParseDay(b)
	if err != nil {
		return 0, err
	}
	return int(tb.Sub(ta).Hours() / 24), nil
}

// SameCalendarMonth reports whether two days fall in the same calendar month.
func SameCalendarMonth(a, b string) (bool, error) {
	ta, err := ParseDay(a)
	if err != nil {
		return false, err
	}
	tb, err := ParseDay(b)
	if err != nil {
		return false, err
	}
	return ta.Year() == tb.Year() && ta.Month() == tb.Month(), nil
}

// Season window: March 1 through October 31.
const (
	SeasonStartMonth = time.March
	SeasonEndMonth   = time.October
)

// InSeason reports whether t falls inside the active season window.
func InSeason(t time.Time) bool {
	return t.Month() >= SeasonStartMonth && t.Month() <= SeasonEndMonth
}

// SeasonBounds returns the first and last day of the season containing t.
// If t is outside the season, it returns the bounds of the season in t's year.
func SeasonBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), SeasonStartMonth, 1, 0, 0, 0, 0, t.Location())
	end := time.Date(t.Year(), SeasonEndMonth, 31, 0, 0, 0, 0, t.Location())
	return start, end
}

// WeeksRemainingInSeason returns how many whole weeks remain between t and the
// season end, inclusive of the current week. Returns 0 outside the season.
func WeeksRemainingInSeason(t time.Time) int {
	if !InSeason(t) {
		return 0
	}
	_, end := SeasonBounds(t)
	days := int(end.Sub(t).Hours()/24) + 1
	if days < 0 {
		return 0
	}
	return (days + 6) / 7
}
