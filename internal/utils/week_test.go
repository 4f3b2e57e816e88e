package utils

import (
	"testing"
)

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		day  string
		want string
	}{
		{"monday maps to itself", "2025-01-06", "2025-01-06"},
		{"wednesday maps back to monday", "2025-01-08", "2025-01-06"},
		{"sunday belongs to the preceding monday", "2025-01-12", "2025-01-06"},
		{"saturday maps back to monday", "2025-01-11", "2025-01-06"},
		{"month boundary", "2025-02-01", "2025-01-27"},
		{"year boundary", "2025-01-01", "2024-12-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, err := ParseDay(tt.day)
			if err != nil {
				t.Fatalf("ParseDay(%q) failed: %v", tt.day, err)
			}
			got := FormatDay(WeekStart(day))
			if got != tt.want {
				t.Errorf("WeekStart(%s) = %s, want %s", tt.day, got, tt.want)
			}
		})
	}
}

func TestWeekStartIsIdempotent(t *testing.T) {
	day, _ := ParseDay("2025-01-09")
	once := WeekStart(day)
	twice := WeekStart(once)
	if !once.Equal(twice) {
		t.Errorf("WeekStart(WeekStart(d)) = %v, want %v", twice, once)
	}
}

func TestParseDayRejectsMalformedInput(t *testing.T) {
	bad := []string{"", "2025/01/06", "06-01-2025", "2025-13-01", "yesterday"}
	for _, day := range bad {
		if _, err := ParseDay(day); err == nil {
			t.Errorf("ParseDay(%q) succeeded, want error", day)
		}
	}
}

func TestAddDaysAndDaysBetween(t *testing.T) {
	got, err := AddDays("2025-01-06", 7)
	if err != nil {
		t.Fatalf("AddDays failed: %v", err)
	}
	if got != "2025-01-13" {
		t.Errorf("AddDays(2025-01-06, 7) = %s, want 2025-01-13", got)
	}

	n, err := DaysBetween("2025-01-06", "2025-01-13")
	if err != nil {
		t.Fatalf("DaysBetween failed: %v", err)
	}
	if n != 7 {
		t.Errorf("DaysBetween = %d, want 7", n)
	}

	n, err = DaysBetween("2025-01-13", "2025-01-06")
	if err != nil {
		t.Fatalf("DaysBetween failed: %v", err)
	}
	if n != -7 {
		t.Errorf("DaysBetween reversed = %d, want -7", n)
	}
}

func TestSameCalendarMonth(t *testing.T) {
	same, err := SameCalendarMonth("2025-01-06", "2025-01-31")
	if err != nil || !same {
		t.Errorf("SameCalendarMonth within January = %v (err %v), want true", same, err)
	}
	same, err = SameCalendarMonth("2025-01-31", "2025-02-01")
	if err != nil || same {
		t.Errorf("SameCalendarMonth across boundary = %v (err %v), want false", same, err)
	}
	same, err = SameCalendarMonth("2024-03-10", "2025-03-10")
	if err != nil || same {
		t.Errorf("SameCalendarMonth across years = %v (err %v), want false", same, err)
	}
}

func TestSeasonWindow(t *testing.T) {
	inSeason, _ := ParseDay("2025-06-15")
	if !InSeason(inSeason) {
		t.Error("expected June to be in season")
	}
	offSeason, _ := ParseDay("2025-12-15")
	if InSeason(offSeason) {
		t.Error("expected December to be out of season")
	}

	if got := WeeksRemainingInSeason(offSeason); got != 0 {
		t.Errorf("WeeksRemainingInSeason off-season = %d, want 0", got)
	}

	lastDay, _ := ParseDay("2025-10-31")
	if got := WeeksRemainingInSeason(lastDay); got != 1 {
		t.Errorf("WeeksRemainingInSeason on final day = %d, want 1", got)
	}

	firstDay, _ := ParseDay("2025-03-01")
	if got := WeeksRemainingInSeason(firstDay); got < 34 || got > 36 {
		t.Errorf("WeeksRemainingInSeason at season start = %d, want ~35", got)
	}

	start, end := SeasonBounds(inSeason)
	if FormatDay(start) != "2025-03-01" || FormatDay(end) != "2025-10-31" {
		t.Errorf("SeasonBounds = %s..%s, want 2025-03-01..2025-10-31", FormatDay(start), FormatDay(end))
	}
}
