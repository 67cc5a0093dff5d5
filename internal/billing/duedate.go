package billing

import (
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

type DueType string

const (
	DueTypeFixed      DueType = "Fixed"
	DueTypeEndOfMonth DueType = "EndOfMonth"
)

func ParseDueType(s string) (DueType, error) {
	switch d := DueType(s); d {
	case DueTypeFixed, DueTypeEndOfMonth:
		return d, nil
	}
	return "", fmt.Errorf("unknown due type %q", s)
}

// ErrUndeterminedDueDate is returned for a Fixed bill without a usable day.
var ErrUndeterminedDueDate = errors.New("due date undetermined")

// Schedule is the part of a bill that decides when it is due.
type Schedule struct {
	DueType DueType
	DayDue  *int
}

// NextDueDate returns the first due date of s on or after today.
func NextDueDate(s Schedule, today civil.Date) (civil.Date, error) {
	switch s.DueType {
	case DueTypeFixed:
		if s.DayDue == nil || *s.DayDue < 1 || *s.DayDue > 31 {
			return civil.Date{}, fmt.Errorf("fixed bill day %s: %w", describeDay(s.DayDue), ErrUndeterminedDueDate)
		}
		return nextFixed(*s.DayDue, today), nil
	case DueTypeEndOfMonth:
		return nextEndOfMonth(today), nil
	}
	return civil.Date{}, fmt.Errorf("due type %q: %w", s.DueType, ErrUndeterminedDueDate)
}

// The rollover check compares against the configured day, not the clamped
// one: a day-31 bill is still due on Feb 28 when today is Feb 15, and stays
// on the current month until the 31st would have passed.
func nextFixed(dayDue int, today civil.Date) civil.Date {
	if today.Day <= dayDue {
		return clampedDate(today.Year, today.Month, dayDue)
	}
	year, month := addMonth(today.Year, today.Month)
	return clampedDate(year, month, dayDue)
}

func nextEndOfMonth(today civil.Date) civil.Date {
	candidate := civil.Date{Year: today.Year, Month: today.Month, Day: DaysIn(today.Year, today.Month)}
	if today.Before(candidate) {
		return candidate
	}
	year, month := addMonth(today.Year, today.Month)
	return civil.Date{Year: year, Month: month, Day: DaysIn(year, month)}
}

func clampedDate(year int, month time.Month, day int) civil.Date {
	return civil.Date{Year: year, Month: month, Day: min(day, DaysIn(year, month))}
}

func addMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// DaysIn returns the number of days in month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func describeDay(day *int) string {
	if day == nil {
		return "missing"
	}
	return fmt.Sprintf("%d out of range", *day)
}
