package shared

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the format layout for parsing simulation dates.
	DateLayout = "2006-01-02"
)

// IsBusinessDay asserts whether the provided date falls on a business day.
func IsBusinessDay(date time.Time) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// NormalizeDate truncates the provided date to midnight UTC.
func NormalizeDate(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
}

// BusinessDays generates the ordered sequence of business days between the
// provided start and end dates, inclusive. Weekends are excluded.
func BusinessDays(start time.Time, end time.Time) ([]time.Time, error) {
	start = NormalizeDate(start)
	end = NormalizeDate(end)

	if end.Before(start) {
		return nil, fmt.Errorf("end date %s cannot precede start date %s",
			end.Format(DateLayout), start.Format(DateLayout))
	}

	days := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		if !IsBusinessDay(date) {
			continue
		}

		days = append(days, date)
	}

	return days, nil
}

// CountBusinessDays returns the number of business days between the provided
// start and end dates, inclusive.
func CountBusinessDays(start time.Time, end time.Time) (int, error) {
	days, err := BusinessDays(start, end)
	if err != nil {
		return 0, err
	}

	return len(days), nil
}
