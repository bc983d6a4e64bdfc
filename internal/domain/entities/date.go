package entities

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the storage and API layout for calendar dates
	DateLayout = "2006-01-02"

	// DisplayDateLayout is the day/month/year layout used in reports
	DisplayDateLayout = "02/01/2006"
)

// DateOnly drops the clock part of t, keeping its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", value)
	}
	return t, nil
}
