package automation

import (
	"fmt"
	"time"
)

// DateLayout is the local calendar date format used for register lookup.
const DateLayout = "2006-01-02"

// Localize converts a UTC instant into a merchant's local day of week
// (1=Monday..7=Sunday) and minute of day (0..1439). Daylight saving shifts are
// handled by the tz database via time.LoadLocation, never by fixed offsets.
func Localize(t time.Time, timezone string) (dayOfWeek, minuteOfDay int, err error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return 0, 0, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	local := t.In(loc)
	dayOfWeek = int(local.Weekday())
	if dayOfWeek == 0 {
		dayOfWeek = 7 // Sunday
	}
	return dayOfWeek, local.Hour()*60 + local.Minute(), nil
}

// LocalTime returns the instant in the merchant's location.
func LocalTime(t time.Time, timezone string) (time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return t.In(loc), nil
}

// DayBounds returns the start and end of the calendar day containing local.
func DayBounds(local time.Time) (start, end time.Time) {
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	end = start.Add(24*time.Hour - time.Nanosecond)
	return start, end
}
