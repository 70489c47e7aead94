package model

import (
	"strconv"
	"strings"
)

// DaySet is a bitset of weekdays, bit 0 = Monday (day 1) .. bit 6 = Sunday (day 7).
// It replaces the legacy comma-separated "1,2,3" strings still present in
// persisted rows; ParseLegacyDays is the only place that format is understood.
type DaySet uint8

// NewDaySet builds a set from day numbers (1=Monday..7=Sunday). Out-of-range
// values are ignored.
func NewDaySet(days ...int) DaySet {
	var s DaySet
	for _, d := range days {
		if d >= 1 && d <= 7 {
			s |= 1 << (d - 1)
		}
	}
	return s
}

// Contains reports whether day (1..7) is in the set.
func (s DaySet) Contains(day int) bool {
	if day < 1 || day > 7 {
		return false
	}
	return s&(1<<(day-1)) != 0
}

// Days returns the contained day numbers in ascending order.
func (s DaySet) Days() []int {
	var days []int
	for d := 1; d <= 7; d++ {
		if s.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

// ParseLegacyDays translates the legacy "1,2,3" persisted format.
// Unparseable fragments are skipped.
func ParseLegacyDays(raw string) DaySet {
	var s DaySet
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		s |= NewDaySet(d)
	}
	return s
}

// LegacyString renders the set back into the legacy persisted format.
func (s DaySet) LegacyString() string {
	days := s.Days()
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}
