package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// ClockTime is a wall-clock time of day used by the batch schedule.
type ClockTime struct {
	Hour   int
	Minute int
}

// String formats the time as HH:MM, the form gocron expects.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On returns the time c on the day of t, in t's location.
func (c ClockTime) On(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), c.Hour, c.Minute, 0, 0, t.Location())
}

// ParseSchedule parses "HH:MM" entries separated by ';'. The result is sorted
// and free of duplicates.
func ParseSchedule(schedule string) ([]ClockTime, error) {
	if strings.TrimSpace(schedule) == "" {
		return nil, fmt.Errorf("schedule cannot be empty")
	}

	var times []ClockTime
	for entry := range strings.SplitSeq(schedule, ";") {
		entry = strings.TrimSpace(entry)
		t, err := time.Parse("15:04", entry)
		if err != nil {
			return nil, fmt.Errorf("invalid time %q, expected HH:MM", entry)
		}
		clock := ClockTime{Hour: t.Hour(), Minute: t.Minute()}
		if !slices.Contains(times, clock) {
			times = append(times, clock)
		}
	}

	slices.SortFunc(times, func(a, b ClockTime) int {
		return (a.Hour*60 + a.Minute) - (b.Hour*60 + b.Minute)
	})
	return times, nil
}

// FormatSchedule joins times back into the PROCESS_SCHEDULE form.
func FormatSchedule(times []ClockTime) string {
	parts := make([]string, len(times))
	for i, t := range times {
		parts[i] = t.String()
	}
	return strings.Join(parts, ";")
}

// NextRun returns the first scheduled time strictly after now. It returns the
// zero time when times is empty.
func NextRun(now time.Time, times []ClockTime) time.Time {
	if len(times) == 0 {
		return time.Time{}
	}

	for _, clock := range times {
		if candidate := clock.On(now); candidate.After(now) {
			return candidate
		}
	}

	return times[0].On(now.AddDate(0, 0, 1))
}
