// Package notify computes, schedules and delivers reminder notifications
// for the pet care items stored in the database.
package notify

import (
	"time"

	"github.com/pewos/backend/internal/storage/models"
)

// At resolves a clock time on the given day to an absolute epoch-millisecond
// timestamp in loc, shifted earlier by the lead configured on the item.
// day carries the calendar date; its own clock fields are ignored.
// A malformed clock string yields 0.
func At(day time.Time, clock string, lead models.NotificationTime, loc *time.Location) int64 {
	hour, minute, ok := splitClock(clock)
	if !ok {
		return 0
	}
	t := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
	t = t.Add(-time.Duration(lead.Minutes()) * time.Minute)
	return t.UnixMilli()
}

// splitClock parses "HH:MM" into its components.
func splitClock(clock string) (hour, minute int, ok bool) {
	if len(clock) != 5 || clock[2] != ':' {
		return 0, 0, false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if clock[i] < '0' || clock[i] > '9' {
			return 0, 0, false
		}
	}
	hour = int(clock[0]-'0')*10 + int(clock[1]-'0')
	minute = int(clock[3]-'0')*10 + int(clock[4]-'0')
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
