// Package models defines the typed records stored by the backend.
package models

// NotificationTime is the lead-time enum attached to every care item: how far
// in advance of an occurrence its reminder fires.
type NotificationTime string

const (
	NotifyNone  NotificationTime = "none"
	Notify15Min NotificationTime = "15min"
	Notify30Min NotificationTime = "30min"
	Notify1H    NotificationTime = "1h"
	Notify2H    NotificationTime = "2h"
	Notify1Day  NotificationTime = "1day"
)

// leadMinutes maps each lead value to the minutes subtracted from the
// occurrence time.
var leadMinutes = map[NotificationTime]int{
	NotifyNone:  0,
	Notify15Min: 15,
	Notify30Min: 30,
	Notify1H:    60,
	Notify2H:    120,
	Notify1Day:  1440,
}

// Minutes returns the lead in minutes. Unknown values count as zero.
func (n NotificationTime) Minutes() int {
	return leadMinutes[n]
}

// ParseNotificationTime decodes a stored lead value, defaulting unknown or
// missing values to "none" rather than failing the row.
func ParseNotificationTime(s string) NotificationTime {
	n := NotificationTime(s)
	if _, ok := leadMinutes[n]; !ok {
		return NotifyNone
	}
	return n
}

// Item type constants used by completions and notification ids.
const (
	ItemTypeAppointment = "appointment"
	ItemTypeMedication  = "medication"
	ItemTypeExercise    = "exercise"
	ItemTypeCare        = "care"
)
