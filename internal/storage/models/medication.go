package models

import (
	"encoding/json"
	"time"
)

// Medication schedule type constants.
const (
	ScheduleTypeHours = "hours" // times derived from start time + hour frequency
	ScheduleTypeMeals = "meals" // times anchored to the user's meal times
)

// Medication is a dosing schedule for a dog. DurationDays == 0 means the
// medication is continuous (no end date).
type Medication struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	DogID            string           `json:"dog_id"`
	DogName          string           `json:"dog_name"`
	Name             string           `json:"name"`
	Dosage           string           `json:"dosage"`
	ScheduleType     string           `json:"schedule_type"`
	FrequencyHours   *int             `json:"frequency_hours,omitempty"`
	StartTime        *string          `json:"start_time,omitempty"`
	MealIDs          []string         `json:"meal_ids"`
	DurationDays     int              `json:"duration_days"`
	StartDate        time.Time        `json:"start_date"`
	EndDate          time.Time        `json:"end_date"`
	ScheduledTimes   []string         `json:"scheduled_times"`
	Notes            *string          `json:"notes,omitempty"`
	IsActive         bool             `json:"is_active"`
	NotificationTime NotificationTime `json:"notification_time"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Continuous reports whether the medication has no end date.
func (m *Medication) Continuous() bool {
	return m.DurationDays == 0
}

// EncodeStringList serializes a list of strings for a TEXT column.
// A nil list encodes as an empty JSON array.
func EncodeStringList(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// DecodeStringList deserializes a TEXT column into a list of strings.
// Malformed content decodes to nil rather than failing the row.
func DecodeStringList(s string) []string {
	if s == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(s), &list); err != nil {
		return nil
	}
	return list
}
