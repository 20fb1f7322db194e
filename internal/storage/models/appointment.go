package models

import (
	"time"
)

// RecurrencePattern describes how an appointment repeats.
type RecurrencePattern string

const (
	RecurrenceNone     RecurrencePattern = "none"
	RecurrenceDaily    RecurrencePattern = "daily"
	RecurrenceWeekly   RecurrencePattern = "weekly"
	RecurrenceBiweekly RecurrencePattern = "biweekly"
	RecurrenceMonthly  RecurrencePattern = "monthly"
)

// ParseRecurrencePattern decodes a stored pattern, defaulting unknown values
// to "none".
func ParseRecurrencePattern(s string) RecurrencePattern {
	switch p := RecurrencePattern(s); p {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceBiweekly, RecurrenceMonthly:
		return p
	default:
		return RecurrenceNone
	}
}

// Appointment is a veterinary appointment, optionally recurring.
type Appointment struct {
	ID                    string            `json:"id"`
	UserID                string            `json:"user_id"`
	DogID                 string            `json:"dog_id"`
	DogName               string            `json:"dog_name"`
	Date                  time.Time         `json:"date"`
	Time                  string            `json:"time"` // "HH:MM"
	Type                  string            `json:"type"`
	CustomTypeDescription *string           `json:"custom_type_description,omitempty"`
	Notes                 *string           `json:"notes,omitempty"`
	NotificationTime      NotificationTime  `json:"notification_time"`
	RecurrencePattern     RecurrencePattern `json:"recurrence_pattern"`
	RecurrenceEndDate     *time.Time        `json:"recurrence_end_date,omitempty"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// Recurs reports whether the appointment has a recurrence pattern.
func (a *Appointment) Recurs() bool {
	return a.RecurrencePattern != "" && a.RecurrencePattern != RecurrenceNone
}

// Label returns the text shown in reminder bodies: the custom description if
// present, otherwise the appointment type.
func (a *Appointment) Label() string {
	if a.CustomTypeDescription != nil && *a.CustomTypeDescription != "" {
		return *a.CustomTypeDescription
	}
	return a.Type
}
