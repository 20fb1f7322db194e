package models

import (
	"time"
)

// Exercise is a recurring exercise routine scheduled over a daily time window.
type Exercise struct {
	ID                    string           `json:"id"`
	UserID                string           `json:"user_id"`
	DogID                 string           `json:"dog_id"`
	DogName               string           `json:"dog_name"`
	Type                  string           `json:"type"`
	CustomTypeDescription *string          `json:"custom_type_description,omitempty"`
	DurationMinutes       int              `json:"duration_minutes"`
	TimesPerDay           int              `json:"times_per_day"`
	StartTime             string           `json:"start_time"` // "HH:MM"
	EndTime               string           `json:"end_time"`   // "HH:MM"
	ScheduledTimes        []string         `json:"scheduled_times"`
	StartDate             time.Time        `json:"start_date"`
	IsPermanent           bool             `json:"is_permanent"`
	DurationWeeks         *int             `json:"duration_weeks,omitempty"`
	EndDate               *time.Time       `json:"end_date,omitempty"`
	Notes                 *string          `json:"notes,omitempty"`
	IsActive              bool             `json:"is_active"`
	NotificationTime      NotificationTime `json:"notification_time"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// Label returns the text shown in reminder bodies.
func (e *Exercise) Label() string {
	if e.Type == "otro" && e.CustomTypeDescription != nil && *e.CustomTypeDescription != "" {
		return *e.CustomTypeDescription
	}
	return e.Type
}

// Care is a post-operative care routine scheduled over a daily time window.
type Care struct {
	ID                    string           `json:"id"`
	UserID                string           `json:"user_id"`
	DogID                 string           `json:"dog_id"`
	DogName               string           `json:"dog_name"`
	Type                  string           `json:"type"`
	CustomTypeDescription *string          `json:"custom_type_description,omitempty"`
	DurationMinutes       int              `json:"duration_minutes"`
	TimesPerDay           int              `json:"times_per_day"`
	StartTime             string           `json:"start_time"`
	EndTime               string           `json:"end_time"`
	ScheduledTimes        []string         `json:"scheduled_times"`
	StartDate             time.Time        `json:"start_date"`
	IsPermanent           bool             `json:"is_permanent"`
	DurationDays          *int             `json:"duration_days,omitempty"`
	EndDate               *time.Time       `json:"end_date,omitempty"`
	Notes                 *string          `json:"notes,omitempty"`
	IsActive              bool             `json:"is_active"`
	NotificationTime      NotificationTime `json:"notification_time"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// Label returns the text shown in reminder bodies.
func (c *Care) Label() string {
	if c.Type == "otro" && c.CustomTypeDescription != nil && *c.CustomTypeDescription != "" {
		return *c.CustomTypeDescription
	}
	return c.Type
}
