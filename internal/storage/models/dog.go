package models

import (
	"time"
)

// Dog is a pet profile owned by a user.
type Dog struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	Breed      string     `json:"breed"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	Gender     string     `json:"gender"`
	IsNeutered bool       `json:"is_neutered"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// MealTime is a user-global named meal anchor (e.g. "Desayuno" at 08:00).
// Medications may reference meal times by id; references to deleted meals
// simply drop from the computed schedule.
type MealTime struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Time      string    `json:"time"` // "HH:MM"
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
