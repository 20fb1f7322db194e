package models

import (
	"time"
)

// Completion records that a single occurrence of a care item was done on a
// given day. The (user, item type, item id, scheduled time, date) key is
// unique: marking the same occurrence complete twice updates the existing
// record instead of duplicating it.
type Completion struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	ItemType      string    `json:"item_type"`
	ItemID        string    `json:"item_id"`
	ScheduledTime string    `json:"scheduled_time"` // empty for single-occurrence items
	CompletedDate string    `json:"completed_date"` // "YYYY-MM-DD"
	CompletedAt   time.Time `json:"completed_at"`
}

// PushSubscription is a user's current Web Push endpoint. One row per user:
// re-subscribing from a device overwrites the previous endpoint.
type PushSubscription struct {
	UserID    string    `json:"user_id"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Shared access status constants.
const (
	SharedStatusPending  = "pending"
	SharedStatusAccepted = "accepted"
	SharedStatusRejected = "rejected"
)

// SharedAccess grants a second user read access to an owner's data and, once
// accepted, a copy of the owner's due-today notifications.
type SharedAccess struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	OwnerEmail      string    `json:"owner_email"`
	SharedWithEmail string    `json:"shared_with_email"`
	SharedWithID    *string   `json:"shared_with_id,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}
