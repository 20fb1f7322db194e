package websocket

import (
	"encoding/json"
	"time"
)

// Message types sent from the server to connected app shells.
const (
	TypeReminderFired    = "reminder.fired"
	TypeScheduleReplaced = "schedule.replaced"
	TypePong             = "pong"
)

// Message types received from clients.
const (
	TypePing = "ping"
)

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// ReminderFiredPayload carries a notification the shell should display.
// Tag equals the scheduled notification id so a re-fired reminder
// replaces the one already on screen instead of stacking. UserID is the
// reminder's owner; shells drop payloads for other users.
type ReminderFiredPayload struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Tag    string `json:"tag"`
	URL    string `json:"url"`
}

// ScheduleReplacedPayload announces that the armed reminder set changed.
type ScheduleReplacedPayload struct {
	UserID string `json:"user_id"`
	Count  int    `json:"count"`
}

// NewMessage creates a message with the given type and payload.
func NewMessage(msgType string, payload interface{}) (*Message, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = data
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}, nil
}

// Encode serializes the message to JSON.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// BroadcastReminderFired pushes a fired reminder to every connected shell.
func BroadcastReminderFired(hub *Hub, payload ReminderFiredPayload) error {
	msg, err := NewMessage(TypeReminderFired, payload)
	if err != nil {
		return err
	}
	data, err := msg.Encode()
	if err != nil {
		return err
	}
	hub.Broadcast(data)
	return nil
}

// BroadcastScheduleReplaced announces a schedule swap to every shell.
func BroadcastScheduleReplaced(hub *Hub, userID string, count int) error {
	msg, err := NewMessage(TypeScheduleReplaced, ScheduleReplacedPayload{
		UserID: userID,
		Count:  count,
	})
	if err != nil {
		return err
	}
	data, err := msg.Encode()
	if err != nil {
		return err
	}
	hub.Broadcast(data)
	return nil
}
