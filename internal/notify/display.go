package notify

import (
	"github.com/pewos/backend/internal/websocket"
)

// HubDisplayer shows fired reminders by broadcasting them to every connected
// app shell over the WebSocket hub. The notification id doubles as the tag
// so a repeat fire replaces the visible notification instead of stacking.
type HubDisplayer struct {
	hub *websocket.Hub
	url string
}

// NewHubDisplayer creates a displayer over the given hub. url is where a
// click on the notification should land, typically "/".
func NewHubDisplayer(hub *websocket.Hub, url string) *HubDisplayer {
	if url == "" {
		url = "/"
	}
	return &HubDisplayer{hub: hub, url: url}
}

// Display implements Displayer. The payload carries the owner's user id so
// each shell can drop reminders that are not for its signed-in user.
func (d *HubDisplayer) Display(userID, id, title, body string) error {
	return websocket.BroadcastReminderFired(d.hub, websocket.ReminderFiredPayload{
		ID:     id,
		UserID: userID,
		Title:  title,
		Body:   body,
		Tag:    id,
		URL:    d.url,
	})
}
