package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pewos/backend/internal/websocket"
)

func waitForClients(t *testing.T, hub *websocket.Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("hub never reached %d clients", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubDisplayerCarriesOwnerID(t *testing.T) {
	hub := websocket.NewHub()
	go hub.Run()

	client := websocket.NewClient(hub)
	hub.Register(client)
	waitForClients(t, hub, 1)

	d := NewHubDisplayer(hub, "/")
	if err := d.Display("owner", "med-1-08:00", "💊 Medicamento de Luna", "Amoxicilina a las 08:00"); err != nil {
		t.Fatalf("Display: %v", err)
	}

	select {
	case raw := <-client.Send():
		var msg websocket.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if msg.Type != websocket.TypeReminderFired {
			t.Fatalf("message type = %q, want %q", msg.Type, websocket.TypeReminderFired)
		}
		var p websocket.ReminderFiredPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if p.UserID != "owner" {
			t.Errorf("payload user_id = %q, want owner", p.UserID)
		}
		if p.Tag != "med-1-08:00" {
			t.Errorf("payload tag = %q, want the notification id", p.Tag)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reminder was never broadcast")
	}
}
