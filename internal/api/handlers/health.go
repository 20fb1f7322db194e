// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pewos/backend/internal/notify"
	"github.com/pewos/backend/internal/storage"
	"github.com/pewos/backend/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.Ping() == nil

		status := "healthy"
		if !dbConnected {
			status = "degraded"
		}

		response := HealthResponse{
			Status:      status,
			DBConnected: dbConnected,
		}

		w.Header().Set("Content-Type", "application/json")
		if status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(response)
	}
}

// StatusResponse represents the system status response.
type StatusResponse struct {
	DBConnected      bool `json:"db_connected"`
	ConnectedShells  int  `json:"connected_shells"`
	RemindersEnabled bool `json:"reminders_enabled"`
	ArmedReminders   int  `json:"armed_reminders"`
	Dogs             int  `json:"dogs"`
	ActiveItems      int  `json:"active_items"`
	Subscriptions    int  `json:"subscriptions"`
}

// Status returns a handler that provides system status information.
func Status(db *storage.DB, hub *websocket.Hub, agent *notify.Agent, reconciler *notify.Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var dogs int
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM dogs").Scan(&dogs)

		var activeItems int
		db.QueryRowContext(ctx, `
			SELECT
				(SELECT COUNT(*) FROM medications WHERE is_active = 1) +
				(SELECT COUNT(*) FROM exercises WHERE is_active = 1) +
				(SELECT COUNT(*) FROM cares WHERE is_active = 1) +
				(SELECT COUNT(*) FROM appointments)
		`).Scan(&activeItems)

		var subscriptions int
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM push_subscriptions").Scan(&subscriptions)

		response := StatusResponse{
			DBConnected:      db.Ping() == nil,
			ConnectedShells:  hub.ClientCount(),
			RemindersEnabled: reconciler.Enabled(),
			ArmedReminders:   len(agent.ArmedIDs()),
			Dogs:             dogs,
			ActiveItems:      activeItems,
			Subscriptions:    subscriptions,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}
