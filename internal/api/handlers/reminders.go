package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pewos/backend/internal/api/middleware"
	"github.com/pewos/backend/internal/notify"
)

// RemindersStatus reports the local delivery state and the armed set.
func RemindersStatus(agent *notify.Agent, reconciler *notify.Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"enabled":   reconciler.Enabled(),
			"armed_ids": agent.ArmedIDs(),
		})
	}
}

// SetRemindersEnabled turns local reminder delivery on or off, mirroring the
// browser notification permission. Turning it off clears every armed timer;
// turning it on rebuilds today's set.
func SetRemindersEnabled(reconciler *notify.Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Enabled bool `json:"enabled"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		reconciler.SetEnabled(req.Enabled)
		if req.Enabled {
			reconciler.ReconcileAsync(middleware.UserID(r))
		}
		writeJSON(w, http.StatusOK, map[string]bool{"enabled": req.Enabled})
	}
}

// ReconcileReminders forces a rebuild of today's armed reminder set.
func ReconcileReminders(reconciler *notify.Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := reconciler.Reconcile(r.Context(), middleware.UserID(r)); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to rebuild reminders")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
