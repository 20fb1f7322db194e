package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pewos/backend/internal/api/middleware"
	"github.com/pewos/backend/internal/notify"
	"github.com/pewos/backend/internal/schedule"
	"github.com/pewos/backend/internal/storage"
	"github.com/pewos/backend/internal/storage/models"
)

type careRequest struct {
	DogID                 string  `json:"dog_id"`
	Type                  string  `json:"type"`
	CustomTypeDescription *string `json:"custom_type_description,omitempty"`
	DurationMinutes       int     `json:"duration_minutes"`
	TimesPerDay           int     `json:"times_per_day"`
	StartTime             string  `json:"start_time"` // "HH:MM"
	EndTime               string  `json:"end_time"`   // "HH:MM"
	StartDate             string  `json:"start_date"` // "YYYY-MM-DD"
	IsPermanent           bool    `json:"is_permanent"`
	DurationDays          *int    `json:"duration_days,omitempty"`
	Notes                 *string `json:"notes,omitempty"`
	IsActive              bool    `json:"is_active"`
	NotificationTime      string  `json:"notification_time"`
}

func (req *careRequest) apply(c *models.Care) (string, bool) {
	if req.DogID == "" {
		return "dog_id is required", false
	}
	if req.Type == "" {
		return "Type is required", false
	}
	if req.TimesPerDay < 1 {
		return "times_per_day must be at least 1", false
	}
	if !validClock(req.StartTime) || !validClock(req.EndTime) {
		return "Invalid start_time or end_time", false
	}
	start, ok := parseDateField(req.StartDate)
	if !ok {
		return "Invalid start_date", false
	}
	if !req.IsPermanent && (req.DurationDays == nil || *req.DurationDays < 1) {
		return "duration_days is required unless permanent", false
	}

	c.DogID = req.DogID
	c.Type = req.Type
	c.CustomTypeDescription = req.CustomTypeDescription
	c.DurationMinutes = req.DurationMinutes
	c.TimesPerDay = req.TimesPerDay
	c.StartTime = req.StartTime
	c.EndTime = req.EndTime
	c.StartDate = start
	c.IsPermanent = req.IsPermanent
	c.DurationDays = nil
	c.EndDate = nil
	if !req.IsPermanent {
		c.DurationDays = req.DurationDays
		end := start.AddDate(0, 0, *req.DurationDays-1)
		c.EndDate = &end
	}
	c.Notes = req.Notes
	c.IsActive = req.IsActive
	c.NotificationTime = models.ParseNotificationTime(req.NotificationTime)
	c.ScheduledTimes = schedule.WindowTimes(c.StartTime, c.EndTime, c.TimesPerDay)
	return "", true
}

// ListCares returns the caller's care routines.
func ListCares(db *storage.DB) http.HandlerFunc {
	repo := storage.NewCareRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := repo.ListByUser(r.Context(), middleware.UserID(r))
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query cares")
			return
		}
		if list == nil {
			list = []models.Care{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// CreateCare creates a care routine with derived window times.
func CreateCare(db *storage.DB, reconciler *notify.Reconciler) http.HandlerFunc {
	repo := storage.NewCareRepository(db)
	dogs := storage.NewDogRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)

		var req careRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		c := &models.Care{UserID: userID}
		if msg, ok := req.apply(c); !ok {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, msg)
			return
		}

		dog, err := dogs.GetByID(r.Context(), c.DogID)
		if err != nil || dog == nil || dog.UserID != userID {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Unknown dog_id")
			return
		}

		if err := repo.Create(r.Context(), c); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create care")
			return
		}
		reconciler.ReconcileAsync(userID)
		writeJSON(w, http.StatusCreated, c)
	}
}

// GetCare returns one care routine by id.
func GetCare(db *storage.DB) http.HandlerFunc {
	repo := storage.NewCareRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := repo.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query care")
			return
		}
		if c == nil || c.UserID != middleware.UserID(r) {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Care not found")
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// UpdateCare replaces a care routine, re-deriving window times.
func UpdateCare(db *storage.DB, reconciler *notify.Reconciler) http.HandlerFunc {
	repo := storage.NewCareRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		c, err := repo.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query care")
			return
		}
		if c == nil || c.UserID != userID {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Care not found")
			return
		}

		var req careRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if msg, ok := req.apply(c); !ok {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, msg)
			return
		}

		if err := repo.Update(r.Context(), c); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update care")
			return
		}
		reconciler.ReconcileAsync(userID)
		writeJSON(w, http.StatusOK, c)
	}
}

// DeleteCare deletes a care routine and rebuilds the reminder set.
func DeleteCare(db *storage.DB, reconciler *notify.Reconciler) http.HandlerFunc {
	repo := storage.NewCareRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		c, err := repo.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query care")
			return
		}
		if c == nil || c.UserID != userID {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Care not found")
			return
		}

		if err := repo.Delete(r.Context(), c.ID); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to delete care")
			return
		}
		reconciler.ReconcileAsync(userID)
		w.WriteHeader(http.StatusNoContent)
	}
}
