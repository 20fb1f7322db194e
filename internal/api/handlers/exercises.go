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

type exerciseRequest struct {
	DogID                 string  `json:"dog_id"`
	Type                  string  `json:"type"`
	CustomTypeDescription *string `json:"custom_type_description,omitempty"`
	DurationMinutes       int     `json:"duration_minutes"`
	TimesPerDay           int     `json:"times_per_day"`
	StartTime             string  `json:"start_time"` // "HH:MM"
	EndTime               string  `json:"end_time"`   // "HH:MM"
	StartDate             string  `json:"start_date"` // "YYYY-MM-DD"
	IsPermanent           bool    `json:"is_permanent"`
	DurationWeeks         *int    `json:"duration_weeks,omitempty"`
	Notes                 *string `json:"notes,omitempty"`
	IsActive              bool    `json:"is_active"`
	NotificationTime      string  `json:"notification_time"`
}

func (req *exerciseRequest) apply(e *models.Exercise) (string, bool) {
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
	if !req.IsPermanent && (req.DurationWeeks == nil || *req.DurationWeeks < 1) {
		return "duration_weeks is required unless permanent", false
	}

	e.DogID = req.DogID
	e.Type = req.Type
	e.CustomTypeDescription = req.CustomTypeDescription
	e.DurationMinutes = req.DurationMinutes
	e.TimesPerDay = req.TimesPerDay
	e.StartTime = req.StartTime
	e.EndTime = req.EndTime
	e.StartDate = start
	e.IsPermanent = req.IsPermanent
	e.DurationWeeks = nil
	e.EndDate = nil
	if !req.IsPermanent {
		e.DurationWeeks = req.DurationWeeks
		end := start.AddDate(0, 0, *req.DurationWeeks*7-1)
		e.EndDate = &end
	}
	e.Notes = req.Notes
	e.IsActive = req.IsActive
	e.NotificationTime = models.ParseNotificationTime(req.NotificationTime)
	e.ScheduledTimes = schedule.WindowTimes(e.StartTime, e.EndTime, e.TimesPerDay)
	return "", true
}

// ListExercises returns the caller's exercise routines.
func ListExercises(db *storage.DB) http.HandlerFunc {
	repo := storage.NewExerciseRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := repo.ListByUser(r.Context(), middleware.UserID(r))
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query exercises")
			return
		}
		if list == nil {
			list = []models.Exercise{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// CreateExercise creates an exercise routine with derived window times.
func CreateExercise(db *storage.DB, reconciler *notify.Reconciler) http.HandlerFunc {
	repo := storage.NewExerciseRepository(db)
	dogs := storage.NewDogRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)

		var req exerciseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		e := &models.Exercise{UserID: userID}
		if msg, ok := req.apply(e); !ok {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, msg)
			return
		}

		dog, err := dogs.GetByID(r.Context(), e.DogID)
		if err != nil || dog == nil || dog.UserID != userID {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Unknown dog_id")
			return
		}

		if err := repo.Create(r.Context(), e); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create exercise")
			return
		}
		reconciler.ReconcileAsync(userID)
		writeJSON(w, http.StatusCreated, e)
	}
}

// GetExercise returns one exercise routine by id.
func GetExercise(db *storage.DB) http.HandlerFunc {
	repo := storage.NewExerciseRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := repo.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query exercise")
			return
		}
		if e == nil || e.UserID != middleware.UserID(r) {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Exercise not found")
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// UpdateExercise replaces an exercise routine, re-deriving window times.
func UpdateExercise(db *storage.DB, reconciler *notify.Reconciler) http.HandlerFunc {
	repo := storage.NewExerciseRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		e, err := repo.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query exercise")
			return
		}
		if e == nil || e.UserID != userID {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Exercise not found")
			return
		}

		var req exerciseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if msg, ok := req.apply(e); !ok {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, msg)
			return
		}

		if err := repo.Update(r.Context(), e); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update exercise")
			return
		}
		reconciler.ReconcileAsync(userID)
		writeJSON(w, http.StatusOK, e)
	}
}

// DeleteExercise deletes an exercise routine and rebuilds the reminder set.
func DeleteExercise(db *storage.DB, reconciler *notify.Reconciler) http.HandlerFunc {
	repo := storage.NewExerciseRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		e, err := repo.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query exercise")
			return
		}
		if e == nil || e.UserID != userID {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Exercise not found")
			return
		}

		if err := repo.Delete(r.Context(), e.ID); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to delete exercise")
			return
		}
		reconciler.ReconcileAsync(userID)
		w.WriteHeader(http.StatusNoContent)
	}
}
