package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pewos/backend/internal/api/middleware"
	"github.com/pewos/backend/internal/notify"
	"github.com/pewos/backend/internal/schedule"
	"github.com/pewos/backend/internal/storage"
	"github.com/pewos/backend/internal/storage/models"
)

type mealTimeRequest struct {
	Name      string `json:"name"`
	Time      string `json:"time"` // "HH:MM"
	SortOrder int    `json:"sort_order"`
}

// refreshAnchoredMedications recomputes the derived times of every
// medication anchored to the given meal. Meal edits and deletions shift or
// drop those dose times.
func refreshAnchoredMedications(r *http.Request, db *storage.DB, userID, mealID string) error {
	medications := storage.NewMedicationRepository(db)
	mealTimes := storage.NewMealTimeRepository(db)

	anchored, err := medications.ListByMealTime(r.Context(), userID, mealID)
	if err != nil {
		return err
	}
	if len(anchored) == 0 {
		return nil
	}
	meals, err := mealTimes.ListByUser(r.Context(), userID)
	if err != nil {
		return err
	}
	for i := range anchored {
		m := &anchored[i]
		m.ScheduledTimes = schedule.MedicationTimes(m, meals)
		m.UpdatedAt = time.Now().UTC()
		if err := medications.Update(r.Context(), m); err != nil {
			return err
		}
	}
	return nil
}

// ListMealTimes returns the caller's meal anchors in display order.
func ListMealTimes(db *storage.DB) http.HandlerFunc {
	repo := storage.NewMealTimeRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := repo.ListByUser(r.Context(), middleware.UserID(r))
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query meal times")
			return
		}
		if list == nil {
			list = []models.MealTime{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// CreateMealTime creates a meal anchor.
func CreateMealTime(db *storage.DB) http.HandlerFunc {
	repo := storage.NewMealTimeRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		var req mealTimeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.Name == "" || !validClock(req.Time) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Name and a valid time are required")
			return
		}

		m := &models.MealTime{
			UserID:    middleware.UserID(r),
			Name:      req.Name,
			Time:      req.Time,
			SortOrder: req.SortOrder,
		}
		if err := repo.Create(r.Context(), m); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create meal time")
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

// UpdateMealTime updates a meal anchor and ripples the change into every
// medication anchored to it, then rebuilds the reminder set.
func UpdateMealTime(db *storage.DB, reconciler *notify.Reconciler) http.HandlerFunc {
	repo := storage.NewMealTimeRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		m, err := repo.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query meal time")
			return
		}
		if m == nil || m.UserID != userID {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Meal time not found")
			return
		}

		var req mealTimeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.Name == "" || !validClock(req.Time) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Name and a valid time are required")
			return
		}

		m.Name = req.Name
		m.Time = req.Time
		m.SortOrder = req.SortOrder
		m.UpdatedAt = time.Now().UTC()
		if err := repo.Update(r.Context(), m); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update meal time")
			return
		}

		if err := refreshAnchoredMedications(r, db, userID, m.ID); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to refresh anchored medications")
			return
		}
		reconciler.ReconcileAsync(userID)
		writeJSON(w, http.StatusOK, m)
	}
}

// DeleteMealTime removes a meal anchor. Medications that referenced it keep
// their remaining anchors; the dangling reference drops from their derived
// times.
func DeleteMealTime(db *storage.DB, reconciler *notify.Reconciler) http.HandlerFunc {
	repo := storage.NewMealTimeRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		m, err := repo.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query meal time")
			return
		}
		if m == nil || m.UserID != userID {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Meal time not found")
			return
		}

		if err := repo.Delete(r.Context(), m.ID); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to delete meal time")
			return
		}
		if err := refreshAnchoredMedications(r, db, userID, m.ID); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to refresh anchored medications")
			return
		}
		reconciler.ReconcileAsync(userID)
		w.WriteHeader(http.StatusNoContent)
	}
}
