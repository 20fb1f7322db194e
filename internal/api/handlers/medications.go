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

type medicationRequest struct {
	DogID            string   `json:"dog_id"`
	Name             string   `json:"name"`
	Dosage           string   `json:"dosage"`
	ScheduleType     string   `json:"schedule_type"`
	FrequencyHours   *int     `json:"frequency_hours,omitempty"`
	StartTime        *string  `json:"start_time,omitempty"`
	MealIDs          []string `json:"meal_ids"`
	DurationDays     int      `json:"duration_days"` // 0 = continuous
	StartDate        string   `json:"start_date"`    // "YYYY-MM-DD"
	Notes            *string  `json:"notes,omitempty"`
	IsActive         bool     `json:"is_active"`
	NotificationTime string   `json:"notification_time"`
}

func (req *medicationRequest) apply(m *models.Medication) (string, bool) {
	if req.DogID == "" {
		return "dog_id is required", false
	}
	if req.Name == "" {
		return "Name is required", false
	}
	start, ok := parseDateField(req.StartDate)
	if !ok {
		return "Invalid start_date", false
	}

	switch req.ScheduleType {
	case models.ScheduleTypeHours:
		if req.FrequencyHours == nil || *req.FrequencyHours < 1 {
			return "frequency_hours is required for hourly schedules", false
		}
		if req.StartTime == nil || !validClock(*req.StartTime) {
			return "Valid start_time is required for hourly schedules", false
		}
	case models.ScheduleTypeMeals:
		if len(req.MealIDs) == 0 {
			return "meal_ids is required for meal schedules", false
		}
	default:
		return "schedule_type must be hours or meals", false
	}
	if req.DurationDays < 0 {
		return "duration_days must not be negative", false
	}

	m.DogID = req.DogID
	m.Name = req.Name
	m.Dosage = req.Dosage
	m.ScheduleType = req.ScheduleType
	m.FrequencyHours = req.FrequencyHours
	m.StartTime = req.StartTime
	m.MealIDs = req.MealIDs
	m.DurationDays = req.DurationDays
	m.StartDate = start
	m.EndDate = start
	if req.DurationDays > 0 {
		m.EndDate = start.AddDate(0, 0, req.DurationDays-1)
	}
	m.Notes = req.Notes
	m.IsActive = req.IsActive
	m.NotificationTime = models.ParseNotificationTime(req.NotificationTime)
	return "", true
}

// refreshMedicationTimes recomputes the derived dose times against the
// owner's current meal anchors.
func refreshMedicationTimes(r *http.Request, db *storage.DB, m *models.Medication) error {
	meals, err := storage.NewMealTimeRepository(db).ListByUser(r.Context(), m.UserID)
	if err != nil {
		return err
	}
	m.ScheduledTimes = schedule.MedicationTimes(m, meals)
	return nil
}

// ListMedications returns the caller's medications.
func ListMedications(db *storage.DB) http.HandlerFunc {
	repo := storage.NewMedicationRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := repo.ListByUser(r.Context(), middleware.UserID(r))
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query medications")
			return
		}
		if list == nil {
			list = []models.Medication{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// CreateMedication creates a medication with freshly derived dose times.
func CreateMedication(db *storage.DB, reconciler *notify.Reconciler) http.HandlerFunc {
	repo := storage.NewMedicationRepository(db)
	dogs := storage.NewDogRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)

		var req medicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		m := &models.Medication{UserID: userID}
		if msg, ok := req.apply(m); !ok {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, msg)
			return
		}

		dog, err := dogs.GetByID(r.Context(), m.DogID)
		if err != nil || dog == nil || dog.UserID != userID {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Unknown dog_id")
			return
		}

		if err := refreshMedicationTimes(r, db, m); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to derive schedule")
			return
		}
		if err := repo.Create(r.Context(), m); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create medication")
			return
		}
		reconciler.ReconcileAsync(userID)
		writeJSON(w, http.StatusCreated, m)
	}
}

// GetMedication returns one medication by id.
func GetMedication(db *storage.DB) http.HandlerFunc {
	repo := storage.NewMedicationRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := repo.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query medication")
			return
		}
		if m == nil || m.UserID != middleware.UserID(r) {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Medication not found")
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

// UpdateMedication replaces a medication, re-deriving its dose times.
func UpdateMedication(db *storage.DB, reconciler *notify.Reconciler) http.HandlerFunc {
	repo := storage.NewMedicationRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		m, err := repo.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query medication")
			return
		}
		if m == nil || m.UserID != userID {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Medication not found")
			return
		}

		var req medicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if msg, ok := req.apply(m); !ok {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, msg)
			return
		}

		if err := refreshMedicationTimes(r, db, m); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to derive schedule")
			return
		}
		if err := repo.Update(r.Context(), m); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update medication")
			return
		}
		reconciler.ReconcileAsync(userID)
		writeJSON(w, http.StatusOK, m)
	}
}

// DeleteMedication deletes a medication and rebuilds the reminder set.
func DeleteMedication(db *storage.DB, reconciler *notify.Reconciler) http.HandlerFunc {
	repo := storage.NewMedicationRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		m, err := repo.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query medication")
			return
		}
		if m == nil || m.UserID != userID {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Medication not found")
			return
		}

		if err := repo.Delete(r.Context(), m.ID); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to delete medication")
			return
		}
		reconciler.ReconcileAsync(userID)
		w.WriteHeader(http.StatusNoContent)
	}
}
