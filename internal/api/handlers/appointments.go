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

type appointmentRequest struct {
	DogID                 string  `json:"dog_id"`
	Date                  string  `json:"date"` // "YYYY-MM-DD"
	Time                  string  `json:"time"` // "HH:MM"
	Type                  string  `json:"type"`
	CustomTypeDescription *string `json:"custom_type_description,omitempty"`
	Notes                 *string `json:"notes,omitempty"`
	NotificationTime      string  `json:"notification_time"`
	RecurrencePattern     string  `json:"recurrence_pattern"`
	RecurrenceEndDate     string  `json:"recurrence_end_date,omitempty"` // "YYYY-MM-DD"
}

// apply validates the request and writes it onto a, reporting the first
// validation problem.
func (req *appointmentRequest) apply(a *models.Appointment) (string, bool) {
	if req.DogID == "" {
		return "dog_id is required", false
	}
	date, ok := parseDateField(req.Date)
	if !ok {
		return "Invalid date", false
	}
	if !validClock(req.Time) {
		return "Invalid time", false
	}
	if req.Type == "" {
		return "Type is required", false
	}

	a.DogID = req.DogID
	a.Date = date
	a.Time = req.Time
	a.Type = req.Type
	a.CustomTypeDescription = req.CustomTypeDescription
	a.Notes = req.Notes
	a.NotificationTime = models.ParseNotificationTime(req.NotificationTime)
	a.RecurrencePattern = models.ParseRecurrencePattern(req.RecurrencePattern)
	a.RecurrenceEndDate = nil
	if req.RecurrenceEndDate != "" {
		end, ok := parseDateField(req.RecurrenceEndDate)
		if !ok {
			return "Invalid recurrence_end_date", false
		}
		if end.Before(date) {
			return "recurrence_end_date is before date", false
		}
		a.RecurrenceEndDate = &end
	}
	return "", true
}

// ListAppointments returns the caller's appointments.
func ListAppointments(db *storage.DB) http.HandlerFunc {
	repo := storage.NewAppointmentRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := repo.ListByUser(r.Context(), middleware.UserID(r))
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query appointments")
			return
		}
		if list == nil {
			list = []models.Appointment{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// OccurrenceResponse is one concrete date of a possibly recurring
// appointment. Recurring dates past the first carry a synthetic id.
type OccurrenceResponse struct {
	ID          string             `json:"id"`
	Appointment models.Appointment `json:"appointment"`
	Date        string             `json:"date"` // "YYYY-MM-DD"
}

// ListAppointmentOccurrences expands the caller's appointments over the
// [from, to] date range for calendar views.
func ListAppointmentOccurrences(db *storage.DB) http.HandlerFunc {
	repo := storage.NewAppointmentRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		from, okFrom := parseDateField(r.URL.Query().Get("from"))
		to, okTo := parseDateField(r.URL.Query().Get("to"))
		if !okFrom || !okTo || to.Before(from) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Invalid from/to range")
			return
		}

		list, err := repo.ListByUser(r.Context(), middleware.UserID(r))
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query appointments")
			return
		}

		out := []OccurrenceResponse{}
		for i := range list {
			a := &list[i]
			if !a.Recurs() {
				day := schedule.DateOnly(a.Date)
				if !day.Before(from) && !day.After(to) {
					out = append(out, OccurrenceResponse{
						ID:          a.ID,
						Appointment: *a,
						Date:        day.Format("2006-01-02"),
					})
				}
				continue
			}
			for _, occ := range schedule.Expand(a, from, to) {
				out = append(out, OccurrenceResponse{
					ID:          occ.ID,
					Appointment: *occ.Appointment,
					Date:        occ.Date.Format("2006-01-02"),
				})
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// appointmentID resolves the id path variable to the stored appointment id.
// Calendar views hand out synthetic occurrence ids for virtual dates of a
// recurring appointment; edit and delete on those map back to the base row.
func appointmentID(r *http.Request) string {
	base, _, _ := schedule.SplitOccurrenceID(mux.Vars(r)["id"])
	return base
}

// CreateAppointment creates an appointment and rebuilds the reminder set.
func CreateAppointment(db *storage.DB, reconciler *notify.Reconciler) http.HandlerFunc {
	repo := storage.NewAppointmentRepository(db)
	dogs := storage.NewDogRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)

		var req appointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		a := &models.Appointment{ID: storage.GenerateID(), UserID: userID}
		if msg, ok := req.apply(a); !ok {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, msg)
			return
		}

		dog, err := dogs.GetByID(r.Context(), a.DogID)
		if err != nil || dog == nil || dog.UserID != userID {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Unknown dog_id")
			return
		}

		if err := repo.Create(r.Context(), a); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create appointment")
			return
		}
		reconciler.ReconcileAsync(userID)
		writeJSON(w, http.StatusCreated, a)
	}
}

// GetAppointment returns one appointment by id.
func GetAppointment(db *storage.DB) http.HandlerFunc {
	repo := storage.NewAppointmentRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := repo.GetByID(r.Context(), appointmentID(r))
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query appointment")
			return
		}
		if a == nil || a.UserID != middleware.UserID(r) {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Appointment not found")
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// UpdateAppointment replaces an appointment and rebuilds the reminder set.
func UpdateAppointment(db *storage.DB, reconciler *notify.Reconciler) http.HandlerFunc {
	repo := storage.NewAppointmentRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		a, err := repo.GetByID(r.Context(), appointmentID(r))
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query appointment")
			return
		}
		if a == nil || a.UserID != userID {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Appointment not found")
			return
		}

		var req appointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if msg, ok := req.apply(a); !ok {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, msg)
			return
		}
		a.UpdatedAt = time.Now().UTC()

		if err := repo.Update(r.Context(), a); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update appointment")
			return
		}
		reconciler.ReconcileAsync(userID)
		writeJSON(w, http.StatusOK, a)
	}
}

// DeleteAppointment deletes an appointment and rebuilds the reminder set.
func DeleteAppointment(db *storage.DB, reconciler *notify.Reconciler) http.HandlerFunc {
	repo := storage.NewAppointmentRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		a, err := repo.GetByID(r.Context(), appointmentID(r))
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query appointment")
			return
		}
		if a == nil || a.UserID != userID {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Appointment not found")
			return
		}

		if err := repo.Delete(r.Context(), a.ID); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to delete appointment")
			return
		}
		reconciler.ReconcileAsync(userID)
		w.WriteHeader(http.StatusNoContent)
	}
}
