package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pewos/backend/internal/api/middleware"
	"github.com/pewos/backend/internal/storage"
	"github.com/pewos/backend/internal/storage/models"
)

var completionItemTypes = map[string]bool{
	models.ItemTypeAppointment: true,
	models.ItemTypeMedication:  true,
	models.ItemTypeExercise:    true,
	models.ItemTypeCare:        true,
}

type completionRequest struct {
	ItemType      string `json:"item_type"`
	ItemID        string `json:"item_id"`
	ScheduledTime string `json:"scheduled_time,omitempty"` // "HH:MM", empty for single-occurrence items
	CompletedDate string `json:"completed_date,omitempty"` // "YYYY-MM-DD", defaults to today
}

// CompleteItem marks one occurrence of a care item done. The completion key
// is unique per (item, time, day), so repeating the request only refreshes
// the completed_at stamp.
func CompleteItem(db *storage.DB, loc *time.Location) http.HandlerFunc {
	repo := storage.NewCompletionRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		var req completionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if !completionItemTypes[req.ItemType] {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Unknown item_type")
			return
		}
		if req.ItemID == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "item_id is required")
			return
		}
		if req.ScheduledTime != "" && !validClock(req.ScheduledTime) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Invalid scheduled_time")
			return
		}
		completedDate := req.CompletedDate
		if completedDate == "" {
			completedDate = time.Now().In(loc).Format("2006-01-02")
		} else if _, ok := parseDateField(completedDate); !ok {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Invalid completed_date")
			return
		}

		c := &models.Completion{
			UserID:        middleware.UserID(r),
			ItemType:      req.ItemType,
			ItemID:        req.ItemID,
			ScheduledTime: req.ScheduledTime,
			CompletedDate: completedDate,
		}
		if err := repo.Upsert(r.Context(), c); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to record completion")
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// ListTodayCompletions returns the caller's completions for one day,
// defaulting to today.
func ListTodayCompletions(db *storage.DB, loc *time.Location) http.HandlerFunc {
	repo := storage.NewCompletionRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		day := r.URL.Query().Get("date")
		if day == "" {
			day = time.Now().In(loc).Format("2006-01-02")
		} else if _, ok := parseDateField(day); !ok {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Invalid date")
			return
		}

		list, err := repo.ListByDay(r.Context(), middleware.UserID(r), day)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query completions")
			return
		}
		if list == nil {
			list = []models.Completion{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}
