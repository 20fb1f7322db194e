package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/pewos/backend/internal/api/middleware"
	"github.com/pewos/backend/internal/storage"
	"github.com/pewos/backend/internal/storage/models"
)

type sharedAccessRequest struct {
	OwnerEmail      string `json:"owner_email"`
	SharedWithEmail string `json:"shared_with_email"`
}

type sharedAccessResponseRequest struct {
	Status string `json:"status"` // accepted | rejected
}

// CreateSharedAccess invites another user, by email, to follow the caller's
// dogs. The grant stays pending until the invitee responds.
func CreateSharedAccess(db *storage.DB) http.HandlerFunc {
	repo := storage.NewSharedAccessRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		var req sharedAccessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		req.SharedWithEmail = strings.ToLower(strings.TrimSpace(req.SharedWithEmail))
		if req.SharedWithEmail == "" || !strings.Contains(req.SharedWithEmail, "@") {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "A valid shared_with_email is required")
			return
		}

		s := &models.SharedAccess{
			OwnerID:         middleware.UserID(r),
			OwnerEmail:      strings.ToLower(strings.TrimSpace(req.OwnerEmail)),
			SharedWithEmail: req.SharedWithEmail,
			Status:          models.SharedStatusPending,
		}
		if err := repo.Create(r.Context(), s); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create shared access")
			return
		}
		writeJSON(w, http.StatusCreated, s)
	}
}

// ListSharedAccess returns the grants the caller owns.
func ListSharedAccess(db *storage.DB) http.HandlerFunc {
	repo := storage.NewSharedAccessRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := repo.ListByOwner(r.Context(), middleware.UserID(r))
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query shared access")
			return
		}
		if list == nil {
			list = []models.SharedAccess{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// ListSharedInvitations returns the grants addressed to the caller, matched
// by recipient id or by the email query parameter.
func ListSharedInvitations(db *storage.DB) http.HandlerFunc {
	repo := storage.NewSharedAccessRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		email := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("email")))
		list, err := repo.ListForRecipient(r.Context(), middleware.UserID(r), email)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query invitations")
			return
		}
		if list == nil {
			list = []models.SharedAccess{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// RespondSharedAccess lets the invitee accept or reject a grant. Accepting
// binds the caller's user id to the grant, which turns on notification
// fan-out for the owner's reminders.
func RespondSharedAccess(db *storage.DB) http.HandlerFunc {
	repo := storage.NewSharedAccessRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		s, err := repo.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query shared access")
			return
		}
		if s == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Shared access not found")
			return
		}
		if s.OwnerID == userID {
			middleware.WriteError(w, http.StatusForbidden, middleware.ErrForbidden, "Owners cannot respond to their own invitation")
			return
		}
		if s.Status != models.SharedStatusPending {
			middleware.WriteError(w, http.StatusConflict, middleware.ErrConflict, "Invitation was already answered")
			return
		}

		var req sharedAccessResponseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.Status != models.SharedStatusAccepted && req.Status != models.SharedStatusRejected {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "status must be accepted or rejected")
			return
		}

		if err := repo.SetStatus(r.Context(), s.ID, req.Status, &userID); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update shared access")
			return
		}
		s.Status = req.Status
		s.SharedWithID = &userID
		writeJSON(w, http.StatusOK, s)
	}
}

// DeleteSharedAccess revokes a grant. Both the owner and the invitee may
// remove it.
func DeleteSharedAccess(db *storage.DB) http.HandlerFunc {
	repo := storage.NewSharedAccessRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		s, err := repo.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query shared access")
			return
		}
		if s == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Shared access not found")
			return
		}
		if s.OwnerID != userID && (s.SharedWithID == nil || *s.SharedWithID != userID) {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Shared access not found")
			return
		}

		if err := repo.Delete(r.Context(), s.ID); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to delete shared access")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
