package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pewos/backend/internal/api/middleware"
	"github.com/pewos/backend/internal/push"
	"github.com/pewos/backend/internal/storage"
	"github.com/pewos/backend/internal/storage/models"
)

type subscriptionRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// VapidPublicKey returns the key browsers need to create a push
// subscription. 404 when push is not configured.
func VapidPublicKey(sender *push.Sender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sender == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Push is not configured")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"public_key": sender.PublicKey()})
	}
}

// SubscribePush stores the caller's push subscription, replacing any
// previous one for the same user.
func SubscribePush(db *storage.DB) http.HandlerFunc {
	repo := storage.NewSubscriptionRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "endpoint and keys are required")
			return
		}

		sub := &models.PushSubscription{
			UserID:   middleware.UserID(r),
			Endpoint: req.Endpoint,
			P256dh:   req.Keys.P256dh,
			Auth:     req.Keys.Auth,
		}
		if err := repo.Upsert(r.Context(), sub); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to store subscription")
			return
		}
		writeJSON(w, http.StatusCreated, sub)
	}
}

// UnsubscribePush removes the caller's push subscription. Removing an
// absent subscription succeeds.
func UnsubscribePush(db *storage.DB) http.HandlerFunc {
	repo := storage.NewSubscriptionRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		if err := repo.Delete(r.Context(), middleware.UserID(r)); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to delete subscription")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
