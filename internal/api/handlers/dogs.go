package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pewos/backend/internal/api/middleware"
	"github.com/pewos/backend/internal/notify"
	"github.com/pewos/backend/internal/storage"
	"github.com/pewos/backend/internal/storage/models"
)

type dogRequest struct {
	Name       string `json:"name"`
	Breed      string `json:"breed"`
	BirthDate  string `json:"birth_date,omitempty"` // "YYYY-MM-DD"
	Gender     string `json:"gender"`
	IsNeutered bool   `json:"is_neutered"`
}

// ListDogs returns the caller's own dogs plus the dogs of every owner who
// granted them accepted shared access.
func ListDogs(db *storage.DB) http.HandlerFunc {
	repo := storage.NewDogRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		dogs, err := repo.ListVisibleTo(r.Context(), middleware.UserID(r))
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query dogs")
			return
		}
		if dogs == nil {
			dogs = []models.Dog{}
		}
		writeJSON(w, http.StatusOK, dogs)
	}
}

// CreateDog creates a dog profile.
func CreateDog(db *storage.DB) http.HandlerFunc {
	repo := storage.NewDogRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		var req dogRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.Name == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Name is required")
			return
		}

		dog := &models.Dog{
			ID:         storage.GenerateID(),
			UserID:     middleware.UserID(r),
			Name:       req.Name,
			Breed:      req.Breed,
			Gender:     req.Gender,
			IsNeutered: req.IsNeutered,
		}
		if req.BirthDate != "" {
			bd, ok := parseDateField(req.BirthDate)
			if !ok {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Invalid birth_date")
				return
			}
			dog.BirthDate = &bd
		}

		if err := repo.Create(r.Context(), dog); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create dog")
			return
		}
		writeJSON(w, http.StatusCreated, dog)
	}
}

// GetDog returns one dog by id.
func GetDog(db *storage.DB) http.HandlerFunc {
	repo := storage.NewDogRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		dog, err := repo.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query dog")
			return
		}
		if dog == nil || dog.UserID != middleware.UserID(r) {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Dog not found")
			return
		}
		writeJSON(w, http.StatusOK, dog)
	}
}

// UpdateDog updates a dog profile.
func UpdateDog(db *storage.DB) http.HandlerFunc {
	repo := storage.NewDogRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		dog, err := repo.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query dog")
			return
		}
		if dog == nil || dog.UserID != middleware.UserID(r) {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Dog not found")
			return
		}

		var req dogRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.Name == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Name is required")
			return
		}

		dog.Name = req.Name
		dog.Breed = req.Breed
		dog.Gender = req.Gender
		dog.IsNeutered = req.IsNeutered
		dog.BirthDate = nil
		if req.BirthDate != "" {
			bd, ok := parseDateField(req.BirthDate)
			if !ok {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Invalid birth_date")
				return
			}
			dog.BirthDate = &bd
		}
		dog.UpdatedAt = time.Now().UTC()

		if err := repo.Update(r.Context(), dog); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update dog")
			return
		}
		writeJSON(w, http.StatusOK, dog)
	}
}

// DeleteDog deletes a dog and, through foreign keys, every care item
// attached to it, so the reminder schedule is rebuilt afterwards.
func DeleteDog(db *storage.DB, reconciler *notify.Reconciler) http.HandlerFunc {
	repo := storage.NewDogRepository(db)
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		dog, err := repo.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query dog")
			return
		}
		if dog == nil || dog.UserID != userID {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Dog not found")
			return
		}

		if err := repo.Delete(r.Context(), dog.ID); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to delete dog")
			return
		}
		reconciler.ReconcileAsync(userID)
		w.WriteHeader(http.StatusNoContent)
	}
}
