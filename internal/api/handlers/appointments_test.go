package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/pewos/backend/internal/api/middleware"
	"github.com/pewos/backend/internal/notify"
	"github.com/pewos/backend/internal/schedule"
	"github.com/pewos/backend/internal/storage"
	"github.com/pewos/backend/internal/storage/models"
)

func testDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func appointmentRouter(db *storage.DB) *mux.Router {
	reconciler := notify.NewReconciler(db, notify.NewAgent(nil, nil, nil), time.UTC, nil)
	r := mux.NewRouter()
	authed := r.PathPrefix("/api").Subrouter()
	authed.Use(middleware.RequireUser)
	authed.HandleFunc("/appointments/{id}", GetAppointment(db)).Methods("GET")
	authed.HandleFunc("/appointments/{id}", UpdateAppointment(db, reconciler)).Methods("PUT")
	authed.HandleFunc("/appointments/{id}", DeleteAppointment(db, reconciler)).Methods("DELETE")
	return r
}

func TestAppointmentHandlersResolveOccurrenceIDs(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	dogs := storage.NewDogRepository(db)
	dog := &models.Dog{UserID: "owner", Name: "Luna"}
	if err := dogs.Create(ctx, dog); err != nil {
		t.Fatalf("create dog: %v", err)
	}

	appts := storage.NewAppointmentRepository(db)
	a := &models.Appointment{
		UserID:            "owner",
		DogID:             dog.ID,
		Date:              time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Time:              "10:00",
		Type:              "revisión",
		NotificationTime:  models.Notify30Min,
		RecurrencePattern: models.RecurrenceWeekly,
	}
	if err := appts.Create(ctx, a); err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	router := appointmentRouter(db)
	// A virtual occurrence one week past the stored date
	occ := schedule.OccurrenceID(a.ID, time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC))

	// GET on the synthetic id resolves the base row
	req := httptest.NewRequest("GET", "/api/appointments/"+url.PathEscape(occ), nil)
	req.Header.Set("X-User-ID", "owner")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET occurrence = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var got models.Appointment
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != a.ID {
		t.Errorf("resolved id = %q, want base id %q", got.ID, a.ID)
	}

	// PUT on the synthetic id updates the base row
	body := `{"dog_id":"` + dog.ID + `","date":"2026-03-10","time":"11:30","type":"revisión","notification_time":"30min","recurrence_pattern":"weekly"}`
	req = httptest.NewRequest("PUT", "/api/appointments/"+url.PathEscape(occ), strings.NewReader(body))
	req.Header.Set("X-User-ID", "owner")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("PUT occurrence = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	updated, err := appts.GetByID(ctx, a.ID)
	if err != nil || updated == nil {
		t.Fatalf("reload appointment: %v", err)
	}
	if updated.Time != "11:30" {
		t.Errorf("time after update = %q, want 11:30", updated.Time)
	}

	// DELETE on the synthetic id removes the base row
	req = httptest.NewRequest("DELETE", "/api/appointments/"+url.PathEscape(occ), nil)
	req.Header.Set("X-User-ID", "owner")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("DELETE occurrence = %d, want 204: %s", rr.Code, rr.Body.String())
	}
	gone, err := appts.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("reload appointment: %v", err)
	}
	if gone != nil {
		t.Error("base appointment still present after deleting an occurrence")
	}
}

func TestAppointmentHandlersRejectForeignOccurrence(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	dogs := storage.NewDogRepository(db)
	dog := &models.Dog{UserID: "owner", Name: "Luna"}
	if err := dogs.Create(ctx, dog); err != nil {
		t.Fatalf("create dog: %v", err)
	}
	appts := storage.NewAppointmentRepository(db)
	a := &models.Appointment{
		UserID:            "owner",
		DogID:             dog.ID,
		Date:              time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Time:              "10:00",
		Type:              "revisión",
		RecurrencePattern: models.RecurrenceWeekly,
	}
	if err := appts.Create(ctx, a); err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	router := appointmentRouter(db)
	occ := schedule.OccurrenceID(a.ID, time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC))
	req := httptest.NewRequest("DELETE", "/api/appointments/"+url.PathEscape(occ), nil)
	req.Header.Set("X-User-ID", "intruder")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("foreign DELETE = %d, want 404", rr.Code)
	}
}
