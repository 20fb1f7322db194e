// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pewos/backend/internal/api/handlers"
	"github.com/pewos/backend/internal/api/middleware"
	"github.com/pewos/backend/internal/notify"
	"github.com/pewos/backend/internal/push"
	"github.com/pewos/backend/internal/storage"
	"github.com/pewos/backend/internal/websocket"
)

// Services bundles the long-lived collaborators handlers need.
type Services struct {
	DB         *storage.DB
	Hub        *websocket.Hub
	Agent      *notify.Agent
	Reconciler *notify.Reconciler
	Sender     *push.Sender
	Location   *time.Location
	StaticDir  string
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(s Services) *mux.Router {
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	// API subrouter
	api := r.PathPrefix("/api").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(s.DB)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(s.DB, s.Hub, s.Agent, s.Reconciler)).Methods("GET")

	// WebSocket endpoint for the app shell
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(s.Hub)).Methods("GET")

	// VAPID key is needed before the user can subscribe, no identity required
	api.HandleFunc("/push/key", handlers.VapidPublicKey(s.Sender)).Methods("GET")

	// Everything below is owner-scoped
	authed := api.NewRoute().Subrouter()
	authed.Use(middleware.RequireUser)

	// Dog endpoints
	authed.HandleFunc("/dogs", handlers.ListDogs(s.DB)).Methods("GET")
	authed.HandleFunc("/dogs", handlers.CreateDog(s.DB)).Methods("POST")
	authed.HandleFunc("/dogs/{id}", handlers.GetDog(s.DB)).Methods("GET")
	authed.HandleFunc("/dogs/{id}", handlers.UpdateDog(s.DB)).Methods("PUT")
	authed.HandleFunc("/dogs/{id}", handlers.DeleteDog(s.DB, s.Reconciler)).Methods("DELETE")

	// Appointment endpoints
	authed.HandleFunc("/appointments", handlers.ListAppointments(s.DB)).Methods("GET")
	authed.HandleFunc("/appointments", handlers.CreateAppointment(s.DB, s.Reconciler)).Methods("POST")
	authed.HandleFunc("/appointments/occurrences", handlers.ListAppointmentOccurrences(s.DB)).Methods("GET")
	authed.HandleFunc("/appointments/{id}", handlers.GetAppointment(s.DB)).Methods("GET")
	authed.HandleFunc("/appointments/{id}", handlers.UpdateAppointment(s.DB, s.Reconciler)).Methods("PUT")
	authed.HandleFunc("/appointments/{id}", handlers.DeleteAppointment(s.DB, s.Reconciler)).Methods("DELETE")

	// Medication endpoints
	authed.HandleFunc("/medications", handlers.ListMedications(s.DB)).Methods("GET")
	authed.HandleFunc("/medications", handlers.CreateMedication(s.DB, s.Reconciler)).Methods("POST")
	authed.HandleFunc("/medications/{id}", handlers.GetMedication(s.DB)).Methods("GET")
	authed.HandleFunc("/medications/{id}", handlers.UpdateMedication(s.DB, s.Reconciler)).Methods("PUT")
	authed.HandleFunc("/medications/{id}", handlers.DeleteMedication(s.DB, s.Reconciler)).Methods("DELETE")

	// Exercise endpoints
	authed.HandleFunc("/exercises", handlers.ListExercises(s.DB)).Methods("GET")
	authed.HandleFunc("/exercises", handlers.CreateExercise(s.DB, s.Reconciler)).Methods("POST")
	authed.HandleFunc("/exercises/{id}", handlers.GetExercise(s.DB)).Methods("GET")
	authed.HandleFunc("/exercises/{id}", handlers.UpdateExercise(s.DB, s.Reconciler)).Methods("PUT")
	authed.HandleFunc("/exercises/{id}", handlers.DeleteExercise(s.DB, s.Reconciler)).Methods("DELETE")

	// Care endpoints
	authed.HandleFunc("/cares", handlers.ListCares(s.DB)).Methods("GET")
	authed.HandleFunc("/cares", handlers.CreateCare(s.DB, s.Reconciler)).Methods("POST")
	authed.HandleFunc("/cares/{id}", handlers.GetCare(s.DB)).Methods("GET")
	authed.HandleFunc("/cares/{id}", handlers.UpdateCare(s.DB, s.Reconciler)).Methods("PUT")
	authed.HandleFunc("/cares/{id}", handlers.DeleteCare(s.DB, s.Reconciler)).Methods("DELETE")

	// Meal time endpoints
	authed.HandleFunc("/meal-times", handlers.ListMealTimes(s.DB)).Methods("GET")
	authed.HandleFunc("/meal-times", handlers.CreateMealTime(s.DB)).Methods("POST")
	authed.HandleFunc("/meal-times/{id}", handlers.UpdateMealTime(s.DB, s.Reconciler)).Methods("PUT")
	authed.HandleFunc("/meal-times/{id}", handlers.DeleteMealTime(s.DB, s.Reconciler)).Methods("DELETE")

	// Completion endpoints
	authed.HandleFunc("/completions", handlers.CompleteItem(s.DB, s.Location)).Methods("POST")
	authed.HandleFunc("/completions/today", handlers.ListTodayCompletions(s.DB, s.Location)).Methods("GET")

	// Push subscription endpoints
	authed.HandleFunc("/push/subscription", handlers.SubscribePush(s.DB)).Methods("POST")
	authed.HandleFunc("/push/subscription", handlers.UnsubscribePush(s.DB)).Methods("DELETE")

	// Shared access endpoints
	authed.HandleFunc("/shared-access", handlers.ListSharedAccess(s.DB)).Methods("GET")
	authed.HandleFunc("/shared-access", handlers.CreateSharedAccess(s.DB)).Methods("POST")
	authed.HandleFunc("/shared-access/invitations", handlers.ListSharedInvitations(s.DB)).Methods("GET")
	authed.HandleFunc("/shared-access/{id}/respond", handlers.RespondSharedAccess(s.DB)).Methods("POST")
	authed.HandleFunc("/shared-access/{id}", handlers.DeleteSharedAccess(s.DB)).Methods("DELETE")

	// Reminder control endpoints
	authed.HandleFunc("/reminders", handlers.RemindersStatus(s.Agent, s.Reconciler)).Methods("GET")
	authed.HandleFunc("/reminders/enabled", handlers.SetRemindersEnabled(s.Reconciler)).Methods("PUT")
	authed.HandleFunc("/reminders/reconcile", handlers.ReconcileReminders(s.Reconciler)).Methods("POST")

	// Serve static frontend files
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.StaticDir)))

	return r
}
