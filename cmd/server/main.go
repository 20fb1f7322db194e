// Package main is the entry point for the Pewos pet care reminder server.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pewos/backend/internal/api"
	"github.com/pewos/backend/internal/notify"
	"github.com/pewos/backend/internal/push"
	"github.com/pewos/backend/internal/storage"
	"github.com/pewos/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

func main() {
	// Parse command-line flags
	addr := flag.String("addr", ":8095", "HTTP server address")
	dataDir := flag.String("data", "/data", "Data directory for SQLite database")
	staticDir := flag.String("static", "./static", "Directory for static frontend files")
	tzName := flag.String("tz", "Europe/Madrid", "Timezone for reminder scheduling")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(*addr); err != nil {
			log.Fatalf("Health check failed: %v", err)
		}
		os.Exit(0)
	}

	if envVer := os.Getenv("VERSION"); envVer != "" {
		version = envVer
	}

	log.Printf("Starting Pewos server (version: %s)...", version)

	// VAPID keys live in the environment, optionally via a .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env: %v", err)
	}

	loc, err := time.LoadLocation(*tzName)
	if err != nil {
		log.Fatalf("Invalid timezone %q: %v", *tzName, err)
	}

	// Initialize database
	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory %q: %v", *dataDir, err)
	}
	dbPath := *dataDir + "/pewos.db"
	db, err := storage.NewDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := storage.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations complete")

	// Initialize WebSocket hub (the local reminder display surface)
	hub := websocket.NewHub()
	go hub.Run()

	// Delivery agent and reconciler
	agent := notify.NewAgent(notify.NewHubDisplayer(hub, "/"), nil, nil)
	reconciler := notify.NewReconciler(db, agent, loc, nil)
	reconciler.OnReplace = func(userID string, count int) {
		if err := websocket.BroadcastScheduleReplaced(hub, userID, count); err != nil {
			log.Printf("Failed to announce schedule swap: %v", err)
		}
	}

	// Web push is optional; without VAPID keys the batch notifier computes
	// but does not send
	var sender *push.Sender
	if s, err := push.NewSenderFromEnv(); err != nil {
		log.Printf("Web push disabled: %v", err)
	} else {
		sender = s
	}

	// Batch notifier
	var batchSender notify.PushSender
	if sender != nil {
		batchSender = sender
	}
	batch := notify.NewBatch(db, reconciler, batchSender, loc, nil)
	if err := batch.Start(); err != nil {
		log.Printf("Warning: Failed to start push batch notifier: %v", err)
	}

	// Arm today's reminders and keep them fresh across midnight
	reconciler.ReconcileAsync("")
	if err := reconciler.StartDailyRollover(); err != nil {
		log.Printf("Warning: Failed to start daily rollover: %v", err)
	}

	// Initialize HTTP router with services
	router := api.NewRouter(api.Services{
		DB:         db,
		Hub:        hub,
		Agent:      agent,
		Reconciler: reconciler,
		Sender:     sender,
		Location:   loc,
		StaticDir:  *staticDir,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("Server listening on %s", *addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Stop background work
	batch.Stop()
	reconciler.StopDailyRollover()
	agent.Clear()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	url := "http://localhost" + addr + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return http.ErrAbortHandler
	}
	return nil
}
