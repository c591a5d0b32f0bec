package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.temporal.io/sdk/client"

	"github.com/parkeasy/parkeasy-backend/internal/config"
	"github.com/parkeasy/parkeasy-backend/internal/handlers"
	"github.com/parkeasy/parkeasy-backend/internal/router"
	"github.com/parkeasy/parkeasy-backend/internal/service"
	"github.com/parkeasy/parkeasy-backend/internal/store"
	"github.com/parkeasy/parkeasy-backend/internal/websocket"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	// File-backed collections hold everything by default; reservations can
	// move to Postgres with DATABASE_URL.
	stores := store.NewFileStores(cfg.DataDir)
	var reservationStore store.ReservationStore = stores.Reservations

	if cfg.DatabaseURL != "" {
		log.Println("Connecting to database...")
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			log.Fatalf("Failed to ping database: %v", err)
		}

		pgStore, err := store.NewPostgresReservationStore(ctx, pool)
		if err != nil {
			log.Fatalf("Failed to set up reservation store: %v", err)
		}
		reservationStore = pgStore
		log.Println("Using Postgres for reservations")
	}

	// Temporal is optional; without it violation reports are processed
	// inline.
	var temporalClient client.Client
	if cfg.TemporalHost != "" {
		c, err := client.Dial(client.Options{HostPort: cfg.TemporalHost})
		if err != nil {
			log.Printf("Warning: could not connect to Temporal at %s, processing reports inline: %v", cfg.TemporalHost, err)
		} else {
			temporalClient = c
			defer c.Close()
			log.Printf("Connected to Temporal at %s", cfg.TemporalHost)
		}
	}

	hub := websocket.NewHub()
	go hub.Run()

	reservationService := service.NewReservationService(reservationStore, hub)
	authService := service.NewAuthService(stores.Users, cfg.JWTSecret, cfg.JWTExpiration)
	violationService := service.NewViolationService(stores.Violations, reservationStore, nil, temporalClient)
	feedbackService := service.NewFeedbackService(stores.Feedback)

	h := handlers.NewHandler(reservationService, authService, violationService, feedbackService)
	r := router.SetupRouter(h, authService, hub)

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("API server starting on port %s", cfg.APIPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
