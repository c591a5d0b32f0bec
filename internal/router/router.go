package router

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/parkeasy/parkeasy-backend/internal/handlers"
	"github.com/parkeasy/parkeasy-backend/internal/models"
	"github.com/parkeasy/parkeasy-backend/internal/service"
	"github.com/parkeasy/parkeasy-backend/internal/websocket"
)

// SetupRouter creates and configures the HTTP router. hub may be nil, in
// which case the websocket endpoint is not registered.
func SetupRouter(h *handlers.Handler, auth service.AuthService, hub *websocket.Hub) *mux.Router {
	r := mux.NewRouter()

	// CORS middleware
	r.Use(corsMiddleware)

	// API routes
	api := r.PathPrefix("/api").Subrouter()

	// Auth
	api.HandleFunc("/auth/signup", h.Signup).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost, http.MethodOptions)

	// Slots
	api.HandleFunc("/slots", h.GetSlots).Methods(http.MethodGet, http.MethodOptions)

	// Reservations
	api.HandleFunc("/reservations", h.GetReservations).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/reservations", h.CreateReservation).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/reservations/conflict", h.CheckConflict).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/reservations/{id}", h.CancelReservation).Methods(http.MethodDelete, http.MethodOptions)

	// Violations and fines
	api.HandleFunc("/violations", h.GetViolations).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/violations", h.ReportViolation).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/users/{id}/fines", h.GetFines).Methods(http.MethodGet, http.MethodOptions)

	// Feedback
	api.HandleFunc("/feedback", h.GetFeedback).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/feedback", h.SubmitFeedback).Methods(http.MethodPost, http.MethodOptions)

	// Owner-only administration
	owner := api.NewRoute().Subrouter()
	owner.Use(requireOwner(auth))
	owner.HandleFunc("/users", h.GetUsers).Methods(http.MethodGet, http.MethodOptions)
	owner.HandleFunc("/users/{id}", h.DeleteUser).Methods(http.MethodDelete, http.MethodOptions)
	owner.HandleFunc("/violations/{id}", h.DeleteViolation).Methods(http.MethodDelete, http.MethodOptions)

	// WebSocket for real-time updates
	if hub != nil {
		api.HandleFunc("/reservations/ws", hub.HandleWebSocket)
	}

	// Health check
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requireOwner validates the bearer token and only lets owner accounts
// through.
func requireOwner(auth service.AuthService) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token := strings.TrimPrefix(header, "Bearer ")
			if header == "" || token == header {
				unauthorized(w, "Missing bearer token")
				return
			}

			user, err := auth.ValidateToken(token)
			if err != nil {
				unauthorized(w, "Invalid token")
				return
			}
			if user.Role != models.RoleOwner {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":"Owner access required"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
