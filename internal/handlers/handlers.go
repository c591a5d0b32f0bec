package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/parkeasy/parkeasy-backend/internal/models"
	"github.com/parkeasy/parkeasy-backend/internal/service"
	"github.com/parkeasy/parkeasy-backend/internal/store"
)

// Handler contains HTTP handlers for the API
type Handler struct {
	reservations service.ReservationService
	auth         service.AuthService
	violations   service.ViolationService
	feedback     service.FeedbackService
}

// NewHandler creates a new Handler instance
func NewHandler(reservations service.ReservationService, auth service.AuthService, violations service.ViolationService, feedback service.FeedbackService) *Handler {
	return &Handler{
		reservations: reservations,
		auth:         auth,
		violations:   violations,
		feedback:     feedback,
	}
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// --- Reservations ---

// GetReservations handles GET /api/reservations
func (h *Handler) GetReservations(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.reservations.ListReservations(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load reservations")
		return
	}
	respondJSON(w, http.StatusOK, reservations)
}

// CreateReservation handles POST /api/reservations
func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req models.CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "User ID is required")
		return
	}
	if req.SlotID == "" {
		respondError(w, http.StatusBadRequest, "Slot ID is required")
		return
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		respondError(w, http.StatusBadRequest, "Start and end time are required")
		return
	}
	if !req.StartTime.Before(req.EndTime) {
		respondError(w, http.StatusBadRequest, "Start time must be before end time")
		return
	}

	created, err := h.reservations.CreateReservation(r.Context(), &req)
	if err != nil {
		var conflict *service.ConflictError
		switch {
		case errors.As(err, &conflict):
			respondJSON(w, http.StatusConflict, models.ConflictResponse{
				Conflict:    true,
				Reservation: conflict.Existing,
			})
		case errors.Is(err, service.ErrSlotUnknown):
			respondError(w, http.StatusNotFound, "Slot not found")
		default:
			respondError(w, http.StatusInternalServerError, "Failed to create reservation")
		}
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// CancelReservation handles DELETE /api/reservations/{id}
func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	removed, err := h.reservations.CancelReservation(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to cancel reservation")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": removed})
}

// CheckConflict handles GET /api/reservations/conflict?slotId=&start=&end=
func (h *Handler) CheckConflict(w http.ResponseWriter, r *http.Request) {
	slotID := r.URL.Query().Get("slotId")
	if slotID == "" {
		respondError(w, http.StatusBadRequest, "Slot ID is required")
		return
	}
	start, end, ok := parseWindow(w, r)
	if !ok {
		return
	}

	probe, err := h.reservations.CheckConflict(r.Context(), slotID, start, end)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to check availability")
		return
	}
	respondJSON(w, http.StatusOK, probe)
}

// GetSlots handles GET /api/slots?start=&end=
func (h *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	// Without a window, report the catalog as of now with a zero-length
	// probe one hour wide.
	start := time.Now()
	end := start.Add(time.Hour)
	if r.URL.Query().Get("start") != "" || r.URL.Query().Get("end") != "" {
		var ok bool
		start, end, ok = parseWindow(w, r)
		if !ok {
			return
		}
	}

	statuses, err := h.reservations.GetSlotStatuses(r.Context(), start, end)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load slots")
		return
	}
	respondJSON(w, http.StatusOK, statuses)
}

func parseWindow(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid start time")
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid end time")
		return time.Time{}, time.Time{}, false
	}
	if !start.Before(end) {
		respondError(w, http.StatusBadRequest, "Start time must be before end time")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// --- Auth ---

// Signup handles POST /api/auth/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" || req.Username == "" {
		respondError(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}

	resp, err := h.auth.Signup(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			respondError(w, http.StatusConflict, "An account with this email already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// --- Users ---

// GetUsers handles GET /api/users
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.auth.ListUsers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// DeleteUser handles DELETE /api/users/{id}. Removing an account cascades
// to its reservations, violations and feedback.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	deleted, err := h.auth.DeleteUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	if _, err := h.reservations.DeleteUserReservations(r.Context(), deleted.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete user reservations")
		return
	}
	if _, err := h.violations.DeleteUserViolations(r.Context(), deleted.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete user violations")
		return
	}
	if _, err := h.feedback.DeleteFeedbackByEmail(r.Context(), deleted.Email); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete user feedback")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// --- Violations ---

// GetViolations handles GET /api/violations
func (h *Handler) GetViolations(w http.ResponseWriter, r *http.Request) {
	violations, err := h.violations.ListViolations(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load violations")
		return
	}
	respondJSON(w, http.StatusOK, violations)
}

// ReportViolation handles POST /api/violations
func (h *Handler) ReportViolation(w http.ResponseWriter, r *http.Request) {
	var req models.ReportViolationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SlotNumber == "" {
		respondError(w, http.StatusBadRequest, "Slot number is required")
		return
	}
	if req.LicensePlate == "" && req.ImageDataURI == "" {
		respondError(w, http.StatusBadRequest, "A license plate or photo is required")
		return
	}

	recorded, err := h.violations.ReportViolation(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlateUnreadable):
			respondError(w, http.StatusUnprocessableEntity, "Could not read a license plate from the photo")
		case errors.Is(err, service.ErrNoViolation):
			respondError(w, http.StatusConflict, "Vehicle has a valid reservation for this slot")
		default:
			respondError(w, http.StatusInternalServerError, "Failed to record violation")
		}
		return
	}
	respondJSON(w, http.StatusCreated, recorded)
}

// DeleteViolation handles DELETE /api/violations/{id}
func (h *Handler) DeleteViolation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.violations.DeleteViolation(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Violation not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to delete violation")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetFines handles GET /api/users/{id}/fines
func (h *Handler) GetFines(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	fines, err := h.violations.FinesForUser(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load fines")
		return
	}
	respondJSON(w, http.StatusOK, fines)
}

// --- Feedback ---

// GetFeedback handles GET /api/feedback
func (h *Handler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	entries, err := h.feedback.ListFeedback(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load feedback")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// SubmitFeedback handles POST /api/feedback
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "Email is required")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		respondError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	entry, err := h.feedback.SubmitFeedback(r.Context(), &req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save feedback")
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
