package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parkeasy/parkeasy-backend/internal/models"
	"github.com/parkeasy/parkeasy-backend/internal/plate"
	"github.com/parkeasy/parkeasy-backend/internal/schedule"
	"github.com/parkeasy/parkeasy-backend/internal/store"
)

var ErrSlotUnknown = errors.New("unknown slot")

// ConflictError is returned when a requested window overlaps an existing
// reservation on the same slot.
type ConflictError struct {
	Existing *models.Reservation
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot %s already reserved from %s to %s",
		e.Existing.SlotID,
		e.Existing.StartTime.Format(time.RFC3339),
		e.Existing.EndTime.Format(time.RFC3339))
}

// Broadcaster pushes reservation change events to connected clients. The
// websocket hub implements it; a nil broadcaster disables push.
type Broadcaster interface {
	BroadcastReservationEvent(event string, reservation *models.Reservation)
}

// ReservationService defines the reservation operations.
type ReservationService interface {
	ListReservations(ctx context.Context) ([]models.Reservation, error)
	CreateReservation(ctx context.Context, req *models.CreateReservationRequest) (*models.Reservation, error)
	CancelReservation(ctx context.Context, id string) (bool, error)
	DeleteUserReservations(ctx context.Context, userID string) (int, error)
	CheckConflict(ctx context.Context, slotID string, start, end time.Time) (*models.ConflictResponse, error)
	GetSlotStatuses(ctx context.Context, start, end time.Time) ([]models.SlotStatus, error)
}

type reservationServiceImpl struct {
	store store.ReservationStore
	slots []models.Slot
	hub   Broadcaster

	// mu serializes load-mutate-save cycles so concurrent creates cannot
	// both pass the conflict check.
	mu  sync.Mutex
	now func() time.Time
}

// NewReservationService creates a ReservationService over the given store.
// hub may be nil.
func NewReservationService(s store.ReservationStore, hub Broadcaster) ReservationService {
	return &reservationServiceImpl{
		store: s,
		slots: models.DefaultSlots(),
		hub:   hub,
		now:   time.Now,
	}
}

func (s *reservationServiceImpl) broadcast(event string, res *models.Reservation) {
	if s.hub != nil {
		s.hub.BroadcastReservationEvent(event, res)
	}
}

// ListReservations returns all reservations with their status derived from
// the current time. When any derived status differs from the stored one the
// whole collection is written back once, so stored statuses converge without
// a background job.
func (s *reservationServiceImpl) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservations, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	changed := false
	for i := range reservations {
		derived := schedule.DeriveStatus(reservations[i].StartTime, reservations[i].EndTime, now)
		if reservations[i].Status != derived {
			reservations[i].Status = derived
			changed = true
		}
	}

	if changed {
		if err := s.store.Save(ctx, reservations); err != nil {
			return nil, err
		}
		s.broadcast("reservations_updated", nil)
	}

	return reservations, nil
}

// CreateReservation books a slot for a time window. A user rebooking the
// same slot replaces their previous reservation on it. The window is
// rejected if it overlaps anyone else's reservation on the slot.
func (s *reservationServiceImpl) CreateReservation(ctx context.Context, req *models.CreateReservationRequest) (*models.Reservation, error) {
	if !s.slotExists(req.SlotID) {
		return nil, ErrSlotUnknown
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reservations, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	// Rebooking: drop this user's existing reservation on the slot before
	// checking conflicts, so extending or moving your own booking works.
	kept := reservations[:0]
	for _, r := range reservations {
		if r.UserID == req.UserID && r.SlotID == req.SlotID {
			continue
		}
		kept = append(kept, r)
	}
	reservations = kept

	if existing := schedule.FindConflict(reservations, req.SlotID, req.StartTime, req.EndTime, ""); existing != nil {
		conflict := *existing
		return nil, &ConflictError{Existing: &conflict}
	}

	now := s.now()
	created := models.Reservation{
		ID:           uuid.New().String(),
		UserID:       req.UserID,
		UserName:     req.UserName,
		Email:        req.Email,
		SlotID:       req.SlotID,
		VehiclePlate: plate.Normalize(req.VehiclePlate),
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Status:       models.StatusUpcoming,
		CreatedAt:    now,
	}
	reservations = append(reservations, created)

	if err := s.store.Save(ctx, reservations); err != nil {
		return nil, err
	}

	s.broadcast("reservation_created", &created)
	return &created, nil
}

// CancelReservation removes a reservation by id. Cancelling an id that does
// not exist is not an error; it reports false.
func (s *reservationServiceImpl) CancelReservation(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservations, err := s.store.Load(ctx)
	if err != nil {
		return false, err
	}

	var cancelled *models.Reservation
	kept := reservations[:0]
	for _, r := range reservations {
		if r.ID == id {
			removed := r
			cancelled = &removed
			continue
		}
		kept = append(kept, r)
	}

	if cancelled == nil {
		return false, nil
	}

	if err := s.store.Save(ctx, kept); err != nil {
		return false, err
	}

	s.broadcast("reservation_cancelled", cancelled)
	return true, nil
}

// DeleteUserReservations removes every reservation owned by userID and
// returns how many were removed. Used when an account is deleted.
func (s *reservationServiceImpl) DeleteUserReservations(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservations, err := s.store.Load(ctx)
	if err != nil {
		return 0, err
	}

	kept := reservations[:0]
	removed := 0
	for _, r := range reservations {
		if r.UserID == userID {
			removed++
			continue
		}
		kept = append(kept, r)
	}

	if removed == 0 {
		return 0, nil
	}

	if err := s.store.Save(ctx, kept); err != nil {
		return 0, err
	}

	s.broadcast("reservations_updated", nil)
	return removed, nil
}

// CheckConflict probes whether a window on a slot is free without booking
// it.
func (s *reservationServiceImpl) CheckConflict(ctx context.Context, slotID string, start, end time.Time) (*models.ConflictResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservations, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	if existing := schedule.FindConflict(reservations, slotID, start, end, ""); existing != nil {
		conflict := *existing
		return &models.ConflictResponse{Conflict: true, Reservation: &conflict}, nil
	}
	return &models.ConflictResponse{Conflict: false}, nil
}

// GetSlotStatuses reports every catalog slot's availability for a window.
func (s *reservationServiceImpl) GetSlotStatuses(ctx context.Context, start, end time.Time) ([]models.SlotStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservations, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]models.SlotStatus, 0, len(s.slots))
	for _, slot := range s.slots {
		status := models.SlotStatus{Slot: slot, Status: "available"}
		if existing := schedule.FindConflict(reservations, slot.ID, start, end, ""); existing != nil {
			conflict := *existing
			status.Status = "reserved"
			status.Reservation = &conflict
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (s *reservationServiceImpl) slotExists(slotID string) bool {
	for _, slot := range s.slots {
		if slot.ID == slotID {
			return true
		}
	}
	return false
}
