// Package store persists the application's record collections. Every
// collection is read and written as a whole; callers load the full set,
// mutate it in memory, and save it back.
package store

import (
	"context"
	"errors"

	"github.com/parkeasy/parkeasy-backend/internal/models"
)

var ErrNotFound = errors.New("not found")

// ReservationStore persists the reservation collection.
type ReservationStore interface {
	Load(ctx context.Context) ([]models.Reservation, error)
	Save(ctx context.Context, reservations []models.Reservation) error
}

// UserStore persists user accounts.
type UserStore interface {
	Load(ctx context.Context) ([]models.User, error)
	Save(ctx context.Context, users []models.User) error
}

// ViolationStore persists violation records.
type ViolationStore interface {
	Load(ctx context.Context) ([]models.Violation, error)
	Save(ctx context.Context, violations []models.Violation) error
}

// FeedbackStore persists feedback submissions.
type FeedbackStore interface {
	Load(ctx context.Context) ([]models.Feedback, error)
	Save(ctx context.Context, entries []models.Feedback) error
}
