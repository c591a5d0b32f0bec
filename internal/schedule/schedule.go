// Package schedule holds the pure scheduling logic: deriving a
// reservation's lifecycle status from the clock, and detecting interval
// conflicts between reservations on the same slot.
package schedule

import (
	"time"

	"github.com/parkeasy/parkeasy-backend/internal/models"
)

// DeriveStatus maps a reservation window and the current time to a
// lifecycle status. The status boundary is closed on both ends: a
// reservation is Active from startTime through endTime inclusive, and
// Completed once now has passed endTime.
func DeriveStatus(startTime, endTime, now time.Time) models.ReservationStatus {
	switch {
	case now.After(endTime):
		return models.StatusCompleted
	case !now.Before(startTime):
		return models.StatusActive
	default:
		return models.StatusUpcoming
	}
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. Touching endpoints do not overlap: a booking ending exactly
// when another starts is legal.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// FindConflict scans reservations for one on slotID whose window overlaps
// [start, end). A reservation with id excludeID is skipped, which supports
// rebooking checks against the caller's own existing reservation. Returns
// the first conflicting reservation found, or nil.
func FindConflict(reservations []models.Reservation, slotID string, start, end time.Time, excludeID string) *models.Reservation {
	for i := range reservations {
		res := &reservations[i]
		if res.SlotID != slotID {
			continue
		}
		if excludeID != "" && res.ID == excludeID {
			continue
		}
		if Overlaps(res.StartTime, res.EndTime, start, end) {
			return res
		}
	}
	return nil
}
