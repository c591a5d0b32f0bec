package models

import "time"

// ReservationStatus is the derived lifecycle label of a reservation. It is
// recomputed from the wall clock on every read path; the stored value exists
// for display convenience only and is never authoritative.
type ReservationStatus string

const (
	StatusUpcoming  ReservationStatus = "Upcoming"
	StatusActive    ReservationStatus = "Active"
	StatusCompleted ReservationStatus = "Completed"
)

// Reservation is a user's claim on a slot for the half-open time window
// [StartTime, EndTime). UserID, UserName and Email are a snapshot of the
// booking user taken at creation time; they are not re-joined against the
// user directory later.
type Reservation struct {
	ID           string            `json:"id"`
	UserID       string            `json:"userId"`
	UserName     string            `json:"userName"`
	Email        string            `json:"email"`
	SlotID       string            `json:"slotId"`
	VehiclePlate string            `json:"vehiclePlate"`
	StartTime    time.Time         `json:"startTime"`
	EndTime      time.Time         `json:"endTime"`
	Status       ReservationStatus `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// CreateReservationRequest carries a candidate reservation from the booking
// UI. The user fields are trusted verbatim into the stored record.
type CreateReservationRequest struct {
	UserID       string    `json:"userId"`
	UserName     string    `json:"userName"`
	Email        string    `json:"email"`
	SlotID       string    `json:"slotId"`
	VehiclePlate string    `json:"vehiclePlate"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
}

// ConflictResponse is returned by the availability probe endpoint.
type ConflictResponse struct {
	Conflict    bool         `json:"conflict"`
	Reservation *Reservation `json:"reservation,omitempty"`
}
