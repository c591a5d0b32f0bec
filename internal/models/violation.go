package models

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

// ViolationType is the kind of parking violation being reported.
type ViolationType string

const (
	ViolationOverstaying  ViolationType = "overstaying"
	ViolationUnauthorized ViolationType = "unauthorized_parking"
)

// Fine amounts are fixed per violation type.
const (
	FineOverstaying  = 50.0
	FineUnauthorized = 100.0
)

// Violation is a recorded parking violation, joined to users indirectly
// through the vehicle plate found on their reservations.
type Violation struct {
	ID            string        `json:"id"`
	SlotNumber    string        `json:"slotNumber"`
	ViolationType ViolationType `json:"violationType"`
	LicensePlate  string        `json:"licensePlate"`
	ImageURL      null.String   `json:"imageUrl,omitempty"`
	UserID        string        `json:"userId"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// ReportViolationRequest is a raw violation report. LicensePlate may be
// empty when the reporter supplied only a photo; the pipeline then tries to
// read the plate from the image.
type ReportViolationRequest struct {
	SlotNumber    string        `json:"slotNumber"`
	ViolationType ViolationType `json:"violationType"`
	LicensePlate  string        `json:"licensePlate,omitempty"`
	ImageDataURI  string        `json:"imageDataUri,omitempty"`
	UserID        string        `json:"userId"`
}

// FineAmount returns the fixed fine for a violation type.
func (t ViolationType) FineAmount() float64 {
	if t == ViolationOverstaying {
		return FineOverstaying
	}
	return FineUnauthorized
}

// Fine is a violation priced for the owning user.
type Fine struct {
	Violation
	FineAmount float64 `json:"fineAmount"`
}
