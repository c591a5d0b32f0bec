// Package activities implements the temporal activities for the violation
// report pipeline.
package activities

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"gopkg.in/guregu/null.v4"

	"github.com/parkeasy/parkeasy-backend/internal/models"
	"github.com/parkeasy/parkeasy-backend/internal/plate"
	"github.com/parkeasy/parkeasy-backend/internal/service"
	"github.com/parkeasy/parkeasy-backend/internal/store"
)

// Activities holds the dependencies the violation pipeline needs.
type Activities struct {
	reservations store.ReservationStore
	violations   store.ViolationStore
	reader       service.PlateReader
	now          func() time.Time
}

// NewActivities creates the activity set. reader may be nil when no image
// recognition backend is configured.
func NewActivities(reservations store.ReservationStore, violations store.ViolationStore, reader service.PlateReader) *Activities {
	return &Activities{
		reservations: reservations,
		violations:   violations,
		reader:       reader,
		now:          time.Now,
	}
}

// ExtractVehicleInfoInput carries the raw report into plate extraction.
type ExtractVehicleInfoInput struct {
	LicensePlate string `json:"licensePlate"`
	ImageDataURI string `json:"imageDataUri"`
}

// ExtractVehicleInfoOutput is the normalized plate.
type ExtractVehicleInfoOutput struct {
	LicensePlate string `json:"licensePlate"`
}

// ExtractVehicleInfo normalizes a reported plate, falling back to reading it
// from the attached photo.
func (a *Activities) ExtractVehicleInfo(ctx context.Context, input ExtractVehicleInfoInput) (*ExtractVehicleInfoOutput, error) {
	logger := activity.GetLogger(ctx)

	normalized := plate.Normalize(input.LicensePlate)
	if normalized == "" && input.ImageDataURI != "" && a.reader != nil {
		image, err := service.DecodeImageDataURI(input.ImageDataURI)
		if err != nil {
			return nil, err
		}
		logger.Info("Reading plate from photo", "bytes", len(image))
		found, err := a.reader.ReadPlate(ctx, image)
		if err != nil {
			return nil, err
		}
		normalized = plate.Normalize(found)
	}
	if normalized == "" {
		return nil, service.ErrPlateUnreadable
	}

	return &ExtractVehicleInfoOutput{LicensePlate: normalized}, nil
}

// EvaluateViolationInput asks for a classification of a plate on a slot.
type EvaluateViolationInput struct {
	SlotNumber    string               `json:"slotNumber"`
	LicensePlate  string               `json:"licensePlate"`
	ReportedType  models.ViolationType `json:"reportedType"`
	ReportedAtUTC time.Time            `json:"reportedAt"`
}

// EvaluateViolationOutput is the resolved violation type and fine.
// NoViolation reports that the plate holds a reservation covering the slot
// at the reported time, so nothing should be recorded.
type EvaluateViolationOutput struct {
	ViolationType models.ViolationType `json:"violationType"`
	FineAmount    float64              `json:"fineAmount"`
	NoViolation   bool                 `json:"noViolation"`
}

// EvaluateViolation classifies the report against current reservations. A
// type supplied by the reporter is kept as-is.
func (a *Activities) EvaluateViolation(ctx context.Context, input EvaluateViolationInput) (*EvaluateViolationOutput, error) {
	violationType := input.ReportedType
	if violationType == "" {
		reservations, err := a.reservations.Load(ctx)
		if err != nil {
			return nil, err
		}
		at := input.ReportedAtUTC
		if at.IsZero() {
			at = a.now()
		}
		classified, ok := service.ClassifyViolation(reservations, input.SlotNumber, input.LicensePlate, at)
		if !ok {
			return &EvaluateViolationOutput{NoViolation: true}, nil
		}
		violationType = classified
	}

	return &EvaluateViolationOutput{
		ViolationType: violationType,
		FineAmount:    violationType.FineAmount(),
	}, nil
}

// RecordViolationInput is the resolved violation to persist.
type RecordViolationInput struct {
	SlotNumber    string               `json:"slotNumber"`
	ViolationType models.ViolationType `json:"violationType"`
	LicensePlate  string               `json:"licensePlate"`
	ImageDataURI  string               `json:"imageDataUri"`
	UserID        string               `json:"userId"`
}

// RecordViolation appends the violation to the store and returns the stored
// record.
func (a *Activities) RecordViolation(ctx context.Context, input RecordViolationInput) (*models.Violation, error) {
	logger := activity.GetLogger(ctx)

	violation := models.Violation{
		ID:            uuid.New().String(),
		SlotNumber:    input.SlotNumber,
		ViolationType: input.ViolationType,
		LicensePlate:  input.LicensePlate,
		ImageURL:      null.NewString(input.ImageDataURI, input.ImageDataURI != ""),
		UserID:        input.UserID,
		CreatedAt:     a.now(),
	}

	violations, err := a.violations.Load(ctx)
	if err != nil {
		return nil, err
	}
	violations = append(violations, violation)
	if err := a.violations.Save(ctx, violations); err != nil {
		return nil, err
	}

	logger.Info("Violation recorded", "id", violation.ID, "type", violation.ViolationType, "plate", violation.LicensePlate)
	return &violation, nil
}
