package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"gopkg.in/guregu/null.v4"

	"github.com/parkeasy/parkeasy-backend/internal/models"
	"github.com/parkeasy/parkeasy-backend/internal/plate"
	"github.com/parkeasy/parkeasy-backend/internal/schedule"
	"github.com/parkeasy/parkeasy-backend/internal/store"
)

const ViolationTaskQueue = "parkeasy-violations"

// NoViolationErrorType tags the workflow error raised when the reported
// vehicle turns out to hold a valid reservation.
const NoViolationErrorType = "NoViolation"

var (
	ErrPlateUnreadable = errors.New("could not determine vehicle plate")
	ErrNoViolation     = errors.New("vehicle has a valid reservation for this slot")
)

// PlateReader extracts a license plate from a vehicle photo.
type PlateReader interface {
	ReadPlate(ctx context.Context, image []byte) (string, error)
}

// ViolationService records parking violations and prices fines.
type ViolationService interface {
	ListViolations(ctx context.Context) ([]models.Violation, error)
	ReportViolation(ctx context.Context, req *models.ReportViolationRequest) (*models.Violation, error)
	DeleteViolation(ctx context.Context, id string) error
	DeleteUserViolations(ctx context.Context, userID string) (int, error)
	FinesForUser(ctx context.Context, userID string) ([]models.Fine, error)
}

type violationServiceImpl struct {
	violations   store.ViolationStore
	reservations store.ReservationStore
	reader       PlateReader
	temporal     client.Client
	now          func() time.Time
}

// NewViolationService creates a ViolationService. reader and temporalClient
// may be nil; without a temporal client reports are processed inline.
func NewViolationService(violations store.ViolationStore, reservations store.ReservationStore, reader PlateReader, temporalClient client.Client) ViolationService {
	return &violationServiceImpl{
		violations:   violations,
		reservations: reservations,
		reader:       reader,
		temporal:     temporalClient,
		now:          time.Now,
	}
}

func (s *violationServiceImpl) ListViolations(ctx context.Context) ([]models.Violation, error) {
	return s.violations.Load(ctx)
}

// ReportViolation turns a raw report into a recorded violation. With a
// temporal client configured the report runs through the violation workflow;
// otherwise it is resolved inline.
func (s *violationServiceImpl) ReportViolation(ctx context.Context, req *models.ReportViolationRequest) (*models.Violation, error) {
	if s.temporal != nil {
		options := client.StartWorkflowOptions{
			ID:        "violation-" + uuid.New().String()[:8],
			TaskQueue: ViolationTaskQueue,
		}
		run, err := s.temporal.ExecuteWorkflow(ctx, options, "ViolationReportWorkflow", req)
		if err != nil {
			return nil, err
		}
		var recorded models.Violation
		if err := run.Get(ctx, &recorded); err != nil {
			var appErr *temporal.ApplicationError
			if errors.As(err, &appErr) && appErr.Type() == NoViolationErrorType {
				return nil, ErrNoViolation
			}
			return nil, err
		}
		return &recorded, nil
	}
	return s.resolveAndRecord(ctx, req)
}

func (s *violationServiceImpl) resolveAndRecord(ctx context.Context, req *models.ReportViolationRequest) (*models.Violation, error) {
	normalized := plate.Normalize(req.LicensePlate)
	if normalized == "" && req.ImageDataURI != "" && s.reader != nil {
		image, err := DecodeImageDataURI(req.ImageDataURI)
		if err != nil {
			return nil, err
		}
		found, err := s.reader.ReadPlate(ctx, image)
		if err != nil {
			return nil, err
		}
		normalized = plate.Normalize(found)
	}
	if normalized == "" {
		return nil, ErrPlateUnreadable
	}

	violationType := req.ViolationType
	if violationType == "" {
		reservations, err := s.reservations.Load(ctx)
		if err != nil {
			return nil, err
		}
		classified, ok := ClassifyViolation(reservations, req.SlotNumber, normalized, s.now())
		if !ok {
			return nil, ErrNoViolation
		}
		violationType = classified
	}

	violation := models.Violation{
		ID:            uuid.New().String(),
		SlotNumber:    req.SlotNumber,
		ViolationType: violationType,
		LicensePlate:  normalized,
		ImageURL:      null.NewString(req.ImageDataURI, req.ImageDataURI != ""),
		UserID:        req.UserID,
		CreatedAt:     s.now(),
	}
	if err := s.record(ctx, violation); err != nil {
		return nil, err
	}
	return &violation, nil
}

func (s *violationServiceImpl) record(ctx context.Context, violation models.Violation) error {
	violations, err := s.violations.Load(ctx)
	if err != nil {
		return err
	}
	violations = append(violations, violation)
	return s.violations.Save(ctx, violations)
}

func (s *violationServiceImpl) DeleteViolation(ctx context.Context, id string) error {
	violations, err := s.violations.Load(ctx)
	if err != nil {
		return err
	}

	kept := violations[:0]
	found := false
	for _, v := range violations {
		if v.ID == id {
			found = true
			continue
		}
		kept = append(kept, v)
	}
	if !found {
		return store.ErrNotFound
	}
	return s.violations.Save(ctx, kept)
}

// DeleteUserViolations removes every violation reported under userID and
// returns how many were removed.
func (s *violationServiceImpl) DeleteUserViolations(ctx context.Context, userID string) (int, error) {
	violations, err := s.violations.Load(ctx)
	if err != nil {
		return 0, err
	}

	kept := violations[:0]
	removed := 0
	for _, v := range violations {
		if v.UserID == userID {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.violations.Save(ctx, kept)
}

// FinesForUser prices the violations attributable to a user. A violation
// belongs to a user when its plate appears on any of that user's
// reservations.
func (s *violationServiceImpl) FinesForUser(ctx context.Context, userID string) ([]models.Fine, error) {
	reservations, err := s.reservations.Load(ctx)
	if err != nil {
		return nil, err
	}

	plates := make(map[string]struct{})
	for _, r := range reservations {
		if r.UserID == userID {
			plates[plate.Normalize(r.VehiclePlate)] = struct{}{}
		}
	}

	violations, err := s.violations.Load(ctx)
	if err != nil {
		return nil, err
	}

	fines := []models.Fine{}
	for _, v := range violations {
		if _, ok := plates[plate.Normalize(v.LicensePlate)]; !ok {
			continue
		}
		fines = append(fines, models.Fine{
			Violation:  v,
			FineAmount: v.ViolationType.FineAmount(),
		})
	}
	return fines, nil
}

// ClassifyViolation applies the violation rules for a plate seen on a slot
// at a point in time. A plate with a reservation covering the slot at that
// time is not in violation (ok is false); a plate whose reservation on the
// slot has already ended is overstaying; a plate with no reservation on the
// slot is unauthorized parking.
func ClassifyViolation(reservations []models.Reservation, slotID, normalizedPlate string, at time.Time) (violationType models.ViolationType, ok bool) {
	overstayed := false
	for _, r := range reservations {
		if r.SlotID != slotID || plate.Normalize(r.VehiclePlate) != normalizedPlate {
			continue
		}
		switch schedule.DeriveStatus(r.StartTime, r.EndTime, at) {
		case models.StatusActive:
			return "", false
		case models.StatusCompleted:
			overstayed = true
		}
	}
	if overstayed {
		return models.ViolationOverstaying, true
	}
	return models.ViolationUnauthorized, true
}

// DecodeImageDataURI extracts the raw bytes from a base64 data URI as sent
// by browser camera capture. Bare base64 without the data: prefix is
// accepted too.
func DecodeImageDataURI(uri string) ([]byte, error) {
	payload := uri
	if idx := strings.Index(uri, ","); idx >= 0 && strings.HasPrefix(uri, "data:") {
		payload = uri[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.New("invalid image data")
	}
	return data, nil
}
