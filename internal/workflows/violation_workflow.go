// Package workflows holds the temporal workflow for processing violation
// reports.
package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/parkeasy/parkeasy-backend/internal/activities"
	"github.com/parkeasy/parkeasy-backend/internal/models"
	"github.com/parkeasy/parkeasy-backend/internal/service"
)

const (
	// ExtractionTimeout bounds the image recognition call.
	ExtractionTimeout = 30 * time.Second
	// MaxExtractionAttempts is how often plate extraction is retried.
	MaxExtractionAttempts = 3
)

// ViolationReportWorkflow turns a raw violation report into a recorded,
// priced violation: extract the plate, classify the report, persist it.
func ViolationReportWorkflow(ctx workflow.Context, req *models.ReportViolationRequest) (*models.Violation, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Violation report workflow started", "slot", req.SlotNumber)

	activityOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOpts)

	// Recognition calls an external service; bound it separately and do not
	// let a transient failure block the report forever.
	extractCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: ExtractionTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: MaxExtractionAttempts,
		},
	})

	var extracted activities.ExtractVehicleInfoOutput
	err := workflow.ExecuteActivity(extractCtx, "ExtractVehicleInfo", activities.ExtractVehicleInfoInput{
		LicensePlate: req.LicensePlate,
		ImageDataURI: req.ImageDataURI,
	}).Get(ctx, &extracted)
	if err != nil {
		logger.Error("Plate extraction failed", "error", err)
		return nil, err
	}

	var evaluated activities.EvaluateViolationOutput
	err = workflow.ExecuteActivity(ctx, "EvaluateViolation", activities.EvaluateViolationInput{
		SlotNumber:    req.SlotNumber,
		LicensePlate:  extracted.LicensePlate,
		ReportedType:  req.ViolationType,
		ReportedAtUTC: workflow.Now(ctx).UTC(),
	}).Get(ctx, &evaluated)
	if err != nil {
		logger.Error("Violation evaluation failed", "error", err)
		return nil, err
	}
	if evaluated.NoViolation {
		logger.Info("Report dismissed, plate holds a covering reservation", "slot", req.SlotNumber, "plate", extracted.LicensePlate)
		return nil, temporal.NewApplicationError("vehicle has a valid reservation for this slot", service.NoViolationErrorType)
	}

	var recorded models.Violation
	err = workflow.ExecuteActivity(ctx, "RecordViolation", activities.RecordViolationInput{
		SlotNumber:    req.SlotNumber,
		ViolationType: evaluated.ViolationType,
		LicensePlate:  extracted.LicensePlate,
		ImageDataURI:  req.ImageDataURI,
		UserID:        req.UserID,
	}).Get(ctx, &recorded)
	if err != nil {
		logger.Error("Failed to record violation", "error", err)
		return nil, err
	}

	logger.Info("Violation recorded", "id", recorded.ID, "type", recorded.ViolationType, "fine", evaluated.FineAmount)
	return &recorded, nil
}
