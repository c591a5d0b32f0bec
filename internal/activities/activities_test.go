package activities

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"github.com/parkeasy/parkeasy-backend/internal/models"
	"github.com/parkeasy/parkeasy-backend/internal/service"
	"github.com/parkeasy/parkeasy-backend/internal/store"
)

var testReportedAt = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) (*testsuite.TestActivityEnvironment, *store.FileStores) {
	t.Helper()

	stores := store.NewFileStores(t.TempDir())
	acts := NewActivities(stores.Reservations, stores.Violations, nil)
	acts.now = func() time.Time { return testReportedAt }

	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	env.RegisterActivityWithOptions(acts.ExtractVehicleInfo, activity.RegisterOptions{Name: "ExtractVehicleInfo"})
	env.RegisterActivityWithOptions(acts.EvaluateViolation, activity.RegisterOptions{Name: "EvaluateViolation"})
	env.RegisterActivityWithOptions(acts.RecordViolation, activity.RegisterOptions{Name: "RecordViolation"})
	return env, stores
}

func TestExtractVehicleInfo_NormalizesPlate(t *testing.T) {
	env, _ := newTestEnv(t)

	future, err := env.ExecuteActivity("ExtractVehicleInfo", ExtractVehicleInfoInput{
		LicensePlate: "tn 72 fb 9999",
	})
	require.NoError(t, err)

	var out ExtractVehicleInfoOutput
	require.NoError(t, future.Get(&out))
	assert.Equal(t, "TN72FB9999", out.LicensePlate)
}

func TestExtractVehicleInfo_NoPlateNoReader(t *testing.T) {
	env, _ := newTestEnv(t)

	_, err := env.ExecuteActivity("ExtractVehicleInfo", ExtractVehicleInfoInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), service.ErrPlateUnreadable.Error())
}

func TestEvaluateViolation(t *testing.T) {
	env, stores := newTestEnv(t)

	require.NoError(t, stores.Reservations.Save(context.Background(), []models.Reservation{
		{
			ID:           "res-1",
			UserID:       "user-1",
			SlotID:       "C1",
			VehiclePlate: "TN72FB9999",
			StartTime:    testReportedAt.Add(-3 * time.Hour),
			EndTime:      testReportedAt.Add(-time.Hour),
		},
	}))

	t.Run("classifies overstaying", func(t *testing.T) {
		future, err := env.ExecuteActivity("EvaluateViolation", EvaluateViolationInput{
			SlotNumber:    "C1",
			LicensePlate:  "TN72FB9999",
			ReportedAtUTC: testReportedAt,
		})
		require.NoError(t, err)

		var out EvaluateViolationOutput
		require.NoError(t, future.Get(&out))
		assert.Equal(t, models.ViolationOverstaying, out.ViolationType)
		assert.Equal(t, models.FineOverstaying, out.FineAmount)
	})

	t.Run("covering reservation is no violation", func(t *testing.T) {
		require.NoError(t, stores.Reservations.Save(context.Background(), []models.Reservation{
			{
				ID:           "res-2",
				UserID:       "user-1",
				SlotID:       "C2",
				VehiclePlate: "KA01AB1234",
				StartTime:    testReportedAt.Add(-time.Hour),
				EndTime:      testReportedAt.Add(time.Hour),
			},
		}))

		future, err := env.ExecuteActivity("EvaluateViolation", EvaluateViolationInput{
			SlotNumber:    "C2",
			LicensePlate:  "KA01AB1234",
			ReportedAtUTC: testReportedAt,
		})
		require.NoError(t, err)

		var out EvaluateViolationOutput
		require.NoError(t, future.Get(&out))
		assert.True(t, out.NoViolation)
		assert.Empty(t, out.ViolationType)
	})

	t.Run("keeps reported type", func(t *testing.T) {
		future, err := env.ExecuteActivity("EvaluateViolation", EvaluateViolationInput{
			SlotNumber:    "C1",
			LicensePlate:  "TN72FB9999",
			ReportedType:  models.ViolationUnauthorized,
			ReportedAtUTC: testReportedAt,
		})
		require.NoError(t, err)

		var out EvaluateViolationOutput
		require.NoError(t, future.Get(&out))
		assert.Equal(t, models.ViolationUnauthorized, out.ViolationType)
		assert.Equal(t, models.FineUnauthorized, out.FineAmount)
	})
}

func TestRecordViolation(t *testing.T) {
	env, stores := newTestEnv(t)

	future, err := env.ExecuteActivity("RecordViolation", RecordViolationInput{
		SlotNumber:    "C1",
		ViolationType: models.ViolationOverstaying,
		LicensePlate:  "TN72FB9999",
		ImageDataURI:  "data:image/jpeg;base64,AAAA",
		UserID:        "reporter-1",
	})
	require.NoError(t, err)

	var recorded models.Violation
	require.NoError(t, future.Get(&recorded))
	assert.NotEmpty(t, recorded.ID)
	assert.Equal(t, testReportedAt, recorded.CreatedAt)
	require.True(t, recorded.ImageURL.Valid)
	assert.Equal(t, "data:image/jpeg;base64,AAAA", recorded.ImageURL.String)

	stored, err := stores.Violations.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, recorded.ID, stored[0].ID)
	assert.Equal(t, recorded.ImageURL, stored[0].ImageURL)
}

func TestRecordViolation_NoImage(t *testing.T) {
	env, _ := newTestEnv(t)

	future, err := env.ExecuteActivity("RecordViolation", RecordViolationInput{
		SlotNumber:    "B2",
		ViolationType: models.ViolationUnauthorized,
		LicensePlate:  "KA01AB1234",
		UserID:        "reporter-1",
	})
	require.NoError(t, err)

	var recorded models.Violation
	require.NoError(t, future.Get(&recorded))
	assert.False(t, recorded.ImageURL.Valid)
}
