package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/parkeasy/parkeasy-backend/internal/models"
	"github.com/parkeasy/parkeasy-backend/internal/service"
	"github.com/parkeasy/parkeasy-backend/internal/service/mocks"
	"github.com/parkeasy/parkeasy-backend/internal/store"
)

type testMocks struct {
	reservations *mocks.MockReservationService
	auth         *mocks.MockAuthService
	violations   *mocks.MockViolationService
	feedback     *mocks.MockFeedbackService
}

func setupTestRouter() (*mux.Router, *testMocks) {
	m := &testMocks{
		reservations: new(mocks.MockReservationService),
		auth:         new(mocks.MockAuthService),
		violations:   new(mocks.MockViolationService),
		feedback:     new(mocks.MockFeedbackService),
	}
	h := NewHandler(m.reservations, m.auth, m.violations, m.feedback)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/reservations", h.GetReservations).Methods(http.MethodGet)
	api.HandleFunc("/reservations", h.CreateReservation).Methods(http.MethodPost)
	api.HandleFunc("/reservations/conflict", h.CheckConflict).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{id}", h.CancelReservation).Methods(http.MethodDelete)
	api.HandleFunc("/users", h.GetUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", h.DeleteUser).Methods(http.MethodDelete)
	api.HandleFunc("/users/{id}/fines", h.GetFines).Methods(http.MethodGet)
	api.HandleFunc("/violations", h.ReportViolation).Methods(http.MethodPost)
	api.HandleFunc("/feedback", h.SubmitFeedback).Methods(http.MethodPost)
	return r, m
}

var testStart = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func TestHandler_GetReservations(t *testing.T) {
	router, m := setupTestRouter()

	expected := []models.Reservation{
		{ID: "res-1", UserID: "user-1", SlotID: "C1", Status: models.StatusUpcoming},
	}
	m.reservations.On("ListReservations", mock.Anything).Return(expected, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/reservations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response []models.Reservation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	require.Len(t, response, 1)
	assert.Equal(t, "res-1", response[0].ID)

	m.reservations.AssertExpectations(t)
}

func TestHandler_CreateReservation(t *testing.T) {
	valid := models.CreateReservationRequest{
		UserID:       "user-1",
		UserName:     "Priya",
		Email:        "priya@example.com",
		SlotID:       "C1",
		VehiclePlate: "TN72FB9999",
		StartTime:    testStart,
		EndTime:      testStart.Add(2 * time.Hour),
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockReturn     *models.Reservation
		mockError      error
		expectedStatus int
		shouldCallMock bool
	}{
		{
			name:           "valid reservation",
			requestBody:    valid,
			mockReturn:     &models.Reservation{ID: "res-1", SlotID: "C1"},
			expectedStatus: http.StatusCreated,
			shouldCallMock: true,
		},
		{
			name: "missing slot ID",
			requestBody: models.CreateReservationRequest{
				UserID:    "user-1",
				StartTime: testStart,
				EndTime:   testStart.Add(time.Hour),
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "end before start",
			requestBody: models.CreateReservationRequest{
				UserID:    "user-1",
				SlotID:    "C1",
				StartTime: testStart.Add(time.Hour),
				EndTime:   testStart,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "slot conflict",
			requestBody:    valid,
			mockError:      &service.ConflictError{Existing: &models.Reservation{ID: "res-9", SlotID: "C1", StartTime: testStart, EndTime: testStart.Add(time.Hour)}},
			expectedStatus: http.StatusConflict,
			shouldCallMock: true,
		},
		{
			name:           "unknown slot",
			requestBody:    valid,
			mockError:      service.ErrSlotUnknown,
			expectedStatus: http.StatusNotFound,
			shouldCallMock: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, m := setupTestRouter()

			if tt.shouldCallMock {
				m.reservations.On("CreateReservation", mock.Anything, mock.AnythingOfType("*models.CreateReservationRequest")).Return(tt.mockReturn, tt.mockError)
			}

			body, _ := json.Marshal(tt.requestBody)
			req := httptest.NewRequest(http.MethodPost, "/api/reservations", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusConflict {
				var response models.ConflictResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
				assert.True(t, response.Conflict)
				require.NotNil(t, response.Reservation)
				assert.Equal(t, "res-9", response.Reservation.ID)
			}
		})
	}
}

func TestHandler_CancelReservation(t *testing.T) {
	tests := []struct {
		name    string
		removed bool
	}{
		{"existing reservation", true},
		{"already gone", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, m := setupTestRouter()
			m.reservations.On("CancelReservation", mock.Anything, "res-1").Return(tt.removed, nil)

			req := httptest.NewRequest(http.MethodDelete, "/api/reservations/res-1", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			// Cancel is idempotent; both cases succeed.
			assert.Equal(t, http.StatusOK, rec.Code)

			var response map[string]bool
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
			assert.Equal(t, tt.removed, response["success"])

			m.reservations.AssertExpectations(t)
		})
	}
}

func TestHandler_CheckConflict(t *testing.T) {
	router, m := setupTestRouter()

	m.reservations.On("CheckConflict", mock.Anything, "C1", mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(&models.ConflictResponse{Conflict: false}, nil)

	url := "/api/reservations/conflict?slotId=C1&start=" + testStart.Format(time.RFC3339) +
		"&end=" + testStart.Add(time.Hour).Format(time.RFC3339)
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_CheckConflict_BadWindow(t *testing.T) {
	router, _ := setupTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/reservations/conflict?slotId=C1&start=bogus&end=bogus", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_DeleteUser_Cascades(t *testing.T) {
	router, m := setupTestRouter()

	deleted := &models.User{ID: "user-1", Email: "priya@example.com"}
	m.auth.On("DeleteUser", mock.Anything, "user-1").Return(deleted, nil)
	m.reservations.On("DeleteUserReservations", mock.Anything, "user-1").Return(2, nil)
	m.violations.On("DeleteUserViolations", mock.Anything, "user-1").Return(1, nil)
	m.feedback.On("DeleteFeedbackByEmail", mock.Anything, "priya@example.com").Return(1, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/user-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	m.auth.AssertExpectations(t)
	m.reservations.AssertExpectations(t)
	m.violations.AssertExpectations(t)
	m.feedback.AssertExpectations(t)
}

func TestHandler_DeleteUser_NotFound(t *testing.T) {
	router, m := setupTestRouter()
	m.auth.On("DeleteUser", mock.Anything, "missing").Return(nil, store.ErrNotFound)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_GetFines(t *testing.T) {
	router, m := setupTestRouter()

	fines := []models.Fine{
		{
			Violation:  models.Violation{ID: "v1", ViolationType: models.ViolationOverstaying},
			FineAmount: models.FineOverstaying,
		},
	}
	m.violations.On("FinesForUser", mock.Anything, "user-1").Return(fines, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/user-1/fines", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response []models.Fine
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	require.Len(t, response, 1)
	assert.Equal(t, models.FineOverstaying, response[0].FineAmount)
}

func TestHandler_ReportViolation(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    models.ReportViolationRequest
		mockReturn     *models.Violation
		mockError      error
		expectedStatus int
		shouldCallMock bool
	}{
		{
			name: "valid report",
			requestBody: models.ReportViolationRequest{
				SlotNumber:   "C1",
				LicensePlate: "TN72FB9999",
				UserID:       "reporter-1",
			},
			mockReturn:     &models.Violation{ID: "v1", ViolationType: models.ViolationUnauthorized},
			expectedStatus: http.StatusCreated,
			shouldCallMock: true,
		},
		{
			name:           "missing slot",
			requestBody:    models.ReportViolationRequest{LicensePlate: "TN72FB9999"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "no plate and no photo",
			requestBody:    models.ReportViolationRequest{SlotNumber: "C1"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unreadable photo",
			requestBody: models.ReportViolationRequest{
				SlotNumber:   "C1",
				ImageDataURI: "data:image/jpeg;base64,AAAA",
			},
			mockError:      service.ErrPlateUnreadable,
			expectedStatus: http.StatusUnprocessableEntity,
			shouldCallMock: true,
		},
		{
			name: "vehicle holds a covering reservation",
			requestBody: models.ReportViolationRequest{
				SlotNumber:   "C1",
				LicensePlate: "TN72FB9999",
				UserID:       "reporter-1",
			},
			mockError:      service.ErrNoViolation,
			expectedStatus: http.StatusConflict,
			shouldCallMock: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, m := setupTestRouter()

			if tt.shouldCallMock {
				m.violations.On("ReportViolation", mock.Anything, mock.AnythingOfType("*models.ReportViolationRequest")).Return(tt.mockReturn, tt.mockError)
			}

			body, _ := json.Marshal(tt.requestBody)
			req := httptest.NewRequest(http.MethodPost, "/api/violations", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestHandler_SubmitFeedback(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    models.SubmitFeedbackRequest
		expectedStatus int
		shouldCallMock bool
	}{
		{
			name: "valid feedback",
			requestBody: models.SubmitFeedbackRequest{
				Name:     "Priya",
				Email:    "priya@example.com",
				Rating:   4,
				Feedback: "Smooth booking",
			},
			expectedStatus: http.StatusCreated,
			shouldCallMock: true,
		},
		{
			name:           "rating out of range",
			requestBody:    models.SubmitFeedbackRequest{Email: "priya@example.com", Rating: 6},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing email",
			requestBody:    models.SubmitFeedbackRequest{Rating: 3},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, m := setupTestRouter()

			if tt.shouldCallMock {
				m.feedback.On("SubmitFeedback", mock.Anything, mock.AnythingOfType("*models.SubmitFeedbackRequest")).
					Return(&models.Feedback{ID: "f1"}, nil)
			}

			body, _ := json.Marshal(tt.requestBody)
			req := httptest.NewRequest(http.MethodPost, "/api/feedback", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}
