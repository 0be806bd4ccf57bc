package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clipline/barbershop-backend/internal/application/services"
	"github.com/clipline/barbershop-backend/internal/domain/entities"
	"github.com/clipline/barbershop-backend/internal/domain/repositories"
	apperrors "github.com/clipline/barbershop-backend/pkg/errors"
)

// MockBookingService is a mock implementation of BookingService
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Book(ctx context.Context, appointment *entities.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *MockBookingService) Get(ctx context.Context, id string) (*entities.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockBookingService) List(ctx context.Context, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

func (m *MockBookingService) UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus) (*entities.Appointment, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockBookingService) UpdateStatusBatch(ctx context.Context, ids []string, status entities.AppointmentStatus) (*services.BatchReport, error) {
	args := m.Called(ctx, ids, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.BatchReport), args.Error(1)
}

func (m *MockBookingService) Cancel(ctx context.Context, id string) (*entities.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockBookingService) Reschedule(ctx context.Context, id string, newStart time.Time) (*entities.Appointment, error) {
	args := m.Called(ctx, id, newStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func TestAppointmentHandler_BookAppointment(t *testing.T) {
	t.Run("returns 201 and the appointment with its sync status", func(t *testing.T) {
		// Arrange
		service := new(MockBookingService)
		service.On("Book", mock.Anything, mock.AnythingOfType("*entities.Appointment")).
			Run(func(args mock.Arguments) {
				appt := args.Get(1).(*entities.Appointment)
				appt.ID = "appt-1"
				appt.SyncStatus = entities.SyncStatusSynced
			}).
			Return(nil)
		handler := NewAppointmentHandler(service)

		payload := map[string]interface{}{
			"customer_id":      "cust-1",
			"provider_id":      "barber-1",
			"service_id":       "svc-1",
			"appointment_date": "2026-01-05T10:00:00Z",
		}
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPost, "/api/appointments", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		// Act
		handler.BookAppointment(rec, req)

		// Assert
		require.Equal(t, http.StatusCreated, rec.Code)
		var response entities.Appointment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, "appt-1", response.ID)
		assert.Equal(t, entities.SyncStatusSynced, response.SyncStatus)
		assert.Contains(t, rec.Body.String(), `"syncStatus"`)
	})

	t.Run("maps a conflict to 409", func(t *testing.T) {
		// Arrange
		service := new(MockBookingService)
		service.On("Book", mock.Anything, mock.AnythingOfType("*entities.Appointment")).
			Return(apperrors.NewConflictError("the requested time window is already booked"))
		handler := NewAppointmentHandler(service)

		body, _ := json.Marshal(map[string]string{"customer_id": "cust-1"})
		req := httptest.NewRequest(http.MethodPost, "/api/appointments", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		// Act
		handler.BookAppointment(rec, req)

		// Assert
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "already booked")
	})

	t.Run("maps a validation failure to 400", func(t *testing.T) {
		// Arrange
		service := new(MockBookingService)
		service.On("Book", mock.Anything, mock.AnythingOfType("*entities.Appointment")).
			Return(apperrors.NewValidationError("the appointment falls outside the provider's working hours"))
		handler := NewAppointmentHandler(service)

		body, _ := json.Marshal(map[string]string{"customer_id": "cust-1"})
		req := httptest.NewRequest(http.MethodPost, "/api/appointments", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		// Act
		handler.BookAppointment(rec, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		// Arrange
		handler := NewAppointmentHandler(new(MockBookingService))
		req := httptest.NewRequest(http.MethodPost, "/api/appointments", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()

		// Act
		handler.BookAppointment(rec, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAppointmentHandler_UpdateStatus(t *testing.T) {
	t.Run("returns the updated appointment", func(t *testing.T) {
		// Arrange
		service := new(MockBookingService)
		service.On("UpdateStatus", mock.Anything, "appt-1", entities.AppointmentStatusCompleted).
			Return(&entities.Appointment{ID: "appt-1", Status: entities.AppointmentStatusCompleted}, nil)
		handler := NewAppointmentHandler(service)

		body, _ := json.Marshal(map[string]string{"status": "completed"})
		req := httptest.NewRequest(http.MethodPatch, "/api/appointments/appt-1/status", bytes.NewReader(body))
		req.SetPathValue("id", "appt-1")
		rec := httptest.NewRecorder()

		// Act
		handler.UpdateStatus(rec, req)

		// Assert
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"completed"`)
	})

	t.Run("maps a missing appointment to 404", func(t *testing.T) {
		// Arrange
		service := new(MockBookingService)
		service.On("UpdateStatus", mock.Anything, "missing", entities.AppointmentStatusCompleted).
			Return(nil, apperrors.NewNotFoundError("appointment not found"))
		handler := NewAppointmentHandler(service)

		body, _ := json.Marshal(map[string]string{"status": "completed"})
		req := httptest.NewRequest(http.MethodPatch, "/api/appointments/missing/status", bytes.NewReader(body))
		req.SetPathValue("id", "missing")
		rec := httptest.NewRecorder()

		// Act
		handler.UpdateStatus(rec, req)

		// Assert
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAppointmentHandler_UpdateStatusBatch(t *testing.T) {
	t.Run("returns the batch report", func(t *testing.T) {
		// Arrange
		service := new(MockBookingService)
		service.On("UpdateStatusBatch", mock.Anything, []string{"a1", "a2"}, entities.AppointmentStatusNoShow).
			Return(&services.BatchReport{Updated: 1, Failed: 1, Errors: []string{"a2: appointment not found"}}, nil)
		handler := NewAppointmentHandler(service)

		body, _ := json.Marshal(map[string]interface{}{
			"ids":    []string{"a1", "a2"},
			"status": "no_show",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/appointments/status", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		// Act
		handler.UpdateStatusBatch(rec, req)

		// Assert
		require.Equal(t, http.StatusOK, rec.Code)
		var report services.BatchReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, 1, report.Updated)
		assert.Equal(t, 1, report.Failed)
	})
}

func TestAppointmentHandler_RescheduleAppointment(t *testing.T) {
	t.Run("requires a new start time", func(t *testing.T) {
		// Arrange
		handler := NewAppointmentHandler(new(MockBookingService))
		body, _ := json.Marshal(map[string]string{})
		req := httptest.NewRequest(http.MethodPost, "/api/appointments/appt-1/reschedule", bytes.NewReader(body))
		req.SetPathValue("id", "appt-1")
		rec := httptest.NewRecorder()

		// Act
		handler.RescheduleAppointment(rec, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("moves the appointment", func(t *testing.T) {
		// Arrange
		newStart := time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC)
		service := new(MockBookingService)
		service.On("Reschedule", mock.Anything, "appt-1", newStart).
			Return(&entities.Appointment{ID: "appt-1", AppointmentDate: newStart}, nil)
		handler := NewAppointmentHandler(service)

		body, _ := json.Marshal(map[string]string{"newStart": "2026-01-05T14:00:00Z"})
		req := httptest.NewRequest(http.MethodPost, "/api/appointments/appt-1/reschedule", bytes.NewReader(body))
		req.SetPathValue("id", "appt-1")
		rec := httptest.NewRecorder()

		// Act
		handler.RescheduleAppointment(rec, req)

		// Assert
		require.Equal(t, http.StatusOK, rec.Code)
		service.AssertExpectations(t)
	})
}
