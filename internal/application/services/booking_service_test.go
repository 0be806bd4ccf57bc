package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clipline/barbershop-backend/internal/domain/entities"
	apperrors "github.com/clipline/barbershop-backend/pkg/errors"
)

type bookingFixture struct {
	appointmentRepo *MockAppointmentRepository
	customerRepo    *MockCustomerRepository
	providerRepo    *MockProviderRepository
	serviceRepo     *MockServiceRepository
	service         *BookingService
}

// newBookingFixture wires a booking service with external sync disabled, so
// every new record lands in the synced state.
func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		appointmentRepo: new(MockAppointmentRepository),
		customerRepo:    new(MockCustomerRepository),
		providerRepo:    new(MockProviderRepository),
		serviceRepo:     new(MockServiceRepository),
	}
	syncService := NewSyncService(f.customerRepo, f.appointmentRepo, f.providerRepo, f.serviceRepo, nil, nil, false, false)
	statsService := NewStatsService(f.customerRepo, f.appointmentRepo)
	f.service = NewBookingService(f.appointmentRepo, f.customerRepo, f.providerRepo, f.serviceRepo, syncService, statsService)
	return f
}

func activeAppointment(start time.Time, durationMinutes int) *entities.Appointment {
	return &entities.Appointment{
		ID:              "existing",
		ProviderID:      "barber-1",
		AppointmentDate: start,
		Duration:        durationMinutes,
		Status:          entities.AppointmentStatusConfirmed,
	}
}

func TestBookingService_HasConflict(t *testing.T) {
	base := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	t.Run("overlapping windows conflict", func(t *testing.T) {
		// Arrange
		f := newBookingFixture()
		f.appointmentRepo.On("ListActiveByProvider", mock.Anything, "barber-1", "").
			Return([]*entities.Appointment{activeAppointment(base, 60)}, nil)

		// Act
		conflict, err := f.service.HasConflict(context.Background(), "barber-1", base.Add(30*time.Minute), 30, "")

		// Assert
		require.NoError(t, err)
		assert.True(t, conflict)
	})

	t.Run("back to back appointments do not conflict", func(t *testing.T) {
		// Arrange
		f := newBookingFixture()
		f.appointmentRepo.On("ListActiveByProvider", mock.Anything, "barber-1", "").
			Return([]*entities.Appointment{activeAppointment(base, 60)}, nil)

		// Act
		conflict, err := f.service.HasConflict(context.Background(), "barber-1", base.Add(60*time.Minute), 30, "")

		// Assert
		require.NoError(t, err)
		assert.False(t, conflict)
	})

	t.Run("zero duration never conflicts and skips the store", func(t *testing.T) {
		// Arrange
		f := newBookingFixture()

		// Act
		conflict, err := f.service.HasConflict(context.Background(), "barber-1", base, 0, "")

		// Assert
		require.NoError(t, err)
		assert.False(t, conflict)
		f.appointmentRepo.AssertNotCalled(t, "ListActiveByProvider", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure reports a conflict", func(t *testing.T) {
		// Arrange
		f := newBookingFixture()
		f.appointmentRepo.On("ListActiveByProvider", mock.Anything, "barber-1", "").
			Return(nil, apperrors.NewInternalError("connection reset", nil))

		// Act
		conflict, err := f.service.HasConflict(context.Background(), "barber-1", base, 30, "")

		// Assert
		require.Error(t, err)
		assert.True(t, conflict)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
	})

	t.Run("the excluded appointment does not conflict with itself", func(t *testing.T) {
		// Arrange
		f := newBookingFixture()
		f.appointmentRepo.On("ListActiveByProvider", mock.Anything, "barber-1", "existing").
			Return([]*entities.Appointment{}, nil)

		// Act
		conflict, err := f.service.HasConflict(context.Background(), "barber-1", base, 30, "existing")

		// Assert
		require.NoError(t, err)
		assert.False(t, conflict)
	})
}

func TestBookingService_Book(t *testing.T) {
	newRequest := func(start time.Time) *entities.Appointment {
		return &entities.Appointment{
			CustomerID:      "cust-1",
			ProviderID:      "barber-1",
			ServiceID:       "svc-1",
			AppointmentDate: start,
		}
	}

	arrangeLookups := func(f *bookingFixture) {
		f.customerRepo.On("GetByID", mock.Anything, "cust-1").
			Return(&entities.Customer{ID: "cust-1", AccountStatus: entities.AccountStatusActive}, nil)
		f.serviceRepo.On("GetByID", mock.Anything, "svc-1").
			Return(&entities.Service{ID: "svc-1", DurationMinutes: 30, Price: 25}, nil)
		f.providerRepo.On("GetByID", mock.Anything, "barber-1").
			Return(weekProvider("09:00-17:00"), nil)
	}

	t.Run("books a valid appointment and recomputes statistics", func(t *testing.T) {
		// Arrange
		f := newBookingFixture()
		arrangeLookups(f)
		start := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
		f.appointmentRepo.On("ListActiveByProvider", mock.Anything, "barber-1", "").
			Return([]*entities.Appointment{}, nil)
		f.appointmentRepo.On("CreateConflictChecked", mock.Anything, mock.AnythingOfType("*entities.Appointment")).
			Return(nil)
		f.appointmentRepo.On("ListByCustomer", mock.Anything, "cust-1").
			Return([]*entities.Appointment{}, nil)
		f.customerRepo.On("UpdateStats", mock.Anything, "cust-1", mock.AnythingOfType("entities.CustomerStats")).
			Return(nil)

		appointment := newRequest(start)

		// Act
		err := f.service.Book(context.Background(), appointment)

		// Assert
		require.NoError(t, err)
		assert.NotEmpty(t, appointment.ID)
		assert.NotEmpty(t, appointment.BookingCode)
		assert.Equal(t, 30, appointment.Duration)
		assert.Equal(t, 25.0, appointment.Price)
		assert.Equal(t, entities.AppointmentStatusConfirmed, appointment.Status)
		assert.Equal(t, entities.SyncStatusSynced, appointment.SyncStatus)
		f.appointmentRepo.AssertExpectations(t)
		f.customerRepo.AssertCalled(t, "UpdateStats", mock.Anything, "cust-1", mock.AnythingOfType("entities.CustomerStats"))
	})

	t.Run("rejects a slot whose end falls past closing time", func(t *testing.T) {
		// Arrange
		f := newBookingFixture()
		arrangeLookups(f)
		// 16:45 + 30 minutes ends at 17:15, past a 17:00 close.
		start := time.Date(2026, 1, 5, 16, 45, 0, 0, time.UTC)

		// Act
		err := f.service.Book(context.Background(), newRequest(start))

		// Assert
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		f.appointmentRepo.AssertNotCalled(t, "CreateConflictChecked", mock.Anything, mock.Anything)
	})

	t.Run("rejects a day the provider does not work", func(t *testing.T) {
		// Arrange
		f := newBookingFixture()
		arrangeLookups(f)
		sunday := time.Date(2026, 1, 4, 10, 0, 0, 0, time.UTC)

		// Act
		err := f.service.Book(context.Background(), newRequest(sunday))

		// Assert
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("rejects an occupied window with a conflict error", func(t *testing.T) {
		// Arrange
		f := newBookingFixture()
		arrangeLookups(f)
		start := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
		f.appointmentRepo.On("ListActiveByProvider", mock.Anything, "barber-1", "").
			Return([]*entities.Appointment{activeAppointment(start.Add(-15*time.Minute), 30)}, nil)

		// Act
		err := f.service.Book(context.Background(), newRequest(start))

		// Assert
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
		f.appointmentRepo.AssertNotCalled(t, "CreateConflictChecked", mock.Anything, mock.Anything)
	})

	t.Run("rejects bookings from blocked customers", func(t *testing.T) {
		// Arrange
		f := newBookingFixture()
		f.customerRepo.On("GetByID", mock.Anything, "cust-1").
			Return(&entities.Customer{ID: "cust-1", AccountStatus: entities.AccountStatusBlocked}, nil)
		start := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

		// Act
		err := f.service.Book(context.Background(), newRequest(start))

		// Assert
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}

func TestBookingService_Reschedule(t *testing.T) {
	t.Run("rejects a new time that collides with another booking", func(t *testing.T) {
		// Arrange
		f := newBookingFixture()
		current := activeAppointment(time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC), 30)
		current.ID = "appt-1"
		f.appointmentRepo.On("GetByID", mock.Anything, "appt-1").Return(current, nil)
		f.providerRepo.On("GetByID", mock.Anything, "barber-1").Return(weekProvider("09:00-17:00"), nil)

		newStart := time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC)
		f.appointmentRepo.On("ListActiveByProvider", mock.Anything, "barber-1", "appt-1").
			Return([]*entities.Appointment{activeAppointment(newStart, 60)}, nil)

		// Act
		_, err := f.service.Reschedule(context.Background(), "appt-1", newStart)

		// Assert
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
		f.appointmentRepo.AssertNotCalled(t, "Reschedule", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("moves an appointment to a free window", func(t *testing.T) {
		// Arrange
		f := newBookingFixture()
		current := activeAppointment(time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC), 30)
		current.ID = "appt-1"
		f.appointmentRepo.On("GetByID", mock.Anything, "appt-1").Return(current, nil)
		f.providerRepo.On("GetByID", mock.Anything, "barber-1").Return(weekProvider("09:00-17:00"), nil)

		newStart := time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC)
		f.appointmentRepo.On("ListActiveByProvider", mock.Anything, "barber-1", "appt-1").
			Return([]*entities.Appointment{}, nil)
		f.appointmentRepo.On("Reschedule", mock.Anything, "appt-1", newStart).Return(nil)

		// Act
		updated, err := f.service.Reschedule(context.Background(), "appt-1", newStart)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, newStart, updated.AppointmentDate)
		f.appointmentRepo.AssertExpectations(t)
	})
}

func TestBookingService_UpdateStatusBatch(t *testing.T) {
	t.Run("continues past failures and recomputes each customer once", func(t *testing.T) {
		// Arrange
		f := newBookingFixture()
		f.appointmentRepo.On("UpdateStatus", mock.Anything, "a1", entities.AppointmentStatusCompleted).Return(nil)
		f.appointmentRepo.On("UpdateStatus", mock.Anything, "a2", entities.AppointmentStatusCompleted).
			Return(apperrors.NewNotFoundError("appointment not found"))
		f.appointmentRepo.On("UpdateStatus", mock.Anything, "a3", entities.AppointmentStatusCompleted).Return(nil)

		f.appointmentRepo.On("GetByID", mock.Anything, "a1").
			Return(&entities.Appointment{ID: "a1", CustomerID: "cust-1"}, nil)
		f.appointmentRepo.On("GetByID", mock.Anything, "a3").
			Return(&entities.Appointment{ID: "a3", CustomerID: "cust-1"}, nil)

		f.appointmentRepo.On("ListByCustomer", mock.Anything, "cust-1").
			Return([]*entities.Appointment{}, nil)
		f.customerRepo.On("UpdateStats", mock.Anything, "cust-1", mock.AnythingOfType("entities.CustomerStats")).
			Return(nil)

		// Act
		report, err := f.service.UpdateStatusBatch(context.Background(), []string{"a1", "a2", "a3"}, entities.AppointmentStatusCompleted)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 2, report.Updated)
		assert.Equal(t, 1, report.Failed)
		require.Len(t, report.Errors, 1)
		f.customerRepo.AssertNumberOfCalls(t, "UpdateStats", 1)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		// Arrange
		f := newBookingFixture()

		// Act
		_, err := f.service.UpdateStatusBatch(context.Background(), []string{"a1"}, entities.AppointmentStatus("finished"))

		// Assert
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}
