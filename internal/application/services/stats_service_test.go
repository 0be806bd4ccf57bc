package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clipline/barbershop-backend/internal/domain/entities"
)

func TestStatsService_Recompute(t *testing.T) {
	first := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	second := time.Date(2026, 2, 2, 14, 0, 0, 0, time.UTC)

	history := []*entities.Appointment{
		{ID: "a1", CustomerID: "cust-1", AppointmentDate: first, Price: 40, Status: entities.AppointmentStatusCompleted},
		{ID: "a2", CustomerID: "cust-1", AppointmentDate: second, Price: 60, Status: entities.AppointmentStatusCompleted},
		{ID: "a3", CustomerID: "cust-1", AppointmentDate: second.AddDate(0, 0, 7), Price: 25, Status: entities.AppointmentStatusNoShow},
		{ID: "a4", CustomerID: "cust-1", AppointmentDate: second.AddDate(0, 0, 14), Price: 25, Status: entities.AppointmentStatusCancelled},
		{ID: "a5", CustomerID: "cust-1", AppointmentDate: second.AddDate(0, 1, 0), Price: 25, Status: entities.AppointmentStatusConfirmed},
	}

	t.Run("only completed appointments contribute spend and last visit", func(t *testing.T) {
		// Arrange
		customerRepo := new(MockCustomerRepository)
		appointmentRepo := new(MockAppointmentRepository)
		appointmentRepo.On("ListByCustomer", mock.Anything, "cust-1").Return(history, nil)
		customerRepo.On("UpdateStats", mock.Anything, "cust-1", mock.AnythingOfType("entities.CustomerStats")).Return(nil)

		service := NewStatsService(customerRepo, appointmentRepo)

		// Act
		stats, err := service.Recompute(context.Background(), "cust-1")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 100.0, stats.TotalSpent)
		assert.Equal(t, 10, stats.LoyaltyPoints)
		assert.Equal(t, 1, stats.NoShowCount)
		assert.Equal(t, 1, stats.CancellationCount)
		require.NotNil(t, stats.LastVisit)
		assert.Equal(t, second, *stats.LastVisit)
	})

	t.Run("loyalty points round down", func(t *testing.T) {
		// Arrange
		customerRepo := new(MockCustomerRepository)
		appointmentRepo := new(MockAppointmentRepository)
		appointmentRepo.On("ListByCustomer", mock.Anything, "cust-1").Return([]*entities.Appointment{
			{ID: "a1", AppointmentDate: first, Price: 39.99, Status: entities.AppointmentStatusCompleted},
		}, nil)
		customerRepo.On("UpdateStats", mock.Anything, "cust-1", mock.AnythingOfType("entities.CustomerStats")).Return(nil)

		service := NewStatsService(customerRepo, appointmentRepo)

		// Act
		stats, err := service.Recompute(context.Background(), "cust-1")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 3, stats.LoyaltyPoints)
	})

	t.Run("recomputing twice yields identical results", func(t *testing.T) {
		// Arrange
		customerRepo := new(MockCustomerRepository)
		appointmentRepo := new(MockAppointmentRepository)
		appointmentRepo.On("ListByCustomer", mock.Anything, "cust-1").Return(history, nil)
		customerRepo.On("UpdateStats", mock.Anything, "cust-1", mock.AnythingOfType("entities.CustomerStats")).Return(nil)

		service := NewStatsService(customerRepo, appointmentRepo)

		// Act
		firstRun, err := service.Recompute(context.Background(), "cust-1")
		require.NoError(t, err)
		secondRun, err := service.Recompute(context.Background(), "cust-1")
		require.NoError(t, err)

		// Assert
		assert.Equal(t, firstRun, secondRun)
		customerRepo.AssertNumberOfCalls(t, "UpdateStats", 2)
	})

	t.Run("a customer with no completed visits has no last visit", func(t *testing.T) {
		// Arrange
		customerRepo := new(MockCustomerRepository)
		appointmentRepo := new(MockAppointmentRepository)
		appointmentRepo.On("ListByCustomer", mock.Anything, "cust-1").Return([]*entities.Appointment{
			{ID: "a1", AppointmentDate: first, Price: 25, Status: entities.AppointmentStatusCancelled},
		}, nil)
		customerRepo.On("UpdateStats", mock.Anything, "cust-1", mock.AnythingOfType("entities.CustomerStats")).Return(nil)

		service := NewStatsService(customerRepo, appointmentRepo)

		// Act
		stats, err := service.Recompute(context.Background(), "cust-1")

		// Assert
		require.NoError(t, err)
		assert.Nil(t, stats.LastVisit)
		assert.Zero(t, stats.TotalSpent)
		assert.Zero(t, stats.LoyaltyPoints)
		assert.Equal(t, 1, stats.CancellationCount)
	})
}
