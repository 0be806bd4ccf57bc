package services

import (
	"context"
	"math"

	"github.com/clipline/barbershop-backend/internal/domain/entities"
	"github.com/clipline/barbershop-backend/internal/domain/repositories"
)

// loyaltyPointsPerUnit is the spend required to earn one loyalty point.
const loyaltyPointsPerUnit = 10.0

// StatsService recomputes a customer's derived statistics from their full
// appointment history. Always recomputing from scratch keeps the numbers
// correct under any sequence of status transitions, including reversals.
type StatsService struct {
	customerRepo    repositories.CustomerRepository
	appointmentRepo repositories.AppointmentRepository
}

// NewStatsService creates a new stats service
func NewStatsService(
	customerRepo repositories.CustomerRepository,
	appointmentRepo repositories.AppointmentRepository,
) *StatsService {
	return &StatsService{
		customerRepo:    customerRepo,
		appointmentRepo: appointmentRepo,
	}
}

// Recompute rebuilds and persists the customer's statistics. Only completed
// appointments contribute to spend, loyalty points and the last visit date.
func (s *StatsService) Recompute(ctx context.Context, customerID string) (*entities.CustomerStats, error) {
	appointments, err := s.appointmentRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	stats := entities.CustomerStats{}
	for _, appt := range appointments {
		switch appt.Status {
		case entities.AppointmentStatusNoShow:
			stats.NoShowCount++
		case entities.AppointmentStatusCancelled:
			stats.CancellationCount++
		case entities.AppointmentStatusCompleted:
			stats.TotalSpent += appt.Price
			if stats.LastVisit == nil || appt.AppointmentDate.After(*stats.LastVisit) {
				visit := appt.AppointmentDate
				stats.LastVisit = &visit
			}
		}
	}
	stats.LoyaltyPoints = int(math.Floor(stats.TotalSpent / loyaltyPointsPerUnit))

	if err := s.customerRepo.UpdateStats(ctx, customerID, stats); err != nil {
		return nil, err
	}

	return &stats, nil
}
