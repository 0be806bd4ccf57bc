package simplybook

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/clipline/barbershop-backend/internal/domain/providers"
)

// MockAdapter provides a deterministic in-memory calendar provider for local
// development and tests where no external system is configured.
type MockAdapter struct {
	nextID atomic.Int64
}

// NewMockAdapter creates a mock calendar provider
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{}
}

// GetServiceList returns a small fixed catalog
func (m *MockAdapter) GetServiceList(ctx context.Context) ([]providers.ExternalService, error) {
	return []providers.ExternalService{
		{ID: "1", Name: "Classic Cut", Duration: 30, Price: 25},
		{ID: "2", Name: "Cut & Beard Trim", Duration: 45, Price: 38},
		{ID: "3", Name: "Hot Towel Shave", Duration: 30, Price: 30},
	}, nil
}

// GetUnitList returns a small fixed provider list
func (m *MockAdapter) GetUnitList(ctx context.Context) ([]providers.ExternalUnit, error) {
	return []providers.ExternalUnit{
		{ID: "1", Name: "Marco"},
		{ID: "2", Name: "Dee"},
	}, nil
}

// GetCompanyInfo returns fixed company info
func (m *MockAdapter) GetCompanyInfo(ctx context.Context) (*providers.CompanyInfo, error) {
	return &providers.CompanyInfo{Login: "mock", Name: "Mock Barbershop", Timezone: "UTC"}, nil
}

// GetUnitWorkdayInfo returns a standard Tuesday-Saturday week
func (m *MockAdapter) GetUnitWorkdayInfo(ctx context.Context, unitID string) (map[string]providers.WorkdayInfo, error) {
	return map[string]providers.WorkdayInfo{
		"monday":    {IsDayOff: true},
		"tuesday":   {StartTime: "09:00", EndTime: "18:00"},
		"wednesday": {StartTime: "09:00", EndTime: "18:00"},
		"thursday":  {StartTime: "09:00", EndTime: "18:00"},
		"friday":    {StartTime: "09:00", EndTime: "18:00"},
		"saturday":  {StartTime: "10:00", EndTime: "16:00"},
		"sunday":    {IsDayOff: true},
	}, nil
}

// GetAvailableTimeIntervals returns hourly intervals across the business day
func (m *MockAdapter) GetAvailableTimeIntervals(ctx context.Context, serviceID, unitID string, date time.Time, count int) ([]providers.TimeInterval, error) {
	intervals := make([]providers.TimeInterval, 0, 9)
	for h := 9; h < 18; h++ {
		intervals = append(intervals, providers.TimeInterval{
			From: fmt.Sprintf("%02d:00", h),
			To:   fmt.Sprintf("%02d:00", h+1),
		})
	}
	return intervals, nil
}

// GetStartTimeMatrix returns the same start times for every day in range
func (m *MockAdapter) GetStartTimeMatrix(ctx context.Context, from, to time.Time, serviceID, unitID string, count int) (map[string][]string, error) {
	starts := []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"}
	matrix := make(map[string][]string)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		matrix[d.Format(dateFormat)] = starts
	}
	return matrix, nil
}

// AddClient returns a synthetic external client id
func (m *MockAdapter) AddClient(ctx context.Context, client providers.ClientData) (string, error) {
	return fmt.Sprintf("mock-client-%d", m.nextID.Add(1)), nil
}

// Book returns a synthetic confirmation
func (m *MockAdapter) Book(ctx context.Context, req providers.BookingRequest) (*providers.BookingConfirmation, error) {
	n := m.nextID.Add(1)
	return &providers.BookingConfirmation{
		ID:          fmt.Sprintf("mock-booking-%d", n),
		BookingCode: fmt.Sprintf("MB%04d", n),
	}, nil
}

// CancelBooking is a no-op for the mock provider
func (m *MockAdapter) CancelBooking(ctx context.Context, bookingID string) error {
	return nil
}

// RescheduleBook is a no-op for the mock provider
func (m *MockAdapter) RescheduleBook(ctx context.Context, bookingID string, newStart time.Time) error {
	return nil
}

// SetWorkDayInfo is a no-op for the mock provider
func (m *MockAdapter) SetWorkDayInfo(ctx context.Context, unitID string, info providers.WorkdayInfo) error {
	return nil
}
