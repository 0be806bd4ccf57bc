package providers

import (
	"context"
	"time"
)

// CalendarProvider defines the interface to the external calendar system
// (SimplyBook.me or compatible). It is the only way the engine talks to the
// external system of record; implementations own token handling.
type CalendarProvider interface {
	// GetServiceList returns the external service catalog
	GetServiceList(ctx context.Context) ([]ExternalService, error)

	// GetUnitList returns the external provider (performer) catalog
	GetUnitList(ctx context.Context) ([]ExternalUnit, error)

	// GetCompanyInfo returns company profile and timezone settings
	GetCompanyInfo(ctx context.Context) (*CompanyInfo, error)

	// GetUnitWorkdayInfo returns the external working-hours map for a provider
	GetUnitWorkdayInfo(ctx context.Context, unitID string) (map[string]WorkdayInfo, error)

	// GetAvailableTimeIntervals returns bookable intervals for a service/provider/date
	GetAvailableTimeIntervals(ctx context.Context, serviceID, unitID string, date time.Time, count int) ([]TimeInterval, error)

	// GetStartTimeMatrix returns start times per day over a date range
	GetStartTimeMatrix(ctx context.Context, from, to time.Time, serviceID, unitID string, count int) (map[string][]string, error)

	// AddClient creates or updates a client record, returning its external id
	AddClient(ctx context.Context, client ClientData) (string, error)

	// Book creates a booking, returning the external id and booking code
	Book(ctx context.Context, req BookingRequest) (*BookingConfirmation, error)

	// CancelBooking cancels an external booking
	CancelBooking(ctx context.Context, bookingID string) error

	// RescheduleBook moves an external booking to a new start time
	RescheduleBook(ctx context.Context, bookingID string, newStart time.Time) error

	// SetWorkDayInfo pushes working-hours changes for a provider
	SetWorkDayInfo(ctx context.Context, unitID string, info WorkdayInfo) error
}

// ExternalService mirrors the external system's service record
type ExternalService struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Duration int     `json:"duration"`
	Price    float64 `json:"price"`
}

// ExternalUnit mirrors the external system's performer record
type ExternalUnit struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CompanyInfo mirrors the external company profile
type CompanyInfo struct {
	Login    string `json:"login"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

// WorkdayInfo is one day's working hours in the external system
type WorkdayInfo struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsDayOff  bool   `json:"is_day_off"`
}

// TimeInterval is one bookable interval returned by the external system
type TimeInterval struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ClientData is the payload for addClient
type ClientData struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// BookingRequest is the payload for book
type BookingRequest struct {
	ServiceID string
	UnitID    string
	ClientID  string
	StartTime time.Time
	Comment   string
}

// BookingConfirmation is the result of a successful external booking
type BookingConfirmation struct {
	ID          string `json:"id"`
	BookingCode string `json:"booking_code"`
}
