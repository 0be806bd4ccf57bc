package simplybook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/clipline/barbershop-backend/internal/domain/providers"
	apperrors "github.com/clipline/barbershop-backend/pkg/errors"
)

const (
	dateFormat = "2006-01-02"
	timeFormat = "15:04:05"
)

// Adapter implements providers.CalendarProvider over the SimplyBook wire
// client. It owns nothing but translation; token handling lives in Client.
type Adapter struct {
	client *Client
}

// NewAdapter creates a new SimplyBook adapter
func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client}
}

// GetServiceList returns the external service catalog
func (a *Adapter) GetServiceList(ctx context.Context) ([]providers.ExternalService, error) {
	// The remote returns a map keyed by service id.
	var raw map[string]struct {
		ID       string  `json:"id"`
		Name     string  `json:"name"`
		Duration int     `json:"duration"`
		Price    float64 `json:"price"`
	}
	if err := a.client.Call(ctx, "getServiceList", nil, &raw); err != nil {
		return nil, err
	}

	services := make([]providers.ExternalService, 0, len(raw))
	for id, item := range raw {
		if item.ID == "" {
			item.ID = id
		}
		services = append(services, providers.ExternalService{
			ID:       item.ID,
			Name:     item.Name,
			Duration: item.Duration,
			Price:    item.Price,
		})
	}
	return services, nil
}

// GetUnitList returns the external provider catalog
func (a *Adapter) GetUnitList(ctx context.Context) ([]providers.ExternalUnit, error) {
	var raw map[string]struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := a.client.Call(ctx, "getUnitList", nil, &raw); err != nil {
		return nil, err
	}

	units := make([]providers.ExternalUnit, 0, len(raw))
	for id, item := range raw {
		if item.ID == "" {
			item.ID = id
		}
		units = append(units, providers.ExternalUnit{ID: item.ID, Name: item.Name})
	}
	return units, nil
}

// GetCompanyInfo returns company profile and timezone settings
func (a *Adapter) GetCompanyInfo(ctx context.Context) (*providers.CompanyInfo, error) {
	var info providers.CompanyInfo
	if err := a.client.Call(ctx, "getCompanyInfo", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetUnitWorkdayInfo returns the external working-hours map for a provider,
// keyed by date string.
func (a *Adapter) GetUnitWorkdayInfo(ctx context.Context, unitID string) (map[string]providers.WorkdayInfo, error) {
	var raw map[string]providers.WorkdayInfo
	err := a.client.Call(ctx, "getUnitWorkdayInfo", []interface{}{unitID}, &raw)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// GetAvailableTimeIntervals returns bookable intervals for a service/provider/date
func (a *Adapter) GetAvailableTimeIntervals(ctx context.Context, serviceID, unitID string, date time.Time, count int) ([]providers.TimeInterval, error) {
	var intervals []providers.TimeInterval
	err := a.client.Call(ctx, "getServiceAvailableTimeIntervals",
		[]interface{}{serviceID, unitID, date.Format(dateFormat), count}, &intervals)
	if err != nil {
		return nil, err
	}
	return intervals, nil
}

// GetStartTimeMatrix returns start times per day over a date range
func (a *Adapter) GetStartTimeMatrix(ctx context.Context, from, to time.Time, serviceID, unitID string, count int) (map[string][]string, error) {
	var matrix map[string][]string
	err := a.client.Call(ctx, "getStartTimeMatrix",
		[]interface{}{from.Format(dateFormat), to.Format(dateFormat), serviceID, unitID, count}, &matrix)
	if err != nil {
		return nil, err
	}
	return matrix, nil
}

// AddClient creates or updates a client record, returning its external id
func (a *Adapter) AddClient(ctx context.Context, client providers.ClientData) (string, error) {
	params := []interface{}{map[string]string{
		"name":  client.Name,
		"email": client.Email,
		"phone": client.Phone,
	}}

	// The remote returns either a bare id or a numeric id; decode loosely.
	var id json.Number
	if err := a.client.Call(ctx, "addClient", params, &id); err != nil {
		return "", err
	}
	return id.String(), nil
}

// Book creates a booking, returning the external id and booking code
func (a *Adapter) Book(ctx context.Context, req providers.BookingRequest) (*providers.BookingConfirmation, error) {
	additional := map[string]string{}
	if req.Comment != "" {
		additional["comment"] = req.Comment
	}

	var result struct {
		Bookings []providers.BookingConfirmation `json:"bookings"`
	}
	err := a.client.Call(ctx, "book", []interface{}{
		req.ServiceID,
		req.UnitID,
		req.ClientID,
		req.StartTime.Format(dateFormat),
		req.StartTime.Format(timeFormat),
		additional,
	}, &result)
	if err != nil {
		return nil, err
	}

	if len(result.Bookings) == 0 {
		return nil, apperrors.NewExternalError("book returned no bookings", nil)
	}
	return &result.Bookings[0], nil
}

// CancelBooking cancels an external booking
func (a *Adapter) CancelBooking(ctx context.Context, bookingID string) error {
	var success bool
	if err := a.client.Call(ctx, "cancelBooking", []interface{}{bookingID}, &success); err != nil {
		return err
	}
	if !success {
		return apperrors.NewExternalError("cancelBooking was rejected by the external system", nil)
	}
	return nil
}

// RescheduleBook moves an external booking to a new start time
func (a *Adapter) RescheduleBook(ctx context.Context, bookingID string, newStart time.Time) error {
	return a.client.Call(ctx, "rescheduleBook", []interface{}{
		bookingID,
		newStart.Format(dateFormat),
		newStart.Format(timeFormat),
	}, nil)
}

// SetWorkDayInfo pushes working-hours changes for a provider
func (a *Adapter) SetWorkDayInfo(ctx context.Context, unitID string, info providers.WorkdayInfo) error {
	return a.client.Call(ctx, "setWorkDayInfo", []interface{}{
		map[string]interface{}{
			"unit_group_id": unitID,
			"start_time":    info.StartTime,
			"end_time":      info.EndTime,
			"is_day_off":    info.IsDayOff,
		},
	}, nil)
}
