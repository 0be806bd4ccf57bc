package entities

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusConfirmed  AppointmentStatus = "confirmed"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
	AppointmentStatusNoShow     AppointmentStatus = "no_show"
)

// IsActive reports whether the appointment occupies its provider's calendar.
func (s AppointmentStatus) IsActive() bool {
	return s == AppointmentStatusConfirmed || s == AppointmentStatusInProgress
}

// IsValid reports whether s is a known appointment status.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusConfirmed, AppointmentStatusInProgress,
		AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// Appointment represents a booked appointment on a provider's calendar
type Appointment struct {
	ID         string `json:"id" db:"id"`
	CustomerID string `json:"customer_id" db:"customer_id"`
	ProviderID string `json:"provider_id" db:"provider_id"`
	ServiceID  string `json:"service_id" db:"service_id"`

	AppointmentDate time.Time         `json:"appointment_date" db:"appointment_date"`
	Duration        int               `json:"duration" db:"duration"`
	Price           float64           `json:"price" db:"price"`
	Status          AppointmentStatus `json:"status" db:"status"`
	Notes           string            `json:"notes,omitempty" db:"notes"`

	// BookingCode is the short human-facing reference, distinct from ID.
	BookingCode string `json:"booking_code" db:"booking_code"`

	SyncStatus SyncStatus `json:"syncStatus" db:"sync_status"`
	ExternalID *string    `json:"externalId,omitempty" db:"external_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Window returns the half-open interval [start, end) the appointment occupies.
func (a *Appointment) Window() (start, end time.Time) {
	return a.AppointmentDate, a.AppointmentDate.Add(time.Duration(a.Duration) * time.Minute)
}

// Overlaps reports whether two appointments' windows intersect.
// Back-to-back appointments (end == start) do not overlap.
func (a *Appointment) Overlaps(other *Appointment) bool {
	if a.Duration <= 0 || other.Duration <= 0 {
		return false
	}
	aStart, aEnd := a.Window()
	bStart, bEnd := other.Window()
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
