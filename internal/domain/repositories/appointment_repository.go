package repositories

import (
	"context"
	"time"

	"github.com/clipline/barbershop-backend/internal/domain/entities"
)

// AppointmentRepository defines the interface for appointment data operations
type AppointmentRepository interface {
	// Create creates a new appointment
	Create(ctx context.Context, appointment *entities.Appointment) error

	// CreateConflictChecked inserts the appointment inside a serializable
	// transaction that re-validates the provider's calendar for overlap.
	// Returns a CONFLICT error if the window is taken.
	CreateConflictChecked(ctx context.Context, appointment *entities.Appointment) error

	// GetByID retrieves an appointment by ID
	GetByID(ctx context.Context, id string) (*entities.Appointment, error)

	// UpdateStatus transitions an appointment's status
	UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus) error

	// UpdateSyncState persists the sync status and external identifier
	UpdateSyncState(ctx context.Context, id string, status entities.SyncStatus, externalID *string) error

	// Reschedule moves an appointment to a new start time
	Reschedule(ctx context.Context, id string, newDate time.Time) error

	// List retrieves appointments matching the filter
	List(ctx context.Context, filter AppointmentFilter) ([]*entities.Appointment, error)

	// ListActiveByProvider retrieves confirmed/in_progress appointments for a
	// provider, excluding excludeID when non-empty.
	ListActiveByProvider(ctx context.Context, providerID, excludeID string) ([]*entities.Appointment, error)

	// ListByCustomer retrieves all appointments for a customer
	ListByCustomer(ctx context.Context, customerID string) ([]*entities.Appointment, error)
}

// AppointmentFilter defines filters for listing appointments.
// Fields are tagged and interpreted uniformly by the store adapter.
type AppointmentFilter struct {
	Statuses   []entities.AppointmentStatus
	ProviderID string
	CustomerID string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}
