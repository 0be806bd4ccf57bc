package repositories

import (
	"context"

	"github.com/clipline/barbershop-backend/internal/domain/entities"
)

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	// Create creates a new customer
	Create(ctx context.Context, customer *entities.Customer) error

	// GetByID retrieves a customer by ID
	GetByID(ctx context.Context, id string) (*entities.Customer, error)

	// GetByEmail retrieves a customer by their unique email
	GetByEmail(ctx context.Context, email string) (*entities.Customer, error)

	// Update updates a customer's profile fields
	Update(ctx context.Context, customer *entities.Customer) error

	// UpdateStats persists derived statistics for a customer
	UpdateStats(ctx context.Context, id string, stats entities.CustomerStats) error

	// UpdateSyncState persists the sync status and external identifier
	UpdateSyncState(ctx context.Context, id string, status entities.SyncStatus, externalID *string) error

	// Delete removes a customer, cancelling their appointments first
	Delete(ctx context.Context, id string) error

	// List retrieves customers matching the filter
	List(ctx context.Context, filter CustomerFilter) ([]*entities.Customer, error)

	// ListBySyncStatus retrieves customers whose sync status is in the given set
	ListBySyncStatus(ctx context.Context, statuses []entities.SyncStatus) ([]*entities.Customer, error)
}

// CustomerFilter defines filters for listing customers
type CustomerFilter struct {
	AccountStatus entities.AccountStatus
	SyncStatus    entities.SyncStatus
	Search        string
	Limit         int
	Offset        int
}
