package repositories

import (
	"context"

	"github.com/clipline/barbershop-backend/internal/domain/entities"
)

// ProviderRepository defines the interface for provider data operations
type ProviderRepository interface {
	// Create creates a new provider
	Create(ctx context.Context, provider *entities.Provider) error

	// GetByID retrieves a provider by ID, including its working-hours map
	GetByID(ctx context.Context, id string) (*entities.Provider, error)

	// List retrieves all providers
	List(ctx context.Context) ([]*entities.Provider, error)

	// Update updates a provider's profile and restriction flags
	Update(ctx context.Context, provider *entities.Provider) error

	// SetWorkingHours replaces the working-hours entry for one weekday;
	// a nil range marks the day off.
	SetWorkingHours(ctx context.Context, id string, day int, hours *string) error
}

// ServiceRepository defines the interface for service catalog operations
type ServiceRepository interface {
	// Create creates a new service
	Create(ctx context.Context, service *entities.Service) error

	// GetByID retrieves a service by ID
	GetByID(ctx context.Context, id string) (*entities.Service, error)

	// List retrieves all services
	List(ctx context.Context) ([]*entities.Service, error)

	// Update updates a service
	Update(ctx context.Context, service *entities.Service) error
}
