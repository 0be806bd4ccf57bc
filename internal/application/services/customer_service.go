package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clipline/barbershop-backend/internal/domain/entities"
	"github.com/clipline/barbershop-backend/internal/domain/repositories"
	apperrors "github.com/clipline/barbershop-backend/pkg/errors"
)

// CustomerService handles customer lifecycle operations. Every local write
// succeeds before any push to the external system is attempted; push failures
// surface only through the customer's sync status.
type CustomerService struct {
	repo        repositories.CustomerRepository
	syncService *SyncService
}

// NewCustomerService creates a new customer service
func NewCustomerService(repo repositories.CustomerRepository, syncService *SyncService) *CustomerService {
	return &CustomerService{
		repo:        repo,
		syncService: syncService,
	}
}

// Create validates and persists a new customer, then hands the record to the
// sync state machine when auto-sync is on.
func (s *CustomerService) Create(ctx context.Context, customer *entities.Customer) error {
	if err := validateCustomer(customer); err != nil {
		return err
	}

	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	if customer.AccountStatus == "" {
		customer.AccountStatus = entities.AccountStatusActive
	}
	customer.SyncStatus = s.syncService.InitialCustomerStatus()
	now := time.Now()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	if err := s.repo.Create(ctx, customer); err != nil {
		return err
	}

	if customer.SyncStatus.IsPending() {
		result := s.syncService.PushCustomer(ctx, customer)
		customer.SyncStatus = result.Status
		customer.ExternalID = result.ExternalID
	}

	return nil
}

// Update persists profile changes and marks the customer dirty so the next
// push reconciles the external record.
func (s *CustomerService) Update(ctx context.Context, customer *entities.Customer) error {
	if err := validateCustomer(customer); err != nil {
		return err
	}

	customer.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, customer); err != nil {
		return err
	}

	if err := s.syncService.MarkCustomerDirty(ctx, customer); err != nil {
		return err
	}

	if customer.SyncStatus.IsPending() {
		result := s.syncService.PushCustomer(ctx, customer)
		customer.SyncStatus = result.Status
		customer.ExternalID = result.ExternalID
	}

	return nil
}

// Get retrieves a customer by id
func (s *CustomerService) Get(ctx context.Context, id string) (*entities.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByEmail retrieves a customer by email
func (s *CustomerService) GetByEmail(ctx context.Context, email string) (*entities.Customer, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// List retrieves customers matching the filter
func (s *CustomerService) List(ctx context.Context, filter repositories.CustomerFilter) ([]*entities.Customer, error) {
	return s.repo.List(ctx, filter)
}

// Delete removes a customer and cancels their active appointments
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func validateCustomer(customer *entities.Customer) error {
	customer.Email = strings.ToLower(strings.TrimSpace(customer.Email))
	customer.FirstName = strings.TrimSpace(customer.FirstName)
	customer.LastName = strings.TrimSpace(customer.LastName)

	if customer.Email == "" {
		return apperrors.NewValidationError("email is required")
	}
	if !strings.Contains(customer.Email, "@") {
		return apperrors.NewValidationError("email is not valid")
	}
	if customer.FirstName == "" && customer.LastName == "" {
		return apperrors.NewValidationError("a first or last name is required")
	}
	if customer.ConversationPreference < 0 || customer.ConversationPreference > 3 {
		return apperrors.NewValidationError("conversation preference must be between 0 and 3")
	}

	return nil
}
