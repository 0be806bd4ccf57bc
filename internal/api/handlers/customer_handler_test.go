package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clipline/barbershop-backend/internal/application/services"
	"github.com/clipline/barbershop-backend/internal/domain/entities"
	"github.com/clipline/barbershop-backend/internal/domain/repositories"
	apperrors "github.com/clipline/barbershop-backend/pkg/errors"
)

// MockCustomerService is a mock implementation of CustomerService
type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) Create(ctx context.Context, customer *entities.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerService) Update(ctx context.Context, customer *entities.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerService) Get(ctx context.Context, id string) (*entities.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Customer), args.Error(1)
}

func (m *MockCustomerService) List(ctx context.Context, filter repositories.CustomerFilter) ([]*entities.Customer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Customer), args.Error(1)
}

func (m *MockCustomerService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCustomerSyncService is a mock implementation of CustomerSyncService
type MockCustomerSyncService struct {
	mock.Mock
}

func (m *MockCustomerSyncService) SyncCustomer(ctx context.Context, customerID string) (services.SyncResult, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(services.SyncResult), args.Error(1)
}

func TestCustomerHandler_CreateCustomer(t *testing.T) {
	t.Run("returns 201 with the stored customer and sync status", func(t *testing.T) {
		// Arrange
		service := new(MockCustomerService)
		service.On("Create", mock.Anything, mock.AnythingOfType("*entities.Customer")).
			Run(func(args mock.Arguments) {
				customer := args.Get(1).(*entities.Customer)
				customer.ID = "cust-1"
				customer.SyncStatus = entities.SyncStatusPendingCreation
			}).
			Return(nil)
		handler := NewCustomerHandler(service, new(MockCustomerSyncService))

		body, _ := json.Marshal(map[string]string{
			"email":      "dee@example.com",
			"first_name": "Dee",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/customers", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		// Act
		handler.CreateCustomer(rec, req)

		// Assert
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"syncStatus":"pending_simplybook_creation"`)
	})

	t.Run("maps a duplicate email to 409", func(t *testing.T) {
		// Arrange
		service := new(MockCustomerService)
		service.On("Create", mock.Anything, mock.AnythingOfType("*entities.Customer")).
			Return(apperrors.NewConflictError("a customer with this email already exists"))
		handler := NewCustomerHandler(service, new(MockCustomerSyncService))

		body, _ := json.Marshal(map[string]string{"email": "dee@example.com", "first_name": "Dee"})
		req := httptest.NewRequest(http.MethodPost, "/api/customers", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		// Act
		handler.CreateCustomer(rec, req)

		// Assert
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestCustomerHandler_UpdateCustomer(t *testing.T) {
	t.Run("merges the patch over the stored record", func(t *testing.T) {
		// Arrange
		service := new(MockCustomerService)
		service.On("Get", mock.Anything, "cust-1").
			Return(&entities.Customer{ID: "cust-1", Email: "dee@example.com", FirstName: "Dee", Phone: "+15551234"}, nil)
		service.On("Update", mock.Anything, mock.MatchedBy(func(c *entities.Customer) bool {
			return c.ID == "cust-1" && c.Phone == "+15559999" && c.Email == "dee@example.com"
		})).Return(nil)
		handler := NewCustomerHandler(service, new(MockCustomerSyncService))

		body, _ := json.Marshal(map[string]string{"phone": "+15559999"})
		req := httptest.NewRequest(http.MethodPatch, "/api/customers/cust-1", bytes.NewReader(body))
		req.SetPathValue("id", "cust-1")
		rec := httptest.NewRecorder()

		// Act
		handler.UpdateCustomer(rec, req)

		// Assert
		require.Equal(t, http.StatusOK, rec.Code)
		service.AssertExpectations(t)
	})

	t.Run("maps a missing customer to 404", func(t *testing.T) {
		// Arrange
		service := new(MockCustomerService)
		service.On("Get", mock.Anything, "missing").
			Return(nil, apperrors.NewNotFoundError("customer not found"))
		handler := NewCustomerHandler(service, new(MockCustomerSyncService))

		req := httptest.NewRequest(http.MethodPatch, "/api/customers/missing", bytes.NewReader([]byte("{}")))
		req.SetPathValue("id", "missing")
		rec := httptest.NewRecorder()

		// Act
		handler.UpdateCustomer(rec, req)

		// Assert
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCustomerHandler_SyncCustomer(t *testing.T) {
	t.Run("a successful push reports synced and the external id", func(t *testing.T) {
		// Arrange
		externalID := "ext-42"
		syncService := new(MockCustomerSyncService)
		syncService.On("SyncCustomer", mock.Anything, "cust-1").
			Return(services.SyncResult{Status: entities.SyncStatusSynced, ExternalID: &externalID}, nil)
		handler := NewCustomerHandler(new(MockCustomerService), syncService)

		req := httptest.NewRequest(http.MethodPost, "/api/customers/cust-1/sync", nil)
		req.SetPathValue("id", "cust-1")
		rec := httptest.NewRecorder()

		// Act
		handler.SyncCustomer(rec, req)

		// Assert
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"syncStatus":"synced"`)
		assert.Contains(t, rec.Body.String(), `"externalId":"ext-42"`)
	})

	t.Run("a failed push still returns 200 with the error state", func(t *testing.T) {
		// Arrange
		syncService := new(MockCustomerSyncService)
		syncService.On("SyncCustomer", mock.Anything, "cust-1").
			Return(services.SyncResult{
				Status: entities.SyncStatusError,
				Err:    apperrors.NewExternalError("remote unavailable", nil),
			}, nil)
		handler := NewCustomerHandler(new(MockCustomerService), syncService)

		req := httptest.NewRequest(http.MethodPost, "/api/customers/cust-1/sync", nil)
		req.SetPathValue("id", "cust-1")
		rec := httptest.NewRecorder()

		// Act
		handler.SyncCustomer(rec, req)

		// Assert
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"syncStatus":"error"`)
	})
}

func TestCustomerHandler_ListCustomers(t *testing.T) {
	t.Run("passes query filters through to the service", func(t *testing.T) {
		// Arrange
		service := new(MockCustomerService)
		service.On("List", mock.Anything, repositories.CustomerFilter{
			SyncStatus: entities.SyncStatusError,
			Limit:      10,
		}).Return([]*entities.Customer{{ID: "cust-1"}}, nil)
		handler := NewCustomerHandler(service, new(MockCustomerSyncService))

		req := httptest.NewRequest(http.MethodGet, "/api/customers?syncStatus=error&limit=10", nil)
		rec := httptest.NewRecorder()

		// Act
		handler.ListCustomers(rec, req)

		// Assert
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"count":1`)
		service.AssertExpectations(t)
	})
}
