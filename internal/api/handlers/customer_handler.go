package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/clipline/barbershop-backend/internal/application/services"
	"github.com/clipline/barbershop-backend/internal/domain/entities"
	"github.com/clipline/barbershop-backend/internal/domain/repositories"
)

// CustomerService defines the interface for customer operations
type CustomerService interface {
	Create(ctx context.Context, customer *entities.Customer) error
	Update(ctx context.Context, customer *entities.Customer) error
	Get(ctx context.Context, id string) (*entities.Customer, error)
	List(ctx context.Context, filter repositories.CustomerFilter) ([]*entities.Customer, error)
	Delete(ctx context.Context, id string) error
}

// CustomerSyncService defines the sync operations exposed per customer
type CustomerSyncService interface {
	SyncCustomer(ctx context.Context, customerID string) (services.SyncResult, error)
}

// CustomerHandler handles customer requests
type CustomerHandler struct {
	service CustomerService
	sync    CustomerSyncService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(service CustomerService, sync CustomerSyncService) *CustomerHandler {
	return &CustomerHandler{
		service: service,
		sync:    sync,
	}
}

// CreateCustomer handles POST /api/customers
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var customer entities.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.service.Create(r.Context(), &customer); err != nil {
		respondAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, customer)
}

// GetCustomer handles GET /api/customers/{id}
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "customer ID is required")
		return
	}

	customer, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, customer)
}

// ListCustomers handles GET /api/customers
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repositories.CustomerFilter{
		AccountStatus: entities.AccountStatus(query.Get("accountStatus")),
		SyncStatus:    entities.SyncStatus(query.Get("syncStatus")),
		Search:        query.Get("search"),
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(query.Get("offset")); err == nil {
		filter.Offset = offset
	}

	customers, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"customers": customers,
		"count":     len(customers),
	})
}

// UpdateCustomer handles PATCH /api/customers/{id}
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "customer ID is required")
		return
	}

	existing, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}

	// Decode over the current record so omitted fields keep their values.
	if err := json.NewDecoder(r.Body).Decode(existing); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	existing.ID = id

	if err := h.service.Update(r.Context(), existing); err != nil {
		respondAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, existing)
}

// DeleteCustomer handles DELETE /api/customers/{id}
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "customer ID is required")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		respondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SyncCustomer handles POST /api/customers/{id}/sync
func (h *CustomerHandler) SyncCustomer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "customer ID is required")
		return
	}

	result, err := h.sync.SyncCustomer(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}

	payload := map[string]interface{}{
		"syncStatus": result.Status,
	}
	if result.ExternalID != nil {
		payload["externalId"] = *result.ExternalID
	}
	if result.Err != nil {
		payload["error"] = result.Err.Error()
	}

	respondWithJSON(w, http.StatusOK, payload)
}
