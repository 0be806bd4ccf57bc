package handlers

import (
	"context"
	"net/http"

	"github.com/clipline/barbershop-backend/internal/domain/providers"
)

// CatalogService defines the interface for external catalog reads
type CatalogService interface {
	GetServices(ctx context.Context) ([]providers.ExternalService, error)
	GetUnits(ctx context.Context) ([]providers.ExternalUnit, error)
	GetCompanyInfo(ctx context.Context) (*providers.CompanyInfo, error)
}

// CatalogHandler handles catalog requests
type CatalogHandler struct {
	service CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service CatalogService) *CatalogHandler {
	return &CatalogHandler{
		service: service,
	}
}

// GetServices handles GET /api/catalog/services
func (h *CatalogHandler) GetServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.service.GetServices(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"services": services,
	})
}

// GetUnits handles GET /api/catalog/units
func (h *CatalogHandler) GetUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.service.GetUnits(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"units": units,
	})
}

// GetCompanyInfo handles GET /api/catalog/company
func (h *CatalogHandler) GetCompanyInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.GetCompanyInfo(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, info)
}
