package handlers

import (
	"context"
	"net/http"

	"github.com/clipline/barbershop-backend/internal/application/services"
)

// SyncService defines the interface for bulk sync operations
type SyncService interface {
	SyncAllPending(ctx context.Context) (*services.SweepReport, error)
}

// SyncHandler handles reconciliation sweep requests
type SyncHandler struct {
	service SyncService
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(service SyncService) *SyncHandler {
	return &SyncHandler{
		service: service,
	}
}

// SyncCustomers handles POST /api/sync/customers
func (h *SyncHandler) SyncCustomers(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.SyncAllPending(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}
