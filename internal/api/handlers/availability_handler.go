package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/clipline/barbershop-backend/internal/domain/entities"
)

// AvailabilityService defines the interface for slot grid generation
type AvailabilityService interface {
	GetDailySlots(ctx context.Context, date time.Time, providerID, serviceID string) ([]entities.Slot, error)
}

// AvailabilityHandler handles availability requests
type AvailabilityHandler struct {
	service AvailabilityService
}

// NewAvailabilityHandler creates a new availability handler
func NewAvailabilityHandler(service AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
	}
}

// GetSlots handles GET /api/availability/slots
func (h *AvailabilityHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	dateStr := query.Get("date")
	if dateStr == "" {
		respondWithError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid date format (use YYYY-MM-DD)")
		return
	}

	slots, err := h.service.GetDailySlots(r.Context(), date, query.Get("providerId"), query.Get("serviceId"))
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"date":  dateStr,
		"slots": slots,
	})
}
