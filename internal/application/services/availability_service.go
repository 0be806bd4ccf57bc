package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/clipline/barbershop-backend/internal/domain/entities"
	"github.com/clipline/barbershop-backend/internal/domain/repositories"
	apperrors "github.com/clipline/barbershop-backend/pkg/errors"
)

const (
	gridStartMinute = 9 * 60
	gridEndMinute   = 18 * 60
	gridStepMinutes = 30

	defaultSlotMinutes = 30

	baselineThreshold = 0.3
	serviceThreshold  = 0.2
)

// AvailabilityService produces the advisory daily slot grid shown in the
// booking wizard. The grid is deterministic: the same date, provider and
// service always yield the same slots. The conflict detector remains the
// authority on whether a booking is actually accepted.
type AvailabilityService struct {
	providerRepo repositories.ProviderRepository
	serviceRepo  repositories.ServiceRepository
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(
	providerRepo repositories.ProviderRepository,
	serviceRepo repositories.ServiceRepository,
) *AvailabilityService {
	return &AvailabilityService{
		providerRepo: providerRepo,
		serviceRepo:  serviceRepo,
	}
}

// GetDailySlots returns the slot grid for one day. Provider and service are
// optional; when a provider is given its working hours gate the grid, and when
// a service is given its duration must fit inside the working-hours range.
func (s *AvailabilityService) GetDailySlots(ctx context.Context, date time.Time, providerID, serviceID string) ([]entities.Slot, error) {
	duration := defaultSlotMinutes
	threshold := baselineThreshold

	if serviceID != "" {
		threshold = serviceThreshold
		service, err := s.serviceRepo.GetByID(ctx, serviceID)
		if err != nil {
			return nil, err
		}
		if service.DurationMinutes > 0 {
			duration = service.DurationMinutes
		}
	}

	var provider *entities.Provider
	if providerID != "" {
		var err error
		provider, err = s.providerRepo.GetByID(ctx, providerID)
		if err != nil {
			return nil, err
		}
	}

	seed := availabilitySeed(date, providerID, serviceID)

	slots := make([]entities.Slot, 0, (gridEndMinute-gridStartMinute)/gridStepMinutes)
	for i, minute := 0, gridStartMinute; minute < gridEndMinute; i, minute = i+1, minute+gridStepMinutes {
		slot := entities.Slot{Time: fmt.Sprintf("%02d:%02d", minute/60, minute%60)}

		if provider == nil || withinWorkingHours(provider, date.Weekday(), minute, duration) {
			slot.Available = slotNoise(seed, i) > threshold
		}

		slots = append(slots, slot)
	}

	return slots, nil
}

// availabilitySeed hashes the grid inputs with FNV-1a so the pseudo-random
// pattern is stable across processes.
func availabilitySeed(date time.Time, providerID, serviceID string) uint32 {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s|%s|%s", date.Format("2006-01-02"), providerID, serviceID)
	return h.Sum32()
}

// slotNoise maps a seed and slot index to a stable value in [0, 1).
func slotNoise(seed uint32, i int) float64 {
	v := math.Sin(float64(seed)+float64(i)) * 43758.5453
	return v - math.Floor(v)
}

// withinWorkingHours reports whether a slot starting at startMinute and
// lasting durationMinutes fits entirely inside the provider's working hours
// for the given weekday. A nil working-hours entry means the day off.
func withinWorkingHours(provider *entities.Provider, day time.Weekday, startMinute, durationMinutes int) bool {
	hours, ok := provider.WorkingHours[day]
	if !ok || hours == nil {
		return false
	}

	workStart, workEnd, err := parseWorkingHours(*hours)
	if err != nil {
		return false
	}

	return startMinute >= workStart && startMinute+durationMinutes <= workEnd
}

// FitsWorkingHours reports whether a proposed appointment fits inside the
// provider's working hours. Used by the booking path as a hard gate.
func FitsWorkingHours(provider *entities.Provider, start time.Time, durationMinutes int) bool {
	return withinWorkingHours(provider, start.Weekday(), start.Hour()*60+start.Minute(), durationMinutes)
}

// parseWorkingHours parses a "HH:MM-HH:MM" range into minutes of day.
func parseWorkingHours(r string) (int, int, error) {
	parts := strings.SplitN(r, "-", 2)
	if len(parts) != 2 {
		return 0, 0, apperrors.NewValidationError("working hours must be in HH:MM-HH:MM format")
	}

	start, err := parseClock(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := parseClock(parts[1])
	if err != nil {
		return 0, 0, err
	}
	if end <= start {
		return 0, 0, apperrors.NewValidationError("working hours must end after they start")
	}

	return start, end, nil
}

func parseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, apperrors.NewValidationError("clock value must be in HH:MM format")
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, apperrors.NewValidationError("clock hour out of range")
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, apperrors.NewValidationError("clock minute out of range")
	}

	return hour*60 + minute, nil
}
