package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clipline/barbershop-backend/internal/domain/entities"
	"github.com/clipline/barbershop-backend/internal/domain/repositories"
	"github.com/clipline/barbershop-backend/internal/infrastructure/observability"
	apperrors "github.com/clipline/barbershop-backend/pkg/errors"
)

// BookingService owns the appointment lifecycle: conflict detection, the
// guarded booking write, status transitions, cancellation and rescheduling.
type BookingService struct {
	appointmentRepo repositories.AppointmentRepository
	customerRepo    repositories.CustomerRepository
	providerRepo    repositories.ProviderRepository
	serviceRepo     repositories.ServiceRepository
	syncService     *SyncService
	statsService    *StatsService
	metrics         *observability.Metrics
}

// NewBookingService creates a new booking service
func NewBookingService(
	appointmentRepo repositories.AppointmentRepository,
	customerRepo repositories.CustomerRepository,
	providerRepo repositories.ProviderRepository,
	serviceRepo repositories.ServiceRepository,
	syncService *SyncService,
	statsService *StatsService,
) *BookingService {
	return &BookingService{
		appointmentRepo: appointmentRepo,
		customerRepo:    customerRepo,
		providerRepo:    providerRepo,
		serviceRepo:     serviceRepo,
		syncService:     syncService,
		statsService:    statsService,
	}
}

// SetMetrics attaches booking metrics. Optional; without it nothing is
// recorded.
func (s *BookingService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// HasConflict reports whether a proposed window collides with an active
// appointment on the provider's calendar. Windows are half-open, so an
// appointment ending at 10:00 does not conflict with one starting at 10:00.
// A store failure reports a conflict: refusing a bookable slot is recoverable,
// double-booking a barber is not.
func (s *BookingService) HasConflict(ctx context.Context, providerID string, start time.Time, durationMinutes int, excludeID string) (bool, error) {
	if durationMinutes <= 0 {
		return false, nil
	}

	existing, err := s.appointmentRepo.ListActiveByProvider(ctx, providerID, excludeID)
	if err != nil {
		return true, apperrors.NewInternalError("failed to load provider calendar for conflict check", err)
	}

	proposed := &entities.Appointment{
		AppointmentDate: start,
		Duration:        durationMinutes,
	}
	for _, appt := range existing {
		if proposed.Overlaps(appt) {
			return true, nil
		}
	}

	return false, nil
}

// Book validates, conflict-checks and persists a new appointment, then hands
// it to the sync state machine and recomputes the customer's statistics.
// Sync failures never fail the booking; the returned appointment carries the
// resulting sync status.
func (s *BookingService) Book(ctx context.Context, appointment *entities.Appointment) error {
	if err := s.validateBooking(ctx, appointment); err != nil {
		return err
	}

	conflict, err := s.HasConflict(ctx, appointment.ProviderID, appointment.AppointmentDate, appointment.Duration, "")
	if err != nil {
		return err
	}
	if conflict {
		if s.metrics != nil {
			observability.RecordBooking(ctx, s.metrics, appointment.ProviderID, true)
		}
		return apperrors.NewConflictError("the requested time window is already booked")
	}

	if appointment.ID == "" {
		appointment.ID = uuid.New().String()
	}
	if appointment.BookingCode == "" {
		appointment.BookingCode = newBookingCode()
	}
	if appointment.Status == "" {
		appointment.Status = entities.AppointmentStatusConfirmed
	}
	appointment.SyncStatus = s.syncService.InitialStatus()
	now := time.Now()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	// The insert re-checks the calendar inside a serializable transaction,
	// closing the window between HasConflict and the write.
	if err := s.appointmentRepo.CreateConflictChecked(ctx, appointment); err != nil {
		if s.metrics != nil && apperrors.IsType(err, apperrors.ErrorTypeConflict) {
			observability.RecordBooking(ctx, s.metrics, appointment.ProviderID, true)
		}
		return err
	}
	if s.metrics != nil {
		observability.RecordBooking(ctx, s.metrics, appointment.ProviderID, false)
	}

	if appointment.SyncStatus.IsPending() {
		result := s.syncService.PushAppointment(ctx, appointment)
		appointment.SyncStatus = result.Status
		appointment.ExternalID = result.ExternalID
	}

	s.recomputeStats(ctx, appointment.CustomerID)

	return nil
}

// UpdateStatus transitions an appointment's status and recomputes the
// customer's statistics from the new history.
func (s *BookingService) UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus) (*entities.Appointment, error) {
	if !status.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown appointment status %q", status))
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.recomputeStats(ctx, appointment.CustomerID)

	return appointment, nil
}

// BatchReport summarizes a batch status update.
type BatchReport struct {
	Updated int      `json:"updated"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// UpdateStatusBatch applies one status to many appointments. Failures are
// collected rather than aborting the batch; each affected customer's
// statistics are recomputed once at the end.
func (s *BookingService) UpdateStatusBatch(ctx context.Context, ids []string, status entities.AppointmentStatus) (*BatchReport, error) {
	if !status.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown appointment status %q", status))
	}
	if len(ids) == 0 {
		return nil, apperrors.NewValidationError("no appointment ids given")
	}

	report := &BatchReport{}
	customers := make(map[string]struct{})

	for _, id := range ids {
		if err := s.appointmentRepo.UpdateStatus(ctx, id, status); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", id, err))
			continue
		}
		report.Updated++

		appointment, err := s.appointmentRepo.GetByID(ctx, id)
		if err != nil {
			log.Warn().Err(err).Str("appointment_id", id).Msg("updated appointment could not be reloaded")
			continue
		}
		customers[appointment.CustomerID] = struct{}{}
	}

	for customerID := range customers {
		s.recomputeStats(ctx, customerID)
	}

	return report, nil
}

// Cancel cancels an appointment locally and, when it has an external id,
// propagates the cancellation to the external calendar.
func (s *BookingService) Cancel(ctx context.Context, id string) (*entities.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appointment.Status.IsActive() {
		return nil, apperrors.NewValidationError("only confirmed or in-progress appointments can be cancelled")
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, id, entities.AppointmentStatusCancelled); err != nil {
		return nil, err
	}
	appointment.Status = entities.AppointmentStatusCancelled

	result := s.syncService.CancelAppointment(ctx, appointment)
	appointment.SyncStatus = result.Status

	s.recomputeStats(ctx, appointment.CustomerID)

	return appointment, nil
}

// Reschedule moves an appointment to a new start time after re-running the
// conflict check with the appointment itself excluded.
func (s *BookingService) Reschedule(ctx context.Context, id string, newStart time.Time) (*entities.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appointment.Status.IsActive() {
		return nil, apperrors.NewValidationError("only confirmed or in-progress appointments can be rescheduled")
	}

	provider, err := s.providerRepo.GetByID(ctx, appointment.ProviderID)
	if err == nil && !FitsWorkingHours(provider, newStart, appointment.Duration) {
		return nil, apperrors.NewValidationError("the new time falls outside the provider's working hours")
	}

	conflict, err := s.HasConflict(ctx, appointment.ProviderID, newStart, appointment.Duration, id)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, apperrors.NewConflictError("the requested time window is already booked")
	}

	if err := s.appointmentRepo.Reschedule(ctx, id, newStart); err != nil {
		return nil, err
	}
	appointment.AppointmentDate = newStart

	result := s.syncService.RescheduleAppointment(ctx, appointment, newStart)
	appointment.SyncStatus = result.Status

	return appointment, nil
}

// Get retrieves a single appointment
func (s *BookingService) Get(ctx context.Context, id string) (*entities.Appointment, error) {
	return s.appointmentRepo.GetByID(ctx, id)
}

// List retrieves appointments matching the filter
func (s *BookingService) List(ctx context.Context, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	return s.appointmentRepo.List(ctx, filter)
}

func (s *BookingService) validateBooking(ctx context.Context, appointment *entities.Appointment) error {
	if appointment.CustomerID == "" || appointment.ProviderID == "" || appointment.ServiceID == "" {
		return apperrors.NewValidationError("customer, provider and service are required")
	}
	if appointment.AppointmentDate.IsZero() {
		return apperrors.NewValidationError("appointment date is required")
	}

	customer, err := s.customerRepo.GetByID(ctx, appointment.CustomerID)
	if err != nil {
		return err
	}
	if customer.AccountStatus == entities.AccountStatusBlocked {
		return apperrors.NewValidationError("blocked customers cannot book appointments")
	}

	service, err := s.serviceRepo.GetByID(ctx, appointment.ServiceID)
	if err != nil {
		return err
	}
	if appointment.Duration <= 0 {
		appointment.Duration = service.DurationMinutes
	}
	if appointment.Price == 0 {
		appointment.Price = service.Price
	}
	if appointment.Duration <= 0 {
		return apperrors.NewValidationError("appointment duration must be positive")
	}

	provider, err := s.providerRepo.GetByID(ctx, appointment.ProviderID)
	if err != nil {
		return err
	}
	if !FitsWorkingHours(provider, appointment.AppointmentDate, appointment.Duration) {
		return apperrors.NewValidationError("the appointment falls outside the provider's working hours")
	}

	return nil
}

// recomputeStats refreshes the customer's derived statistics. Stats are a
// projection of appointment history, so a failure here is logged rather than
// surfaced to the caller.
func (s *BookingService) recomputeStats(ctx context.Context, customerID string) {
	if _, err := s.statsService.Recompute(ctx, customerID); err != nil {
		log.Warn().Err(err).Str("customer_id", customerID).Msg("failed to recompute customer statistics")
	}
}

// newBookingCode generates the short human-facing reference printed on
// confirmations.
func newBookingCode() string {
	return "BK" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}
