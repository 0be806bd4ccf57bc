package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clipline/barbershop-backend/internal/domain/entities"
	"github.com/clipline/barbershop-backend/internal/domain/providers"
	"github.com/clipline/barbershop-backend/internal/domain/repositories"
	"github.com/clipline/barbershop-backend/internal/infrastructure/observability"
	apperrors "github.com/clipline/barbershop-backend/pkg/errors"
)

// SyncResult reports the outcome of one push to the external calendar.
// Err carries the failure that drove the record into the error state; the
// local write that triggered the push has already committed.
type SyncResult struct {
	Status     entities.SyncStatus
	ExternalID *string
	Err        error
}

// SweepReport summarizes one pass over all pending records.
type SweepReport struct {
	Synced int      `json:"synced"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

// SyncService is the reconciliation state machine between local records and
// the external calendar system. Local writes always succeed first; pushes
// happen after, and a failed push parks the record in the error state until
// an operator or the API retries it. There is no automatic retry.
type SyncService struct {
	customerRepo    repositories.CustomerRepository
	appointmentRepo repositories.AppointmentRepository
	providerRepo    repositories.ProviderRepository
	serviceRepo     repositories.ServiceRepository
	calendar        providers.CalendarProvider
	eventBus        providers.EventBus

	enabled         bool
	autoSyncClients bool

	metrics *observability.Metrics
}

// NewSyncService creates a new sync service. eventBus may be nil when no
// event transport is configured.
func NewSyncService(
	customerRepo repositories.CustomerRepository,
	appointmentRepo repositories.AppointmentRepository,
	providerRepo repositories.ProviderRepository,
	serviceRepo repositories.ServiceRepository,
	calendar providers.CalendarProvider,
	eventBus providers.EventBus,
	enabled bool,
	autoSyncClients bool,
) *SyncService {
	return &SyncService{
		customerRepo:    customerRepo,
		appointmentRepo: appointmentRepo,
		providerRepo:    providerRepo,
		serviceRepo:     serviceRepo,
		calendar:        calendar,
		eventBus:        eventBus,
		enabled:         enabled,
		autoSyncClients: autoSyncClients,
	}
}

// SetMetrics attaches push metrics. Optional; without it nothing is recorded.
func (s *SyncService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

func (s *SyncService) recordPush(ctx context.Context, entityType string, success bool) {
	if s.metrics == nil {
		return
	}
	observability.RecordSyncPush(ctx, s.metrics, entityType, success)
}

// InitialCustomerStatus returns the sync status a newly created customer
// starts in. With sync disabled or auto-sync off the record is intentionally
// left alone, which the synced state expresses.
func (s *SyncService) InitialCustomerStatus() entities.SyncStatus {
	if s.enabled && s.autoSyncClients {
		return entities.SyncStatusPendingCreation
	}
	return entities.SyncStatusSynced
}

// InitialStatus returns the sync status a newly created appointment starts in.
func (s *SyncService) InitialStatus() entities.SyncStatus {
	if s.enabled {
		return entities.SyncStatusPendingCreation
	}
	return entities.SyncStatusSynced
}

// MarkCustomerDirty flags a customer as needing a push after a local update.
func (s *SyncService) MarkCustomerDirty(ctx context.Context, customer *entities.Customer) error {
	if !s.enabled {
		return nil
	}

	if err := s.customerRepo.UpdateSyncState(ctx, customer.ID, entities.SyncStatusPendingSync, customer.ExternalID); err != nil {
		return err
	}
	customer.SyncStatus = entities.SyncStatusPendingSync

	s.publishEvent(ctx, entities.SyncEventCustomer, customer.ID, entities.SyncStatusPendingSync, customer.ExternalID, "local update")
	return nil
}

// PushCustomer pushes one customer to the external system and persists the
// resulting sync state. The push is a create when the customer has no
// external id yet; the remote deduplicates clients by email.
func (s *SyncService) PushCustomer(ctx context.Context, customer *entities.Customer) SyncResult {
	if !s.enabled {
		return SyncResult{Status: customer.SyncStatus, ExternalID: customer.ExternalID}
	}

	externalID, err := s.calendar.AddClient(ctx, providers.ClientData{
		Name:  customer.FullName(),
		Email: customer.Email,
		Phone: customer.Phone,
	})
	if err != nil {
		return s.recordCustomerFailure(ctx, customer, err)
	}

	id := externalID
	if customer.ExternalID != nil && *customer.ExternalID != "" {
		id = *customer.ExternalID
	}

	if err := s.customerRepo.UpdateSyncState(ctx, customer.ID, entities.SyncStatusSynced, &id); err != nil {
		return SyncResult{Status: customer.SyncStatus, ExternalID: customer.ExternalID, Err: err}
	}
	customer.SyncStatus = entities.SyncStatusSynced
	customer.ExternalID = &id

	s.recordPush(ctx, "customer", true)
	s.publishEvent(ctx, entities.SyncEventCustomer, customer.ID, entities.SyncStatusSynced, &id, "")
	return SyncResult{Status: entities.SyncStatusSynced, ExternalID: &id}
}

// SyncCustomer loads and pushes a single customer by id.
func (s *SyncService) SyncCustomer(ctx context.Context, customerID string) (SyncResult, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return SyncResult{}, err
	}
	return s.PushCustomer(ctx, customer), nil
}

// SyncAllPending sweeps every customer in a pending state and pushes each
// one, continuing past failures so one bad record cannot stall the queue.
func (s *SyncService) SyncAllPending(ctx context.Context) (*SweepReport, error) {
	pending, err := s.customerRepo.ListBySyncStatus(ctx, []entities.SyncStatus{
		entities.SyncStatusPendingCreation,
		entities.SyncStatusPendingSync,
	})
	if err != nil {
		return nil, err
	}

	report := &SweepReport{}
	for _, customer := range pending {
		result := s.PushCustomer(ctx, customer)
		if result.Err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", customer.ID, result.Err))
			continue
		}
		report.Synced++
	}

	return report, nil
}

// PushAppointment books the appointment in the external system and persists
// the resulting sync state. The customer must be synced first so the remote
// booking can reference their client id.
func (s *SyncService) PushAppointment(ctx context.Context, appointment *entities.Appointment) SyncResult {
	if !s.enabled {
		return SyncResult{Status: appointment.SyncStatus, ExternalID: appointment.ExternalID}
	}

	customer, err := s.customerRepo.GetByID(ctx, appointment.CustomerID)
	if err != nil {
		return s.recordAppointmentFailure(ctx, appointment, err)
	}
	if customer.ExternalID == nil || *customer.ExternalID == "" {
		result := s.PushCustomer(ctx, customer)
		if result.Err != nil {
			return s.recordAppointmentFailure(ctx, appointment,
				apperrors.NewExternalError("customer could not be created in the external system", result.Err))
		}
	}

	confirmation, err := s.calendar.Book(ctx, providers.BookingRequest{
		ServiceID: s.externalServiceID(ctx, appointment.ServiceID),
		UnitID:    s.externalUnitID(ctx, appointment.ProviderID),
		ClientID:  *customer.ExternalID,
		StartTime: appointment.AppointmentDate,
		Comment:   appointment.Notes,
	})
	if err != nil {
		return s.recordAppointmentFailure(ctx, appointment, err)
	}

	if err := s.appointmentRepo.UpdateSyncState(ctx, appointment.ID, entities.SyncStatusSynced, &confirmation.ID); err != nil {
		return SyncResult{Status: appointment.SyncStatus, ExternalID: appointment.ExternalID, Err: err}
	}
	appointment.SyncStatus = entities.SyncStatusSynced
	appointment.ExternalID = &confirmation.ID
	if confirmation.BookingCode != "" {
		appointment.BookingCode = confirmation.BookingCode
	}

	s.recordPush(ctx, "appointment", true)
	s.publishEvent(ctx, entities.SyncEventAppointment, appointment.ID, entities.SyncStatusSynced, &confirmation.ID, "")
	return SyncResult{Status: entities.SyncStatusSynced, ExternalID: &confirmation.ID}
}

// CancelAppointment propagates a local cancellation. Appointments that were
// never pushed have nothing to cancel remotely and stay synced.
func (s *SyncService) CancelAppointment(ctx context.Context, appointment *entities.Appointment) SyncResult {
	if !s.enabled || appointment.ExternalID == nil || *appointment.ExternalID == "" {
		return SyncResult{Status: entities.SyncStatusSynced, ExternalID: appointment.ExternalID}
	}

	if err := s.calendar.CancelBooking(ctx, *appointment.ExternalID); err != nil {
		return s.recordAppointmentFailure(ctx, appointment, err)
	}

	if err := s.appointmentRepo.UpdateSyncState(ctx, appointment.ID, entities.SyncStatusSynced, appointment.ExternalID); err != nil {
		return SyncResult{Status: appointment.SyncStatus, ExternalID: appointment.ExternalID, Err: err}
	}
	appointment.SyncStatus = entities.SyncStatusSynced

	s.publishEvent(ctx, entities.SyncEventAppointment, appointment.ID, entities.SyncStatusSynced, appointment.ExternalID, "cancelled")
	return SyncResult{Status: entities.SyncStatusSynced, ExternalID: appointment.ExternalID}
}

// RescheduleAppointment propagates a local reschedule the same way.
func (s *SyncService) RescheduleAppointment(ctx context.Context, appointment *entities.Appointment, newStart time.Time) SyncResult {
	if !s.enabled || appointment.ExternalID == nil || *appointment.ExternalID == "" {
		return SyncResult{Status: entities.SyncStatusSynced, ExternalID: appointment.ExternalID}
	}

	if err := s.calendar.RescheduleBook(ctx, *appointment.ExternalID, newStart); err != nil {
		return s.recordAppointmentFailure(ctx, appointment, err)
	}

	if err := s.appointmentRepo.UpdateSyncState(ctx, appointment.ID, entities.SyncStatusSynced, appointment.ExternalID); err != nil {
		return SyncResult{Status: appointment.SyncStatus, ExternalID: appointment.ExternalID, Err: err}
	}
	appointment.SyncStatus = entities.SyncStatusSynced

	s.publishEvent(ctx, entities.SyncEventAppointment, appointment.ID, entities.SyncStatusSynced, appointment.ExternalID, "rescheduled")
	return SyncResult{Status: entities.SyncStatusSynced, ExternalID: appointment.ExternalID}
}

func (s *SyncService) recordCustomerFailure(ctx context.Context, customer *entities.Customer, cause error) SyncResult {
	if err := s.customerRepo.UpdateSyncState(ctx, customer.ID, entities.SyncStatusError, customer.ExternalID); err != nil {
		log.Error().Err(err).Str("customer_id", customer.ID).Msg("failed to record customer sync failure")
	}
	customer.SyncStatus = entities.SyncStatusError

	s.recordPush(ctx, "customer", false)
	s.publishEvent(ctx, entities.SyncEventCustomer, customer.ID, entities.SyncStatusError, customer.ExternalID, cause.Error())
	return SyncResult{Status: entities.SyncStatusError, ExternalID: customer.ExternalID, Err: cause}
}

func (s *SyncService) recordAppointmentFailure(ctx context.Context, appointment *entities.Appointment, cause error) SyncResult {
	if err := s.appointmentRepo.UpdateSyncState(ctx, appointment.ID, entities.SyncStatusError, appointment.ExternalID); err != nil {
		log.Error().Err(err).Str("appointment_id", appointment.ID).Msg("failed to record appointment sync failure")
	}
	appointment.SyncStatus = entities.SyncStatusError

	s.recordPush(ctx, "appointment", false)
	s.publishEvent(ctx, entities.SyncEventAppointment, appointment.ID, entities.SyncStatusError, appointment.ExternalID, cause.Error())
	return SyncResult{Status: entities.SyncStatusError, ExternalID: appointment.ExternalID, Err: cause}
}

// externalServiceID resolves the remote id for a local service, falling back
// to the local id when no mapping has been recorded.
func (s *SyncService) externalServiceID(ctx context.Context, serviceID string) string {
	service, err := s.serviceRepo.GetByID(ctx, serviceID)
	if err == nil && service.ExternalID != nil && *service.ExternalID != "" {
		return *service.ExternalID
	}
	return serviceID
}

func (s *SyncService) externalUnitID(ctx context.Context, providerID string) string {
	provider, err := s.providerRepo.GetByID(ctx, providerID)
	if err == nil && provider.ExternalID != nil && *provider.ExternalID != "" {
		return *provider.ExternalID
	}
	return providerID
}

// publishEvent emits a sync status transition on the event bus. Events are
// best effort; dashboards can always fall back to polling.
func (s *SyncService) publishEvent(ctx context.Context, eventType entities.SyncEventType, entityID string, status entities.SyncStatus, externalID *string, reason string) {
	if s.eventBus == nil {
		return
	}

	event := &entities.SyncEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		EntityID:   entityID,
		SyncStatus: status,
		ExternalID: externalID,
		Reason:     reason,
		OccurredAt: time.Now().Unix(),
	}

	if err := s.eventBus.Publish(ctx, providers.EventChannelSyncUpdates, event); err != nil {
		log.Warn().Err(err).Str("entity_id", entityID).Msg("failed to publish sync event")
		return
	}
	if eventType == entities.SyncEventCustomer {
		if err := s.eventBus.Publish(ctx, providers.GetCustomerChannel(entityID), event); err != nil {
			log.Warn().Err(err).Str("entity_id", entityID).Msg("failed to publish customer sync event")
		}
	}
}
