package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/clipline/barbershop-backend/internal/domain/entities"
	"github.com/clipline/barbershop-backend/internal/domain/repositories"
	"github.com/clipline/barbershop-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/clipline/barbershop-backend/pkg/errors"
)

var appointmentColumns = []interface{}{
	"id", "customer_id", "provider_id", "service_id",
	"appointment_date", "duration", "price", "status", "notes", "booking_code",
	"sync_status", "external_id",
	"created_at", "updated_at",
}

var activeStatuses = []string{
	string(entities.AppointmentStatusConfirmed),
	string(entities.AppointmentStatusInProgress),
}

// AppointmentAdapter implements the AppointmentRepository interface
type AppointmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAppointmentAdapter creates a new appointment adapter
func NewAppointmentAdapter(client *postgres.Client) repositories.AppointmentRepository {
	return &AppointmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func appointmentRecord(appointment *entities.Appointment) goqu.Record {
	return goqu.Record{
		"id":               appointment.ID,
		"customer_id":      appointment.CustomerID,
		"provider_id":      appointment.ProviderID,
		"service_id":       appointment.ServiceID,
		"appointment_date": appointment.AppointmentDate,
		"duration":         appointment.Duration,
		"price":            appointment.Price,
		"status":           appointment.Status,
		"notes":            appointment.Notes,
		"booking_code":     appointment.BookingCode,
		"sync_status":      appointment.SyncStatus,
		"external_id":      appointment.ExternalID,
		"created_at":       appointment.CreatedAt,
		"updated_at":       appointment.UpdatedAt,
	}
}

// Create creates a new appointment
func (a *AppointmentAdapter) Create(ctx context.Context, appointment *entities.Appointment) error {
	query, args, err := a.db.Insert("appointments").Rows(appointmentRecord(appointment)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err = a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create appointment", err)
	}

	return nil
}

// CreateConflictChecked inserts the appointment inside a serializable
// transaction that re-reads the provider's active appointments and validates
// half-open interval overlap before writing. The booking path's earlier
// read-only conflict check is advisory; this is the authoritative one.
func (a *AppointmentAdapter) CreateConflictChecked(ctx context.Context, appointment *entities.Appointment) error {
	tx, err := a.client.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	selectQuery, selectArgs, err := a.db.Select("appointment_date", "duration").
		From("appointments").
		Where(goqu.Ex{
			"provider_id": appointment.ProviderID,
			"status":      activeStatuses,
		}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build conflict query", err)
	}

	rows, err := tx.QueryContext(ctx, selectQuery, selectArgs...)
	if err != nil {
		return apperrors.NewInternalError("failed to read provider calendar", err)
	}

	newStart, newEnd := appointment.Window()
	conflict := false
	for rows.Next() {
		var existingStart time.Time
		var existingDuration int
		if err := rows.Scan(&existingStart, &existingDuration); err != nil {
			rows.Close()
			return apperrors.NewInternalError("failed to scan appointment window", err)
		}
		if existingDuration <= 0 || appointment.Duration <= 0 {
			continue
		}
		existingEnd := existingStart.Add(time.Duration(existingDuration) * time.Minute)
		if newStart.Before(existingEnd) && existingStart.Before(newEnd) {
			conflict = true
			break
		}
	}
	rows.Close()

	if conflict {
		return apperrors.NewConflictError(fmt.Sprintf(
			"provider %s already has an appointment overlapping %s",
			appointment.ProviderID, appointment.AppointmentDate.Format(time.RFC3339)))
	}

	insertQuery, insertArgs, err := a.db.Insert("appointments").Rows(appointmentRecord(appointment)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}
	if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return apperrors.NewInternalError("failed to create appointment", err)
	}

	if err := tx.Commit(); err != nil {
		if postgres.IsSerializationFailure(err) {
			return apperrors.NewConflictError("concurrent booking detected for this time window")
		}
		return apperrors.NewInternalError("failed to commit appointment", err)
	}
	return nil
}

// GetByID retrieves an appointment by ID
func (a *AppointmentAdapter) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	query, args, err := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	appointment, err := scanAppointment(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get appointment", err)
	}
	return appointment, nil
}

// UpdateStatus transitions an appointment's status
func (a *AppointmentAdapter) UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus) error {
	query, args, err := a.db.Update("appointments").
		Set(goqu.Record{
			"status":     status,
			"updated_at": time.Now(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build status update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update appointment status", err)
	}

	return requireRowsAffected(result, fmt.Sprintf("appointment with id %s not found", id))
}

// UpdateSyncState persists the sync status and external identifier
func (a *AppointmentAdapter) UpdateSyncState(ctx context.Context, id string, status entities.SyncStatus, externalID *string) error {
	record := goqu.Record{
		"sync_status": status,
		"updated_at":  time.Now(),
	}
	if externalID != nil {
		record["external_id"] = *externalID
	}

	query, args, err := a.db.Update("appointments").
		Set(record).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build sync state query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update appointment sync state", err)
	}

	return requireRowsAffected(result, fmt.Sprintf("appointment with id %s not found", id))
}

// Reschedule moves an appointment to a new start time
func (a *AppointmentAdapter) Reschedule(ctx context.Context, id string, newDate time.Time) error {
	query, args, err := a.db.Update("appointments").
		Set(goqu.Record{
			"appointment_date": newDate,
			"updated_at":       time.Now(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build reschedule query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to reschedule appointment", err)
	}

	return requireRowsAffected(result, fmt.Sprintf("appointment with id %s not found", id))
}

// List retrieves appointments matching the filter
func (a *AppointmentAdapter) List(ctx context.Context, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	ds := a.db.Select(appointmentColumns...).From("appointments")

	if len(filter.Statuses) > 0 {
		values := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			values = append(values, string(s))
		}
		ds = ds.Where(goqu.Ex{"status": values})
	}
	if filter.ProviderID != "" {
		ds = ds.Where(goqu.Ex{"provider_id": filter.ProviderID})
	}
	if filter.CustomerID != "" {
		ds = ds.Where(goqu.Ex{"customer_id": filter.CustomerID})
	}
	if filter.From != nil {
		ds = ds.Where(goqu.C("appointment_date").Gte(*filter.From))
	}
	if filter.To != nil {
		ds = ds.Where(goqu.C("appointment_date").Lte(*filter.To))
	}

	ds = ds.Order(goqu.I("appointment_date").Desc())
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	return a.queryAppointments(ctx, ds)
}

// ListActiveByProvider retrieves confirmed/in_progress appointments for a provider
func (a *AppointmentAdapter) ListActiveByProvider(ctx context.Context, providerID, excludeID string) ([]*entities.Appointment, error) {
	ds := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(goqu.Ex{
			"provider_id": providerID,
			"status":      activeStatuses,
		})

	if excludeID != "" {
		ds = ds.Where(goqu.C("id").Neq(excludeID))
	}

	ds = ds.Order(goqu.I("appointment_date").Asc())
	return a.queryAppointments(ctx, ds)
}

// ListByCustomer retrieves all appointments for a customer
func (a *AppointmentAdapter) ListByCustomer(ctx context.Context, customerID string) ([]*entities.Appointment, error) {
	ds := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(goqu.Ex{"customer_id": customerID}).
		Order(goqu.I("appointment_date").Desc())

	return a.queryAppointments(ctx, ds)
}

func (a *AppointmentAdapter) queryAppointments(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.Appointment, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list appointments", err)
	}
	defer rows.Close()

	var appointments []*entities.Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan appointment", err)
		}
		appointments = append(appointments, appointment)
	}

	return appointments, nil
}

func scanAppointment(row rowScanner) (*entities.Appointment, error) {
	appointment := &entities.Appointment{}
	var notes, externalID sql.NullString

	err := row.Scan(
		&appointment.ID,
		&appointment.CustomerID,
		&appointment.ProviderID,
		&appointment.ServiceID,
		&appointment.AppointmentDate,
		&appointment.Duration,
		&appointment.Price,
		&appointment.Status,
		&notes,
		&appointment.BookingCode,
		&appointment.SyncStatus,
		&externalID,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	appointment.Notes = notes.String
	if externalID.Valid {
		appointment.ExternalID = &externalID.String
	}

	return appointment, nil
}
