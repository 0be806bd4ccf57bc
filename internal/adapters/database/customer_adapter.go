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

var customerColumns = []interface{}{
	"id", "email", "phone", "first_name", "last_name",
	"marketing_consent", "sms_consent", "email_consent",
	"conversation_preference", "account_status",
	"no_show_count", "cancellation_count", "total_spent", "loyalty_points", "last_visit",
	"sync_status", "external_id",
	"created_at", "updated_at",
}

// CustomerAdapter implements the CustomerRepository interface
type CustomerAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCustomerAdapter creates a new customer adapter
func NewCustomerAdapter(client *postgres.Client) repositories.CustomerRepository {
	return &CustomerAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new customer
func (a *CustomerAdapter) Create(ctx context.Context, customer *entities.Customer) error {
	record := goqu.Record{
		"id":                      customer.ID,
		"email":                   customer.Email,
		"phone":                   customer.Phone,
		"first_name":              customer.FirstName,
		"last_name":               customer.LastName,
		"marketing_consent":       customer.MarketingConsent,
		"sms_consent":             customer.SMSConsent,
		"email_consent":           customer.EmailConsent,
		"conversation_preference": customer.ConversationPreference,
		"account_status":          customer.AccountStatus,
		"no_show_count":           customer.NoShowCount,
		"cancellation_count":      customer.CancellationCount,
		"total_spent":             customer.TotalSpent,
		"loyalty_points":          customer.LoyaltyPoints,
		"last_visit":              customer.LastVisit,
		"sync_status":             customer.SyncStatus,
		"external_id":             customer.ExternalID,
		"created_at":              customer.CreatedAt,
		"updated_at":              customer.UpdatedAt,
	}

	query, args, err := a.db.Insert("customers").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err = a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("customer with email %s already exists", customer.Email))
		}
		return apperrors.NewInternalError("failed to create customer", err)
	}

	return nil
}

// GetByID retrieves a customer by ID
func (a *CustomerAdapter) GetByID(ctx context.Context, id string) (*entities.Customer, error) {
	return a.getOne(ctx, goqu.Ex{"id": id}, fmt.Sprintf("customer with id %s not found", id))
}

// GetByEmail retrieves a customer by email
func (a *CustomerAdapter) GetByEmail(ctx context.Context, email string) (*entities.Customer, error) {
	return a.getOne(ctx, goqu.Ex{"email": email}, fmt.Sprintf("customer with email %s not found", email))
}

func (a *CustomerAdapter) getOne(ctx context.Context, where goqu.Ex, notFoundMsg string) (*entities.Customer, error) {
	query, args, err := a.db.Select(customerColumns...).
		From("customers").
		Where(where).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	customer, err := scanCustomer(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(notFoundMsg)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get customer", err)
	}
	return customer, nil
}

// Update updates a customer's profile fields
func (a *CustomerAdapter) Update(ctx context.Context, customer *entities.Customer) error {
	customer.UpdatedAt = time.Now()

	record := goqu.Record{
		"email":                   customer.Email,
		"phone":                   customer.Phone,
		"first_name":              customer.FirstName,
		"last_name":               customer.LastName,
		"marketing_consent":       customer.MarketingConsent,
		"sms_consent":             customer.SMSConsent,
		"email_consent":           customer.EmailConsent,
		"conversation_preference": customer.ConversationPreference,
		"account_status":          customer.AccountStatus,
		"updated_at":              customer.UpdatedAt,
	}

	query, args, err := a.db.Update("customers").
		Set(record).
		Where(goqu.Ex{"id": customer.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update customer", err)
	}

	return requireRowsAffected(result, fmt.Sprintf("customer with id %s not found", customer.ID))
}

// UpdateStats persists derived statistics for a customer
func (a *CustomerAdapter) UpdateStats(ctx context.Context, id string, stats entities.CustomerStats) error {
	query, args, err := a.db.Update("customers").
		Set(goqu.Record{
			"no_show_count":      stats.NoShowCount,
			"cancellation_count": stats.CancellationCount,
			"total_spent":        stats.TotalSpent,
			"loyalty_points":     stats.LoyaltyPoints,
			"last_visit":         stats.LastVisit,
			"updated_at":         time.Now(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build stats update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update customer stats", err)
	}

	return requireRowsAffected(result, fmt.Sprintf("customer with id %s not found", id))
}

// UpdateSyncState persists the sync status and external identifier
func (a *CustomerAdapter) UpdateSyncState(ctx context.Context, id string, status entities.SyncStatus, externalID *string) error {
	record := goqu.Record{
		"sync_status": status,
		"updated_at":  time.Now(),
	}
	if externalID != nil {
		record["external_id"] = *externalID
	}

	query, args, err := a.db.Update("customers").
		Set(record).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build sync state query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update customer sync state", err)
	}

	return requireRowsAffected(result, fmt.Sprintf("customer with id %s not found", id))
}

// Delete removes a customer after cancelling their active appointments.
// Both writes happen in one transaction so a failed delete cannot leave
// orphaned cancellations.
func (a *CustomerAdapter) Delete(ctx context.Context, id string) error {
	tx, err := a.client.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	cancelQuery, cancelArgs, err := a.db.Update("appointments").
		Set(goqu.Record{
			"status":     entities.AppointmentStatusCancelled,
			"updated_at": time.Now(),
		}).
		Where(goqu.Ex{
			"customer_id": id,
			"status": []string{
				string(entities.AppointmentStatusConfirmed),
				string(entities.AppointmentStatusInProgress),
			},
		}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build cascade cancel query", err)
	}

	if _, err := tx.ExecContext(ctx, cancelQuery, cancelArgs...); err != nil {
		return apperrors.NewInternalError("failed to cancel customer appointments", err)
	}

	deleteQuery, deleteArgs, err := a.db.Delete("customers").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete customer", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("customer with id %s not found", id))
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit customer delete", err)
	}
	return nil
}

// List retrieves customers matching the filter
func (a *CustomerAdapter) List(ctx context.Context, filter repositories.CustomerFilter) ([]*entities.Customer, error) {
	ds := a.db.Select(customerColumns...).From("customers")

	if filter.AccountStatus != "" {
		ds = ds.Where(goqu.Ex{"account_status": filter.AccountStatus})
	}
	if filter.SyncStatus != "" {
		ds = ds.Where(goqu.Ex{"sync_status": filter.SyncStatus})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		ds = ds.Where(goqu.Or(
			goqu.C("email").ILike(pattern),
			goqu.C("first_name").ILike(pattern),
			goqu.C("last_name").ILike(pattern),
		))
	}

	ds = ds.Order(goqu.I("created_at").Desc())
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	return a.queryCustomers(ctx, ds)
}

// ListBySyncStatus retrieves customers whose sync status is in the given set
func (a *CustomerAdapter) ListBySyncStatus(ctx context.Context, statuses []entities.SyncStatus) ([]*entities.Customer, error) {
	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}

	ds := a.db.Select(customerColumns...).
		From("customers").
		Where(goqu.Ex{"sync_status": values}).
		Order(goqu.I("updated_at").Asc())

	return a.queryCustomers(ctx, ds)
}

func (a *CustomerAdapter) queryCustomers(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.Customer, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list customers", err)
	}
	defer rows.Close()

	var customers []*entities.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan customer", err)
		}
		customers = append(customers, customer)
	}

	return customers, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCustomer(row rowScanner) (*entities.Customer, error) {
	customer := &entities.Customer{}
	var phone, externalID sql.NullString
	var lastVisit sql.NullTime

	err := row.Scan(
		&customer.ID,
		&customer.Email,
		&phone,
		&customer.FirstName,
		&customer.LastName,
		&customer.MarketingConsent,
		&customer.SMSConsent,
		&customer.EmailConsent,
		&customer.ConversationPreference,
		&customer.AccountStatus,
		&customer.NoShowCount,
		&customer.CancellationCount,
		&customer.TotalSpent,
		&customer.LoyaltyPoints,
		&lastVisit,
		&customer.SyncStatus,
		&externalID,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	customer.Phone = phone.String
	if lastVisit.Valid {
		visit := lastVisit.Time
		customer.LastVisit = &visit
	}
	if externalID.Valid {
		customer.ExternalID = &externalID.String
	}

	return customer, nil
}

func requireRowsAffected(result sql.Result, notFoundMsg string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(notFoundMsg)
	}
	return nil
}
