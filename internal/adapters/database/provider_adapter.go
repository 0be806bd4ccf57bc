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

// ProviderAdapter implements the ProviderRepository interface.
// Working hours live in a provider_working_hours child table keyed by
// (provider_id, weekday) with a nullable hours range.
type ProviderAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProviderAdapter creates a new provider adapter
func NewProviderAdapter(client *postgres.Client) repositories.ProviderRepository {
	return &ProviderAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new provider with its working-hours map
func (a *ProviderAdapter) Create(ctx context.Context, provider *entities.Provider) error {
	tx, err := a.client.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	record := goqu.Record{
		"id":                        provider.ID,
		"display_name":              provider.DisplayName,
		"not_accepting_new_clients": provider.NotAcceptingNewClients,
		"cash_only":                 provider.CashOnly,
		"minimum_age":               provider.MinimumAge,
		"external_id":               provider.ExternalID,
		"created_at":                provider.CreatedAt,
		"updated_at":                provider.UpdatedAt,
	}

	query, args, err := a.db.Insert("providers").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create provider", err)
	}

	for day, hours := range provider.WorkingHours {
		hoursQuery, hoursArgs, err := a.db.Insert("provider_working_hours").
			Rows(goqu.Record{
				"provider_id": provider.ID,
				"weekday":     int(day),
				"hours":       hours,
			}).
			ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build working hours insert", err)
		}
		if _, err := tx.ExecContext(ctx, hoursQuery, hoursArgs...); err != nil {
			return apperrors.NewInternalError("failed to insert working hours", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit provider", err)
	}
	return nil
}

// GetByID retrieves a provider by ID, including its working-hours map
func (a *ProviderAdapter) GetByID(ctx context.Context, id string) (*entities.Provider, error) {
	query, args, err := a.db.Select(
		"id", "display_name", "not_accepting_new_clients", "cash_only",
		"minimum_age", "external_id", "created_at", "updated_at",
	).From("providers").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	provider := &entities.Provider{}
	var externalID sql.NullString

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&provider.ID,
		&provider.DisplayName,
		&provider.NotAcceptingNewClients,
		&provider.CashOnly,
		&provider.MinimumAge,
		&externalID,
		&provider.CreatedAt,
		&provider.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("provider with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get provider", err)
	}
	if externalID.Valid {
		provider.ExternalID = &externalID.String
	}

	hours, err := a.loadWorkingHours(ctx, id)
	if err != nil {
		return nil, err
	}
	provider.WorkingHours = hours

	return provider, nil
}

// List retrieves all providers
func (a *ProviderAdapter) List(ctx context.Context) ([]*entities.Provider, error) {
	query, args, err := a.db.Select(
		"id", "display_name", "not_accepting_new_clients", "cash_only",
		"minimum_age", "external_id", "created_at", "updated_at",
	).From("providers").
		Order(goqu.I("display_name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list providers", err)
	}
	defer rows.Close()

	var providers []*entities.Provider
	for rows.Next() {
		provider := &entities.Provider{}
		var externalID sql.NullString
		err := rows.Scan(
			&provider.ID,
			&provider.DisplayName,
			&provider.NotAcceptingNewClients,
			&provider.CashOnly,
			&provider.MinimumAge,
			&externalID,
			&provider.CreatedAt,
			&provider.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan provider", err)
		}
		if externalID.Valid {
			provider.ExternalID = &externalID.String
		}
		providers = append(providers, provider)
	}

	for _, provider := range providers {
		hours, err := a.loadWorkingHours(ctx, provider.ID)
		if err != nil {
			return nil, err
		}
		provider.WorkingHours = hours
	}

	return providers, nil
}

// Update updates a provider's profile and restriction flags
func (a *ProviderAdapter) Update(ctx context.Context, provider *entities.Provider) error {
	provider.UpdatedAt = time.Now()

	query, args, err := a.db.Update("providers").
		Set(goqu.Record{
			"display_name":              provider.DisplayName,
			"not_accepting_new_clients": provider.NotAcceptingNewClients,
			"cash_only":                 provider.CashOnly,
			"minimum_age":               provider.MinimumAge,
			"updated_at":                provider.UpdatedAt,
		}).
		Where(goqu.Ex{"id": provider.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update provider", err)
	}

	return requireRowsAffected(result, fmt.Sprintf("provider with id %s not found", provider.ID))
}

// SetWorkingHours replaces the working-hours entry for one weekday
func (a *ProviderAdapter) SetWorkingHours(ctx context.Context, id string, day int, hours *string) error {
	deleteQuery, deleteArgs, err := a.db.Delete("provider_working_hours").
		Where(goqu.Ex{"provider_id": id, "weekday": day}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build working hours delete", err)
	}
	if _, err := a.client.DB().ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return apperrors.NewInternalError("failed to clear working hours", err)
	}

	insertQuery, insertArgs, err := a.db.Insert("provider_working_hours").
		Rows(goqu.Record{
			"provider_id": id,
			"weekday":     day,
			"hours":       hours,
		}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build working hours insert", err)
	}
	if _, err := a.client.DB().ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return apperrors.NewInternalError("failed to set working hours", err)
	}
	return nil
}

func (a *ProviderAdapter) loadWorkingHours(ctx context.Context, providerID string) (map[time.Weekday]*string, error) {
	query, args, err := a.db.Select("weekday", "hours").
		From("provider_working_hours").
		Where(goqu.Ex{"provider_id": providerID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build working hours query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load working hours", err)
	}
	defer rows.Close()

	hours := make(map[time.Weekday]*string)
	for rows.Next() {
		var weekday int
		var value sql.NullString
		if err := rows.Scan(&weekday, &value); err != nil {
			return nil, apperrors.NewInternalError("failed to scan working hours", err)
		}
		if value.Valid {
			v := value.String
			hours[time.Weekday(weekday)] = &v
		} else {
			hours[time.Weekday(weekday)] = nil
		}
	}

	return hours, nil
}
