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

// ServiceAdapter implements the ServiceRepository interface
type ServiceAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewServiceAdapter creates a new service adapter
func NewServiceAdapter(client *postgres.Client) repositories.ServiceRepository {
	return &ServiceAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new service
func (a *ServiceAdapter) Create(ctx context.Context, service *entities.Service) error {
	record := goqu.Record{
		"id":               service.ID,
		"name":             service.Name,
		"duration_minutes": service.DurationMinutes,
		"price":            service.Price,
		"external_id":      service.ExternalID,
		"created_at":       service.CreatedAt,
		"updated_at":       service.UpdatedAt,
	}

	query, args, err := a.db.Insert("services").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create service", err)
	}
	return nil
}

// GetByID retrieves a service by ID
func (a *ServiceAdapter) GetByID(ctx context.Context, id string) (*entities.Service, error) {
	query, args, err := a.db.Select(
		"id", "name", "duration_minutes", "price", "external_id", "created_at", "updated_at",
	).From("services").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	service := &entities.Service{}
	var externalID sql.NullString
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&service.ID,
		&service.Name,
		&service.DurationMinutes,
		&service.Price,
		&externalID,
		&service.CreatedAt,
		&service.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("service with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get service", err)
	}
	if externalID.Valid {
		service.ExternalID = &externalID.String
	}
	return service, nil
}

// List retrieves all services
func (a *ServiceAdapter) List(ctx context.Context) ([]*entities.Service, error) {
	query, args, err := a.db.Select(
		"id", "name", "duration_minutes", "price", "external_id", "created_at", "updated_at",
	).From("services").
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list services", err)
	}
	defer rows.Close()

	var services []*entities.Service
	for rows.Next() {
		service := &entities.Service{}
		var externalID sql.NullString
		if err := rows.Scan(
			&service.ID,
			&service.Name,
			&service.DurationMinutes,
			&service.Price,
			&externalID,
			&service.CreatedAt,
			&service.UpdatedAt,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan service", err)
		}
		if externalID.Valid {
			service.ExternalID = &externalID.String
		}
		services = append(services, service)
	}

	return services, nil
}

// Update updates a service
func (a *ServiceAdapter) Update(ctx context.Context, service *entities.Service) error {
	service.UpdatedAt = time.Now()

	query, args, err := a.db.Update("services").
		Set(goqu.Record{
			"name":             service.Name,
			"duration_minutes": service.DurationMinutes,
			"price":            service.Price,
			"updated_at":       service.UpdatedAt,
		}).
		Where(goqu.Ex{"id": service.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update service", err)
	}

	return requireRowsAffected(result, fmt.Sprintf("service with id %s not found", service.ID))
}
