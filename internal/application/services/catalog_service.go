package services

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/clipline/barbershop-backend/internal/domain/providers"
)

const (
	catalogCacheTTLSeconds = 300

	catalogServicesKey = "catalog:services"
	catalogUnitsKey    = "catalog:units"
	catalogCompanyKey  = "catalog:company"
)

// CatalogService serves the external catalog (services, providers, company
// profile) through a read-through cache, so the booking wizard does not hit
// the external API on every page load. Cache failures degrade to a direct
// call.
type CatalogService struct {
	calendar providers.CalendarProvider
	cache    providers.CacheProvider
}

// NewCatalogService creates a new catalog service. cache may be nil, in which
// case every read goes to the external system.
func NewCatalogService(calendar providers.CalendarProvider, cache providers.CacheProvider) *CatalogService {
	return &CatalogService{
		calendar: calendar,
		cache:    cache,
	}
}

// GetServices returns the external service catalog
func (s *CatalogService) GetServices(ctx context.Context) ([]providers.ExternalService, error) {
	var services []providers.ExternalService
	err := s.readThrough(ctx, catalogServicesKey, &services, func() (interface{}, error) {
		return s.calendar.GetServiceList(ctx)
	})
	return services, err
}

// GetUnits returns the external provider catalog
func (s *CatalogService) GetUnits(ctx context.Context) ([]providers.ExternalUnit, error) {
	var units []providers.ExternalUnit
	err := s.readThrough(ctx, catalogUnitsKey, &units, func() (interface{}, error) {
		return s.calendar.GetUnitList(ctx)
	})
	return units, err
}

// GetCompanyInfo returns the external company profile
func (s *CatalogService) GetCompanyInfo(ctx context.Context) (*providers.CompanyInfo, error) {
	var info providers.CompanyInfo
	err := s.readThrough(ctx, catalogCompanyKey, &info, func() (interface{}, error) {
		remote, err := s.calendar.GetCompanyInfo(ctx)
		if err != nil {
			return nil, err
		}
		return *remote, nil
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Invalidate drops all cached catalog entries.
func (s *CatalogService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, key := range []string{catalogServicesKey, catalogUnitsKey, catalogCompanyKey} {
		if err := s.cache.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to invalidate catalog cache entry")
		}
	}
}

func (s *CatalogService) readThrough(ctx context.Context, key string, target interface{}, fetch func() (interface{}, error)) error {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil && cached != nil {
			if err := json.Unmarshal(cached, target); err == nil {
				return nil
			}
			log.Warn().Str("key", key).Msg("discarding undecodable catalog cache entry")
		}
	}

	value, err := fetch()
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(encoded, target); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, encoded, catalogCacheTTLSeconds); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to cache catalog entry")
		}
	}

	return nil
}
