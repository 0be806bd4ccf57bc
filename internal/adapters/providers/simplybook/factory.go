package simplybook

import (
	"github.com/rs/zerolog/log"

	"github.com/clipline/barbershop-backend/internal/domain/providers"
	"github.com/clipline/barbershop-backend/pkg/config"
)

// NewCalendarProvider selects the real SimplyBook adapter when credentials
// are configured, falling back to the mock for local development.
func NewCalendarProvider(cfg *config.SimplyBookConfig) providers.CalendarProvider {
	if !cfg.SyncEnabled() {
		log.Warn().Msg("SimplyBook credentials not configured; using mock calendar provider")
		return NewMockAdapter()
	}

	client := NewClient(cfg.CompanyLogin, cfg.APIKey, cfg.BaseURL, cfg.Timeout)
	return NewAdapter(client)
}
