package entities

import (
	"time"
)

// Provider represents a barber whose calendar appointments are booked against
type Provider struct {
	ID          string `json:"id" db:"id"`
	DisplayName string `json:"display_name" db:"display_name"`

	// WorkingHours maps weekday to a "HH:MM-HH:MM" range; nil means day off.
	WorkingHours map[time.Weekday]*string `json:"working_hours" db:"-"`

	NotAcceptingNewClients bool `json:"not_accepting_new_clients" db:"not_accepting_new_clients"`
	CashOnly               bool `json:"cash_only" db:"cash_only"`
	MinimumAge             int  `json:"minimum_age" db:"minimum_age"`

	ExternalID *string `json:"externalId,omitempty" db:"external_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// WorksOn reports whether the provider works on the given weekday.
func (p *Provider) WorksOn(day time.Weekday) bool {
	if p.WorkingHours == nil {
		return false
	}
	hours, ok := p.WorkingHours[day]
	return ok && hours != nil
}
