package entities

import (
	"time"
)

// Service represents a bookable barbershop service (cut, shave, etc.)
type Service struct {
	ID              string  `json:"id" db:"id"`
	Name            string  `json:"name" db:"name"`
	DurationMinutes int     `json:"duration_minutes" db:"duration_minutes"`
	Price           float64 `json:"price" db:"price"`

	ExternalID *string `json:"externalId,omitempty" db:"external_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
