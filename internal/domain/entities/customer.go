package entities

import (
	"time"
)

// AccountStatus represents the standing of a customer account
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
	AccountStatusBlocked   AccountStatus = "blocked"
)

// SyncStatus describes whether a local record matches the external calendar system
type SyncStatus string

const (
	SyncStatusSynced          SyncStatus = "synced"
	SyncStatusPendingCreation SyncStatus = "pending_simplybook_creation"
	SyncStatusPendingSync     SyncStatus = "pending_sync"
	SyncStatusError           SyncStatus = "error"
)

// IsPending reports whether the status requires a push to the external system.
func (s SyncStatus) IsPending() bool {
	return s == SyncStatusPendingCreation || s == SyncStatusPendingSync
}

// Customer represents a barbershop customer
type Customer struct {
	ID        string `json:"id" db:"id"`
	Email     string `json:"email" db:"email"`
	Phone     string `json:"phone" db:"phone"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`

	MarketingConsent bool `json:"marketing_consent" db:"marketing_consent"`
	SMSConsent       bool `json:"sms_consent" db:"sms_consent"`
	EmailConsent     bool `json:"email_consent" db:"email_consent"`

	// ConversationPreference is an ordinal 0 (chatty) to 3 (silent service).
	ConversationPreference int           `json:"conversation_preference" db:"conversation_preference"`
	AccountStatus          AccountStatus `json:"account_status" db:"account_status"`

	// Derived statistics, owned by the stats aggregator.
	NoShowCount       int        `json:"noShowCount" db:"no_show_count"`
	CancellationCount int        `json:"cancellationCount" db:"cancellation_count"`
	TotalSpent        float64    `json:"totalSpent" db:"total_spent"`
	LoyaltyPoints     int        `json:"loyaltyPoints" db:"loyalty_points"`
	LastVisit         *time.Time `json:"lastVisit,omitempty" db:"last_visit"`

	// Reconciliation state, owned by the sync state machine.
	SyncStatus SyncStatus `json:"syncStatus" db:"sync_status"`
	ExternalID *string    `json:"externalId,omitempty" db:"external_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CustomerStats holds the derived statistics recomputed from appointment
// history. Grouped so the aggregator can persist them in one write.
type CustomerStats struct {
	NoShowCount       int        `json:"noShowCount"`
	CancellationCount int        `json:"cancellationCount"`
	TotalSpent        float64    `json:"totalSpent"`
	LoyaltyPoints     int        `json:"loyaltyPoints"`
	LastVisit         *time.Time `json:"lastVisit,omitempty"`
}

// FullName returns the customer's display name.
func (c *Customer) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
