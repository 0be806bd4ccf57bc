package entities

// Slot is one entry in the advisory daily availability grid.
// Time is a clock string ("09:30") rather than an instant so the grid is
// stable regardless of the caller's timezone rendering.
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// SyncEventType identifies what kind of record changed sync state
type SyncEventType string

const (
	SyncEventCustomer    SyncEventType = "customer"
	SyncEventAppointment SyncEventType = "appointment"
)

// SyncEvent is published on the event bus whenever a record's sync status
// transitions, so dashboards can reflect pending/error states without polling.
type SyncEvent struct {
	ID         string        `json:"id"`
	Type       SyncEventType `json:"type"`
	EntityID   string        `json:"entity_id"`
	SyncStatus SyncStatus    `json:"syncStatus"`
	ExternalID *string       `json:"externalId,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	OccurredAt int64         `json:"occurred_at"`
}
