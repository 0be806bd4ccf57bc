package providers

import (
	"context"

	"github.com/clipline/barbershop-backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// sync status change events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.SyncEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.SyncEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// Event channel constants
const (
	// EventChannelSyncUpdates carries every sync status transition
	EventChannelSyncUpdates = "sync:updates"

	// EventChannelCustomerPrefix is the prefix for per-customer channels
	EventChannelCustomerPrefix = "sync:customer:"
)

// GetCustomerChannel returns the channel name for a specific customer
func GetCustomerChannel(customerID string) string {
	return EventChannelCustomerPrefix + customerID
}
