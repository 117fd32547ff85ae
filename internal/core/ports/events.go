package ports

import (
	"context"

	"github.com/veluxora/auction-engine/internal/core/domain"
)

// EventPublisher receives engine events for asynchronous delivery. Events
// carrying the same auction id must be delivered in publication order.
type EventPublisher interface {
	Publish(event domain.Event)
}

// EventRepository persists delivered events to the audit trail.
type EventRepository interface {
	Insert(ctx context.Context, event *domain.Event) error
	// ListByAuction returns the auction's events in delivery order.
	ListByAuction(ctx context.Context, auctionID string) ([]domain.Event, error)
}
