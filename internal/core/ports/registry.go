package ports

import (
	"context"

	"github.com/veluxora/auction-engine/internal/core/domain"
)

// RegistryRepository persists participant registrations.
type RegistryRepository interface {
	// Insert stores a new participant. Returns domain.ErrAlreadyRegistered
	// when the identity is already present.
	Insert(ctx context.Context, p *domain.Participant) error
	// Find retrieves a participant. Returns domain.ErrNotRegistered when the
	// identity is unknown.
	Find(ctx context.Context, id string) (*domain.Participant, error)
}

// RegistryService gates all other engine operations: only registered
// participants may create auctions or bid.
type RegistryService interface {
	Register(ctx context.Context, caller, kycHash string) (*domain.Participant, error)
	IsRegistered(ctx context.Context, caller string) (bool, error)
}
