package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/veluxora/auction-engine/internal/core/domain"
	"github.com/veluxora/auction-engine/internal/core/ports"
)

// RegistryService tracks which participant identities are registered and
// gates every other engine operation.
type RegistryService struct {
	repo   ports.RegistryRepository
	events ports.EventPublisher
	logger zerolog.Logger
	nowFn  func() time.Time
}

func NewRegistryService(repo ports.RegistryRepository, events ports.EventPublisher, logger zerolog.Logger) *RegistryService {
	return &RegistryService{
		repo:   repo,
		events: events,
		logger: logger,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// Register enrolls a caller identity. A second attempt for the same identity
// fails with domain.ErrAlreadyRegistered; registration is never reversed.
func (s *RegistryService) Register(ctx context.Context, caller, kycHash string) (*domain.Participant, error) {
	now := s.nowFn()
	p := &domain.Participant{
		ID:           caller,
		KYCHash:      kycHash,
		RegisteredAt: now,
	}

	if err := s.repo.Insert(ctx, p); err != nil {
		if !errors.Is(err, domain.ErrAlreadyRegistered) {
			s.logger.Error().Err(err).Str("participant", caller).Msg("failed to register participant")
		}
		return nil, err
	}

	s.events.Publish(domain.Event{
		Type:      domain.EventUserRegistered,
		Actor:     caller,
		Timestamp: now,
	})

	s.logger.Info().Str("participant", caller).Msg("participant registered")
	return p, nil
}

// IsRegistered reports whether the caller identity is enrolled. Pure lookup,
// no side effects.
func (s *RegistryService) IsRegistered(ctx context.Context, caller string) (bool, error) {
	_, err := s.repo.Find(ctx, caller)
	if err != nil {
		if errors.Is(err, domain.ErrNotRegistered) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
