package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/veluxora/auction-engine/internal/api/metrics"
	"github.com/veluxora/auction-engine/internal/core/domain"
	"github.com/veluxora/auction-engine/internal/core/ports"
)

// DetailCache abstracts the read-through auction detail cache (Redis).
// Implementations must treat misses and errors alike: a lookup failure is a
// miss, never a reason to fail the request.
type DetailCache interface {
	GetAuction(ctx context.Context, id string) (*domain.Auction, bool)
	SetAuction(ctx context.Context, a *domain.Auction)
	Invalidate(ctx context.Context, id string)
}

// AuctionService owns the auction lifecycle: create, update, cancel and the
// read paths. Phase is always derived from the stored record and the clock
// reading taken at the top of each call.
type AuctionService struct {
	auctions ports.AuctionRepository
	registry ports.RegistryRepository
	custody  ports.CustodyRepository
	events   ports.EventPublisher
	cache    DetailCache
	locks    *AuctionLocks
	logger   zerolog.Logger
	nowFn    func() time.Time
}

func NewAuctionService(
	auctions ports.AuctionRepository,
	registry ports.RegistryRepository,
	custody ports.CustodyRepository,
	events ports.EventPublisher,
	cache DetailCache,
	locks *AuctionLocks,
	logger zerolog.Logger,
) *AuctionService {
	return &AuctionService{
		auctions: auctions,
		registry: registry,
		custody:  custody,
		events:   events,
		cache:    cache,
		locks:    locks,
		logger:   logger,
		nowFn:    func() time.Time { return time.Now().UTC() },
	}
}

// Create lists an asset for auction. On success the engine takes custody of
// the asset for the auction's duration.
func (s *AuctionService) Create(ctx context.Context, input ports.CreateAuctionInput) (*ports.AuctionDetail, error) {
	now := s.nowFn()

	if _, err := s.registry.Find(ctx, input.Caller); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(input.ID)
	defer unlock()

	if _, err := s.auctions.FindByID(ctx, input.ID); err == nil {
		return nil, domain.ErrDuplicateAuction
	} else if !errors.Is(err, domain.ErrAuctionNotFound) {
		return nil, err
	}

	if err := validateTerms(input.MinBid, input.StartTime, input.EndTime, now); err != nil {
		return nil, err
	}

	// Take is the one-active-auction-per-asset gate: the conditional write
	// refuses an asset the engine already holds for another auction.
	if err := s.custody.Take(ctx, input.AssetID, input.Caller, input.ID); err != nil {
		if !errors.Is(err, domain.ErrDuplicateAsset) {
			s.logger.Error().Err(err).Str("asset_id", input.AssetID).Msg("failed to take asset custody")
		}
		return nil, err
	}

	a := &domain.Auction{
		ID:          input.ID,
		Creator:     input.Caller,
		MinBid:      input.MinBid,
		StartTime:   input.StartTime.UTC(),
		EndTime:     input.EndTime.UTC(),
		AssetID:     input.AssetID,
		MetadataURI: input.MetadataURI,
		CreatedAt:   now,
	}

	if err := s.auctions.Insert(ctx, a); err != nil {
		// The asset must not stay locked behind a record that was never
		// inserted.
		if relErr := s.custody.Release(ctx, input.AssetID, input.Caller); relErr != nil {
			s.logger.Error().Err(relErr).Str("asset_id", input.AssetID).Msg("failed to return custody after aborted create")
		}
		s.logger.Error().Err(err).Str("auction_id", input.ID).Msg("failed to insert auction")
		return nil, err
	}

	s.events.Publish(domain.Event{
		Type:      domain.EventAuctionCreated,
		Actor:     input.Caller,
		AuctionID: a.ID,
		AssetID:   a.AssetID,
		Timestamp: now,
	})
	metrics.AuctionsCreatedTotal.Inc()

	s.logger.Info().Str("auction_id", a.ID).Str("creator", a.Creator).Str("asset_id", a.AssetID).Msg("auction created")
	return toDetail(a, now), nil
}

// Update overwrites the mutable fields of a pending auction. Only the
// creator may update, and only before the original start time.
func (s *AuctionService) Update(ctx context.Context, input ports.UpdateAuctionInput) (*ports.AuctionDetail, error) {
	now := s.nowFn()

	unlock := s.locks.Lock(input.ID)
	defer unlock()

	a, err := s.auctions.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if a.Creator != input.Caller {
		return nil, domain.ErrNotCreator
	}
	if a.Canceled {
		return nil, domain.ErrAuctionCanceled
	}
	if !now.Before(a.StartTime) {
		return nil, domain.ErrAuctionStarted
	}
	if err := validateTerms(input.MinBid, input.StartTime, input.EndTime, now); err != nil {
		return nil, err
	}

	assetSwapped := input.AssetID != a.AssetID
	oldAssetID := a.AssetID
	if assetSwapped {
		if err := s.custody.Take(ctx, input.AssetID, input.Caller, a.ID); err != nil {
			return nil, err
		}
		if err := s.custody.Release(ctx, oldAssetID, a.Creator); err != nil {
			if relErr := s.custody.Release(ctx, input.AssetID, input.Caller); relErr != nil {
				s.logger.Error().Err(relErr).Str("asset_id", input.AssetID).Msg("failed to return custody after aborted update")
			}
			return nil, err
		}
	}

	a.MinBid = input.MinBid
	a.StartTime = input.StartTime.UTC()
	a.EndTime = input.EndTime.UTC()
	a.AssetID = input.AssetID
	a.MetadataURI = input.MetadataURI

	if err := s.auctions.Replace(ctx, a); err != nil {
		if assetSwapped {
			// Undo the custody swap so the stored record and the custody map
			// keep describing the same asset.
			if takeErr := s.custody.Take(ctx, oldAssetID, a.Creator, a.ID); takeErr != nil {
				s.logger.Error().Err(takeErr).Str("asset_id", oldAssetID).Msg("failed to restore custody after aborted update")
			}
			if relErr := s.custody.Release(ctx, input.AssetID, input.Caller); relErr != nil {
				s.logger.Error().Err(relErr).Str("asset_id", input.AssetID).Msg("failed to return custody after aborted update")
			}
		}
		s.logger.Error().Err(err).Str("auction_id", a.ID).Msg("failed to update auction")
		return nil, err
	}

	s.invalidate(ctx, a.ID)
	s.events.Publish(domain.Event{
		Type:      domain.EventAuctionUpdated,
		Actor:     input.Caller,
		AuctionID: a.ID,
		AssetID:   a.AssetID,
		Timestamp: now,
	})

	s.logger.Info().Str("auction_id", a.ID).Msg("auction updated")
	return toDetail(a, now), nil
}

// Cancel terminates a pending auction and returns the asset to its creator.
// Canceling is only permitted before the start time; a canceled auction
// accepts no further mutation.
func (s *AuctionService) Cancel(ctx context.Context, caller, id string) error {
	now := s.nowFn()

	unlock := s.locks.Lock(id)
	defer unlock()

	a, err := s.auctions.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if a.Creator != caller {
		return domain.ErrNotCreator
	}
	if a.Canceled {
		return domain.ErrAuctionCanceled
	}
	if !now.Before(a.StartTime) {
		return domain.ErrAuctionStarted
	}

	// Asset back to the creator first; only a completed transfer may be
	// followed by the terminal state flip.
	if err := s.custody.Release(ctx, a.AssetID, a.Creator); err != nil {
		s.logger.Error().Err(err).Str("auction_id", id).Msg("failed to return asset on cancel")
		return err
	}
	if err := s.auctions.SetCanceled(ctx, id); err != nil {
		if takeErr := s.custody.Take(ctx, a.AssetID, a.Creator, id); takeErr != nil {
			s.logger.Error().Err(takeErr).Str("asset_id", a.AssetID).Msg("failed to restore custody after aborted cancel")
		}
		s.logger.Error().Err(err).Str("auction_id", id).Msg("failed to cancel auction")
		return err
	}

	s.invalidate(ctx, id)
	s.events.Publish(domain.Event{
		Type:      domain.EventAuctionCanceled,
		Actor:     caller,
		AuctionID: id,
		AssetID:   a.AssetID,
		Timestamp: now,
	})
	metrics.AuctionsCanceledTotal.Inc()

	s.logger.Info().Str("auction_id", id).Msg("auction canceled")
	return nil
}

// Get returns the full auction view, phase included.
func (s *AuctionService) Get(ctx context.Context, id string) (*ports.AuctionDetail, error) {
	now := s.nowFn()

	if s.cache != nil {
		if a, ok := s.cache.GetAuction(ctx, id); ok {
			metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
			return toDetail(a, now), nil
		}
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	a, err := s.auctions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetAuction(ctx, a)
	}
	return toDetail(a, now), nil
}

// List returns a page of auctions matching the filter.
func (s *AuctionService) List(ctx context.Context, input ports.ListAuctionsInput) (*ports.ListAuctionsResult, error) {
	now := s.nowFn()

	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	items, total, err := s.auctions.List(ctx, ports.ListAuctionsFilter{
		Creator: input.Creator,
		AssetID: input.AssetID,
		Phase:   domain.AuctionPhase(input.Phase),
		Now:     now,
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}

	result := &ports.ListAuctionsResult{
		Items: make([]ports.AuctionDetail, 0, len(items)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for _, a := range items {
		result.Items = append(result.Items, *toDetail(a, now))
	}
	result.TotalPages = int((total + int64(limit) - 1) / int64(limit))
	return result, nil
}

func (s *AuctionService) invalidate(ctx context.Context, id string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
}

// validateTerms applies the shared create/update field checks.
func validateTerms(minBid int64, start, end, now time.Time) error {
	if minBid <= 0 {
		return domain.ErrInvalidMinBid
	}
	if !start.After(now) {
		return domain.ErrStartNotFuture
	}
	if !end.After(start) {
		return domain.ErrEndBeforeStart
	}
	return nil
}

func toDetail(a *domain.Auction, now time.Time) *ports.AuctionDetail {
	return &ports.AuctionDetail{
		ID:            a.ID,
		Creator:       a.Creator,
		MinBid:        a.MinBid,
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
		AssetID:       a.AssetID,
		MetadataURI:   a.MetadataURI,
		HighestBid:    a.HighestBid,
		HighestBidder: a.HighestBidder,
		Canceled:      a.Canceled,
		AssetClaimed:  a.AssetClaimed,
		FundsClaimed:  a.FundsClaimed,
		Phase:         string(domain.PhaseOf(a, now)),
		CreatedAt:     a.CreatedAt,
	}
}
