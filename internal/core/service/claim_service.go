package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/veluxora/auction-engine/internal/api/metrics"
	"github.com/veluxora/auction-engine/internal/core/domain"
	"github.com/veluxora/auction-engine/internal/core/ports"
)

// ClaimService settles ended auctions through two independent halves: the
// asset to the winner and the escrowed funds to the creator. Each half is
// gated solely by its own flag, so the two claims may run in either order.
type ClaimService struct {
	auctions ports.AuctionRepository
	custody  ports.CustodyRepository
	escrow   ports.EscrowLedger
	events   ports.EventPublisher
	cache    DetailCache
	locks    *AuctionLocks
	logger   zerolog.Logger
	nowFn    func() time.Time
}

func NewClaimService(
	auctions ports.AuctionRepository,
	custody ports.CustodyRepository,
	escrow ports.EscrowLedger,
	events ports.EventPublisher,
	cache DetailCache,
	locks *AuctionLocks,
	logger zerolog.Logger,
) *ClaimService {
	return &ClaimService{
		auctions: auctions,
		custody:  custody,
		escrow:   escrow,
		events:   events,
		cache:    cache,
		locks:    locks,
		logger:   logger,
		nowFn:    func() time.Time { return time.Now().UTC() },
	}
}

// ClaimAsset transfers custody of the asset to the winning bidder.
func (s *ClaimService) ClaimAsset(ctx context.Context, caller, auctionID string) error {
	unlock := s.locks.Lock(auctionID)
	defer unlock()

	a, err := s.auctions.FindByID(ctx, auctionID)
	if err != nil {
		return err
	}
	if err := checkEnded(a, s.nowFn()); err != nil {
		return err
	}
	if caller != a.HighestBidder || a.HighestBidder == "" {
		return domain.ErrNotHighestBidder
	}
	if a.AssetClaimed {
		return domain.ErrAlreadyClaimed
	}

	// Flag first: the conditional flip is the exactly-once guard. A failed
	// transfer reverts it so the claim can be retried.
	if err := s.auctions.MarkAssetClaimed(ctx, auctionID); err != nil {
		return err
	}
	if err := s.custody.Release(ctx, a.AssetID, caller); err != nil {
		if undoErr := s.auctions.UnmarkAssetClaimed(ctx, auctionID); undoErr != nil {
			s.logger.Error().Err(undoErr).Str("auction_id", auctionID).Msg("failed to revert asset claim flag")
		}
		s.logger.Error().Err(err).Str("auction_id", auctionID).Msg("failed to release asset to winner")
		return err
	}

	s.finish(ctx, a, domain.Event{
		Type:      domain.EventAssetClaimed,
		Actor:     caller,
		AuctionID: auctionID,
		AssetID:   a.AssetID,
		Timestamp: s.nowFn(),
	})
	metrics.ClaimsTotal.WithLabelValues("asset").Inc()

	s.logger.Info().Str("auction_id", auctionID).Str("winner", caller).Str("asset_id", a.AssetID).Msg("asset claimed by winner")
	return nil
}

// ClaimFunds pays the escrowed highest bid out to the creator. A zero-bid
// auction still settles, transferring zero.
func (s *ClaimService) ClaimFunds(ctx context.Context, caller, auctionID string) (int64, error) {
	unlock := s.locks.Lock(auctionID)
	defer unlock()

	a, err := s.auctions.FindByID(ctx, auctionID)
	if err != nil {
		return 0, err
	}
	if err := checkEnded(a, s.nowFn()); err != nil {
		return 0, err
	}
	if caller != a.Creator {
		return 0, domain.ErrNotCreator
	}
	if a.FundsClaimed {
		return 0, domain.ErrAlreadyClaimed
	}

	if err := s.auctions.MarkFundsClaimed(ctx, auctionID); err != nil {
		return 0, err
	}
	amount, err := s.escrow.Payout(ctx, auctionID, a.Creator)
	if err != nil {
		if undoErr := s.auctions.UnmarkFundsClaimed(ctx, auctionID); undoErr != nil {
			s.logger.Error().Err(undoErr).Str("auction_id", auctionID).Msg("failed to revert funds claim flag")
		}
		s.logger.Error().Err(err).Str("auction_id", auctionID).Msg("failed to pay out escrow")
		return 0, err
	}

	s.finish(ctx, a, domain.Event{
		Type:      domain.EventFundsTransferred,
		Actor:     a.Creator,
		AuctionID: auctionID,
		Amount:    amount,
		Timestamp: s.nowFn(),
	})
	metrics.ClaimsTotal.WithLabelValues("funds").Inc()
	// Drop the series rather than zeroing it: settled auctions must not keep
	// growing the gauge's label space.
	metrics.EscrowHeld.DeleteLabelValues(auctionID)

	s.logger.Info().Str("auction_id", auctionID).Int64("amount", amount).Msg("funds transferred to creator")
	return amount, nil
}

// ReclaimAsset returns the asset to the creator of an auction that ended
// with zero bids. Without it the asset would stay with the engine forever,
// since ClaimAsset requires a winning bidder.
func (s *ClaimService) ReclaimAsset(ctx context.Context, caller, auctionID string) error {
	unlock := s.locks.Lock(auctionID)
	defer unlock()

	a, err := s.auctions.FindByID(ctx, auctionID)
	if err != nil {
		return err
	}
	if err := checkEnded(a, s.nowFn()); err != nil {
		return err
	}
	if caller != a.Creator {
		return domain.ErrNotCreator
	}
	if a.HighestBidder != "" {
		return domain.ErrAuctionHasBids
	}
	if a.AssetClaimed {
		return domain.ErrAlreadyClaimed
	}

	if err := s.auctions.MarkAssetClaimed(ctx, auctionID); err != nil {
		return err
	}
	if err := s.custody.Release(ctx, a.AssetID, a.Creator); err != nil {
		if undoErr := s.auctions.UnmarkAssetClaimed(ctx, auctionID); undoErr != nil {
			s.logger.Error().Err(undoErr).Str("auction_id", auctionID).Msg("failed to revert asset claim flag")
		}
		s.logger.Error().Err(err).Str("auction_id", auctionID).Msg("failed to return asset to creator")
		return err
	}

	s.finish(ctx, a, domain.Event{
		Type:      domain.EventAssetClaimed,
		Actor:     a.Creator,
		AuctionID: auctionID,
		AssetID:   a.AssetID,
		Timestamp: s.nowFn(),
	})
	metrics.ClaimsTotal.WithLabelValues("reclaim").Inc()

	s.logger.Info().Str("auction_id", auctionID).Str("creator", a.Creator).Msg("asset reclaimed after zero-bid auction")
	return nil
}

// checkEnded gates both claim halves on the same phase conditions.
func checkEnded(a *domain.Auction, now time.Time) error {
	if a.Canceled {
		return domain.ErrAuctionCanceled
	}
	if now.Before(a.EndTime) {
		return domain.ErrAuctionNotEnded
	}
	return nil
}

func (s *ClaimService) finish(ctx context.Context, a *domain.Auction, ev domain.Event) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, a.ID)
	}
	s.events.Publish(ev)
}
