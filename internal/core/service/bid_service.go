package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/veluxora/auction-engine/internal/api/metrics"
	"github.com/veluxora/auction-engine/internal/core/domain"
	"github.com/veluxora/auction-engine/internal/core/ports"
)

// BidService validates and records bids. Accepted amounts are strictly
// increasing per auction, and the engine holds exactly the current leader's
// stake in escrow: every displaced deposit is refunded in the same step that
// replaces it.
type BidService struct {
	auctions ports.AuctionRepository
	registry ports.RegistryRepository
	bids     ports.BidRepository
	escrow   ports.EscrowLedger
	events   ports.EventPublisher
	cache    DetailCache
	locks    *AuctionLocks
	logger   zerolog.Logger
	nowFn    func() time.Time
}

func NewBidService(
	auctions ports.AuctionRepository,
	registry ports.RegistryRepository,
	bids ports.BidRepository,
	escrow ports.EscrowLedger,
	events ports.EventPublisher,
	cache DetailCache,
	locks *AuctionLocks,
	logger zerolog.Logger,
) *BidService {
	return &BidService{
		auctions: auctions,
		registry: registry,
		bids:     bids,
		escrow:   escrow,
		events:   events,
		cache:    cache,
		locks:    locks,
		logger:   logger,
		nowFn:    func() time.Time { return time.Now().UTC() },
	}
}

// Place submits a bid. The creator may bid in their own auction, and the
// current leader may rebid a larger amount (their old deposit is refunded and
// the new amount takes its place).
func (s *BidService) Place(ctx context.Context, input ports.PlaceBidInput) (*ports.BidResult, error) {
	start := time.Now()

	if _, err := s.registry.Find(ctx, input.Caller); err != nil {
		metrics.BidsRejectedTotal.WithLabelValues("not_registered").Inc()
		return nil, err
	}

	unlock := s.locks.Lock(input.AuctionID)
	defer unlock()

	a, err := s.auctions.FindByID(ctx, input.AuctionID)
	if err != nil {
		metrics.BidsRejectedTotal.WithLabelValues("not_found").Inc()
		return nil, err
	}

	now := s.nowFn()
	if domain.PhaseOf(a, now) != domain.PhaseActive {
		metrics.BidsRejectedTotal.WithLabelValues("not_active").Inc()
		return nil, domain.ErrAuctionNotActive
	}
	if input.Amount < a.MinBid {
		metrics.BidsRejectedTotal.WithLabelValues("below_minimum").Inc()
		return nil, domain.ErrBidBelowMinimum
	}
	if input.Amount <= a.HighestBid {
		metrics.BidsRejectedTotal.WithLabelValues("not_high_enough").Inc()
		return nil, domain.ErrBidNotHighEnough
	}

	prevBidder, prevAmount := a.HighestBidder, a.HighestBid

	// Refund-then-replace as one atomic ledger swap: the displaced deposit
	// goes back to its owner and the new deposit is taken in the same step.
	if err := s.escrow.Replace(ctx, a.ID, prevBidder, prevAmount, input.Caller, input.Amount); err != nil {
		s.logger.Error().Err(err).Str("auction_id", a.ID).Str("bidder", input.Caller).Msg("escrow swap failed")
		metrics.BidsRejectedTotal.WithLabelValues("escrow").Inc()
		return nil, err
	}

	if err := s.auctions.SetHighestBid(ctx, a.ID, prevAmount, input.Caller, input.Amount); err != nil {
		// Swap the deposits back so the ledger keeps matching the record.
		if undoErr := s.escrow.Replace(ctx, a.ID, input.Caller, input.Amount, prevBidder, prevAmount); undoErr != nil {
			s.logger.Error().Err(undoErr).Str("auction_id", a.ID).Msg("failed to undo escrow swap after aborted bid")
		}
		s.logger.Error().Err(err).Str("auction_id", a.ID).Msg("failed to record new highest bid")
		metrics.BidsRejectedTotal.WithLabelValues("persist").Inc()
		return nil, err
	}

	// History is an audit trail, never an input to settlement; a failed
	// append does not fail the bid.
	rec := &domain.BidRecord{
		AuctionID: a.ID,
		Bidder:    input.Caller,
		Amount:    input.Amount,
		Timestamp: now,
	}
	if err := s.bids.Append(ctx, rec); err != nil {
		s.logger.Warn().Err(err).Str("auction_id", a.ID).Msg("failed to append bid history")
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, a.ID)
	}

	result := &ports.BidResult{
		AuctionID: a.ID,
		Bidder:    input.Caller,
		Amount:    input.Amount,
	}
	if prevBidder != "" {
		result.RefundedBidder = prevBidder
		result.RefundedAmount = prevAmount
		s.events.Publish(domain.Event{
			Type:      domain.EventDepositReturned,
			Actor:     prevBidder,
			AuctionID: a.ID,
			Amount:    prevAmount,
			Timestamp: now,
		})
		metrics.RefundsTotal.Inc()
	}
	s.events.Publish(domain.Event{
		Type:      domain.EventNewBidAdded,
		Actor:     input.Caller,
		AuctionID: a.ID,
		Amount:    input.Amount,
		Timestamp: now,
	})

	metrics.BidsAcceptedTotal.Inc()
	metrics.EscrowHeld.WithLabelValues(a.ID).Set(float64(input.Amount))
	metrics.BidProcessingDuration.Observe(time.Since(start).Seconds())

	s.logger.Info().
		Str("auction_id", a.ID).
		Str("bidder", input.Caller).
		Int64("amount", input.Amount).
		Msg("bid accepted")

	return result, nil
}

// History returns the auction's bids in chronological order; an empty slice
// when none were placed.
func (s *BidService) History(ctx context.Context, auctionID string) ([]domain.BidRecord, error) {
	if _, err := s.auctions.FindByID(ctx, auctionID); err != nil {
		return nil, err
	}
	return s.bids.ListByAuction(ctx, auctionID)
}
