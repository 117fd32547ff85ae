package ports

import (
	"context"

	"github.com/veluxora/auction-engine/internal/core/domain"
)

// PlaceBidInput carries a single bid submission.
type PlaceBidInput struct {
	Caller    string
	AuctionID string
	Amount    int64
}

// BidResult reports the accepted bid and the refund issued to the displaced
// leader, if any.
type BidResult struct {
	AuctionID      string
	Bidder         string
	Amount         int64
	RefundedBidder string
	RefundedAmount int64
}

// BidRepository owns the append-only bid history per auction.
type BidRepository interface {
	Append(ctx context.Context, rec *domain.BidRecord) error
	// ListByAuction returns all bids in chronological order, an empty slice
	// when none were placed.
	ListByAuction(ctx context.Context, auctionID string) ([]domain.BidRecord, error)
}

// BidService validates and records bids, refunding the displaced leader.
type BidService interface {
	Place(ctx context.Context, input PlaceBidInput) (*BidResult, error)
	History(ctx context.Context, auctionID string) ([]domain.BidRecord, error)
}
