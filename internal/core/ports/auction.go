package ports

import (
	"context"
	"time"

	"github.com/veluxora/auction-engine/internal/core/domain"
)

// CreateAuctionInput carries all data needed to list an asset for auction.
type CreateAuctionInput struct {
	Caller      string
	ID          string
	MinBid      int64
	StartTime   time.Time
	EndTime     time.Time
	AssetID     string
	MetadataURI string
}

// UpdateAuctionInput overwrites the mutable fields of a pending auction.
type UpdateAuctionInput struct {
	Caller      string
	ID          string
	MinBid      int64
	StartTime   time.Time
	EndTime     time.Time
	AssetID     string
	MetadataURI string
}

// AuctionDetail is the full auction view returned by Get.
type AuctionDetail struct {
	ID            string
	Creator       string
	MinBid        int64
	StartTime     time.Time
	EndTime       time.Time
	AssetID       string
	MetadataURI   string
	HighestBid    int64
	HighestBidder string
	Canceled      bool
	AssetClaimed  bool
	FundsClaimed  bool
	Phase         string
	CreatedAt     time.Time
}

// ListAuctionsInput carries all parameters for the list endpoint.
type ListAuctionsInput struct {
	Creator string // optional: filter by creator
	AssetID string // optional: filter by asset
	Phase   string // optional: pending, active, ended or canceled
	Page    int    // 1-based
	Limit   int    // capped at 100 by the service
}

// ListAuctionsResult is returned by List.
type ListAuctionsResult struct {
	Items      []AuctionDetail
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ListAuctionsFilter is the repository-level filter. Phase filters are
// translated into time comparisons against Now, since phase is derived
// rather than stored.
type ListAuctionsFilter struct {
	Creator string
	AssetID string
	Phase   domain.AuctionPhase
	Now     time.Time
	Page    int
	Limit   int
}

// AuctionRepository persists auction records.
type AuctionRepository interface {
	// Insert stores a new auction. Returns domain.ErrDuplicateAuction when
	// the id is already taken.
	Insert(ctx context.Context, a *domain.Auction) error
	// FindByID returns domain.ErrAuctionNotFound when the id is unknown.
	FindByID(ctx context.Context, id string) (*domain.Auction, error)
	// Replace overwrites the stored record. Only used for pending auctions,
	// under the per-auction lock held by the service.
	Replace(ctx context.Context, a *domain.Auction) error
	// SetHighestBid conditionally replaces the leader. The update applies
	// only while the stored highest_bid still equals prevAmount, guarding the
	// escrow invariant against lost updates.
	SetHighestBid(ctx context.Context, id string, prevAmount int64, bidder string, amount int64) error
	// SetCanceled marks the auction canceled.
	SetCanceled(ctx context.Context, id string) error
	// MarkAssetClaimed flips asset_claimed false->true, exactly once.
	// Returns domain.ErrAlreadyClaimed when the flag was already set.
	MarkAssetClaimed(ctx context.Context, id string) error
	// UnmarkAssetClaimed reverts MarkAssetClaimed after a failed transfer.
	UnmarkAssetClaimed(ctx context.Context, id string) error
	// MarkFundsClaimed flips funds_claimed false->true, exactly once.
	MarkFundsClaimed(ctx context.Context, id string) error
	// UnmarkFundsClaimed reverts MarkFundsClaimed after a failed transfer.
	UnmarkFundsClaimed(ctx context.Context, id string) error
	// List returns a page of auctions matching the filter and the total count.
	List(ctx context.Context, filter ListAuctionsFilter) ([]*domain.Auction, int64, error)
}

// AuctionService defines the auction lifecycle use cases.
type AuctionService interface {
	Create(ctx context.Context, input CreateAuctionInput) (*AuctionDetail, error)
	Update(ctx context.Context, input UpdateAuctionInput) (*AuctionDetail, error)
	Cancel(ctx context.Context, caller, id string) error
	Get(ctx context.Context, id string) (*AuctionDetail, error)
	List(ctx context.Context, input ListAuctionsInput) (*ListAuctionsResult, error)
}
