package ports

import "context"

// ClaimService finalizes ended auctions through two independent, idempotent
// halves: the asset to the winner and the escrowed funds to the creator.
// Neither half depends on the other having executed.
type ClaimService interface {
	// ClaimAsset transfers custody of the asset to the winning bidder.
	ClaimAsset(ctx context.Context, caller, auctionID string) error
	// ClaimFunds pays the escrowed highest bid out to the creator and
	// returns the amount transferred (zero when no bids were received).
	ClaimFunds(ctx context.Context, caller, auctionID string) (int64, error)
	// ReclaimAsset returns the asset to the creator of an auction that
	// ended with zero bids.
	ReclaimAsset(ctx context.Context, caller, auctionID string) error
}
