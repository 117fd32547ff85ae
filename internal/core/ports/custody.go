package ports

import "context"

// CustodyRepository tracks the current custodian of every known asset.
// Custody is exclusive: taking it for an auction and releasing it to a
// participant are the only two transitions.
type CustodyRepository interface {
	// Take moves the asset from owner into engine custody on behalf of
	// auctionID. Atomic with the availability check: returns
	// domain.ErrDuplicateAsset when the engine already holds the asset for
	// a different auction.
	Take(ctx context.Context, assetID, owner, auctionID string) error
	// Release hands the asset to the given participant and clears the
	// holding auction.
	Release(ctx context.Context, assetID, participant string) error
}
