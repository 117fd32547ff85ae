package ports

import "context"

// EscrowLedger is the value-transfer abstraction backing bid escrow. The
// engine holds at most one deposit per auction: exactly the current leader's
// stake. Amounts are opaque non-negative integers.
//
// Every method either completes or fails with no effect, so a failed
// transfer aborts the surrounding operation without corrupting the ledger.
type EscrowLedger interface {
	// Replace atomically swaps the held deposit: the previous leader's stake
	// (prevBidder/prevAmount, empty and zero when no bid was held yet) is
	// released back to its owner and the new deposit is taken in its place.
	// The swap applies only while the held entry still matches the expected
	// previous values.
	Replace(ctx context.Context, auctionID, prevBidder string, prevAmount int64, newBidder string, newAmount int64) error
	// Payout releases the held deposit to the recipient and returns the
	// amount transferred; zero when nothing was held.
	Payout(ctx context.Context, auctionID, recipient string) (int64, error)
	// Held reports the deposit currently held for the auction.
	Held(ctx context.Context, auctionID string) (bidder string, amount int64, err error)
	// Deposit re-takes a deposit. Used only as the compensating action when
	// a state write fails after a payout or swap already went through.
	Deposit(ctx context.Context, auctionID, bidder string, amount int64) error
}
