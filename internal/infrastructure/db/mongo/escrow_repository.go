package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	collectionEscrow    = "escrow"
	collectionTransfers = "escrow_transfers"
)

// EscrowRepository implements ports.EscrowLedger. The held deposit for an
// auction is a single document keyed by auction id, so every swap is one
// conditional document operation: it either applies completely or not at all.
// Releases and payouts are additionally recorded in an append-only transfer
// log for audit.
type EscrowRepository struct {
	held      *mongo.Collection
	transfers *mongo.Collection
}

func NewEscrowRepository(db *mongo.Database) *EscrowRepository {
	return &EscrowRepository{
		held:      db.Collection(collectionEscrow),
		transfers: db.Collection(collectionTransfers),
	}
}

type escrowDoc struct {
	AuctionID string    `bson:"_id"`
	Bidder    string    `bson:"bidder"`
	Amount    int64     `bson:"amount"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Replace atomically swaps the held deposit, conditional on the current
// entry matching the expected previous bidder and amount. Swapping in an
// empty deposit removes the entry, so an unwound first bid leaves no trace.
func (r *EscrowRepository) Replace(ctx context.Context, auctionID, prevBidder string, prevAmount int64, newBidder string, newAmount int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	doc := escrowDoc{AuctionID: auctionID, Bidder: newBidder, Amount: newAmount, UpdatedAt: now}

	if prevBidder == "" && prevAmount == 0 {
		// First deposit: the insert fails if something is already held.
		if _, err := r.held.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return fmt.Errorf("escrow %s: deposit already held", auctionID)
			}
			return err
		}
		r.logTransfer(ctx, auctionID, newBidder, newAmount, "deposit", now)
		return nil
	}

	filter := bson.M{"_id": auctionID, "bidder": prevBidder, "amount": prevAmount}

	if newBidder == "" && newAmount == 0 {
		// Unwinding a first deposit. The document must go away entirely: a
		// leftover {bidder:"", amount:0} entry would make every later first
		// deposit collide on insert.
		err := r.held.FindOneAndDelete(ctx, filter).Err()
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return fmt.Errorf("escrow %s: held deposit does not match %s/%d", auctionID, prevBidder, prevAmount)
			}
			return err
		}
		r.logTransfer(ctx, auctionID, prevBidder, prevAmount, "refund", now)
		return nil
	}

	err := r.held.FindOneAndReplace(ctx, filter, doc).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("escrow %s: held deposit does not match %s/%d", auctionID, prevBidder, prevAmount)
		}
		return err
	}
	r.logTransfer(ctx, auctionID, prevBidder, prevAmount, "refund", now)
	r.logTransfer(ctx, auctionID, newBidder, newAmount, "deposit", now)
	return nil
}

// Payout releases the held deposit to the recipient. Returns zero when
// nothing was held (a zero-bid auction settles trivially).
func (r *EscrowRepository) Payout(ctx context.Context, auctionID, recipient string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc escrowDoc
	err := r.held.FindOneAndDelete(ctx, bson.M{"_id": auctionID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	r.logTransfer(ctx, auctionID, recipient, doc.Amount, "payout", time.Now().UTC())
	return doc.Amount, nil
}

// Held reports the deposit currently held for the auction.
func (r *EscrowRepository) Held(ctx context.Context, auctionID string) (string, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc escrowDoc
	err := r.held.FindOne(ctx, bson.M{"_id": auctionID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", 0, nil
		}
		return "", 0, err
	}
	return doc.Bidder, doc.Amount, nil
}

// Deposit re-takes a deposit. Compensating action only.
func (r *EscrowRepository) Deposit(ctx context.Context, auctionID, bidder string, amount int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	_, err := r.held.InsertOne(ctx, escrowDoc{AuctionID: auctionID, Bidder: bidder, Amount: amount, UpdatedAt: now})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("escrow %s: deposit already held", auctionID)
		}
		return err
	}
	r.logTransfer(ctx, auctionID, bidder, amount, "deposit", now)
	return nil
}

// logTransfer appends to the transfer audit log. Best effort: the held
// document is authoritative, the log is not.
func (r *EscrowRepository) logTransfer(ctx context.Context, auctionID, party string, amount int64, kind string, ts time.Time) {
	_, _ = r.transfers.InsertOne(ctx, bson.M{
		"auction_id": auctionID,
		"party":      party,
		"amount":     amount,
		"kind":       kind,
		"timestamp":  ts,
	})
}
