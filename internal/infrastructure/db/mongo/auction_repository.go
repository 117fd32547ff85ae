package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/veluxora/auction-engine/internal/core/domain"
	"github.com/veluxora/auction-engine/internal/core/ports"
)

const collectionAuctions = "auctions"

type AuctionRepository struct {
	col *mongo.Collection
}

func NewAuctionRepository(db *mongo.Database) *AuctionRepository {
	return &AuctionRepository{col: db.Collection(collectionAuctions)}
}

// Insert stores a new auction document. The auction id is the document key.
func (r *AuctionRepository) Insert(ctx context.Context, a *domain.Auction) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, a)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateAuction
		}
		return err
	}
	return nil
}

// FindByID retrieves an auction by id.
func (r *AuctionRepository) FindByID(ctx context.Context, id string) (*domain.Auction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var a domain.Auction
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Replace overwrites the stored record.
func (r *AuctionRepository) Replace(ctx context.Context, a *domain.Auction) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrAuctionNotFound
	}
	return nil
}

// SetHighestBid replaces the leader, conditional on the stored highest bid
// still being prevAmount.
func (r *AuctionRepository) SetHighestBid(ctx context.Context, id string, prevAmount int64, bidder string, amount int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "highest_bid": prevAmount}
	update := bson.M{"$set": bson.M{"highest_bid": amount, "highest_bidder": bidder}}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("auction %s: highest bid moved past %d", id, prevAmount)
	}
	return nil
}

// SetCanceled marks the auction canceled.
func (r *AuctionRepository) SetCanceled(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"canceled": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrAuctionNotFound
	}
	return nil
}

// MarkAssetClaimed flips asset_claimed exactly once; the false->true filter
// is the idempotence guard.
func (r *AuctionRepository) MarkAssetClaimed(ctx context.Context, id string) error {
	return r.setFlag(ctx, id, "asset_claimed", false, true)
}

// UnmarkAssetClaimed reverts MarkAssetClaimed after a failed transfer.
func (r *AuctionRepository) UnmarkAssetClaimed(ctx context.Context, id string) error {
	return r.setFlag(ctx, id, "asset_claimed", true, false)
}

// MarkFundsClaimed flips funds_claimed exactly once.
func (r *AuctionRepository) MarkFundsClaimed(ctx context.Context, id string) error {
	return r.setFlag(ctx, id, "funds_claimed", false, true)
}

// UnmarkFundsClaimed reverts MarkFundsClaimed after a failed transfer.
func (r *AuctionRepository) UnmarkFundsClaimed(ctx context.Context, id string) error {
	return r.setFlag(ctx, id, "funds_claimed", true, false)
}

func (r *AuctionRepository) setFlag(ctx context.Context, id, field string, from, to bool) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, field: from},
		bson.M{"$set": bson.M{field: to}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// The record exists (callers hold the auction lock after a find),
		// so a missed match means the flag was already flipped.
		if to {
			return domain.ErrAlreadyClaimed
		}
		return fmt.Errorf("auction %s: %s flag already reverted", id, field)
	}
	return nil
}

// List returns a page of auctions matching filter and the total count.
// Phase filters translate into time comparisons because phase is derived,
// not stored.
func (r *AuctionRepository) List(ctx context.Context, f ports.ListAuctionsFilter) ([]*domain.Auction, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Creator != "" {
		filter["creator"] = f.Creator
	}
	if f.AssetID != "" {
		filter["asset_id"] = f.AssetID
	}
	switch f.Phase {
	case domain.PhasePending:
		filter["canceled"] = false
		filter["start_time"] = bson.M{"$gt": f.Now}
	case domain.PhaseActive:
		filter["canceled"] = false
		filter["start_time"] = bson.M{"$lte": f.Now}
		filter["end_time"] = bson.M{"$gt": f.Now}
	case domain.PhaseEnded:
		filter["canceled"] = false
		filter["end_time"] = bson.M{"$lte": f.Now}
	case domain.PhaseCanceled:
		filter["canceled"] = true
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip := int64((f.Page - 1) * f.Limit)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []*domain.Auction
	for cur.Next(ctx) {
		var a domain.Auction
		if err := cur.Decode(&a); err != nil {
			return nil, 0, err
		}
		out = append(out, &a)
	}
	return out, total, cur.Err()
}

// EnsureIndexes creates necessary indexes on the auctions collection.
func (r *AuctionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "creator", Value: 1}}},
		{Keys: bson.D{{Key: "asset_id", Value: 1}}},
		{Keys: bson.D{{Key: "end_time", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
