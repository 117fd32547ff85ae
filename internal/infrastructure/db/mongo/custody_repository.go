package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/veluxora/auction-engine/internal/core/domain"
)

const collectionAssets = "assets"

// CustodyRepository tracks asset custody in the assets collection, one
// document per asset id.
type CustodyRepository struct {
	col *mongo.Collection

	// allowReuse relaxes the one-active-auction-per-asset policy.
	allowReuse bool
}

func NewCustodyRepository(db *mongo.Database, allowReuse bool) *CustodyRepository {
	return &CustodyRepository{col: db.Collection(collectionAssets), allowReuse: allowReuse}
}

// Take moves the asset into engine custody on behalf of auctionID. The write
// is conditional: when the asset is already held by the engine for another
// auction the filter matches nothing, the upsert collides on _id, and the
// call reports domain.ErrDuplicateAsset. Check and take are one atomic step,
// so two concurrent creates naming the same asset cannot both succeed.
func (r *CustodyRepository) Take(ctx context.Context, assetID, owner, auctionID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": assetID}
	if !r.allowReuse {
		// Free assets match, and so does a re-take by the same auction (the
		// compensating path after an aborted cancel or update).
		filter["$or"] = bson.A{
			bson.M{"kind": bson.M{"$ne": domain.CustodianEngine}},
			bson.M{"auction_id": auctionID},
		}
	}
	update := bson.M{"$set": bson.M{
		"kind":       domain.CustodianEngine,
		"holder":     owner,
		"auction_id": auctionID,
		"updated_at": time.Now().UTC(),
	}}

	_, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicateAsset
	}
	return err
}

// Release hands the asset to the given participant.
func (r *CustodyRepository) Release(ctx context.Context, assetID, participant string) error {
	return r.set(ctx, assetID, domain.AssetCustody{
		AssetID: assetID,
		Kind:    domain.CustodianParticipant,
		Holder:  participant,
	})
}

func (r *CustodyRepository) set(ctx context.Context, assetID string, c domain.AssetCustody) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	c.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"kind":       c.Kind,
		"holder":     c.Holder,
		"auction_id": c.AuctionID,
		"updated_at": c.UpdatedAt,
	}}

	_, err := r.col.UpdateOne(ctx, bson.M{"_id": assetID}, update, options.Update().SetUpsert(true))
	return err
}
