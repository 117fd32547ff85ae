package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/veluxora/auction-engine/internal/core/domain"
)

const collectionEvents = "auction_events"

// EventRepository persists delivered engine events to the audit trail.
type EventRepository struct {
	col *mongo.Collection
}

func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{col: db.Collection(collectionEvents)}
}

// Insert appends one event.
func (r *EventRepository) Insert(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"type":       string(event.Type),
		"actor":      event.Actor,
		"auction_id": event.AuctionID,
		"timestamp":  event.Timestamp,
		"stored_at":  time.Now().UTC(),
	}
	if event.AssetID != "" {
		doc["asset_id"] = event.AssetID
	}
	if event.Amount != 0 {
		doc["amount"] = event.Amount
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}

// ListByAuction returns the auction's events in delivery order.
func (r *EventRepository) ListByAuction(ctx context.Context, auctionID string) ([]domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"auction_id": auctionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []domain.Event{}
	for cur.Next(ctx) {
		var doc struct {
			Type      string    `bson:"type"`
			Actor     string    `bson:"actor"`
			AuctionID string    `bson:"auction_id"`
			AssetID   string    `bson:"asset_id"`
			Amount    int64     `bson:"amount"`
			Timestamp time.Time `bson:"timestamp"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, domain.Event{
			Type:      domain.EventType(doc.Type),
			Actor:     doc.Actor,
			AuctionID: doc.AuctionID,
			AssetID:   doc.AssetID,
			Amount:    doc.Amount,
			Timestamp: doc.Timestamp,
		})
	}
	return out, cur.Err()
}

// EnsureIndexes creates necessary indexes on the auction_events collection.
func (r *EventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "auction_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
