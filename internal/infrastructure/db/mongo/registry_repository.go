package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/veluxora/auction-engine/internal/core/domain"
)

const collectionParticipants = "participants"

type RegistryRepository struct {
	col *mongo.Collection
}

func NewRegistryRepository(db *mongo.Database) *RegistryRepository {
	return &RegistryRepository{col: db.Collection(collectionParticipants)}
}

// Insert stores a new participant. The participant id is the document key,
// so a repeated registration trips the duplicate-key error.
func (r *RegistryRepository) Insert(ctx context.Context, p *domain.Participant) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

// Find retrieves a participant by identity.
func (r *RegistryRepository) Find(ctx context.Context, id string) (*domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Participant
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotRegistered
		}
		return nil, err
	}
	return &p, nil
}
