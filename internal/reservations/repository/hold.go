package repository

import (
	"context"
	"fmt"
	"time"

	"voyara/pkg/config"
	"voyara/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	HoldCollection = "CapacityHolds"
)

// mongoHoldRepository backs the availability index's hold store. Holds
// are keyed by their uuid so commit and release can delete by _id, and
// the collection carries a TTL index on expires_at as a backstop for the
// sweeper.
type mongoHoldRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoHoldRepository(cfg *config.Config) *mongoHoldRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoHoldRepository{
		cfg:        cfg,
		collection: db.Collection(HoldCollection),
	}
}

func (r *mongoHoldRepository) Insert(ctx context.Context, hold *model.CapacityHold) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, hold); err != nil {
		return fmt.Errorf("failed to insert capacity hold: %w", err)
	}
	return nil
}

// Delete is idempotent; a missing hold (already committed, released or
// swept) is not an error.
func (r *mongoHoldRepository) Delete(ctx context.Context, holdID string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": holdID}); err != nil {
		return fmt.Errorf("failed to delete capacity hold: %w", err)
	}
	return nil
}

func (r *mongoHoldRepository) ActiveForResource(ctx context.Context, resourceID string, now time.Time) ([]*model.CapacityHold, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"resource_id": resourceID,
		"expires_at":  bson.M{"$gt": now},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find capacity holds: %w", err)
	}
	defer cursor.Close(ctx)

	var holds []*model.CapacityHold
	if err = cursor.All(ctx, &holds); err != nil {
		return nil, fmt.Errorf("failed to decode capacity holds: %w", err)
	}
	return holds, nil
}

func (r *mongoHoldRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired holds: %w", err)
	}
	return result.DeletedCount, nil
}
