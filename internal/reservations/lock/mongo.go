package lock

import (
	"context"
	"fmt"
	"time"

	"sarpras/pkg/config"
	mongotx "sarpras/pkg/db/mongo"
	"sarpras/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const CollectionName = "Reservation_locks"

type mongoBackend struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoBackend stores locks as documents keyed by _id. The TTL index on
// expires_at cleans up eventually; expired locks are also reclaimed on acquire
// since the TTL monitor only runs about once a minute.
func NewMongoBackend(cfg *config.Config) Backend {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBackend{
		collection: db.Collection(CollectionName),
		now:        time.Now,
	}
}

func (b *mongoBackend) Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	now := b.now().UTC()

	_, err := b.collection.DeleteOne(ctx, bson.M{"_id": key, "expires_at": bson.M{"$lte": now}})
	if err != nil {
		return false, fmt.Errorf("failed to reclaim expired lock: %w", err)
	}

	lock := &model.ReservationLock{
		ID:        key,
		Owner:     owner,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if _, err := b.collection.InsertOne(ctx, lock); err != nil {
		if mongotx.IsDuplicateKey(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (b *mongoBackend) Release(ctx context.Context, key, owner string) error {
	_, err := b.collection.DeleteOne(ctx, bson.M{"_id": key, "owner": owner})
	return err
}
