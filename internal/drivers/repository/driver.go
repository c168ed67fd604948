package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	driverserrors "sarpras/internal/drivers/errors"
	"sarpras/pkg/config"
	mongotx "sarpras/pkg/db/mongo"
	"sarpras/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Drivers"
)

type mongoDriverRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type DriverRepository interface {
	Create(ctx context.Context, driver *model.Driver) error
	FindByID(ctx context.Context, id string) (*model.Driver, error)
	FindByCode(ctx context.Context, code string) (*model.Driver, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Driver, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, driver *model.Driver) error
	Delete(ctx context.Context, id string) error
}

func NewMongoDriverRepository(cfg *config.Config) DriverRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoDriverRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoDriverRepository) Create(ctx context.Context, driver *model.Driver) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	driver.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, driver)
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s", driverserrors.ErrDuplicateCode, driver.Code)
		}
		return fmt.Errorf("failed to create driver: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		driver.ID = oid.Hex()
	}
	return nil
}

func (r *mongoDriverRepository) FindByID(ctx context.Context, id string) (*model.Driver, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", driverserrors.ErrInvalidID, id)
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *mongoDriverRepository) FindByCode(ctx context.Context, code string) (*model.Driver, error) {
	return r.findOne(ctx, bson.M{"code": code})
}

func (r *mongoDriverRepository) findOne(ctx context.Context, filter bson.M) (*model.Driver, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var driver model.Driver
	if err := r.collection.FindOne(ctx, filter).Decode(&driver); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, driverserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find driver: %w", err)
	}
	return &driver, nil
}

func (r *mongoDriverRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Driver, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "code", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find drivers: %w", err)
	}
	defer cursor.Close(ctx)

	var drivers []*model.Driver
	if err = cursor.All(ctx, &drivers); err != nil {
		return nil, fmt.Errorf("failed to decode drivers: %w", err)
	}
	return drivers, nil
}

func (r *mongoDriverRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count drivers: %w", err)
	}
	return count, nil
}

func (r *mongoDriverRepository) Update(ctx context.Context, id string, driver *model.Driver) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", driverserrors.ErrInvalidID, id)
	}

	driver.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"name":       driver.Name,
			"phone":      driver.Phone,
			"active":     driver.Active,
			"updated_at": driver.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update driver: %w", err)
	}
	if result.MatchedCount == 0 {
		return driverserrors.ErrNotFound
	}
	return nil
}

func (r *mongoDriverRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", driverserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete driver: %w", err)
	}
	if result.DeletedCount == 0 {
		return driverserrors.ErrNotFound
	}
	return nil
}
