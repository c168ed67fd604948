package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	assetserrors "sarpras/internal/assets/errors"
	"sarpras/pkg/config"
	mongotx "sarpras/pkg/db/mongo"
	"sarpras/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Assets"
)

type mongoAssetRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type AssetRepository interface {
	Create(ctx context.Context, asset *model.Asset) error
	FindByID(ctx context.Context, id string) (*model.Asset, error)
	FindByCode(ctx context.Context, code string) (*model.Asset, error)
	FindAll(ctx context.Context, kind model.AssetKind, limit int, offset int64) ([]*model.Asset, error)
	Count(ctx context.Context, kind model.AssetKind) (int64, error)
	Update(ctx context.Context, id string, asset *model.Asset) error
	Delete(ctx context.Context, id string) error
}

func NewMongoAssetRepository(cfg *config.Config) AssetRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAssetRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoAssetRepository) Create(ctx context.Context, asset *model.Asset) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	asset.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, asset)
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s", assetserrors.ErrDuplicateCode, asset.Code)
		}
		return fmt.Errorf("failed to create asset: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		asset.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAssetRepository) FindByID(ctx context.Context, id string) (*model.Asset, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", assetserrors.ErrInvalidID, id)
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

// FindByCode returns assetserrors.ErrNotFound for unknown codes.
func (r *mongoAssetRepository) FindByCode(ctx context.Context, code string) (*model.Asset, error) {
	return r.findOne(ctx, bson.M{"code": code})
}

func (r *mongoAssetRepository) findOne(ctx context.Context, filter bson.M) (*model.Asset, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var asset model.Asset
	err := r.collection.FindOne(ctx, filter).Decode(&asset)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, assetserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find asset: %w", err)
	}

	return &asset, nil
}

func (r *mongoAssetRepository) FindAll(ctx context.Context, kind model.AssetKind, limit int, offset int64) ([]*model.Asset, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "code", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, kindFilter(kind), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find assets: %w", err)
	}
	defer cursor.Close(ctx)

	var assets []*model.Asset
	if err = cursor.All(ctx, &assets); err != nil {
		return nil, fmt.Errorf("failed to decode assets: %w", err)
	}

	return assets, nil
}

func (r *mongoAssetRepository) Count(ctx context.Context, kind model.AssetKind) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, kindFilter(kind))
	if err != nil {
		return 0, fmt.Errorf("failed to count assets: %w", err)
	}
	return count, nil
}

func (r *mongoAssetRepository) Update(ctx context.Context, id string, asset *model.Asset) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", assetserrors.ErrInvalidID, id)
	}

	asset.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	set := bson.M{
		"name":        asset.Name,
		"location":    asset.Location,
		"description": asset.Description,
		"updated_at":  asset.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if asset.StockCount != nil {
		set["stock_count"] = *asset.StockCount
	} else {
		update["$unset"] = bson.M{"stock_count": ""}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}
	if result.MatchedCount == 0 {
		return assetserrors.ErrNotFound
	}

	return nil
}

func (r *mongoAssetRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", assetserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	if result.DeletedCount == 0 {
		return assetserrors.ErrNotFound
	}

	return nil
}

func kindFilter(kind model.AssetKind) bson.M {
	if kind == "" {
		return bson.M{}
	}
	return bson.M{"kind": kind}
}
