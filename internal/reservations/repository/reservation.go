package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sarpras/internal/reservations/availability"
	reservationserrors "sarpras/internal/reservations/errors"
	"sarpras/pkg/config"
	mongotx "sarpras/pkg/db/mongo"
	"sarpras/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Reservations"
)

type mongoReservationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ReservationRepository interface {
	availability.ReservationStore

	Create(ctx context.Context, reservation *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error)
	Update(ctx context.Context, id string, reservation *model.Reservation) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, filter model.ReservationFilter, limit int, offset int64) ([]*model.Reservation, error)
	CountSearch(ctx context.Context, filter model.ReservationFilter) (int64, error)
	Count(ctx context.Context) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo, cfg.MongoTransactions),
	}
}

func (r *mongoReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	reservation.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, reservation)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		reservation.ID = oid.Hex()
	}
	return nil
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	var reservation model.Reservation
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}

	return &reservation, nil
}

func (r *mongoReservationRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	return r.find(ctx, bson.M{}, limit, offset)
}

func (r *mongoReservationRepository) Update(ctx context.Context, id string, reservation *model.Reservation) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	reservation.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	set := bson.M{
		"asset_code": reservation.AssetCode,
		"asset_name": reservation.AssetName,
		"start_time": reservation.StartTime,
		"end_time":   reservation.EndTime,
		"purpose":    reservation.Purpose,
		"updated_at": reservation.UpdatedAt,
	}
	unset := bson.M{}
	if reservation.Vehicle != nil {
		set["vehicle"] = reservation.Vehicle
	} else {
		unset["vehicle"] = ""
	}
	if reservation.Room != nil {
		set["room"] = reservation.Room
	} else {
		unset["room"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	if result.MatchedCount == 0 {
		return reservationserrors.ErrNotFound
	}

	return nil
}

func (r *mongoReservationRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	if result.DeletedCount == 0 {
		return reservationserrors.ErrNotFound
	}

	return nil
}

// FindOverlapping returns every reservation intersecting [q.Start, q.End)
// that matches the asset, driver or item narrowing. It is unbounded; the
// checker needs the complete set to tally stock.
func (r *mongoReservationRepository) FindOverlapping(ctx context.Context, q availability.OverlapQuery) ([]*model.Reservation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, BuildOverlapFilter(q))
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

// BuildOverlapFilter translates q into a Mongo filter. Stored windows are
// half-open, so a reservation ending exactly at q.Start is not matched.
func BuildOverlapFilter(q availability.OverlapQuery) bson.M {
	filter := bson.M{
		"start_time": bson.M{"$lt": q.End},
		"end_time":   bson.M{"$gt": q.Start},
	}

	if q.ExcludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(q.ExcludeID); err == nil {
			filter["_id"] = bson.M{"$ne": oid}
		}
	}

	var or []bson.M
	if q.AssetCode != "" {
		or = append(or, bson.M{"asset_code": q.AssetCode})
	}
	if q.DriverRef != "" {
		or = append(or, bson.M{"kind": model.ReservationKindVehicle, "vehicle.driver_ref": q.DriverRef})
	}
	if len(q.ItemCodes) > 0 {
		or = append(or, bson.M{"kind": model.ReservationKindRoom, "room.items.item_code": bson.M{"$in": q.ItemCodes}})
	}
	if len(or) > 0 {
		filter["$or"] = or
	}

	return filter
}

func (r *mongoReservationRepository) Search(ctx context.Context, filter model.ReservationFilter, limit int, offset int64) ([]*model.Reservation, error) {
	return r.find(ctx, BuildSearchFilter(filter), limit, offset)
}

func (r *mongoReservationRepository) CountSearch(ctx context.Context, filter model.ReservationFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, BuildSearchFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations by search: %w", err)
	}
	return count, nil
}

func BuildSearchFilter(f model.ReservationFilter) bson.M {
	filter := bson.M{}
	if f.Kind != "" {
		filter["kind"] = f.Kind
	}
	if f.AssetCode != "" {
		filter["asset_code"] = f.AssetCode
	}
	if f.DriverRef != "" {
		filter["vehicle.driver_ref"] = f.DriverRef
	}
	if f.EndTime != nil {
		filter["start_time"] = bson.M{"$lt": *f.EndTime}
	}
	if f.StartTime != nil {
		filter["end_time"] = bson.M{"$gt": *f.StartTime}
	}
	return filter
}

func (r *mongoReservationRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	return count, nil
}

func (r *mongoReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func (r *mongoReservationRepository) find(ctx context.Context, filter bson.M, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}
