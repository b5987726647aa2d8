package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "fitbook/internal/bookings/errors"
	"fitbook/pkg/config"
	mongotx "fitbook/pkg/db/mongo"
	"fitbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "bookings"

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByEmail(ctx context.Context, email string, includeCancelled bool) ([]*model.Booking, error)
	FindByClass(ctx context.Context, classID string) ([]*model.Booking, error)
	FindAll(ctx context.Context) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id, expectedStatus, newStatus string) (int64, error)
	ExistsConfirmed(ctx context.Context, classID, email string) (bool, error)
	CountConfirmedByClass(ctx context.Context, classID string) (int64, error)
	EnsureIndexes(ctx context.Context) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithTimeout(ctx, time.Until(deadline))
	}
	return context.WithTimeout(ctx, timeout)
}

// EnsureIndexes creates the partial unique index backing the one-active-
// booking-per-client-per-class invariant. The duplicate pre-check in the
// service is advisory; this index is what makes the check race-free.
func (r *mongoBookingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "class_id", Value: 1},
				{Key: "client_email", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": model.StatusConfirmed}),
		},
		{Keys: bson.D{{Key: "client_email", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		// Duplicate key errors pass through untouched so the service can
		// map them to the duplicate-booking conflict.
		return err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindByEmail(ctx context.Context, email string, includeCancelled bool) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"client_email": email}
	if !includeCancelled {
		filter["status"] = bson.M{"$ne": model.StatusCancelled}
	}

	return r.findBookings(ctx, filter)
}

func (r *mongoBookingRepository) FindByClass(ctx context.Context, classID string) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(classID); err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, classID)
	}

	return r.findBookings(ctx, bson.M{
		"class_id": classID,
		"status":   model.StatusConfirmed,
	})
}

func (r *mongoBookingRepository) FindAll(ctx context.Context) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.findBookings(ctx, bson.M{})
}

func (r *mongoBookingRepository) findBookings(ctx context.Context, filter bson.M) ([]*model.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

// UpdateStatus transitions a booking's status only when the stored status
// still equals expectedStatus, and reports the matched count. Zero means the
// booking was missing or already past the expected state; callers must treat
// that as "no transition happened", not as an error.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id, expectedStatus, newStatus string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": expectedStatus},
		bson.M{"$set": bson.M{"status": newStatus}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update booking status: %w", err)
	}

	return result.MatchedCount, nil
}

func (r *mongoBookingRepository) ExistsConfirmed(ctx context.Context, classID, email string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(classID); err != nil {
		return false, nil
	}

	err := r.collection.FindOne(ctx, bson.M{
		"class_id":     classID,
		"client_email": email,
		"status":       model.StatusConfirmed,
	}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check duplicate booking: %w", err)
	}

	return true, nil
}

func (r *mongoBookingRepository) CountConfirmedByClass(ctx context.Context, classID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(classID); err != nil {
		return 0, nil
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"class_id": classID,
		"status":   model.StatusConfirmed,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings by class: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
