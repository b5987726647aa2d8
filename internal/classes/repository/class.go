package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	classerrors "fitbook/internal/classes/errors"
	"fitbook/pkg/config"
	"fitbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "classes"

type ClassRepository interface {
	Create(ctx context.Context, class *model.FitnessClass) error
	FindByID(ctx context.Context, id string) (*model.FitnessClass, error)
	FindAll(ctx context.Context, includePast bool) ([]*model.FitnessClass, error)
	FindUpcoming(ctx context.Context, hoursAhead int) ([]*model.FitnessClass, error)
	FindByInstructor(ctx context.Context, instructor string) ([]*model.FitnessClass, error)
	UpdateSlots(ctx context.Context, id string, availableSlots int) error
	DecrementAvailableSlots(ctx context.Context, id string) (bool, error)
	IncrementAvailableSlots(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	EnsureIndexes(ctx context.Context) error
}

type mongoClassRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoClassRepository(cfg *config.Config) ClassRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoClassRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout wraps the context with a timeout unless we are already inside a
// transaction, where wrapping the SessionContext would break transaction
// semantics.
func (r *mongoClassRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithTimeout(ctx, time.Until(deadline))
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoClassRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "start_time", Value: 1}}},
		{Keys: bson.D{{Key: "instructor", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create class indexes: %w", err)
	}
	return nil
}

func (r *mongoClassRepository) Create(ctx context.Context, class *model.FitnessClass) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	class.CreatedAt = now
	class.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, class)
	if err != nil {
		return fmt.Errorf("failed to create class: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		class.ID = oid.Hex()
	}
	return nil
}

func (r *mongoClassRepository) FindByID(ctx context.Context, id string) (*model.FitnessClass, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", classerrors.ErrInvalidID, id)
	}

	var class model.FitnessClass
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&class)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, classerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find class: %w", err)
	}

	return &class, nil
}

func (r *mongoClassRepository) FindAll(ctx context.Context, includePast bool) ([]*model.FitnessClass, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if !includePast {
		filter["start_time"] = bson.M{"$gt": time.Now().UTC()}
	}

	return r.findClasses(ctx, filter)
}

func (r *mongoClassRepository) FindUpcoming(ctx context.Context, hoursAhead int) ([]*model.FitnessClass, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	now := time.Now().UTC()
	filter := bson.M{
		"start_time": bson.M{
			"$gte": now,
			"$lte": now.Add(time.Duration(hoursAhead) * time.Hour),
		},
	}

	return r.findClasses(ctx, filter)
}

func (r *mongoClassRepository) FindByInstructor(ctx context.Context, instructor string) ([]*model.FitnessClass, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.findClasses(ctx, bson.M{"instructor": instructor})
}

func (r *mongoClassRepository) findClasses(ctx context.Context, filter bson.M) ([]*model.FitnessClass, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find classes: %w", err)
	}
	defer cursor.Close(ctx)

	var classes []*model.FitnessClass
	if err = cursor.All(ctx, &classes); err != nil {
		return nil, fmt.Errorf("failed to decode classes: %w", err)
	}

	return classes, nil
}

// UpdateSlots sets available_slots to an absolute value. Bounds are the
// caller's responsibility; the booking workflow never uses this, it goes
// through the conditional increment/decrement instead.
func (r *mongoClassRepository) UpdateSlots(ctx context.Context, id string, availableSlots int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", classerrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{
			"available_slots": availableSlots,
			"updated_at":      time.Now().UTC(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update class slots: %w", err)
	}
	if result.MatchedCount == 0 {
		return classerrors.ErrNotFound
	}
	return nil
}

// DecrementAvailableSlots atomically takes one seat, matching the document
// only while available_slots > 0. The reported matched count is the truth:
// false means no seat remained at commit time, whatever an earlier read said.
func (r *mongoClassRepository) DecrementAvailableSlots(ctx context.Context, id string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("%w: %s", classerrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":             objectID,
			"available_slots": bson.M{"$gt": 0},
		},
		bson.M{
			"$inc": bson.M{"available_slots": -1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to decrement class slots: %w", err)
	}

	return result.MatchedCount == 1, nil
}

// IncrementAvailableSlots atomically restores one seat, bounded by
// total_slots so a stray double-release can never oversupply the class.
func (r *mongoClassRepository) IncrementAvailableSlots(ctx context.Context, id string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("%w: %s", classerrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":   objectID,
			"$expr": bson.M{"$lt": bson.A{"$available_slots", "$total_slots"}},
		},
		bson.M{
			"$inc": bson.M{"available_slots": 1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to increment class slots: %w", err)
	}

	return result.MatchedCount == 1, nil
}

func (r *mongoClassRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", classerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete class: %w", err)
	}
	if result.DeletedCount == 0 {
		return classerrors.ErrNotFound
	}
	return nil
}
