package inventory

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/shankarelec/stocktrack/internal/config"
	"github.com/shankarelec/stocktrack/internal/domain/models"
)

// Repository defines the interface for inventory persistence. Updates are
// observed through Watch, which always delivers the full collection rather
// than incremental patches.
type Repository interface {
	Insert(ctx context.Context, unit models.InventoryUnit) (string, error)
	UpdateStatus(ctx context.Context, id string, status models.Status, actionDate time.Time) error
	FindAll(ctx context.Context) ([]models.InventoryUnit, error)
	Watch(ctx context.Context, publish func([]models.InventoryUnit)) error
}

// MongoRepository implements Repository on a MongoDB collection.
type MongoRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
	logger   *zap.Logger
}

// NewMongoRepository connects to MongoDB and verifies the connection.
func NewMongoRepository(ctx context.Context, cfg config.MongoDBConfig, logger *zap.Logger) (*MongoRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(cfg.URI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoRepository{
		client:   client,
		dbName:   cfg.DBName,
		collName: cfg.Collection,
		logger:   logger,
	}, nil
}

func (r *MongoRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// Insert stores a new unit and returns its assigned identifier.
func (r *MongoRepository) Insert(ctx context.Context, unit models.InventoryUnit) (string, error) {
	unit.ID = primitive.NewObjectID().Hex()

	if _, err := r.collection().InsertOne(ctx, unit); err != nil {
		return "", fmt.Errorf("insert unit: %v: %w", err, models.ErrPersistence)
	}
	return unit.ID, nil
}

// UpdateStatus applies a partial update carrying the new status and action
// date. An unmatched id reports models.ErrNotFound.
func (r *MongoRepository) UpdateStatus(ctx context.Context, id string, status models.Status, actionDate time.Time) error {
	update := bson.M{"$set": bson.M{
		"status":      status,
		"action_date": actionDate,
	}}

	res, err := r.collection().UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("update unit %s: %v: %w", id, err, models.ErrPersistence)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update unit %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// FindAll reads the full collection in insertion order.
func (r *MongoRepository) FindAll(ctx context.Context) ([]models.InventoryUnit, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %v: %w", err, models.ErrPersistence)
	}
	defer cursor.Close(ctx)

	var units []models.InventoryUnit
	if err := cursor.All(ctx, &units); err != nil {
		return nil, fmt.Errorf("decode inventory: %v: %w", err, models.ErrPersistence)
	}
	return units, nil
}

// Watch opens a change stream on the collection and invokes publish with a
// fresh full snapshot on start and after every change event. It blocks until
// ctx is cancelled or the stream fails.
func (r *MongoRepository) Watch(ctx context.Context, publish func([]models.InventoryUnit)) error {
	stream, err := r.collection().Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return fmt.Errorf("open change stream: %v: %w", err, models.ErrPersistence)
	}
	defer stream.Close(context.Background())

	if err := r.republish(ctx, publish); err != nil {
		return err
	}

	for stream.Next(ctx) {
		if err := r.republish(ctx, publish); err != nil {
			return err
		}
	}

	if ctx.Err() != nil {
		return nil
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("change stream: %v: %w", err, models.ErrPersistence)
	}
	return nil
}

func (r *MongoRepository) republish(ctx context.Context, publish func([]models.InventoryUnit)) error {
	units, err := r.FindAll(ctx)
	if err != nil {
		return err
	}

	r.logger.Debug("publishing snapshot", zap.Int("units", len(units)))
	publish(units)
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
