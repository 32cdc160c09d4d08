package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/farmreports/internal/domain/models"
)

const snapshotCollection = "report_snapshots"

// Client owns the MongoDB connection shared by the repositories below.
type Client struct {
	client *mongo.Client
	dbName string
}

// Connect opens and pings a MongoDB connection.
func Connect(ctx context.Context, uri string, dbName string) (*Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Client{client: client, dbName: dbName}, nil
}

// Close closes the MongoDB connection.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

func (c *Client) collection(name string) *mongo.Collection {
	return c.client.Database(c.dbName).Collection(name)
}

// SnapshotRepository defines the interface for report snapshot storage.
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, snapshot models.ReportSnapshot) error
	ListSnapshots(ctx context.Context, kind models.ReportKind, limit int64) ([]models.ReportSnapshot, error)
}

// MongoSnapshotRepository implements SnapshotRepository for MongoDB.
type MongoSnapshotRepository struct {
	coll *mongo.Collection
}

// NewSnapshotRepository binds the snapshot collection.
func NewSnapshotRepository(c *Client) *MongoSnapshotRepository {
	return &MongoSnapshotRepository{coll: c.collection(snapshotCollection)}
}

// SaveSnapshot stores a generated report summary.
func (r *MongoSnapshotRepository) SaveSnapshot(ctx context.Context, snapshot models.ReportSnapshot) error {
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to insert report snapshot: %w", err)
	}
	return nil
}

// ListSnapshots returns the most recent snapshots of a report kind.
func (r *MongoSnapshotRepository) ListSnapshots(ctx context.Context, kind models.ReportKind, limit int64) ([]models.ReportSnapshot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.coll.Find(ctx, bson.M{"kind": kind}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query report snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	var snapshots []models.ReportSnapshot
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to decode report snapshots: %w", err)
	}
	return snapshots, nil
}

type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// KVBackend stores key-value records as one document per key.
type KVBackend struct {
	coll *mongo.Collection
}

// NewKVBackend binds the key-value collection.
func NewKVBackend(c *Client, collection string) *KVBackend {
	return &KVBackend{coll: c.collection(collection)}
}

// Get implements kvstore.Backend.
func (b *KVBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var doc kvDocument
	err := b.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return doc.Value, true, nil
}

// Set implements kvstore.Backend.
func (b *KVBackend) Set(ctx context.Context, key, value string) error {
	doc := kvDocument{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	opts := options.Replace().SetUpsert(true)
	if _, err := b.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Remove implements kvstore.Backend.
func (b *KVBackend) Remove(ctx context.Context, key string) error {
	if _, err := b.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}
