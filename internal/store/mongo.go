package store

import (
	"context"
	"fmt"

	"github.com/iwvelando/str-forecast/pkg/snapshot"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	defaultMongoDatabase   = "str_forecast"
	defaultMongoCollection = "properties"
)

type mongoDocument struct {
	Name     string            `bson:"_id"`
	Snapshot map[string]string `bson:"snapshot"`
}

// Mongo stores one document per property, keyed by name.
type Mongo struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongo connects to uri and verifies the connection.
func NewMongo(ctx context.Context, uri, database, collection string, logger *zap.Logger) (*Mongo, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if database == "" {
		database = defaultMongoDatabase
	}
	if collection == "" {
		collection = defaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Mongo{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger,
	}, nil
}

// Save implements Store.
func (m *Mongo) Save(ctx context.Context, name string, s snapshot.Snapshot) error {
	name, err := checkName(name)
	if err != nil {
		return err
	}
	doc := mongoDocument{Name: name, Snapshot: prepare(name, s)}
	_, err = m.collection.ReplaceOne(ctx, bson.M{"_id": name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", name, err)
	}
	m.logger.Debug("saved property",
		zap.String("op", "store.Mongo.Save"),
		zap.String("property", name),
	)
	return nil
}

// LoadAll implements Store.
func (m *Mongo) LoadAll(ctx context.Context) ([]snapshot.Snapshot, error) {
	cursor, err := m.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode snapshots: %w", err)
	}
	out := make([]snapshot.Snapshot, 0, len(docs))
	for _, doc := range docs {
		out = append(out, prepare(doc.Name, doc.Snapshot))
	}
	sortByName(out)
	return out, nil
}

// Delete implements Store.
func (m *Mongo) Delete(ctx context.Context, name string) error {
	name, err := checkName(name)
	if err != nil {
		return err
	}
	if _, err := m.collection.DeleteOne(ctx, bson.M{"_id": name}); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", name, err)
	}
	return nil
}

// Close implements Store.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
