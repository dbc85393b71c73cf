package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"call-logs-go/internal/logger"
	"call-logs-go/internal/types"
)

// Mongo reads call-log documents from a MongoDB collection.
type Mongo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongo connects and pings the server so a bad connection string fails at
// startup instead of on the first refresh.
func NewMongo(ctx context.Context, uri, database, collection string) (*Mongo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Component("store").
		WithField("database", database).
		WithField("collection", collection).
		Info("connected to document store")

	return &Mongo{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (m *Mongo) FetchAll(ctx context.Context) ([]types.RawRecord, error) {
	cursor, err := m.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find call logs: %w", err)
	}
	defer cursor.Close(ctx)

	var records []types.RawRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode call logs: %w", err)
	}
	return records, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
