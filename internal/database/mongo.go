package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DialMongo returns a DialFunc that connects to uri and pings the primary.
func DialMongo(uri string) DialFunc[*mongo.Client] {
	return func(ctx context.Context) (*mongo.Client, error) {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
		}
		return client, nil
	}
}

// CloseMongo disconnects a MongoDB client.
func CloseMongo(ctx context.Context, client *mongo.Client) error {
	return client.Disconnect(ctx)
}

// NewMongoManager creates a lazily connected MongoDB client manager.
func NewMongoManager(uri string) *Manager[*mongo.Client] {
	return NewManager("MongoDB", DialMongo(uri), CloseMongo)
}
