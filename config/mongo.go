package config

import (
	"context"
	"errors"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongoClient connects using MONGODB_URL and verifies the connection. The
// caller owns the client: connect once at startup, Disconnect on shutdown.
func NewMongoClient(ctx context.Context) (*mongo.Client, error) {
	uri := os.Getenv("MONGODB_URL")
	if uri == "" {
		return nil, errors.New("MONGODB_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(uri).
		SetServerSelectionTimeout(20 * time.Second).
		SetConnectTimeout(15 * time.Second).
		SetMaxPoolSize(10).
		SetMinPoolSize(1)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}

// MongoDatabaseName resolves DATABASE_NAME with the historical default.
func MongoDatabaseName() string {
	if name := os.Getenv("DATABASE_NAME"); name != "" {
		return name
	}
	return "careere"
}
