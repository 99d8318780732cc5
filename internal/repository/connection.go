package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOptions configures the receipt database connection. Zero durations
// and pool size fall back to the driver-friendly defaults below.
type MongoOptions struct {
	URI            string
	Database       string
	MaxPoolSize    uint64
	ConnectTimeout time.Duration
}

const (
	defaultMongoPoolSize       = 50
	defaultMongoConnectTimeout = 10 * time.Second
)

// ConnectMongoDB opens a client, verifies it with a ping and returns the
// receipt database. The client is disconnected again if the ping fails.
func ConnectMongoDB(ctx context.Context, opts MongoOptions) (*mongo.Database, error) {
	if opts.URI == "" || opts.Database == "" {
		return nil, errors.New("mongo uri and database are required")
	}
	if opts.MaxPoolSize == 0 {
		opts.MaxPoolSize = defaultMongoPoolSize
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = defaultMongoConnectTimeout
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(opts.URI).
		SetConnectTimeout(opts.ConnectTimeout).
		SetServerSelectionTimeout(opts.ConnectTimeout).
		SetMaxPoolSize(opts.MaxPoolSize))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo %s: %w", opts.Database, err)
	}

	return client.Database(opts.Database), nil
}
