package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const appName = "cartd"

// ConnectOption tunes the client built by Connect.
type ConnectOption func(*options.ClientOptions)

// WithPoolSize caps the connections held to the server.
func WithPoolSize(n uint64) ConnectOption {
	return func(o *options.ClientOptions) { o.SetMaxPoolSize(n) }
}

// WithTimeouts sets the dial and server-selection timeouts.
func WithTimeouts(dial, selection time.Duration) ConnectOption {
	return func(o *options.ClientOptions) {
		o.SetConnectTimeout(dial)
		o.SetServerSelectionTimeout(selection)
	}
}

func clientOptions(uri string, opts ...ConnectOption) *options.ClientOptions {
	o := options.Client().
		ApplyURI(uri).
		SetAppName(appName).
		SetMaxPoolSize(4).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Connect opens a client, checks that the primary answers and returns the
// named database. The client is disconnected again when the check fails.
func Connect(ctx context.Context, uri, database string, opts ...ConnectOption) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, clientOptions(uri, opts...))
	if err != nil {
		return nil, errors.Wrap(err, "mongo connect")
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrapf(err, "mongo ping %s", database)
	}

	return client.Database(database), nil
}
