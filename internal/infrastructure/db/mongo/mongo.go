package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tymelesstyre/storefront/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Options configures the MongoDB-backed client storage.
type Options struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// Open connects to MongoDB and returns a Store over opts.Collection
// (client_storage when empty). The store owns the client; release it with Close.
func Open(ctx context.Context, opts Options) (*Store, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("%w: mongo connect: %w", domain.ErrStorage, err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: mongo ping: %w", domain.ErrStorage, err)
	}

	s := NewStore(client.Database(opts.Database), opts.Collection)
	s.client = client
	s.timeout = timeout
	return s, nil
}

// Close disconnects the client of a store created by Open.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongo disconnect: %w", err)
	}
	return nil
}
