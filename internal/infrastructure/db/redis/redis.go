package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tymelesstyre/storefront/internal/core/domain"
)

const defaultTimeout = 5 * time.Second

// Options configures the Redis-backed client storage.
type Options struct {
	Addr    string
	DB      int
	Prefix  string
	Timeout time.Duration
}

// Open connects to Redis and returns a Store whose keys live under
// opts.Prefix. The store owns the connection; release it with Close.
func Open(ctx context.Context, opts Options) (*Store, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		DB:          opts.DB,
		DialTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis connect %s: %w", domain.ErrStorage, opts.Addr, err)
	}

	s := NewStore(client, opts.Prefix)
	s.closeFn = client.Close
	return s, nil
}

// Close releases the connection of a store created by Open. Stores built
// with NewStore leave the client to their caller.
func (s *Store) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}
