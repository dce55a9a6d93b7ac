// Package valkey is the Valkey driver. It shares the Redis command set and
// serves reads through rueidis client-side caching.
package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/bennettck/collections-local-sub001/internal/db"
	dbRedis "github.com/bennettck/collections-local-sub001/internal/db/redis"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// DefaultCacheTTL bounds how long a cached item read is trusted.
const DefaultCacheTTL = 30 * time.Second

// Config holds connection parameters for a Valkey store.
type Config struct {
	Addrs    []string
	Username string
	Password string
	CacheTTL time.Duration
}

// Store implements db.Store for Valkey.
type Store struct {
	*dbRedis.Store
	client   rueidis.Client
	cacheTTL time.Duration
}

// NewStore creates a Valkey store with client-side caching enabled.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: cfg.Addrs,
		Username:    cfg.Username,
		Password:    cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return newStore(client, cfg.CacheTTL), nil
}

func newStore(c rueidis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Store{
		Store:    dbRedis.NewStoreWithClient(c),
		client:   c,
		cacheTTL: ttl,
	}
}

// Get retrieves a value by key through the client-side cache.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := s.client.B().Get().Key(key).Cache()
	data, err := s.client.DoCache(ctx, cmd, s.cacheTTL).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// MGet fetches many keys through the client-side cache. Missing keys yield nil entries.
func (s *Store) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	cmd := s.client.B().Mget().Key(keys...).Cache()
	msgs, err := s.client.DoCache(ctx, cmd, s.cacheTTL).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpMGet, Err: err}
	}
	out := make([][]byte, len(msgs))
	for i := range msgs {
		if msgs[i].IsNil() {
			continue
		}
		b, err := msgs[i].AsBytes()
		if err != nil {
			return nil, &db.Error{Op: db.OpMGet, Err: err}
		}
		out[i] = b
	}
	return out, nil
}
