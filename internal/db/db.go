package db

import (
	"context"
	"time"
)

// Store is the key-value facade over Redis-compatible metadata sources.
type Store interface {
	Pinger
	KVStore
	Scanner
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// MGet returns one value per key in order; missing keys yield nil.
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Scanner enumerates keys without blocking the server.
type Scanner interface {
	Scan(ctx context.Context, pattern string) ([]string, error)
}
