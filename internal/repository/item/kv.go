// Package item reads item metadata from the configured source: a Redis-compatible
// key-value store or a Postgres table.
package item

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bennettck/collections-local-sub001/internal/db"
	"github.com/bennettck/collections-local-sub001/internal/domain"
	domitem "github.com/bennettck/collections-local-sub001/internal/domain/item"
)

const mgetBatchSize = 100

// kvStore is the consumer interface for the key-value source (ISP).
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// KVRepo stores items as JSON strings under <prefix>item:<id>.
type KVRepo struct {
	store  kvStore
	prefix string
}

// NewKV creates a key-value item repository.
func NewKV(s kvStore, prefix string) *KVRepo {
	return &KVRepo{store: s, prefix: prefix}
}

func (r *KVRepo) itemKey(id string) string {
	return r.prefix + "item:" + id
}

func (r *KVRepo) idFromKey(key string) string {
	return strings.TrimPrefix(key, r.prefix+"item:")
}

// List returns every decodable item, ordered by ID, and the IDs of records whose
// stored value could not be decoded. Keys removed between SCAN and MGET are skipped.
func (r *KVRepo) List(ctx context.Context) (items []domitem.Item, undecodable []string, err error) {
	keys, err := r.store.Scan(ctx, r.itemKey("*"))
	if err != nil {
		return nil, nil, fmt.Errorf("scan items: %w: %w", domain.ErrSourceUnavailable, err)
	}
	sort.Strings(keys)

	items = make([]domitem.Item, 0, len(keys))
	for start := 0; start < len(keys); start += mgetBatchSize {
		end := min(start+mgetBatchSize, len(keys))
		batch := keys[start:end]

		values, err := r.store.MGet(ctx, batch)
		if err != nil {
			return nil, nil, fmt.Errorf("mget items: %w: %w", domain.ErrSourceUnavailable, err)
		}
		for i, raw := range values {
			if raw == nil {
				continue
			}
			id := r.idFromKey(batch[i])
			it, err := decodeItem(id, raw)
			if err != nil {
				undecodable = append(undecodable, id)
				continue
			}
			items = append(items, it)
		}
	}
	return items, undecodable, nil
}

// Count returns the number of stored items.
func (r *KVRepo) Count(ctx context.Context) (int, error) {
	keys, err := r.store.Scan(ctx, r.itemKey("*"))
	if err != nil {
		return 0, fmt.Errorf("scan items: %w: %w", domain.ErrSourceUnavailable, err)
	}
	return len(keys), nil
}

// Get returns a single item by ID.
func (r *KVRepo) Get(ctx context.Context, id string) (domitem.Item, error) {
	raw, err := r.store.Get(ctx, r.itemKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domitem.Item{}, domain.ErrNotFound
		}
		return domitem.Item{}, fmt.Errorf("get item %s: %w", id, err)
	}
	return decodeItem(id, raw)
}

// Put stores an item, replacing any previous value.
func (r *KVRepo) Put(ctx context.Context, it *domitem.Item) error {
	if err := it.Validate(); err != nil {
		return err
	}
	data, err := encodeItem(it)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, r.itemKey(it.ID), data); err != nil {
		return fmt.Errorf("set item %s: %w", it.ID, err)
	}
	return nil
}
