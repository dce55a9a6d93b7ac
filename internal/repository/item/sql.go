package item

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bennettck/collections-local-sub001/internal/domain"
	domitem "github.com/bennettck/collections-local-sub001/internal/domain/item"
)

const (
	listItemsQuery  = `SELECT item_id, metadata FROM item_metadata ORDER BY item_id`
	countItemsQuery = `SELECT COUNT(*) FROM item_metadata`
	getItemQuery    = `SELECT metadata FROM item_metadata WHERE item_id = $1`
	upsertItemQuery = `
		INSERT INTO item_metadata (item_id, metadata)
		VALUES ($1, $2)
		ON CONFLICT (item_id) DO UPDATE SET metadata = EXCLUDED.metadata
	`
)

// queryer is the subset of *sql.DB the SQL repository needs.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SQLRepo reads items from the item_metadata table (item_id text, metadata json).
type SQLRepo struct {
	db queryer
}

// NewSQL creates a Postgres item repository.
func NewSQL(db queryer) *SQLRepo {
	return &SQLRepo{db: db}
}

// List returns every decodable item, ordered by ID, and the IDs of rows whose
// metadata is NULL or not valid item JSON.
func (r *SQLRepo) List(ctx context.Context) (items []domitem.Item, undecodable []string, err error) {
	rows, err := r.db.QueryContext(ctx, listItemsQuery)
	if err != nil {
		return nil, nil, fmt.Errorf("list items: %w: %w", domain.ErrSourceUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var metadata []byte
		if err := rows.Scan(&id, &metadata); err != nil {
			return nil, nil, fmt.Errorf("scan item row: %w: %w", domain.ErrSourceUnavailable, err)
		}
		it, err := decodeItem(id, metadata)
		if err != nil {
			undecodable = append(undecodable, id)
			continue
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate items: %w: %w", domain.ErrSourceUnavailable, err)
	}
	return items, undecodable, nil
}

// Count returns the number of stored items.
func (r *SQLRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countItemsQuery).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w: %w", domain.ErrSourceUnavailable, err)
	}
	return n, nil
}

// Get returns a single item by ID.
func (r *SQLRepo) Get(ctx context.Context, id string) (domitem.Item, error) {
	var metadata []byte
	err := r.db.QueryRowContext(ctx, getItemQuery, id).Scan(&metadata)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domitem.Item{}, domain.ErrNotFound
		}
		return domitem.Item{}, fmt.Errorf("get item %s: %w", id, err)
	}
	return decodeItem(id, metadata)
}

// Put stores an item, replacing any previous metadata.
func (r *SQLRepo) Put(ctx context.Context, it *domitem.Item) error {
	if err := it.Validate(); err != nil {
		return err
	}
	data, err := encodeItem(it)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, upsertItemQuery, it.ID, data); err != nil {
		return fmt.Errorf("upsert item %s: %w", it.ID, err)
	}
	return nil
}
