package indexing

import (
	"context"

	"github.com/bennettck/collections-local-sub001/internal/domain/item"
	"github.com/bennettck/collections-local-sub001/internal/index"
	"github.com/bennettck/collections-local-sub001/internal/repository/snapshot"
)

// Source is the read-only metadata source. List reports records it could not
// decode by ID instead of failing.
type Source interface {
	List(ctx context.Context) (items []item.Item, undecodable []string, err error)
	Count(ctx context.Context) (int, error)
}

// Index is the swappable index holder.
type Index interface {
	Publish(snap *index.Snapshot)
	Status() index.Status
}

// SnapshotStore persists the last published item set.
type SnapshotStore interface {
	Save(meta snapshot.Meta, items []item.Item) error
	Load() (snapshot.Saved, error)
}
