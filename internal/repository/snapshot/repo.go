// Package snapshot persists the indexed item set in Badger so a restart can
// serve queries before the first rebuild completes.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/mus-format/mus-go"
	"go.uber.org/zap"

	"github.com/bennettck/collections-local-sub001/internal/domain"
	"github.com/bennettck/collections-local-sub001/internal/domain/item"
)

var (
	metaKey  = []byte("snapshot:meta")
	itemsKey = []byte("snapshot:items")
)

// formatVersion is bumped whenever the persisted layout changes.
const formatVersion = 2

// Meta identifies a persisted snapshot.
type Meta struct {
	Version    int
	Generation string
	BuiltAt    time.Time
	Count      int
}

// Saved is a loaded snapshot.
type Saved struct {
	Meta  Meta
	Items []item.Item
}

// Repo stores the latest snapshot in a Badger database.
type Repo struct {
	db *badger.DB
}

// Open opens (or creates) the snapshot database at dir. An empty dir keeps it in memory.
func Open(dir string, logger *zap.Logger) (*Repo, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot dir: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.Logger = &badgerLogger{s: logger.Named("badger").Sugar()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	return &Repo{db: db}, nil
}

// Close closes the database.
func (r *Repo) Close() error {
	return r.db.Close()
}

// Save replaces the persisted snapshot in one transaction.
func (r *Repo) Save(meta Meta, items []item.Item) error {
	meta.Version = formatVersion
	meta.Count = len(items)

	metaBytes := marshal(metaMUS, meta)
	itemBytes := marshal(itemsMUS, items)

	err := r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(itemsKey, itemBytes); err != nil {
			return err
		}
		return txn.Set(metaKey, metaBytes)
	})
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the persisted snapshot, or domain.ErrNotFound when none exists.
func (r *Repo) Load() (Saved, error) {
	var saved Saved
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		if saved.Meta, err = readValue(txn, metaKey, metaMUS); err != nil {
			return err
		}
		if saved.Meta.Version != formatVersion {
			return fmt.Errorf("unsupported snapshot version %d", saved.Meta.Version)
		}
		saved.Items, err = readValue(txn, itemsKey, itemsMUS)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return Saved{}, domain.ErrNotFound
		}
		return Saved{}, fmt.Errorf("load snapshot: %w", err)
	}
	if len(saved.Items) != saved.Meta.Count {
		return Saved{}, fmt.Errorf("load snapshot: expected %d items, found %d", saved.Meta.Count, len(saved.Items))
	}
	return saved, nil
}

// readValue decodes the value under key. Decoded strings are copies, so the
// result stays valid after the transaction ends.
func readValue[T any](txn *badger.Txn, key []byte, s mus.Serializer[T]) (T, error) {
	var v T
	entry, err := txn.Get(key)
	if err != nil {
		return v, err
	}
	err = entry.Value(func(val []byte) error {
		var err error
		v, err = unmarshal(s, val)
		return err
	})
	return v, err
}

// badgerLogger adapts zap to badger.Logger. Badger info output is demoted to debug.
type badgerLogger struct {
	s *zap.SugaredLogger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (l *badgerLogger) Errorf(msg string, args ...any)   { l.s.Errorf(msg, args...) }
func (l *badgerLogger) Warningf(msg string, args ...any) { l.s.Warnf(msg, args...) }
func (l *badgerLogger) Infof(msg string, args ...any)    { l.s.Debugf(msg, args...) }
func (l *badgerLogger) Debugf(msg string, args ...any)   { l.s.Debugf(msg, args...) }
