// Package indexing rebuilds and reports on the full-text index.
package indexing

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/bennettck/collections-local-sub001/internal/domain"
	"github.com/bennettck/collections-local-sub001/internal/domain/document"
	"github.com/bennettck/collections-local-sub001/internal/domain/item"
	"github.com/bennettck/collections-local-sub001/internal/index"
	logpkg "github.com/bennettck/collections-local-sub001/internal/logger"
	"github.com/bennettck/collections-local-sub001/internal/metrics"
	"github.com/bennettck/collections-local-sub001/internal/repository/snapshot"
)

// RebuildResult summarizes a completed rebuild.
type RebuildResult struct {
	NumDocuments int
	Skipped      int
	BuildTime    time.Duration
	Generation   string
}

// Status describes index coverage of the metadata source.
type Status struct {
	DocCount      int
	TotalItems    int
	IsLoaded      bool
	IndexCoverage float64
	Generation    string
	BuiltAt       time.Time
}

// Service owns index rebuilds. At most one rebuild runs at a time.
type Service struct {
	source    Source
	index     Index
	snapshots SnapshotStore
	pool      *ants.Pool
	mu        sync.Mutex
	logger    *zap.Logger
}

// New creates an indexing service. snapshots may be nil to disable persistence.
// workers <= 0 selects the number of CPUs.
func New(source Source, idx Index, snapshots SnapshotStore, workers int, logger *zap.Logger) (*Service, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create build pool: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:    source,
		index:     idx,
		snapshots: snapshots,
		pool:      pool,
		logger:    logger,
	}, nil
}

// Release stops the worker pool.
func (s *Service) Release() {
	s.pool.Release()
}

// Rebuild reads every item, builds a fresh snapshot and publishes it atomically.
// Readers keep the previous snapshot until the swap. A concurrent call fails
// with domain.ErrRebuildInProgress.
func (s *Service) Rebuild(ctx context.Context) (RebuildResult, error) {
	if !s.mu.TryLock() {
		metrics.IndexRebuildsTotal.WithLabelValues("rejected").Inc()
		return RebuildResult{}, domain.ErrRebuildInProgress
	}
	defer s.mu.Unlock()

	log := logpkg.FromContextOr(ctx, s.logger)
	start := time.Now()

	res, err := s.rebuild(ctx, log)
	res.BuildTime = time.Since(start)
	if err != nil {
		metrics.IndexRebuildsTotal.WithLabelValues("error").Inc()
		log.Error("index rebuild failed", zap.Error(err), zap.Duration("elapsed", res.BuildTime))
		return RebuildResult{}, err
	}

	metrics.IndexRebuildsTotal.WithLabelValues("success").Inc()
	metrics.IndexRebuildDuration.Observe(res.BuildTime.Seconds())
	log.Info("index rebuilt",
		zap.Int("num_documents", res.NumDocuments),
		zap.Int("skipped", res.Skipped),
		zap.String("generation", res.Generation),
		zap.Duration("build_time", res.BuildTime),
	)
	return res, nil
}

func (s *Service) rebuild(ctx context.Context, log *zap.Logger) (RebuildResult, error) {
	items, undecodable, err := s.source.List(ctx)
	if err != nil {
		return RebuildResult{}, fmt.Errorf("list items: %w", err)
	}
	if len(undecodable) > 0 {
		log.Warn("skipping undecodable items",
			zap.Int("count", len(undecodable)),
			zap.Strings("item_ids", undecodable),
		)
	}

	valid, skipped := dropInvalid(items, log)
	skipped += len(undecodable)

	entries, err := s.buildEntries(ctx, valid)
	if err != nil {
		return RebuildResult{}, err
	}

	snap, err := index.NewSnapshot(entries)
	if err != nil {
		return RebuildResult{}, fmt.Errorf("build snapshot: %w", err)
	}
	s.index.Publish(snap)
	metrics.IndexDocuments.Set(float64(snap.Len()))

	if s.snapshots != nil {
		meta := snapshot.Meta{Generation: snap.Generation(), BuiltAt: snap.BuiltAt()}
		if err := s.snapshots.Save(meta, valid); err != nil {
			log.Warn("failed to persist index snapshot", zap.Error(err))
		}
	}

	return RebuildResult{
		NumDocuments: snap.Len(),
		Skipped:      skipped,
		Generation:   snap.Generation(),
	}, nil
}

// buildEntries renders documents on the worker pool. Output order matches input order.
func (s *Service) buildEntries(ctx context.Context, items []item.Item) ([]index.Entry, error) {
	entries := make([]index.Entry, len(items))
	var wg sync.WaitGroup

	for i := range items {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		build := func() {
			defer wg.Done()
			entries[i] = index.Entry{Item: items[i], Document: document.Build(&items[i])}
		}
		wg.Add(1)
		if err := s.pool.Submit(build); err != nil {
			build()
		}
	}
	wg.Wait()
	return entries, nil
}

// dropInvalid removes items that cannot be indexed and duplicates of an earlier id.
func dropInvalid(items []item.Item, log *zap.Logger) ([]item.Item, int) {
	out := make([]item.Item, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i := range items {
		if err := items[i].Validate(); err != nil {
			log.Warn("skipping item", zap.Int("position", i), zap.Error(err))
			continue
		}
		if _, dup := seen[items[i].ID]; dup {
			log.Warn("skipping duplicate item", zap.String("item_id", items[i].ID))
			continue
		}
		seen[items[i].ID] = struct{}{}
		out = append(out, items[i])
	}
	return out, len(items) - len(out)
}

// LoadSnapshot publishes the persisted snapshot, if any. It returns false when
// nothing was persisted; the index then stays unloaded until a rebuild.
func (s *Service) LoadSnapshot(ctx context.Context) (bool, error) {
	if s.snapshots == nil {
		return false, nil
	}
	log := logpkg.FromContextOr(ctx, s.logger)

	saved, err := s.snapshots.Load()
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Info("no persisted index snapshot")
			return false, nil
		}
		return false, fmt.Errorf("load snapshot: %w", err)
	}

	entries, err := s.buildEntries(ctx, saved.Items)
	if err != nil {
		return false, err
	}
	snap, err := index.RestoreSnapshot(entries, saved.Meta.Generation, saved.Meta.BuiltAt)
	if err != nil {
		return false, fmt.Errorf("restore snapshot: %w", err)
	}
	s.index.Publish(snap)
	metrics.IndexDocuments.Set(float64(snap.Len()))

	log.Info("index snapshot loaded",
		zap.Int("num_documents", snap.Len()),
		zap.String("generation", snap.Generation()),
		zap.Time("built_at", snap.BuiltAt()),
	)
	return true, nil
}

// Status reports index coverage: doc_count / total_items (0 when the source is empty).
func (s *Service) Status(ctx context.Context) (Status, error) {
	st := s.index.Status()
	total, err := s.source.Count(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("count items: %w", err)
	}

	out := Status{
		DocCount:   st.DocCount,
		TotalItems: total,
		IsLoaded:   st.Loaded,
		Generation: st.Generation,
		BuiltAt:    st.BuiltAt,
	}
	if total > 0 {
		out.IndexCoverage = float64(st.DocCount) / float64(total)
	}
	return out, nil
}
