package indexing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bennettck/collections-local-sub001/internal/domain"
	"github.com/bennettck/collections-local-sub001/internal/domain/item"
	"github.com/bennettck/collections-local-sub001/internal/index"
	"github.com/bennettck/collections-local-sub001/internal/repository/snapshot"
)

// --- Mocks ---

type mockSource struct {
	items       []item.Item
	undecodable []string
	listErr     error
	count       int
	countErr    error
	block       chan struct{}
	entered     chan struct{}
}

func (m *mockSource) List(_ context.Context) ([]item.Item, []string, error) {
	if m.entered != nil {
		close(m.entered)
	}
	if m.block != nil {
		<-m.block
	}
	return m.items, m.undecodable, m.listErr
}

func (m *mockSource) Count(_ context.Context) (int, error) {
	return m.count, m.countErr
}

type mockSnapshots struct {
	mu      sync.Mutex
	saved   *snapshot.Saved
	saveErr error
	loadErr error
}

func (m *mockSnapshots) Save(meta snapshot.Meta, items []item.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	meta.Count = len(items)
	m.saved = &snapshot.Saved{Meta: meta, Items: items}
	return nil
}

func (m *mockSnapshots) Load() (snapshot.Saved, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return snapshot.Saved{}, m.loadErr
	}
	if m.saved == nil {
		return snapshot.Saved{}, domain.ErrNotFound
	}
	return *m.saved, nil
}

func sampleItems(n int) []item.Item {
	out := make([]item.Item, n)
	for i := range out {
		out[i] = item.Item{
			ID:       fmt.Sprintf("item-%03d", i),
			Category: "Food",
			Summary:  fmt.Sprintf("ramen bowl number %d", i),
		}
	}
	return out
}

func newService(t *testing.T, src Source, snaps SnapshotStore) (*Service, *index.Store) {
	t.Helper()
	idx := index.NewStore(index.DefaultParams())
	svc, err := New(src, idx, snaps, 4, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(svc.Release)
	return svc, idx
}

// --- Tests ---

func TestRebuild_PublishesSnapshot(t *testing.T) {
	src := &mockSource{items: sampleItems(50), count: 50}
	snaps := &mockSnapshots{}
	svc, idx := newService(t, src, snaps)

	res, err := svc.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if res.NumDocuments != 50 {
		t.Errorf("NumDocuments = %d, want 50", res.NumDocuments)
	}
	if res.BuildTime <= 0 {
		t.Error("BuildTime should be positive")
	}
	if !idx.Status().Loaded || idx.Status().DocCount != 50 {
		t.Errorf("index status = %+v", idx.Status())
	}
	if snaps.saved == nil || snaps.saved.Meta.Generation != res.Generation {
		t.Error("snapshot not persisted with the published generation")
	}

	results, err := idx.Query(context.Background(), "ramen", 5, "")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 5 {
		t.Errorf("expected 5 results, got %d", len(results))
	}
}

func TestRebuild_PreservesItemOrder(t *testing.T) {
	items := sampleItems(200)
	svc, idx := newService(t, &mockSource{items: items}, nil)

	if _, err := svc.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	got := idx.Snapshot().Items()
	for i := range items {
		if got[i].ID != items[i].ID {
			t.Fatalf("item %d = %s, want %s", i, got[i].ID, items[i].ID)
		}
	}
}

func TestRebuild_SkipsInvalidAndDuplicateItems(t *testing.T) {
	items := []item.Item{{ID: "a"}, {ID: ""}, {ID: "b"}, {ID: "a"}}
	svc, _ := newService(t, &mockSource{items: items}, nil)

	res, err := svc.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if res.NumDocuments != 2 || res.Skipped != 2 {
		t.Errorf("result = %+v, want 2 documents and 2 skipped", res)
	}
}

func TestRebuild_SkipsUndecodableItems(t *testing.T) {
	src := &mockSource{items: sampleItems(2), undecodable: []string{"bad"}}
	svc, idx := newService(t, src, nil)

	res, err := svc.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if res.NumDocuments != 2 || res.Skipped != 1 {
		t.Errorf("result = %+v, want 2 documents and 1 skipped", res)
	}
	if !idx.Loaded() {
		t.Error("index must be loaded despite an undecodable record")
	}
}

func TestRebuild_SourceErrorKeepsOldSnapshot(t *testing.T) {
	src := &mockSource{items: sampleItems(3)}
	svc, idx := newService(t, src, nil)

	if _, err := svc.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	gen := idx.Status().Generation

	src.listErr = fmt.Errorf("scan: %w", domain.ErrSourceUnavailable)
	if _, err := svc.Rebuild(context.Background()); !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	if idx.Status().Generation != gen {
		t.Error("failed rebuild must not replace the published snapshot")
	}
}

func TestRebuild_SnapshotSaveFailureIsNotFatal(t *testing.T) {
	svc, idx := newService(t, &mockSource{items: sampleItems(2)}, &mockSnapshots{saveErr: errors.New("disk full")})

	if _, err := svc.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if !idx.Status().Loaded {
		t.Error("index should be published even when persistence fails")
	}
}

func TestRebuild_RejectsConcurrentRebuild(t *testing.T) {
	src := &mockSource{
		items:   sampleItems(2),
		block:   make(chan struct{}),
		entered: make(chan struct{}),
	}
	svc, _ := newService(t, src, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Rebuild(context.Background())
		done <- err
	}()
	<-src.entered

	if _, err := svc.Rebuild(context.Background()); !errors.Is(err, domain.ErrRebuildInProgress) {
		t.Errorf("expected ErrRebuildInProgress, got %v", err)
	}

	close(src.block)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("first rebuild failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("first rebuild did not finish")
	}
}

func TestRebuild_CanceledContext(t *testing.T) {
	svc, idx := newService(t, &mockSource{items: sampleItems(10)}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Rebuild(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if idx.Status().Loaded {
		t.Error("canceled rebuild must not publish")
	}
}

func TestRebuild_AfterRelease(t *testing.T) {
	svc, _ := newService(t, &mockSource{items: sampleItems(3)}, nil)
	svc.Release()

	res, err := svc.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if res.NumDocuments != 3 {
		t.Errorf("NumDocuments = %d, want 3", res.NumDocuments)
	}
}

func TestLoadSnapshot(t *testing.T) {
	builtAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	snaps := &mockSnapshots{saved: &snapshot.Saved{
		Meta:  snapshot.Meta{Generation: "persisted", BuiltAt: builtAt, Count: 3},
		Items: sampleItems(3),
	}}
	svc, idx := newService(t, &mockSource{}, snaps)

	loaded, err := svc.LoadSnapshot(context.Background())
	if err != nil || !loaded {
		t.Fatalf("LoadSnapshot = %v, %v", loaded, err)
	}
	st := idx.Status()
	if st.Generation != "persisted" || st.DocCount != 3 || !st.BuiltAt.Equal(builtAt) {
		t.Errorf("unexpected status %+v", st)
	}
}

func TestLoadSnapshot_Missing(t *testing.T) {
	svc, idx := newService(t, &mockSource{}, &mockSnapshots{})

	loaded, err := svc.LoadSnapshot(context.Background())
	if err != nil || loaded {
		t.Fatalf("LoadSnapshot = %v, %v; want false, nil", loaded, err)
	}
	if idx.Status().Loaded {
		t.Error("index must stay unloaded")
	}

	svc2, _ := newService(t, &mockSource{}, nil)
	if loaded, err := svc2.LoadSnapshot(context.Background()); err != nil || loaded {
		t.Fatalf("LoadSnapshot without store = %v, %v", loaded, err)
	}
}

func TestLoadSnapshot_Error(t *testing.T) {
	svc, _ := newService(t, &mockSource{}, &mockSnapshots{loadErr: errors.New("corrupt")})
	if _, err := svc.LoadSnapshot(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestStatus(t *testing.T) {
	src := &mockSource{items: sampleItems(3), count: 4}
	svc, _ := newService(t, src, nil)

	st, err := svc.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.IsLoaded || st.DocCount != 0 || st.TotalItems != 4 || st.IndexCoverage != 0 {
		t.Errorf("unexpected unloaded status %+v", st)
	}

	if _, err := svc.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}
	st, err = svc.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.IsLoaded || st.DocCount != 3 || st.IndexCoverage != 0.75 {
		t.Errorf("unexpected status %+v", st)
	}
}

func TestStatus_EmptySource(t *testing.T) {
	svc, _ := newService(t, &mockSource{}, nil)
	st, err := svc.Status(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.IndexCoverage != 0 {
		t.Errorf("coverage = %v, want 0", st.IndexCoverage)
	}
}

func TestStatus_SourceError(t *testing.T) {
	svc, _ := newService(t, &mockSource{countErr: domain.ErrSourceUnavailable}, nil)
	if _, err := svc.Status(context.Background()); !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}
