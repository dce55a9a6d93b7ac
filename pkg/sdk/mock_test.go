package collections

import (
	"context"

	domitem "github.com/bennettck/collections-local-sub001/internal/domain/item"
	"github.com/bennettck/collections-local-sub001/internal/domain/search/request"
	"github.com/bennettck/collections-local-sub001/internal/domain/search/response"
	healthuc "github.com/bennettck/collections-local-sub001/internal/usecase/health"
	indexinguc "github.com/bennettck/collections-local-sub001/internal/usecase/indexing"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, req *request.Request) (response.Response, error)
}

func (m *mockSearchUC) Search(ctx context.Context, req *request.Request) (response.Response, error) {
	return m.searchFn(ctx, req)
}

// --- indexingUseCase mock ---

type mockIndexingUC struct {
	rebuildFn func(ctx context.Context) (indexinguc.RebuildResult, error)
	statusFn  func(ctx context.Context) (indexinguc.Status, error)
}

func (m *mockIndexingUC) Rebuild(ctx context.Context) (indexinguc.RebuildResult, error) {
	return m.rebuildFn(ctx)
}

func (m *mockIndexingUC) Status(ctx context.Context) (indexinguc.Status, error) {
	return m.statusFn(ctx)
}

// --- itemWriter mock ---

type mockItemWriter struct {
	putFn func(ctx context.Context, it *domitem.Item) error
}

func (m *mockItemWriter) Put(ctx context.Context, it *domitem.Item) error {
	return m.putFn(ctx, it)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }

// --- Completer mock ---

type mockCompleter struct {
	fn func(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}

func (m *mockCompleter) Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error) {
	return m.fn(ctx, req)
}

// --- helpers ---

func testClient(
	searchSvc searchUseCase,
	indexingSvc indexingUseCase,
	items itemWriter,
	healthSvc healthUseCase,
) *Client {
	return &Client{
		searchSvc:   searchSvc,
		indexingSvc: indexingSvc,
		items:       items,
		healthSvc:   healthSvc,
	}
}
