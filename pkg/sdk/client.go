package collections

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bennettck/collections-local-sub001/internal/app"
	"github.com/bennettck/collections-local-sub001/internal/config"
	"github.com/bennettck/collections-local-sub001/internal/domain"
	domitem "github.com/bennettck/collections-local-sub001/internal/domain/item"
	"github.com/bennettck/collections-local-sub001/internal/domain/search/request"
	"github.com/bennettck/collections-local-sub001/internal/domain/search/response"
	answeruc "github.com/bennettck/collections-local-sub001/internal/usecase/answer"
	indexinguc "github.com/bennettck/collections-local-sub001/internal/usecase/indexing"
)

const defaultReadinessTimeout = 10

// Internal interfaces, swapped for mocks in tests.
type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) (response.Response, error)
}

type indexingUseCase interface {
	Rebuild(ctx context.Context) (indexinguc.RebuildResult, error)
	Status(ctx context.Context) (indexinguc.Status, error)
}

type itemWriter interface {
	Put(ctx context.Context, it *domitem.Item) error
}

// Client is the collections SDK entry point.
type Client struct {
	app         *app.App
	searchSvc   searchUseCase
	indexingSvc indexingUseCase
	items       itemWriter
	healthSvc   healthUseCase
	obs         *observer
}

// New creates a Client, connects to the metadata source and restores the
// persisted index when WithSnapshotDir is set.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("collections: metadata source required (use WithValkey, WithRedis or WithPostgres)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var completer answeruc.Completer
	if cfg.completer != nil {
		completer = &completerAdapter{inner: cfg.completer}
	}

	a, err := app.NewWithCompleter(ctx, appConfig(cfg), completer, nil)
	if err != nil {
		return nil, fmt.Errorf("collections: %w", err)
	}

	if cfg.loadSnapshot {
		if _, err := a.Indexing.LoadSnapshot(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("collections: load snapshot: %w", err)
		}
	}

	return &Client{
		app:         a,
		searchSvc:   a.Search,
		indexingSvc: a.Indexing,
		items:       a.Items,
		healthSvc:   a.Health,
		obs:         obs,
	}, nil
}

// appConfig maps SDK options onto the service configuration.
func appConfig(c *clientConfig) *config.Config {
	cfg := &config.Config{
		Source: config.SourceConfig{
			Driver:           c.driver,
			Addrs:            c.addrs,
			Password:         c.password,
			KeyPrefix:        c.keyPrefix,
			PostgresURL:      c.postgresURL,
			ReadinessTimeout: defaultReadinessTimeout,
		},
		Index: config.IndexConfig{
			SnapshotPath:   c.snapshotDir,
			RebuildWorkers: c.rebuildWorkers,
		},
		Answer: config.AnswerConfig{
			DefaultModel: c.defaultModel,
			TimeoutSec:   int(c.answerTimeout / time.Second),
			TokenBudgets: config.TokenBudgetsConfig{
				Standard:  c.standardBudget,
				Reasoning: c.reasoningBudget,
			},
			ReasoningModelPrefixes: c.reasoningPrefixes,
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// Close releases all resources.
func (c *Client) Close() {
	if c.app != nil {
		c.app.Close()
	}
}

// Rebuild re-reads every item from the metadata source and atomically replaces the index.
func (c *Client) Rebuild(ctx context.Context) (res RebuildResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("index.rebuild", start, err) }()

	r, err := c.indexingSvc.Rebuild(ctx)
	if err != nil {
		return RebuildResult{}, fmt.Errorf("rebuild: %w", err)
	}
	return RebuildResult{
		NumDocuments: r.NumDocuments,
		Skipped:      r.Skipped,
		BuildTime:    r.BuildTime,
		Generation:   r.Generation,
	}, nil
}

// Status reports how much of the metadata source the index covers.
func (c *Client) Status(ctx context.Context) (st IndexStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe("index.status", start, err) }()

	s, err := c.indexingSvc.Status(ctx)
	if err != nil {
		return IndexStatus{}, fmt.Errorf("status: %w", err)
	}
	return IndexStatus{
		DocCount:      s.DocCount,
		TotalItems:    s.TotalItems,
		IsLoaded:      s.IsLoaded,
		IndexCoverage: s.IndexCoverage,
		Generation:    s.Generation,
		BuiltAt:       s.BuiltAt,
	}, nil
}

// Put writes items to the metadata source. The index picks them up on the next Rebuild.
func (c *Client) Put(ctx context.Context, items ...Item) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("item.put", start, err) }()

	for i := range items {
		it := itemToDomain(&items[i])
		if err = c.items.Put(ctx, &it); err != nil {
			return fmt.Errorf("put item %s: %w", it.ID, err)
		}
	}
	return nil
}

// completerAdapter wraps the public Completer to satisfy the internal contract.
type completerAdapter struct {
	inner Completer
}

func (a *completerAdapter) Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	r, err := a.inner.Complete(ctx, CompletionRequest{
		Prompt:    req.Prompt,
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
		Reasoning: req.Reasoning,
	})
	if err != nil {
		return domain.CompletionResult{}, fmt.Errorf("complete: %w", err)
	}
	return domain.CompletionResult{
		Text:             r.Text,
		PromptTokens:     r.PromptTokens,
		CompletionTokens: r.CompletionTokens,
		TotalTokens:      r.TotalTokens,
	}, nil
}

func itemToDomain(it *Item) domitem.Item {
	return domitem.Item{
		ID:              it.ID,
		Category:        it.Category,
		Headline:        it.Headline,
		Summary:         it.Summary,
		ExtractedText:   it.ExtractedText,
		Subcategories:   it.Subcategories,
		KeyInterest:     it.KeyInterest,
		Themes:          it.Themes,
		Objects:         it.Objects,
		LocationTags:    it.LocationTags,
		Emotions:        it.Emotions,
		Vibes:           it.Vibes,
		Hashtags:        it.Hashtags,
		LikelySource:    it.LikelySource,
		Attribution:     it.Attribution,
		VisualHierarchy: it.VisualHierarchy,
	}
}

func itemFromDomain(it *domitem.Item) *Item {
	if it == nil {
		return nil
	}
	return &Item{
		ID:              it.ID,
		Category:        it.Category,
		Headline:        it.Headline,
		Summary:         it.Summary,
		ExtractedText:   it.ExtractedText,
		Subcategories:   it.Subcategories,
		KeyInterest:     it.KeyInterest,
		Themes:          it.Themes,
		Objects:         it.Objects,
		LocationTags:    it.LocationTags,
		Emotions:        it.Emotions,
		Vibes:           it.Vibes,
		Hashtags:        it.Hashtags,
		LikelySource:    it.LikelySource,
		Attribution:     it.Attribution,
		VisualHierarchy: it.VisualHierarchy,
	}
}
