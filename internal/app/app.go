// Package app assembles the search pipeline from configuration. It is the
// composition root shared by the API server and the operator CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bennettck/collections-local-sub001/internal/config"
	"github.com/bennettck/collections-local-sub001/internal/db"
	"github.com/bennettck/collections-local-sub001/internal/db/postgres"
	dbRedis "github.com/bennettck/collections-local-sub001/internal/db/redis"
	dbValkey "github.com/bennettck/collections-local-sub001/internal/db/valkey"
	"github.com/bennettck/collections-local-sub001/internal/domain"
	"github.com/bennettck/collections-local-sub001/internal/domain/completion"
	domitem "github.com/bennettck/collections-local-sub001/internal/domain/item"
	"github.com/bennettck/collections-local-sub001/internal/index"
	"github.com/bennettck/collections-local-sub001/internal/metrics"
	itemrepo "github.com/bennettck/collections-local-sub001/internal/repository/item"
	"github.com/bennettck/collections-local-sub001/internal/repository/snapshot"
	"github.com/bennettck/collections-local-sub001/internal/transport/langchain"
	"github.com/bennettck/collections-local-sub001/internal/transport/openai"
	answeruc "github.com/bennettck/collections-local-sub001/internal/usecase/answer"
	healthuc "github.com/bennettck/collections-local-sub001/internal/usecase/health"
	indexinguc "github.com/bennettck/collections-local-sub001/internal/usecase/indexing"
	searchuc "github.com/bennettck/collections-local-sub001/internal/usecase/search"
)

// ItemStore is the metadata source as seen by the operator tooling.
type ItemStore interface {
	List(ctx context.Context) (items []domitem.Item, undecodable []string, err error)
	Count(ctx context.Context) (int, error)
	Get(ctx context.Context, id string) (domitem.Item, error)
	Put(ctx context.Context, it *domitem.Item) error
}

// source is an opened metadata backend.
type source interface {
	db.Pinger
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// App holds the wired services.
type App struct {
	Items    ItemStore
	Index    *index.Store
	Indexing *indexinguc.Service
	Search   *searchuc.Service
	Health   *healthuc.Service

	snapshots *snapshot.Repo
	backend   source
	logger    *zap.Logger
}

// New connects to the metadata source, opens the snapshot store and wires the services.
// The caller must Close the App.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	completer, err := BuildCompleter(&cfg.Answer, logger)
	if err != nil {
		return nil, err
	}
	return NewWithCompleter(ctx, cfg, completer, logger)
}

// NewWithCompleter is New with an explicit text generation provider.
// A nil completer disables answer synthesis.
func NewWithCompleter(
	ctx context.Context,
	cfg *config.Config,
	completer answeruc.Completer,
	logger *zap.Logger,
) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.RegisterPipelineMetrics()

	backend, items, err := openSource(&cfg.Source)
	if err != nil {
		return nil, err
	}

	readiness := time.Duration(cfg.Source.ReadinessTimeout) * time.Second
	if err := backend.WaitForReady(ctx, readiness); err != nil {
		backend.Close()
		return nil, fmt.Errorf("metadata source not ready: %w", err)
	}
	logger.Info("Connected to metadata source", zap.String("driver", cfg.Source.Driver))

	snapshots, err := snapshot.Open(cfg.Index.SnapshotPath, logger)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}

	idx := index.NewStore(index.Params{K1: cfg.Index.BM25K1, B: cfg.Index.BM25B})

	indexing, err := indexinguc.New(items, idx, snapshots, cfg.Index.RebuildWorkers, logger)
	if err != nil {
		_ = snapshots.Close()
		backend.Close()
		return nil, err
	}

	// Pass a nil interface, not a typed nil pointer, when answers are disabled.
	var answers searchuc.Answerer
	var completionChecker healthuc.CompletionChecker
	if completer != nil {
		budgets := completion.NewBudgetTable(
			cfg.Answer.TokenBudgets.Standard,
			cfg.Answer.TokenBudgets.Reasoning,
			cfg.Answer.ReasoningModelPrefixes,
		)
		answers = answeruc.New(completer, budgets, cfg.Answer.DefaultModel, logger)
		if hc, ok := completer.(domain.HealthChecker); ok {
			completionChecker = hc
		}
	}

	search := searchuc.New(idx, answers, logger).
		WithAnswerTimeout(time.Duration(cfg.Answer.TimeoutSec) * time.Second)

	return &App{
		Items:     items,
		Index:     idx,
		Indexing:  indexing,
		Search:    search,
		Health:    healthuc.New(backend, idx, completionChecker),
		snapshots: snapshots,
		backend:   backend,
		logger:    logger,
	}, nil
}

// Close releases the worker pool, the snapshot store and the source connection.
func (a *App) Close() {
	a.Indexing.Release()
	if err := a.snapshots.Close(); err != nil {
		a.logger.Warn("close snapshot store", zap.Error(err))
	}
	a.backend.Close()
}

// Warmup loads the persisted snapshot and optionally rebuilds from the source.
// A failed startup rebuild is logged; the previously loaded snapshot stays live.
func (a *App) Warmup(ctx context.Context, loadSnapshot, rebuild bool) {
	if loadSnapshot {
		loaded, err := a.Indexing.LoadSnapshot(ctx)
		switch {
		case err != nil:
			a.logger.Warn("Failed to load index snapshot", zap.Error(err))
		case !loaded:
			a.logger.Info("No index snapshot found, index unavailable until rebuild")
		}
	}
	if rebuild {
		if _, err := a.Indexing.Rebuild(ctx); err != nil {
			a.logger.Error("Startup index rebuild failed", zap.Error(err))
		}
	}
}

func openSource(cfg *config.SourceConfig) (source, ItemStore, error) {
	switch cfg.Driver {
	case config.DriverValkey:
		store, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
			CacheTTL: time.Duration(cfg.CacheTTLSec) * time.Second,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create valkey store: %w", err)
		}
		return store, itemrepo.NewKV(store, cfg.KeyPrefix), nil
	case config.DriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create redis store: %w", err)
		}
		return store, itemrepo.NewKV(store, cfg.KeyPrefix), nil
	case config.DriverPostgres:
		pg, err := postgres.Open(postgres.DefaultConfig(cfg.PostgresURL))
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return pg, itemrepo.NewSQL(pg.DB), nil
	default:
		return nil, nil, fmt.Errorf("unknown source driver %q", cfg.Driver)
	}
}

// BuildCompleter creates the configured text generation provider.
// It returns nil when answers are disabled.
func BuildCompleter(cfg *config.AnswerConfig, logger *zap.Logger) (answeruc.Completer, error) {
	switch cfg.Provider {
	case "":
		return nil, nil //nolint:nilnil // answers disabled
	case config.ProviderOpenAI:
		return openai.NewCompleter(&openai.Config{
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			DefaultModel: cfg.DefaultModel,
			Provider:     config.ProviderOpenAI,
			Logger:       logger,
		}), nil
	case config.ProviderLangchain:
		c, err := langchain.New(&langchain.Config{
			BaseURL:      cfg.BaseURL,
			APIKey:       cfg.APIKey,
			DefaultModel: cfg.DefaultModel,
			Provider:     config.ProviderLangchain,
			Logger:       logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create langchain completer: %w", err)
		}
		return c, nil
	default:
		return nil, errors.New("unknown answer provider " + cfg.Provider)
	}
}
