package collections

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver      string // "valkey", "redis" or "postgres"
	addrs       []string
	password    string
	postgresURL string
	keyPrefix   string

	snapshotDir    string
	rebuildWorkers int
	loadSnapshot   bool

	completer         Completer
	defaultModel      string
	standardBudget    int
	reasoningBudget   int
	reasoningPrefixes []string
	answerTimeout     time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey configures the client to read items from a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to read items from a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithPostgres configures the client to read items from the item_metadata table.
func WithPostgres(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "postgres"
		c.postgresURL = url
	})
}

// WithKeyPrefix sets the key prefix used by the key-value sources.
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithSnapshotDir persists rebuilt indexes to dir and restores the latest one on New.
// Without it snapshots are kept in memory only.
func WithSnapshotDir(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.snapshotDir = dir
		c.loadSnapshot = true
	})
}

// WithRebuildWorkers sets the number of goroutines building documents during a rebuild.
// Default: number of CPUs.
func WithRebuildWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.rebuildWorkers = n
	})
}

// WithCompleter enables answer synthesis with the given provider and default model.
func WithCompleter(completer Completer, defaultModel string) Option {
	return optionFunc(func(c *clientConfig) {
		c.completer = completer
		c.defaultModel = defaultModel
	})
}

// WithTokenBudgets sets the completion token caps for standard and reasoning models.
// Defaults: 1000 and 4000.
func WithTokenBudgets(standard, reasoning int) Option {
	return optionFunc(func(c *clientConfig) {
		c.standardBudget = standard
		c.reasoningBudget = reasoning
	})
}

// WithReasoningModelPrefixes replaces the model prefixes treated as reasoning-class.
func WithReasoningModelPrefixes(prefixes ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.reasoningPrefixes = prefixes
	})
}

// WithAnswerTimeout bounds each answer synthesis call. Default: 30s.
func WithAnswerTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.answerTimeout = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
