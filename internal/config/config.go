package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bennettck/collections-local-sub001/internal/domain/search/request"
)

// Config holds the collections search service configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Auth    AuthConfig    `yaml:"auth"`
	Source  SourceConfig  `yaml:"source"`
	Index   IndexConfig   `yaml:"index"`
	Search  SearchConfig  `yaml:"search"`
	Answer  AnswerConfig  `yaml:"answer"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Source drivers.
const (
	DriverValkey   = "valkey"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// SourceConfig holds metadata source connection settings.
type SourceConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis, postgres (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	CacheTTLSec      int      `yaml:"cache_ttl_sec"` // valkey client-side cache
	PostgresURL      string   `yaml:"postgres_url"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig holds index build and persistence settings.
type IndexConfig struct {
	SnapshotPath   string  `yaml:"snapshot_path"` // empty: in-memory snapshot store
	RebuildWorkers int     `yaml:"rebuild_workers"`
	LoadOnStart    *bool   `yaml:"load_on_start"`
	RebuildOnStart bool    `yaml:"rebuild_on_start"`
	BM25K1         float64 `yaml:"bm25_k1"`
	BM25B          float64 `yaml:"bm25_b"`
}

// SearchConfig holds query defaults.
type SearchConfig struct {
	DefaultTopK              int      `yaml:"default_top_k"`
	MaxTopK                  int      `yaml:"max_top_k"`
	DefaultMinRelevanceScore *float64 `yaml:"default_min_relevance_score"`
}

// Answer providers.
const (
	ProviderOpenAI    = "openai"
	ProviderLangchain = "langchain"
)

// AnswerConfig holds text generation settings.
type AnswerConfig struct {
	Provider               string             `yaml:"provider"` // openai, langchain, "" disables answers
	APIKey                 string             `yaml:"api_key"`
	BaseURL                string             `yaml:"base_url"`
	DefaultModel           string             `yaml:"default_model"`
	TimeoutSec             int                `yaml:"timeout_sec"`
	TokenBudgets           TokenBudgetsConfig `yaml:"token_budgets"`
	ReasoningModelPrefixes []string           `yaml:"reasoning_model_prefixes"`
}

// TokenBudgetsConfig holds per-family completion token caps.
type TokenBudgetsConfig struct {
	Standard  int `yaml:"standard"`
	Reasoning int `yaml:"reasoning"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse expands ${VAR} references, decodes YAML, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Source.Driver == "" {
		c.Source.Driver = DriverValkey
	}
	if c.Source.ReadinessTimeout <= 0 {
		c.Source.ReadinessTimeout = 10
	}
	if c.Source.CacheTTLSec <= 0 {
		c.Source.CacheTTLSec = 30
	}
	if c.Index.LoadOnStart == nil {
		v := true
		c.Index.LoadOnStart = &v
	}
	if c.Index.BM25K1 <= 0 {
		c.Index.BM25K1 = 1.2
	}
	if c.Index.BM25B <= 0 {
		c.Index.BM25B = 0.75
	}
	if c.Search.DefaultTopK <= 0 {
		c.Search.DefaultTopK = 10
	}
	if c.Search.MaxTopK <= 0 {
		c.Search.MaxTopK = request.MaxTopK
	}
	if c.Search.DefaultMinRelevanceScore == nil {
		v := -1.0
		c.Search.DefaultMinRelevanceScore = &v
	}
	if c.Answer.TimeoutSec <= 0 {
		c.Answer.TimeoutSec = 30
	}
	if c.Answer.DefaultModel == "" {
		c.Answer.DefaultModel = "gpt-4.1-mini"
	}
	if c.Answer.TokenBudgets.Standard <= 0 {
		c.Answer.TokenBudgets.Standard = 1000
	}
	if c.Answer.TokenBudgets.Reasoning <= 0 {
		c.Answer.TokenBudgets.Reasoning = 4000
	}
	if len(c.Answer.ReasoningModelPrefixes) == 0 {
		c.Answer.ReasoningModelPrefixes = []string{"o1", "o3", "o4", "gpt-5"}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Source.Driver {
	case DriverValkey, DriverRedis:
		if len(c.Source.Addrs) == 0 {
			return fmt.Errorf("source.addrs is required for driver %q", c.Source.Driver)
		}
	case DriverPostgres:
		if c.Source.PostgresURL == "" {
			return fmt.Errorf("source.postgres_url is required for driver %q", c.Source.Driver)
		}
	default:
		return fmt.Errorf("source.driver must be one of valkey, redis, postgres, got %q", c.Source.Driver)
	}
	if c.Index.BM25B > 1 {
		return fmt.Errorf("index.bm25_b must be in [0, 1], got %v", c.Index.BM25B)
	}
	if c.Search.MaxTopK > request.MaxTopK {
		return fmt.Errorf("search.max_top_k (%d) exceeds the supported limit of %d",
			c.Search.MaxTopK, request.MaxTopK)
	}
	if c.Search.DefaultTopK > c.Search.MaxTopK {
		return fmt.Errorf("search.default_top_k (%d) exceeds search.max_top_k (%d)",
			c.Search.DefaultTopK, c.Search.MaxTopK)
	}
	switch c.Answer.Provider {
	case "", ProviderOpenAI, ProviderLangchain:
		// ok
	default:
		return fmt.Errorf("answer.provider must be \"openai\" or \"langchain\", got %q", c.Answer.Provider)
	}
	if c.Answer.Provider == ProviderOpenAI && c.Answer.APIKey == "" {
		return fmt.Errorf("answer.api_key is required for provider %q", ProviderOpenAI)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
