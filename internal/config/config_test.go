package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:   HTTPConfig{Port: 8080},
		Source: SourceConfig{Addrs: []string{"localhost:6379"}},
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingValkeyAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Source.Addrs = nil
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing valkey addrs")
	}
}

func TestValidate_PostgresRequiresURL(t *testing.T) {
	cfg := validConfig()
	cfg.Source.Driver = DriverPostgres
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing postgres_url")
	}

	cfg.Source.PostgresURL = "postgres://localhost/collections"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Source.Driver = "mongo"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestValidate_AnswerProvider(t *testing.T) {
	tests := []struct {
		provider string
		apiKey   string
		wantErr  bool
	}{
		{"", "", false},
		{ProviderLangchain, "", false},
		{ProviderOpenAI, "sk-test", false},
		{ProviderOpenAI, "", true},
		{"anthropic", "key", true},
	}

	for _, tc := range tests {
		t.Run("provider="+tc.provider, func(t *testing.T) {
			cfg := validConfig()
			cfg.Answer.Provider = tc.provider
			cfg.Answer.APIKey = tc.apiKey
			cfg.ApplyDefaults()

			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidate_TopKBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Search.DefaultTopK = 50
	cfg.Search.MaxTopK = 20
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when default_top_k exceeds max_top_k")
	}
}

func TestValidate_MaxTopKLimit(t *testing.T) {
	cfg := validConfig()
	cfg.Search.MaxTopK = 500
	cfg.ApplyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error when max_top_k exceeds the request limit")
	}
	if !strings.Contains(err.Error(), "search.max_top_k") {
		t.Errorf("error should name the field, got %v", err)
	}

	cfg.Search.MaxTopK = 100
	if err := cfg.Validate(); err != nil {
		t.Fatalf("max_top_k at the limit should pass: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Source.Driver != DriverValkey {
		t.Errorf("expected driver=valkey, got %q", cfg.Source.Driver)
	}
	if cfg.Source.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Source.ReadinessTimeout)
	}
	if cfg.Index.LoadOnStart == nil || !*cfg.Index.LoadOnStart {
		t.Error("expected LoadOnStart=true")
	}
	if cfg.Index.BM25K1 != 1.2 || cfg.Index.BM25B != 0.75 {
		t.Errorf("unexpected BM25 params k1=%v b=%v", cfg.Index.BM25K1, cfg.Index.BM25B)
	}
	if cfg.Search.DefaultTopK != 10 || cfg.Search.MaxTopK != 100 {
		t.Errorf("unexpected top_k defaults %d/%d", cfg.Search.DefaultTopK, cfg.Search.MaxTopK)
	}
	if *cfg.Search.DefaultMinRelevanceScore != -1.0 {
		t.Errorf("expected DefaultMinRelevanceScore=-1, got %v", *cfg.Search.DefaultMinRelevanceScore)
	}
	if cfg.Answer.TokenBudgets.Standard != 1000 || cfg.Answer.TokenBudgets.Reasoning != 4000 {
		t.Errorf("unexpected budgets %+v", cfg.Answer.TokenBudgets)
	}
	if len(cfg.Answer.ReasoningModelPrefixes) != 4 {
		t.Errorf("unexpected prefixes %v", cfg.Answer.ReasoningModelPrefixes)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	off := false
	zero := 0.0
	cfg := Config{
		HTTP:   HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 90, ShutdownSec: 5},
		Source: SourceConfig{Driver: DriverRedis, ReadinessTimeout: 15, KeyPrefix: "custom:"},
		Index:  IndexConfig{LoadOnStart: &off, BM25K1: 2.0},
		Search: SearchConfig{DefaultMinRelevanceScore: &zero},
		Answer: AnswerConfig{TokenBudgets: TokenBudgetsConfig{Standard: 500}},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Source.Driver != DriverRedis || cfg.Source.KeyPrefix != "custom:" {
		t.Errorf("unexpected source %+v", cfg.Source)
	}
	if *cfg.Index.LoadOnStart {
		t.Error("explicit load_on_start=false must be kept")
	}
	if cfg.Index.BM25K1 != 2.0 {
		t.Errorf("expected BM25K1=2, got %v", cfg.Index.BM25K1)
	}
	if *cfg.Search.DefaultMinRelevanceScore != 0 {
		t.Error("explicit zero threshold must be kept")
	}
	if cfg.Answer.TokenBudgets.Standard != 500 {
		t.Errorf("expected standard budget 500, got %d", cfg.Answer.TokenBudgets.Standard)
	}
}

func TestParse_ExpandsEnvVars(t *testing.T) {
	t.Setenv("COLLECTIONS_TEST_KEY", "sk-from-env")

	cfg, err := Parse([]byte(`
http:
  port: 8080
source:
  driver: redis
  addrs: ["${COLLECTIONS_TEST_ADDR:-localhost:6379}"]
answer:
  provider: openai
  api_key: ${COLLECTIONS_TEST_KEY}
  token_budgets:
    reasoning: 8000
  reasoning_model_prefixes: [o3, deepseek-r1]
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Answer.APIKey != "sk-from-env" {
		t.Errorf("api_key = %q", cfg.Answer.APIKey)
	}
	if cfg.Source.Addrs[0] != "localhost:6379" {
		t.Errorf("addrs = %v", cfg.Source.Addrs)
	}
	if cfg.Answer.TokenBudgets.Reasoning != 8000 || cfg.Answer.TokenBudgets.Standard != 1000 {
		t.Errorf("budgets = %+v", cfg.Answer.TokenBudgets)
	}
	if strings.Join(cfg.Answer.ReasoningModelPrefixes, ",") != "o3,deepseek-r1" {
		t.Errorf("prefixes = %v", cfg.Answer.ReasoningModelPrefixes)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected YAML error")
	}
	if _, err := Parse([]byte("http:\n  port: 0\n")); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	data := "http:\n  port: 9000\nsource:\n  addrs: [\"valkey:6379\"]\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Port != 9000 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load(local): %v", err)
	}
	if cfg.HTTP.Port == 0 {
		t.Error("expected a port in local config")
	}
}
