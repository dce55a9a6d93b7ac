// Package langchain adapts langchaingo chat models (local OpenAI-compatible servers
// such as Ollama or llama.cpp) to the completion contract.
package langchain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/bennettck/collections-local-sub001/internal/domain"
	"github.com/bennettck/collections-local-sub001/internal/metrics"
)

// Completer generates text through a langchaingo model.
type Completer struct {
	model        llms.Model
	defaultModel string
	provider     string
	logger       *zap.Logger
}

// Config holds the local model settings.
type Config struct {
	BaseURL      string
	APIKey       string
	DefaultModel string
	Provider     string
	Logger       *zap.Logger
}

// New creates a completer backed by the langchaingo OpenAI-compatible client.
// Local servers usually ignore the token, so an empty key is sent as "none".
func New(cfg *Config) (*Completer, error) {
	token := cfg.APIKey
	if token == "" {
		token = "none"
	}
	opts := []openai.Option{
		openai.WithToken(token),
		openai.WithModel(cfg.DefaultModel),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create langchain client: %w", err)
	}
	return NewWithModel(client, cfg), nil
}

// NewWithModel wraps an existing langchaingo model.
func NewWithModel(model llms.Model, cfg *Config) *Completer {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	provider := cfg.Provider
	if provider == "" {
		provider = "langchain"
	}
	return &Completer{
		model:        model,
		defaultModel: cfg.DefaultModel,
		provider:     provider,
		logger:       logger,
	}
}

// Complete implements domain.Completer.
func (c *Completer) Complete(ctx context.Context, in domain.CompletionRequest) (domain.CompletionResult, error) {
	model := in.Model
	if model == "" {
		model = c.defaultModel
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, in.Prompt),
	}
	opts := []llms.CallOption{llms.WithModel(model)}
	if in.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(in.MaxTokens))
	}
	if !in.Reasoning {
		opts = append(opts, llms.WithTemperature(0.2))
	}

	start := time.Now()
	resp, err := c.model.GenerateContent(ctx, content, opts...)
	duration := time.Since(start)

	if err != nil {
		metrics.AnswerRequestsTotal.WithLabelValues(c.provider, model, "error").Inc()
		metrics.AnswerErrorsTotal.WithLabelValues(c.provider, model, "api_error").Inc()
		return domain.CompletionResult{}, fmt.Errorf("generate content: %w: %w", domain.ErrSynthesisFailure, err)
	}
	if resp == nil || len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		metrics.AnswerRequestsTotal.WithLabelValues(c.provider, model, "error").Inc()
		metrics.AnswerErrorsTotal.WithLabelValues(c.provider, model, "empty_response").Inc()
		return domain.CompletionResult{}, fmt.Errorf("empty completion response: %w", domain.ErrSynthesisFailure)
	}

	choice := resp.Choices[0]
	res := domain.CompletionResult{
		Text:             choice.Content,
		PromptTokens:     intInfo(choice.GenerationInfo, "PromptTokens"),
		CompletionTokens: intInfo(choice.GenerationInfo, "CompletionTokens"),
		TotalTokens:      intInfo(choice.GenerationInfo, "TotalTokens"),
	}

	metrics.AnswerRequestsTotal.WithLabelValues(c.provider, model, "success").Inc()
	metrics.AnswerRequestDuration.WithLabelValues(c.provider, model).Observe(duration.Seconds())
	if res.TotalTokens > 0 {
		metrics.AnswerTokensTotal.WithLabelValues(c.provider, model, "prompt").Add(float64(res.PromptTokens))
		metrics.AnswerTokensTotal.WithLabelValues(c.provider, model, "completion").Add(float64(res.CompletionTokens))
		metrics.AnswerTokensTotal.WithLabelValues(c.provider, model, "total").Add(float64(res.TotalTokens))
	}

	c.logger.Debug("langchain completion",
		zap.String("model", model),
		zap.String("stop_reason", choice.StopReason),
		zap.Duration("duration", duration),
	)
	return res, nil
}

// intInfo reads a token counter from langchaingo generation info.
func intInfo(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
