package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/bennettck/collections-local-sub001/internal/domain"
	"github.com/bennettck/collections-local-sub001/internal/metrics"
)

// Completer is a text generation provider using the OpenAI-compatible chat API.
type Completer struct {
	client       *openai.Client
	defaultModel string
	user         string
	provider     string
	logger       *zap.Logger
}

// Config holds the completion provider settings.
type Config struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	User         string
	Provider     string
	Logger       *zap.Logger
}

// NewCompleter creates an OpenAI-compatible completion provider.
func NewCompleter(cfg *Config) *Completer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Completer{
		client:       openai.NewClientWithConfig(clientCfg),
		defaultModel: cfg.DefaultModel,
		user:         cfg.User,
		provider:     cfg.Provider,
		logger:       logger,
	}
}

// Complete implements domain.Completer with transport-level metrics.
// Reasoning models receive max_completion_tokens, other models max_tokens.
func (c *Completer) Complete(ctx context.Context, in domain.CompletionRequest) (domain.CompletionResult, error) {
	model := in.Model
	if model == "" {
		model = c.defaultModel
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: in.Prompt},
		},
		User: c.user,
	}
	if in.MaxTokens > 0 {
		if in.Reasoning {
			req.MaxCompletionTokens = in.MaxTokens
		} else {
			req.MaxTokens = in.MaxTokens
		}
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.AnswerRequestsTotal.WithLabelValues(c.provider, model, "error").Inc()
		metrics.AnswerErrorsTotal.WithLabelValues(c.provider, model, errorType(ctx, err)).Inc()
		return domain.CompletionResult{}, parseAPIError(ctx, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.AnswerRequestsTotal.WithLabelValues(c.provider, model, "error").Inc()
		metrics.AnswerErrorsTotal.WithLabelValues(c.provider, model, "empty_response").Inc()
		finish := ""
		if len(resp.Choices) > 0 {
			finish = string(resp.Choices[0].FinishReason)
		}
		c.logger.Warn("empty completion",
			zap.String("model", model),
			zap.String("finish_reason", finish),
			zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		)
		return domain.CompletionResult{}, fmt.Errorf("empty completion response: %w", domain.ErrSynthesisFailure)
	}

	metrics.AnswerRequestsTotal.WithLabelValues(c.provider, model, "success").Inc()
	metrics.AnswerRequestDuration.WithLabelValues(c.provider, model).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		metrics.AnswerTokensTotal.WithLabelValues(c.provider, model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.AnswerTokensTotal.WithLabelValues(c.provider, model, "completion").Add(float64(resp.Usage.CompletionTokens))
		metrics.AnswerTokensTotal.WithLabelValues(c.provider, model, "total").Add(float64(resp.Usage.TotalTokens))
	}

	return domain.CompletionResult{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Completer) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func errorType(ctx context.Context, err error) string {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "api_error"
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrSynthesisFailure.
func parseAPIError(ctx context.Context, err error) error {
	wrap := domain.ErrSynthesisFailure

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("completion API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("completion API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("completion request: %w: %w", ctxErr, wrap)
	}
	return fmt.Errorf("completion request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
