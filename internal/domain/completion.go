package domain

import "context"

// Completer is the text generation contract shared between the answer use case and providers.
// A call is synchronous; it may fail or time out.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}

// HealthChecker verifies completion provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CompletionRequest is a single prompt sent to a text generation provider.
type CompletionRequest struct {
	Prompt    string
	Model     string
	MaxTokens int
	// Reasoning marks models that spend part of MaxTokens on hidden deliberation.
	Reasoning bool
}

// CompletionResult carries the generated text and token usage.
type CompletionResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
