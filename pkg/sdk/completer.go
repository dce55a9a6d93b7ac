package collections

import "context"

// Completer generates answer text from a prompt.
// Required for answer synthesis; search works without it.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}

// CompletionRequest is a single generation call. Reasoning is set for reasoning-class
// models, whose MaxTokens also covers hidden deliberation.
type CompletionRequest struct {
	Prompt    string
	Model     string
	MaxTokens int
	Reasoning bool
}

// CompletionResult carries the generated text and token counts.
type CompletionResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
