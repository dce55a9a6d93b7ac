package domain

import "context"

type completionUsageKey struct{}

// CompletionUsage collects token usage for a single search request.
// The handler puts a mutable pointer into the context before calling the service;
// the answer use case writes after the completion call; the handler reads it for response headers.
type CompletionUsage struct {
	TotalTokens int
	Model       string
	Used        bool
}

// NewContextWithUsage returns a context with a completion usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *CompletionUsage) {
	u := &CompletionUsage{}
	return context.WithValue(ctx, completionUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *CompletionUsage {
	u, _ := ctx.Value(completionUsageKey{}).(*CompletionUsage)
	return u
}

// Record stores the model and tokens consumed by a completion call.
func (u *CompletionUsage) Record(model string, tokens int) {
	if u != nil {
		u.TotalTokens += tokens
		u.Model = model
		u.Used = true
	}
}
