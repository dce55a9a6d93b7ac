package domain

import (
	"context"
	"errors"
	"testing"
)

func TestUsageFromContext_Missing(t *testing.T) {
	if u := UsageFromContext(context.Background()); u != nil {
		t.Fatalf("expected nil usage, got %+v", u)
	}
	// nil receiver is safe
	var u *CompletionUsage
	u.Record("gpt-4o-mini", 10)
}

func TestUsageFromContext_Record(t *testing.T) {
	ctx, usage := NewContextWithUsage(context.Background())
	UsageFromContext(ctx).Record("gpt-4o-mini", 120)
	UsageFromContext(ctx).Record("gpt-4o-mini", 30)

	if !usage.Used {
		t.Error("expected Used=true")
	}
	if usage.TotalTokens != 150 {
		t.Errorf("expected 150 tokens, got %d", usage.TotalTokens)
	}
	if usage.Model != "gpt-4o-mini" {
		t.Errorf("expected model gpt-4o-mini, got %q", usage.Model)
	}
}

func TestInvalidRequestError(t *testing.T) {
	err := NewInvalidRequest("top_k", "must not be negative")
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatal("expected errors.Is(err, ErrInvalidRequest)")
	}
	want := "invalid request: top_k must not be negative"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}

	var ire *InvalidRequestError
	if !errors.As(err, &ire) || ire.Field != "top_k" {
		t.Errorf("expected InvalidRequestError for top_k, got %v", err)
	}
}
