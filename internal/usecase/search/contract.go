package search

import (
	"context"

	"github.com/bennettck/collections-local-sub001/internal/domain/search/response"
	"github.com/bennettck/collections-local-sub001/internal/domain/search/result"
)

// Index ranks documents for normalized query text (more negative score = better).
type Index interface {
	Query(ctx context.Context, normalized string, topK int, category string) ([]result.Result, error)
}

// Answerer synthesizes a cited answer over ranked results.
type Answerer interface {
	Answer(ctx context.Context, query, model string, results []result.Result) (response.Answer, error)
}
