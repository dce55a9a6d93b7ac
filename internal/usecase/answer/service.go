// Package answer synthesizes a cited natural-language answer over ranked results.
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bennettck/collections-local-sub001/internal/domain"
	"github.com/bennettck/collections-local-sub001/internal/domain/completion"
	"github.com/bennettck/collections-local-sub001/internal/domain/search/response"
	"github.com/bennettck/collections-local-sub001/internal/domain/search/result"
	logpkg "github.com/bennettck/collections-local-sub001/internal/logger"
)

// Service builds prompts, calls the completer and extracts citations.
type Service struct {
	completer    Completer
	budgets      completion.BudgetTable
	defaultModel string
	logger       *zap.Logger
}

// New creates an answer synthesizer.
func New(completer Completer, budgets completion.BudgetTable, defaultModel string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		completer:    completer,
		budgets:      budgets,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

// Answer synthesizes an answer for query over results. An empty model selects the default.
func (s *Service) Answer(ctx context.Context, query, model string, results []result.Result) (response.Answer, error) {
	if len(results) == 0 {
		return response.Answer{}, fmt.Errorf("no results to answer from: %w", domain.ErrInvalidRequest)
	}
	if model == "" {
		model = s.defaultModel
	}
	log := logpkg.FromContextOr(ctx, s.logger)

	budget := s.budgets.Lookup(model)
	res, err := s.completer.Complete(ctx, domain.CompletionRequest{
		Prompt:    buildPrompt(query, results),
		Model:     model,
		MaxTokens: budget.MaxTokens(),
		Reasoning: budget.IsReasoning(),
	})
	if err != nil {
		if !errors.Is(err, domain.ErrSynthesisFailure) {
			err = fmt.Errorf("%w: %w", domain.ErrSynthesisFailure, err)
		}
		return response.Answer{}, err
	}

	domain.UsageFromContext(ctx).Record(model, res.TotalTokens)

	text := strings.TrimSpace(res.Text)
	if text == "" {
		log.Warn("empty completion text",
			zap.Error(domain.ErrMalformedSynthesisOutput),
			zap.String("model", model),
		)
		return response.Answer{Model: model, Citations: []int{}}, nil
	}

	citations := ExtractCitations(text)
	if bad := outOfRange(citations, len(results)); len(bad) > 0 {
		log.Warn("answer cites items outside the result list",
			zap.Ints("ordinals", bad),
			zap.Int("results", len(results)),
			zap.String("model", model),
		)
	}
	if hasMalformedMarkers(text, len(citationPattern.FindAllStringIndex(text, -1))) {
		log.Warn("answer contains malformed citation markers",
			zap.Error(domain.ErrMalformedSynthesisOutput),
			zap.String("model", model),
		)
	}

	log.Debug("answer synthesized",
		zap.String("model", model),
		zap.String("budget_family", string(budget.Family())),
		zap.Int("max_tokens", budget.MaxTokens()),
		zap.Int("total_tokens", res.TotalTokens),
		zap.Ints("citations", citations),
	)

	return response.Answer{
		Text:      text,
		Model:     model,
		Citations: citations,
	}, nil
}
