package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bennettck/collections-local-sub001/internal/domain"
	"github.com/bennettck/collections-local-sub001/internal/domain/search/request"
	"github.com/bennettck/collections-local-sub001/internal/domain/search/response"
	logpkg "github.com/bennettck/collections-local-sub001/internal/logger"
	"github.com/bennettck/collections-local-sub001/internal/metrics"
	"github.com/bennettck/collections-local-sub001/internal/tokenizer"
)

// DefaultAnswerTimeout bounds the text generation call.
const DefaultAnswerTimeout = 30 * time.Second

// Service runs the retrieval pipeline: normalize, query, filter, and optionally answer.
type Service struct {
	index         Index
	answers       Answerer
	answerTimeout time.Duration
	logger        *zap.Logger
}

// New creates a search service. answers can be nil; answer requests then
// degrade to results-only responses with an error indicator.
func New(index Index, answers Answerer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		index:         index,
		answers:       answers,
		answerTimeout: DefaultAnswerTimeout,
		logger:        logger,
	}
}

// WithAnswerTimeout sets the bound on the text generation call.
func (s *Service) WithAnswerTimeout(d time.Duration) *Service {
	if d > 0 {
		s.answerTimeout = d
	}
	return s
}

// Search executes the pipeline for a validated request.
// Index failures are returned; answer failures are reported on the response.
func (s *Service) Search(ctx context.Context, req *request.Request) (response.Response, error) {
	log := logpkg.FromContextOr(ctx, s.logger)
	start := time.Now()

	normalized := tokenizer.Normalize(req.Query())
	raw, err := s.index.Query(ctx, normalized, req.TopK(), req.Category())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return response.Response{}, fmt.Errorf("query index: %w", err)
	}

	filtered := filterByRelevance(raw, req.MinRelevanceScore())
	retrieval := time.Since(start)
	metrics.SearchStageDuration.WithLabelValues("retrieval").Observe(retrieval.Seconds())
	metrics.SearchResultsReturned.Observe(float64(len(filtered)))

	log.Debug("retrieval complete",
		zap.String("normalized_query", normalized),
		zap.Int("candidates", len(raw)),
		zap.Int("results", len(filtered)),
		zap.Float64("min_relevance_score", req.MinRelevanceScore()),
		zap.Duration("retrieval_time", retrieval),
	)

	resp := response.Response{
		Query:         req.Query(),
		Results:       filtered,
		RetrievalTime: retrieval,
	}

	if len(filtered) == 0 {
		metrics.SearchRequestsTotal.WithLabelValues("empty").Inc()
		return resp, nil
	}
	metrics.SearchRequestsTotal.WithLabelValues("results").Inc()

	if !req.IncludeAnswer() {
		return resp, nil
	}

	confidence := estimateConfidence(filtered)
	resp.Confidence = &confidence

	if s.answers == nil {
		resp.AnswerErr = fmt.Errorf("no completion provider configured: %w", domain.ErrSynthesisFailure)
		return resp, nil
	}

	answerCtx, cancel := context.WithTimeout(ctx, s.answerTimeout)
	defer cancel()

	answerStart := time.Now()
	ans, err := s.answers.Answer(answerCtx, req.Query(), req.AnswerModel(), filtered)
	answerTime := time.Since(answerStart)
	resp.AnswerTime = &answerTime
	metrics.SearchStageDuration.WithLabelValues("answer").Observe(answerTime.Seconds())

	if err != nil {
		if !errors.Is(err, domain.ErrSynthesisFailure) {
			err = fmt.Errorf("%w: %w", domain.ErrSynthesisFailure, err)
		}
		log.Warn("answer synthesis failed, returning results only",
			zap.Error(err),
			zap.Int("results", len(filtered)),
			zap.Duration("answer_time", answerTime),
		)
		resp.AnswerErr = err
		return resp, nil
	}

	resp.Answer = &ans
	return resp, nil
}
