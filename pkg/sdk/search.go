package collections

import (
	"context"
	"fmt"
	"time"

	"github.com/bennettck/collections-local-sub001/internal/domain/search/request"
	"github.com/bennettck/collections-local-sub001/internal/domain/search/response"
)

// SearchOption adjusts a single search call.
type SearchOption func(*searchParams)

type searchParams struct {
	topK          int
	category      string
	minScore      float64
	includeAnswer bool
	answerModel   string
}

func defaultSearchParams() searchParams {
	return searchParams{
		topK:          request.DefaultTopK,
		minScore:      request.DefaultMinRelevanceScore,
		includeAnswer: true,
	}
}

// TopK sets how many candidates are retrieved before relevance filtering. Default: 10, max 100.
func TopK(n int) SearchOption {
	return func(p *searchParams) { p.topK = n }
}

// Category restricts results to items of one category (case-insensitive).
func Category(name string) SearchOption {
	return func(p *searchParams) { p.category = name }
}

// MinRelevanceScore sets the threshold results must score strictly below. Default: -1.0.
func MinRelevanceScore(score float64) SearchOption {
	return func(p *searchParams) { p.minScore = score }
}

// WithoutAnswer skips answer synthesis.
func WithoutAnswer() SearchOption {
	return func(p *searchParams) { p.includeAnswer = false }
}

// AnswerModel overrides the default answer model for this call.
func AnswerModel(model string) SearchOption {
	return func(p *searchParams) { p.answerModel = model }
}

// Search ranks items for query. A failed answer does not fail the search;
// it is reported in SearchResponse.AnswerErr.
func (c *Client) Search(ctx context.Context, query string, opts ...SearchOption) (resp SearchResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	p := defaultSearchParams()
	for _, o := range opts {
		o(&p)
	}

	req, err := request.New(query, p.topK, p.category, p.minScore, p.includeAnswer, p.answerModel)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}

	r, err := c.searchSvc.Search(ctx, &req)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}
	return responseFromDomain(&r), nil
}

func responseFromDomain(r *response.Response) SearchResponse {
	hits := make([]SearchHit, len(r.Results))
	for i := range r.Results {
		res := &r.Results[i]
		hits[i] = SearchHit{
			ItemID: res.ItemID(),
			Score:  res.Score(),
			Item:   itemFromDomain(res.Item()),
		}
	}

	out := SearchResponse{
		Query:         r.Query,
		Results:       hits,
		Confidence:    r.Confidence,
		AnswerErr:     r.AnswerErr,
		RetrievalTime: r.RetrievalTime,
		AnswerTime:    r.AnswerTime,
	}
	if r.Answer != nil {
		out.Answer = &Answer{
			Text:      r.Answer.Text,
			Model:     r.Answer.Model,
			Citations: r.Answer.Citations,
		}
	}
	return out
}
