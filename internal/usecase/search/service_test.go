package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bennettck/collections-local-sub001/internal/domain"
	"github.com/bennettck/collections-local-sub001/internal/domain/search/request"
	"github.com/bennettck/collections-local-sub001/internal/domain/search/response"
	"github.com/bennettck/collections-local-sub001/internal/domain/search/result"
)

// --- Mocks ---

type mockIndex struct {
	results      []result.Result
	err          error
	called       bool
	lastQuery    string
	lastTopK     int
	lastCategory string
}

func (m *mockIndex) Query(_ context.Context, normalized string, topK int, category string) ([]result.Result, error) {
	m.called = true
	m.lastQuery = normalized
	m.lastTopK = topK
	m.lastCategory = category
	return m.results, m.err
}

type mockAnswerer struct {
	answer      response.Answer
	err         error
	called      bool
	lastModel   string
	lastResults []result.Result
	hasDeadline bool
	block       bool
}

func (m *mockAnswerer) Answer(ctx context.Context, _ string, model string, results []result.Result) (response.Answer, error) {
	m.called = true
	m.lastModel = model
	m.lastResults = results
	_, m.hasDeadline = ctx.Deadline()
	if m.block {
		<-ctx.Done()
		return response.Answer{}, ctx.Err()
	}
	return m.answer, m.err
}

func mustRequest(t *testing.T, query string, threshold float64, includeAnswer bool) *request.Request {
	t.Helper()
	req, err := request.New(query, 10, "", threshold, includeAnswer, "")
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &req
}

// --- Tests ---

func TestSearch_FiltersTail(t *testing.T) {
	idx := &mockIndex{results: resultsWithScores(-5.99, -5.98, -1.5)}
	svc := New(idx, nil, nil)

	resp, err := svc.Search(context.Background(), mustRequest(t, "Tokyo restaurants?", -2.0, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := scoresOf(resp.Results); !equalScores(got, []float64{-5.99, -5.98}) {
		t.Errorf("scores = %v, want [-5.99 -5.98]", got)
	}
	if idx.lastQuery != "tokyo restaurants" {
		t.Errorf("normalized query = %q", idx.lastQuery)
	}
	if idx.lastTopK != 10 {
		t.Errorf("topK = %d, want 10", idx.lastTopK)
	}
	if resp.Answer != nil || resp.Confidence != nil || resp.AnswerTime != nil {
		t.Error("answer fields must be nil when no answer is requested")
	}
	if resp.TotalResults() != 2 {
		t.Errorf("TotalResults = %d, want 2", resp.TotalResults())
	}
}

func TestSearch_WeakBestReturnsEmpty(t *testing.T) {
	idx := &mockIndex{results: resultsWithScores(-1.5)}
	ans := &mockAnswerer{}
	svc := New(idx, ans, nil)

	resp, err := svc.Search(context.Background(), mustRequest(t, "ramen", -5.0, true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("expected no results, got %d", len(resp.Results))
	}
	if ans.called {
		t.Error("answerer must not be called for an empty result set")
	}
	if resp.Answer != nil || resp.Confidence != nil {
		t.Error("no answer or confidence expected for empty results")
	}
}

func TestSearch_EmptyIndexResultSkipsAnswer(t *testing.T) {
	idx := &mockIndex{results: nil}
	ans := &mockAnswerer{}
	svc := New(idx, ans, nil)

	resp, err := svc.Search(context.Background(), mustRequest(t, "nothing matches", -1, true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.called {
		t.Error("answerer must not be called")
	}
	if resp.Results == nil {
		t.Error("results should be an empty, non-nil slice")
	}
}

func TestSearch_WithAnswer(t *testing.T) {
	idx := &mockIndex{results: resultsWithScores(-5.99, -5.98)}
	ans := &mockAnswerer{answer: response.Answer{Text: "See [Item 1].", Model: "gpt-4.1", Citations: []int{1}}}
	svc := New(idx, ans, nil)

	req, err := request.New("tokyo", 5, "Food", -1, true, "gpt-4.1")
	if err != nil {
		t.Fatal(err)
	}
	resp, err := svc.Search(context.Background(), &req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.HasAnswer() || resp.Answer.Text != "See [Item 1]." {
		t.Fatalf("unexpected answer: %+v", resp.Answer)
	}
	if resp.Confidence == nil || *resp.Confidence < 0.598 || *resp.Confidence > 0.599 {
		t.Errorf("confidence = %v, want ~0.5985", resp.Confidence)
	}
	if resp.AnswerTime == nil {
		t.Error("answer time should be recorded")
	}
	if ans.lastModel != "gpt-4.1" {
		t.Errorf("model = %q", ans.lastModel)
	}
	if len(ans.lastResults) != 2 {
		t.Errorf("answerer received %d results, want 2", len(ans.lastResults))
	}
	if !ans.hasDeadline {
		t.Error("answerer should run under a deadline")
	}
	if idx.lastCategory != "Food" || idx.lastTopK != 5 {
		t.Errorf("index got category=%q topK=%d", idx.lastCategory, idx.lastTopK)
	}
	if resp.AnswerErr != nil {
		t.Errorf("unexpected answer error: %v", resp.AnswerErr)
	}
}

func TestSearch_AnswerFailureKeepsResults(t *testing.T) {
	idx := &mockIndex{results: resultsWithScores(-4, -3)}
	ans := &mockAnswerer{err: errors.New("upstream 500")}
	svc := New(idx, ans, nil)

	resp, err := svc.Search(context.Background(), mustRequest(t, "tokyo", -1, true))
	if err != nil {
		t.Fatalf("answer failure must not fail the search: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("results = %d, want 2", len(resp.Results))
	}
	if resp.Answer != nil {
		t.Error("answer should be nil on failure")
	}
	if !errors.Is(resp.AnswerErr, domain.ErrSynthesisFailure) {
		t.Errorf("AnswerErr = %v, want ErrSynthesisFailure", resp.AnswerErr)
	}
	if resp.Confidence == nil {
		t.Error("confidence is reported whenever an answer was attempted")
	}
}

func TestSearch_AnswerTimeout(t *testing.T) {
	idx := &mockIndex{results: resultsWithScores(-4)}
	ans := &mockAnswerer{block: true}
	svc := New(idx, ans, nil).WithAnswerTimeout(10 * time.Millisecond)

	resp, err := svc.Search(context.Background(), mustRequest(t, "tokyo", -1, true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errors.Is(resp.AnswerErr, context.DeadlineExceeded) {
		t.Errorf("AnswerErr = %v, want deadline exceeded", resp.AnswerErr)
	}
	if !errors.Is(resp.AnswerErr, domain.ErrSynthesisFailure) {
		t.Errorf("AnswerErr = %v, want ErrSynthesisFailure", resp.AnswerErr)
	}
}

func TestSearch_NoAnswererConfigured(t *testing.T) {
	idx := &mockIndex{results: resultsWithScores(-4)}
	svc := New(idx, nil, nil)

	resp, err := svc.Search(context.Background(), mustRequest(t, "tokyo", -1, true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errors.Is(resp.AnswerErr, domain.ErrSynthesisFailure) {
		t.Errorf("AnswerErr = %v", resp.AnswerErr)
	}
	if len(resp.Results) != 1 {
		t.Errorf("results = %d, want 1", len(resp.Results))
	}
}

func TestSearch_IndexUnavailable(t *testing.T) {
	idx := &mockIndex{err: domain.ErrIndexUnavailable}
	svc := New(idx, &mockAnswerer{}, nil)

	_, err := svc.Search(context.Background(), mustRequest(t, "tokyo", -1, true))
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestSearch_ConfidenceMonotonicInMeanScore(t *testing.T) {
	weak := &mockIndex{results: resultsWithScores(-2, -2)}
	strong := &mockIndex{results: resultsWithScores(-6, -6)}
	ans := &mockAnswerer{answer: response.Answer{Text: "ok"}}

	rw, err := New(weak, ans, nil).Search(context.Background(), mustRequest(t, "q", -1, true))
	if err != nil {
		t.Fatal(err)
	}
	rs, err := New(strong, ans, nil).Search(context.Background(), mustRequest(t, "q", -1, true))
	if err != nil {
		t.Fatal(err)
	}
	if *rs.Confidence <= *rw.Confidence {
		t.Errorf("stronger matches should not lower confidence: %v <= %v", *rs.Confidence, *rw.Confidence)
	}
}
